// Package reverseconv implements the Reverse Converter facade:
// converting a surface value (typically pasted or dropped text) back
// into a reading/value segment chain, with a fast path for math
// expressions that the lattice decoder has no chance of reading
// correctly.
//
// Grounded on original_source's converter/reverse_converter.cc.
package reverseconv

import (
	"log/slog"

	"github.com/sousuke0422/mozcgo/request"
	"github.com/sousuke0422/mozcgo/segment"
)

// ImmutableConverter is the deterministic decoder used for the
// non-math fallback path.
type ImmutableConverter interface {
	ConvertForRequest(req request.Request, segments *segment.Segments) bool
}

// Converter implements converter.ReverseConverter.
type Converter struct {
	immutable ImmutableConverter
	logger    *slog.Logger
}

// New returns a Converter backed by immutable.
func New(immutable ImmutableConverter, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{immutable: immutable, logger: logger}
}

// ReverseConvert fills segments(0) with the reverse-converted reading of
// key. It first tries the math-expression fast path; failing that, it
// falls back to the immutable converter in reverse-conversion mode.
func (c *Converter) ReverseConvert(key string, segments *segment.Segments) bool {
	if value, ok := normalizeAsMathExpression(key); ok {
		seg := segments.Segment(0)
		if seg == nil {
			seg = segments.AddSegment()
		}
		seg.PushCandidate(segment.Candidate{Key: key, Value: value})
		return true
	}

	req := request.NewBuilder().WithOptions(request.Options{
		Type: request.ReverseConversion,
	}).Build()

	if !c.immutable.ConvertForRequest(req, segments) {
		return false
	}
	if segments.SegmentsSize() == 0 {
		c.logger.Warn("no segments from reverse conversion")
		return false
	}
	for _, seg := range segments.All() {
		if seg.CandidatesSize() == 0 || seg.Candidates[0].Value == "" {
			segments.Clear()
			c.logger.Warn("got an empty segment from reverse conversion")
			return false
		}
	}
	return true
}

// normalizeAsMathExpression tries normalizing s as a math expression,
// converting full-width digits and math symbols to their half-width
// ASCII equivalents. It returns ok=false on the first rune that isn't
// part of a math expression.
func normalizeAsMathExpression(s string) (string, bool) {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 0xFF10 && r <= 0xFF19: // full-width "０"-"９"
			out = append(out, '0'+(r-0xFF10))
		case r == 0x002B || r == 0xFF0B: // "+", "＋"
			out = append(out, '+')
		case r == 0x002D || r == 0x30FC: // "-", "ー"
			out = append(out, '-')
		case r == 0x002A || r == 0xFF0A || r == 0x00D7: // "*", "＊", "×"
			out = append(out, '*')
		case r == 0x002F || r == 0xFF0F || r == 0x30FB || r == 0x00F7: // "/", "／", "・", "÷"
			out = append(out, '/')
		case r == 0x0028 || r == 0xFF08: // "(", "（"
			out = append(out, '(')
		case r == 0x0029 || r == 0xFF09: // ")", "）"
			out = append(out, ')')
		case r == 0x003D || r == 0xFF1D: // "=", "＝"
			out = append(out, '=')
		default:
			return "", false
		}
	}
	return string(out), true
}
