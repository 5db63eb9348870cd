// Package historyrecon implements the History Reconstructor facade:
// given preceding text from outside the IME's own composition (e.g. text
// already present in the target application), it extracts a trailing
// "connective" substring and materializes it as a single HISTORY
// segment so subsequent conversions can be biased by it.
//
// Grounded on original_source's converter/history_reconstructor.cc:
// only NUMBER and ALPHABET trailing runs are connective (one trailing
// space after the run is skipped); everything else, including text that
// is only a space or ends in two spaces, fails to reconstruct.
package historyrecon

import (
	"unicode"

	"github.com/sousuke0422/mozcgo/segment"
)

// POSMatcher resolves the POS ids the reconstructed candidate needs.
type POSMatcher interface {
	GetGeneralNounId() uint16
	GetNumberId() uint16
	GetUniqueNounId() uint16
}

// Reconstructor implements converter.HistoryReconstructor.
type Reconstructor struct {
	pos POSMatcher
}

// New returns a Reconstructor backed by pos.
func New(pos POSMatcher) *Reconstructor {
	return &Reconstructor{pos: pos}
}

// ReconstructHistory extracts the last connective substring of
// precedingText and appends it to segments as one HISTORY segment with
// a best-effort candidate. Returns false (segments left unmodified) if
// no connective trailing run is found.
func (r *Reconstructor) ReconstructHistory(precedingText string, segments *segment.Segments) bool {
	key, value, id, ok := r.getLastConnectivePart(precedingText)
	if !ok {
		return false
	}

	seg := segments.AddSegment()
	seg.Key = key
	seg.Type = segment.History
	seg.PushCandidate(segment.Candidate{
		Key:          key,
		Value:        value,
		ContentKey:   key,
		ContentValue: value,
		LID:          id,
		RID:          id,
		Attributes:   segment.NoLearning,
	})
	return true
}

type scriptType int

const (
	scriptOther scriptType = iota
	scriptNumber
	scriptAlphabet
)

func classify(r rune) scriptType {
	switch {
	case unicode.IsDigit(r):
		return scriptNumber
	case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= 0xFF21 && r <= 0xFF3A) || (r >= 0xFF41 && r <= 0xFF5A):
		return scriptAlphabet
	default:
		return scriptOther
	}
}

// extractLastTokenWithScriptType returns the trailing run of runes that
// share a single script type, allowing exactly one trailing space to be
// skipped first. A second trailing space, or an empty input, fails.
func extractLastTokenWithScriptType(text string) (token string, st scriptType, ok bool) {
	runes := []rune(text)
	i := len(runes)
	if i == 0 {
		return "", scriptOther, false
	}

	if runes[i-1] == ' ' {
		i--
		if i == 0 {
			return "", scriptOther, false
		}
		if runes[i-1] == ' ' {
			return "", scriptOther, false
		}
	}

	want := classify(runes[i-1])
	start := i
	for start > 0 {
		r := runes[start-1]
		if r == ' ' || classify(r) != want {
			break
		}
		start--
	}
	return string(runes[start:i]), want, true
}

// fullWidthAsciiToHalfWidthAscii normalizes full-width ASCII digits and
// letters to their half-width equivalents.
func fullWidthAsciiToHalfWidthAscii(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r >= 0xFF10 && r <= 0xFF19:
			runes[i] = '0' + (r - 0xFF10)
		case r >= 0xFF21 && r <= 0xFF3A:
			runes[i] = 'A' + (r - 0xFF21)
		case r >= 0xFF41 && r <= 0xFF5A:
			runes[i] = 'a' + (r - 0xFF41)
		}
	}
	return string(runes)
}

func (r *Reconstructor) getLastConnectivePart(precedingText string) (key, value string, id uint16, ok bool) {
	id = r.pos.GetGeneralNounId()

	token, st, found := extractLastTokenWithScriptType(precedingText)
	if !found {
		return "", "", id, false
	}

	switch st {
	case scriptNumber:
		return fullWidthAsciiToHalfWidthAscii(token), token, r.pos.GetNumberId(), true
	case scriptAlphabet:
		return fullWidthAsciiToHalfWidthAscii(token), token, r.pos.GetUniqueNounId(), true
	default:
		return "", "", id, false
	}
}
