// Package toydict is a minimal, YAML-backed dictionary that plays every
// collaborator role the conversion orchestrator needs (immutable
// converter, predictor, rewriter, POS matcher, suppression dictionary).
// It exists so the orchestrator can be exercised end-to-end by the CLI
// and by tests without a production dictionary or lattice decoder, the
// same role nanostore's YAML-driven config fixtures play for its own
// tests.
package toydict

import (
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sousuke0422/mozcgo/converter"
	"github.com/sousuke0422/mozcgo/request"
	"github.com/sousuke0422/mozcgo/segment"
)

// Entry is one reading/surface pair, with the POS/cost fields the
// orchestrator's CompletePosIds back-fill consults.
type Entry struct {
	Key           string `yaml:"key"`
	Value         string `yaml:"value"`
	LID           uint16 `yaml:"lid"`
	RID           uint16 `yaml:"rid"`
	Cost          int32  `yaml:"cost"`
	WCost         int32  `yaml:"wcost"`
	StructureCost int32  `yaml:"structure_cost"`
}

// Fixture is the on-disk YAML shape: a flat list of entries plus the
// well-known POS ids this fixture's general-noun/number/unique-noun
// classes resolve to.
type Fixture struct {
	Entries       []Entry `yaml:"entries"`
	GeneralNounID uint16  `yaml:"general_noun_id"`
	NumberID      uint16  `yaml:"number_id"`
	UniqueNounID  uint16  `yaml:"unique_noun_id"`
	Suppressed    []Entry `yaml:"suppressed"`
}

// Dictionary is the loaded, queryable form of a Fixture. It implements
// converter.ImmutableConverter and converter.SuppressionDictionary (and
// reverseconv's ImmutableConverter, the same method) directly; the
// Predictor and Rewriter roles are separate adapter types (see
// NewPredictor/NewRewriter) because those two collaborator interfaces
// specify a ClearHistoryEntry method with conflicting signatures.
type Dictionary struct {
	byKey      map[string][]Entry
	suppressed map[string]bool
	generalID  uint16
	numberID   uint16
	uniqueID   uint16
}

// Load reads a Fixture from a YAML file at path and indexes it.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, err
	}
	return New(fx), nil
}

// New indexes an already-parsed Fixture.
func New(fx Fixture) *Dictionary {
	d := &Dictionary{
		byKey:      make(map[string][]Entry),
		suppressed: make(map[string]bool),
		generalID:  fx.GeneralNounID,
		numberID:   fx.NumberID,
		uniqueID:   fx.UniqueNounID,
	}
	for _, e := range fx.Entries {
		d.byKey[e.Key] = append(d.byKey[e.Key], e)
	}
	for _, e := range fx.Suppressed {
		d.suppressed[e.Key+"\x00"+e.Value] = true
	}
	if d.generalID == 0 {
		d.generalID = 1
	}
	if d.numberID == 0 {
		d.numberID = 2
	}
	if d.uniqueID == 0 {
		d.uniqueID = 3
	}
	return d
}

// GetGeneralNounId, GetNumberId, GetUniqueNounId implement
// converter.POSMatcher / historyrecon.POSMatcher.
func (d *Dictionary) GetGeneralNounId() uint16 { return d.generalID }
func (d *Dictionary) GetNumberId() uint16      { return d.numberID }
func (d *Dictionary) GetUniqueNounId() uint16  { return d.uniqueID }

// IsEmpty and SuppressEntry implement converter.SuppressionDictionary.
func (d *Dictionary) IsEmpty() bool { return len(d.suppressed) == 0 }
func (d *Dictionary) SuppressEntry(key, value string) bool {
	return d.suppressed[key+"\x00"+value]
}

func toCandidate(e Entry) segment.Candidate {
	return segment.Candidate{
		Key:           e.Key,
		Value:         e.Value,
		ContentKey:    e.Key,
		ContentValue:  e.Value,
		LID:           e.LID,
		RID:           e.RID,
		Cost:          e.Cost,
		WCost:         e.WCost,
		StructureCost: e.StructureCost,
	}
}

// ConvertForRequest implements converter.ImmutableConverter (and, via
// reverseconv's identically-shaped dependency interface, the reverse
// conversion fallback path): for every conversion segment it looks up
// an exact-key match and appends candidates in fixture order, falling
// back to an identity (reading-as-surface) candidate when nothing
// matches.
func (d *Dictionary) ConvertForRequest(req request.Request, segments *segment.Segments) bool {
	found := false
	n := segments.ConversionSegmentsSize()
	for i := 0; i < n; i++ {
		seg := segments.ConversionSegment(i)
		if seg.Type == segment.FixedBoundary && seg.CandidatesSize() > 0 {
			continue
		}
		for _, e := range d.byKey[seg.Key] {
			seg.PushCandidate(toCandidate(e))
			found = true
		}
		if seg.CandidatesSize() == 0 && seg.Key != "" {
			seg.PushCandidate(segment.Candidate{
				Key: seg.Key, Value: seg.Key,
				ContentKey: seg.Key, ContentValue: seg.Key,
			})
		}
	}
	return found
}

// Predictor adapts a Dictionary to converter.Predictor: it has no
// learned state of its own, so Finish/Revert/Sync/Reload/Wait are
// no-ops and ClearHistoryEntry always reports nothing to clear.
type Predictor struct {
	dict *Dictionary
}

// NewPredictor returns a converter.Predictor backed by dict.
func NewPredictor(dict *Dictionary) *Predictor { return &Predictor{dict: dict} }

// PredictForRequest puts every dictionary key sharing req.Key() as a
// prefix onto the single conversion segment, longest-key-first.
func (p *Predictor) PredictForRequest(req request.Request, segments *segment.Segments) bool {
	key := req.Key()
	var keys []string
	for k := range p.dict.byKey {
		if strings.HasPrefix(k, key) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	seg := segments.ConversionSegment(0)
	if seg == nil {
		return false
	}
	found := false
	for _, k := range keys {
		for _, e := range p.dict.byKey[k] {
			seg.PushCandidate(toCandidate(e))
			found = true
		}
	}
	return found
}

func (p *Predictor) Finish(request.Request, *segment.Segments)      {}
func (p *Predictor) Revert(*segment.Segments)                       {}
func (p *Predictor) ClearHistoryEntry(key, value string) bool       { return false }
func (p *Predictor) Sync() bool                                     { return true }
func (p *Predictor) Reload() bool                                   { return true }
func (p *Predictor) Wait() bool                                     { return true }

// Rewriter adapts a Dictionary to converter.Rewriter as a pass-through:
// this fixture has nothing to reorder, annotate, or resize beyond what
// ConvertForRequest/PredictForRequest already produced.
type Rewriter struct {
	dict *Dictionary
}

// NewRewriter returns a converter.Rewriter backed by dict.
func NewRewriter(dict *Dictionary) *Rewriter { return &Rewriter{dict: dict} }

func (r *Rewriter) Rewrite(req request.Request, segments *segment.Segments) bool {
	return segments.ConversionSegmentsSize() > 0
}

func (r *Rewriter) CheckResizeSegmentsRequest(request.Request, *segment.Segments) (converter.ResizeSegmentsRequest, bool) {
	return converter.ResizeSegmentsRequest{}, false
}

func (r *Rewriter) Focus(*segment.Segments, int, int) bool                  { return true }
func (r *Rewriter) ClearHistoryEntry(*segment.Segments, int, int) bool      { return false }
func (r *Rewriter) Finish(request.Request, *segment.Segments)               {}
func (r *Rewriter) Revert(*segment.Segments)                                {}
func (r *Rewriter) Sync() bool                                              { return true }
func (r *Rewriter) Reload() bool                                            { return true }
