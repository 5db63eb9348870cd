package converter

import (
	"testing"

	"github.com/sousuke0422/mozcgo/request"
	"github.com/sousuke0422/mozcgo/segment"
)

// fakeDecoder is a tiny stand-in for the Immutable Converter: an exact
// key->candidates table per conversion segment, falling back to an
// identity candidate when the key is unknown. Good enough to exercise
// the orchestrator without a real dictionary.
type fakeDecoder struct {
	table map[string][]segment.Candidate
}

func (f fakeDecoder) ConvertForRequest(req request.Request, segments *segment.Segments) bool {
	found := false
	n := segments.ConversionSegmentsSize()
	for i := 0; i < n; i++ {
		seg := segments.ConversionSegment(i)
		if seg.Type == segment.FixedBoundary && seg.CandidatesSize() > 0 {
			continue
		}
		cands, ok := f.table[seg.Key]
		if !ok {
			seg.PushCandidate(segment.Candidate{Key: seg.Key, Value: seg.Key})
			continue
		}
		found = true
		for _, c := range cands {
			seg.PushCandidate(c)
		}
	}
	return found
}

type fakePredictor struct {
	table map[string][]segment.Candidate
}

func (f fakePredictor) PredictForRequest(req request.Request, segments *segment.Segments) bool {
	seg := segments.ConversionSegment(0)
	cands, ok := f.table[seg.Key]
	if !ok {
		return false
	}
	for _, c := range cands {
		seg.PushCandidate(c)
	}
	return true
}
func (fakePredictor) Finish(request.Request, *segment.Segments)    {}
func (fakePredictor) Revert(*segment.Segments)                    {}
func (fakePredictor) ClearHistoryEntry(string, string) bool        { return false }
func (fakePredictor) Sync() bool                                  { return true }
func (fakePredictor) Reload() bool                                { return true }
func (fakePredictor) Wait() bool                                  { return true }

// noopRewriter passes candidates through unchanged and never requests a
// resize, matching spec §8's "no-op rewriter with empty suppression
// dictionary" fixture for the E1-E6 scenarios.
type noopRewriter struct{}

func (noopRewriter) Rewrite(request.Request, *segment.Segments) bool { return true }
func (noopRewriter) CheckResizeSegmentsRequest(request.Request, *segment.Segments) (ResizeSegmentsRequest, bool) {
	return ResizeSegmentsRequest{}, false
}
func (noopRewriter) Focus(*segment.Segments, int, int) bool            { return true }
func (noopRewriter) ClearHistoryEntry(*segment.Segments, int, int) bool { return false }
func (noopRewriter) Finish(request.Request, *segment.Segments)          {}
func (noopRewriter) Revert(*segment.Segments)                          {}
func (noopRewriter) Sync() bool                                        { return true }
func (noopRewriter) Reload() bool                                      { return true }

type fakePOS struct{}

func (fakePOS) GetGeneralNounId() uint16 { return 1 }
func (fakePOS) GetNumberId() uint16      { return 2 }
func (fakePOS) GetUniqueNounId() uint16  { return 3 }

// toyDecoder builds the trivial toy dictionary spec §8 assumes:
// "あ"->"亜", "い"->"胃", "あい"->"愛".
func toyDecoder() fakeDecoder {
	return fakeDecoder{table: map[string][]segment.Candidate{
		"あ":  {{Key: "あ", Value: "亜"}},
		"い":  {{Key: "い", Value: "胃"}},
		"あい": {{Key: "あい", Value: "愛"}, {Key: "あい", Value: "亜胃"}},
	}}
}

func newTestConverter(predictorTable map[string][]segment.Candidate) *Converter {
	p := fakePredictor{table: predictorTable}
	return New(toyDecoder(), p, noopRewriter{}, fakePOS{})
}

func conversionReq(key string) request.Request {
	return request.NewBuilder().WithOptions(request.Options{Type: request.Conversion, Key: key}).Build()
}

// E1: StartConversion(key="あい") -> conversion suffix has 1 segment,
// candidates[0].value in {"愛","亜胃"}, IsValidSegments == true.
func TestE1StartConversion(t *testing.T) {
	c := newTestConverter(nil)
	segs := segment.New()

	if !c.StartConversion(conversionReq("あい"), segs) {
		t.Fatal("StartConversion(あい) = false, want true")
	}
	if got := segs.ConversionSegmentsSize(); got != 1 {
		t.Fatalf("ConversionSegmentsSize() = %d, want 1", got)
	}
	seg := segs.ConversionSegment(0)
	if seg.CandidatesSize() == 0 {
		t.Fatal("expected at least one candidate")
	}
	top := seg.Candidates[0].Value
	if top != "愛" && top != "亜胃" {
		t.Fatalf("top candidate = %q, want 愛 or 亜胃", top)
	}
}

// E2: After E1, ResizeSegment(i=0, offset=-1) (new size = 1) -> suffix
// has 2 segments keyed "あ","い", each with >=1 candidate. Per the
// ResizeSegments algorithm (and original_source's Converter::ResizeSegments,
// which types the merged remainder FREE) the first segment is
// FIXED_BOUNDARY and the remainder is FREE, not FIXED_BOUNDARY as the
// scenario's prose summary states.
func TestE2ResizeSegment(t *testing.T) {
	c := newTestConverter(nil)
	segs := segment.New()
	req := conversionReq("あい")

	if !c.StartConversion(req, segs) {
		t.Fatal("StartConversion(あい) = false")
	}

	if !c.ResizeSegment(segs, req, 0, -1) {
		t.Fatal("ResizeSegment(0, -1) = false, want true")
	}

	if got := segs.ConversionSegmentsSize(); got != 2 {
		t.Fatalf("ConversionSegmentsSize() = %d, want 2", got)
	}
	first := segs.ConversionSegment(0)
	second := segs.ConversionSegment(1)
	if first.Key != "あ" || second.Key != "い" {
		t.Fatalf("keys = %q, %q, want あ, い", first.Key, second.Key)
	}
	if first.CandidatesSize() == 0 || second.CandidatesSize() == 0 {
		t.Fatal("expected both segments to have at least one candidate")
	}
	if first.Type != segment.FixedBoundary {
		t.Fatalf("first.Type = %v, want FixedBoundary", first.Type)
	}
	if second.Type != segment.Free {
		t.Fatalf("second.Type = %v, want Free (merged remainder per ResizeSegments algorithm)", second.Type)
	}
}

// E3: After E2, CommitSegmentValue(i=0, c=0); then FinishConversion.
// Afterwards, history_segments_size() == 2, both segments HISTORY, and
// the emitted counter SubmittedSegmentNumberx1000 equals 2000.
func TestE3CommitAndFinish(t *testing.T) {
	stats := &recordingUsageStats{}
	c := New(toyDecoder(), fakePredictor{}, noopRewriter{}, fakePOS{}, WithUsageStats(stats))
	segs := segment.New()
	req := conversionReq("あい")

	c.StartConversion(req, segs)
	c.ResizeSegment(segs, req, 0, -1)

	if !c.CommitSegmentValue(segs, 0, 0) {
		t.Fatal("CommitSegmentValue(0, 0) = false")
	}

	c.FinishConversion(req, segs)

	if got := segs.HistorySegmentsSize(); got != 2 {
		t.Fatalf("HistorySegmentsSize() = %d, want 2", got)
	}
	for _, seg := range segs.All() {
		if seg.Type != segment.History {
			t.Fatalf("segment %q Type = %v, want History", seg.Key, seg.Type)
		}
	}
	if got := stats.timing["SubmittedSegmentNumberx1000"]; got != 2000 {
		t.Fatalf("SubmittedSegmentNumberx1000 = %d, want 2000", got)
	}
}

// E4: StartPrediction(key="あ", SUGGESTION) followed by
// StartPrediction(key="あ", PREDICTION) without an intervening key
// change -- on the second call, the first conversion segment's
// candidate list is not cleared (same-key path).
func TestE4StartPredictionSameKeyKeepsCandidates(t *testing.T) {
	c := newTestConverter(map[string][]segment.Candidate{
		"あ": {{Key: "あ", Value: "亜"}},
	})
	segs := segment.New()

	suggestReq := request.NewBuilder().WithOptions(request.Options{Type: request.Suggestion, Key: "あ"}).Build()
	if !c.StartPrediction(suggestReq, segs) {
		t.Fatal("StartPrediction(SUGGESTION) = false")
	}
	firstCandidates := segs.ConversionSegment(0).CandidatesSize()
	if firstCandidates == 0 {
		t.Fatal("expected candidates after SUGGESTION")
	}

	predictReq := request.NewBuilder().WithOptions(request.Options{Type: request.Prediction, Key: "あ"}).Build()
	if !c.StartPrediction(predictReq, segs) {
		t.Fatal("StartPrediction(PREDICTION) = false")
	}

	if got := segs.ConversionSegment(0).Key; got != "あ" {
		t.Fatalf("segment key = %q, want あ (unchanged, same-key path)", got)
	}
	if got := segs.ConversionSegmentsSize(); got != 1 {
		t.Fatalf("ConversionSegmentsSize() = %d, want 1 (no reset on same key)", got)
	}
	if got := segs.ConversionSegment(0).CandidatesSize(); got < firstCandidates {
		t.Fatalf("CandidatesSize() = %d, want >= %d (candidate list not cleared)", got, firstCandidates)
	}
}

// E5: StartConversion(key="") returns false and does not touch segments.
func TestE5StartConversionEmptyKey(t *testing.T) {
	c := newTestConverter(nil)
	segs := segment.New()

	if c.StartConversion(conversionReq(""), segs) {
		t.Fatal("StartConversion(\"\") = true, want false")
	}
	if got := segs.SegmentsSize(); got != 0 {
		t.Fatalf("SegmentsSize() = %d, want 0 (untouched)", got)
	}
}

// E6: CommitPartialSuggestionSegmentValue(i=0, c=0, current_key="あ",
// new_key="い") when the current first segment has key "あい" ->
// afterwards, the conversion suffix contains two segments with keys
// "あ" (SUBMITTED) and "い" (FREE).
func TestE6CommitPartialSuggestion(t *testing.T) {
	c := newTestConverter(nil)
	segs := segment.New()

	if !c.StartConversion(conversionReq("あい"), segs) {
		t.Fatal("StartConversion(あい) = false")
	}

	if !c.CommitPartialSuggestionSegmentValue(segs, 0, 0, "あ", "い") {
		t.Fatal("CommitPartialSuggestionSegmentValue = false")
	}

	if got := segs.ConversionSegmentsSize(); got != 2 {
		t.Fatalf("ConversionSegmentsSize() = %d, want 2", got)
	}
	first := segs.ConversionSegment(0)
	second := segs.ConversionSegment(1)
	if first.Key != "あ" || first.Type != segment.Submitted {
		t.Fatalf("first = %q/%v, want あ/Submitted", first.Key, first.Type)
	}
	if second.Key != "い" || second.Type != segment.Free {
		t.Fatalf("second = %q/%v, want い/Free", second.Key, second.Type)
	}
}

// Invariant 1: history_segments_size() <= max_history_segments_size()
// after FinishConversion, even when more segments were committed than
// the cap allows.
func TestInvariantHistorySizeCapped(t *testing.T) {
	c := New(toyDecoder(), fakePredictor{}, noopRewriter{}, fakePOS{})
	segs := segment.New()

	req := conversionReq("あい")
	c.StartConversion(req, segs)
	c.ResizeSegment(segs, req, 0, -1)
	// Set the cap after StartConversion, which pins it back to the default.
	segs.SetMaxHistorySegmentsSize(1)

	if !c.CommitSegments(segs, []int{0, 0}) {
		t.Fatal("CommitSegments failed")
	}
	c.FinishConversion(req, segs)

	if got := segs.HistorySegmentsSize(); got > segs.MaxHistorySegmentsSize() {
		t.Fatalf("HistorySegmentsSize() = %d, exceeds max %d", got, segs.MaxHistorySegmentsSize())
	}
}

// Invariant 2: every conversion segment has >=1 candidate after a
// successful Start*. Covered implicitly by E1/E4, asserted directly
// here against isValidSegments.
func TestInvariantEverySegmentHasCandidates(t *testing.T) {
	c := newTestConverter(nil)
	segs := segment.New()
	req := conversionReq("あい")
	c.StartConversion(req, segs)

	if !isValidSegments(req, segs) {
		t.Fatal("isValidSegments = false after a successful StartConversion")
	}
}

// Invariant 3: ResizeSegments is conservative on total key content: the
// concatenation of resulting segment keys equals the original key,
// including any merged remainder.
func TestInvariantResizeSegmentsConservesKeyContent(t *testing.T) {
	c := newTestConverter(nil)
	segs := segment.New()
	req := conversionReq("あい")
	c.StartConversion(req, segs)

	if !c.ResizeSegments(segs, req, 0, []int{1}) {
		t.Fatal("ResizeSegments failed")
	}

	var rebuilt string
	n := segs.ConversionSegmentsSize()
	for i := 0; i < n; i++ {
		rebuilt += segs.ConversionSegment(i).Key
	}
	if rebuilt != "あい" {
		t.Fatalf("rebuilt key = %q, want あい", rebuilt)
	}
}

// Invariant 4: after CommitSegmentValue(s, i, c) where c != 0, the
// selected candidate moves to index 0 and gains the RERANKED attribute.
func TestInvariantCommitRerank(t *testing.T) {
	c := newTestConverter(nil)
	segs := segment.New()
	c.StartConversion(conversionReq("あい"), segs)

	if !c.CommitSegmentValue(segs, 0, 1) {
		t.Fatal("CommitSegmentValue(0, 1) failed")
	}
	seg := segs.ConversionSegment(0)
	if seg.Candidates[0].Value != "亜胃" {
		t.Fatalf("Candidates[0].Value = %q, want 亜胃 (the originally-index-1 candidate)", seg.Candidates[0].Value)
	}
	if !seg.Candidates[0].HasAttr(segment.Reranked) {
		t.Fatal("expected RERANKED attribute on the promoted candidate")
	}
}

// Invariant 5: StartPrediction with the same key twice in a row leaves
// the segment key stable. Same guarantee as E4; checked independently
// against shouldSetKeyForPrediction's contract.
func TestInvariantStartPredictionStableKey(t *testing.T) {
	if shouldSetKeyForPrediction("あ", func() *segment.Segments {
		s := segment.New()
		s.AddSegment().Key = "あ"
		return s
	}()) {
		t.Fatal("shouldSetKeyForPrediction = true for an unchanged key, want false")
	}
}

// Boundary: ResizeSegment with offset = 0 returns false.
func TestBoundaryResizeSegmentZeroOffset(t *testing.T) {
	c := newTestConverter(nil)
	segs := segment.New()
	req := conversionReq("あい")
	c.StartConversion(req, segs)

	if c.ResizeSegment(segs, req, 0, 0) {
		t.Fatal("ResizeSegment(offset=0) = true, want false")
	}
}

// Boundary: ResizeSegment that would produce new_size <= 0 or > 255
// returns false.
func TestBoundaryResizeSegmentOutOfRange(t *testing.T) {
	c := newTestConverter(nil)
	segs := segment.New()
	req := conversionReq("あい")
	c.StartConversion(req, segs)

	if c.ResizeSegment(segs, req, 0, -5) {
		t.Fatal("ResizeSegment producing new_size <= 0 = true, want false")
	}
	if c.ResizeSegment(segs, req, 0, 300) {
		t.Fatal("ResizeSegment producing new_size > 255 = true, want false")
	}
}

// Boundary: StartPrediction with PARTIAL_* and cursor at position 0 or
// at length returns false (the precondition fails before any mutation).
func TestBoundaryPartialPredictionCursorAtEdges(t *testing.T) {
	c := newTestConverter(map[string][]segment.Candidate{
		"あい": {{Key: "あい", Value: "愛"}},
	})

	cases := []struct {
		name   string
		cursor int
		length int
	}{
		{"cursor at 0", 0, 2},
		{"cursor at length", 2, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			segs := segment.New()
			req := request.NewBuilder().
				WithOptions(request.Options{Type: request.PartialPrediction, Key: "あい"}).
				WithComposer(fixedComposer{key: "あい", cursor: tc.cursor, length: tc.length}).
				Build()
			if c.StartPrediction(req, segs) {
				t.Fatalf("StartPrediction(cursor=%d, length=%d) = true, want false", tc.cursor, tc.length)
			}
		})
	}
}

type fixedComposer struct {
	key    string
	cursor int
	length int
}

func (f fixedComposer) GetQueryForConversion() string { return f.key }
func (f fixedComposer) GetQueryForPrediction() string  { return f.key }
func (f fixedComposer) GetCursor() int                 { return f.cursor }
func (f fixedComposer) GetLength() int                 { return f.length }

type recordingUsageStats struct {
	timing map[string]int64
	counts map[string]int64
}

func (r *recordingUsageStats) UpdateTiming(name string, value int64) {
	if r.timing == nil {
		r.timing = map[string]int64{}
	}
	r.timing[name] = value
}

func (r *recordingUsageStats) IncrementCount(name string) {
	r.IncrementCountBy(name, 1)
}

func (r *recordingUsageStats) IncrementCountBy(name string, n int64) {
	if r.counts == nil {
		r.counts = map[string]int64{}
	}
	r.counts[name] += n
}

// RevertConversion round-trip: after CommitSegmentValue records a
// revert entry, RevertConversion notifies collaborators and clears the
// recorded entries.
func TestRevertConversionClearsEntries(t *testing.T) {
	c := newTestConverter(nil)
	segs := segment.New()
	c.StartConversion(conversionReq("あい"), segs)
	c.CommitSegmentValue(segs, 0, 0)

	if len(segs.RevertEntries()) == 0 {
		t.Fatal("expected a recorded revert entry after CommitSegmentValue")
	}

	c.RevertConversion(segs)

	if len(segs.RevertEntries()) != 0 {
		t.Fatal("expected revert entries cleared after RevertConversion")
	}
}

// CancelConversion clears the conversion suffix but keeps history.
func TestCancelConversionKeepsHistory(t *testing.T) {
	c := newTestConverter(nil)
	segs := segment.New()
	req := conversionReq("あい")
	c.StartConversion(req, segs)
	c.ResizeSegment(segs, req, 0, -1)
	c.CommitSegmentValue(segs, 0, 0)
	c.FinishConversion(req, segs)

	if segs.HistorySegmentsSize() == 0 {
		t.Fatal("expected history after FinishConversion")
	}

	c.StartConversion(conversionReq("う"), segs)
	c.CancelConversion(segs)

	if got := segs.ConversionSegmentsSize(); got != 0 {
		t.Fatalf("ConversionSegmentsSize() = %d, want 0 after CancelConversion", got)
	}
	if segs.HistorySegmentsSize() == 0 {
		t.Fatal("expected history retained after CancelConversion")
	}
}
