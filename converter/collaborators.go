package converter

import (
	"github.com/sousuke0422/mozcgo/request"
	"github.com/sousuke0422/mozcgo/segment"
)

// ImmutableConverter is the deterministic decoder that fills candidates
// on the conversion suffix via lattice search. Its internals are out of
// scope for this module; only its contract is specified.
type ImmutableConverter interface {
	// ConvertForRequest fills candidates on the conversion suffix,
	// honouring FixedBoundary segments. Failure is non-fatal to the
	// caller: rewriters may still contribute candidates.
	ConvertForRequest(req request.Request, segments *segment.Segments) bool
}

// ResizeSegmentsRequest is what a Rewriter returns from
// CheckResizeSegmentsRequest when it wants the orchestrator to re-pin
// segment boundaries before rewriting.
type ResizeSegmentsRequest struct {
	SegmentIndex  int
	SegmentSizes  []int
}

// Predictor produces suggestion/prediction candidates and carries
// learning state across Finish/Revert notifications.
type Predictor interface {
	PredictForRequest(req request.Request, segments *segment.Segments) bool
	Finish(req request.Request, segments *segment.Segments)
	Revert(segments *segment.Segments)
	ClearHistoryEntry(key, value string) bool
	Sync() bool
	Reload() bool
	Wait() bool
}

// Rewriter post-processes candidates: reordering, annotating, or
// augmenting them, and may request a segment resize before it runs.
type Rewriter interface {
	Rewrite(req request.Request, segments *segment.Segments) bool
	CheckResizeSegmentsRequest(req request.Request, segments *segment.Segments) (ResizeSegmentsRequest, bool)
	Focus(segments *segment.Segments, segmentIndex, candidateIndex int) bool
	ClearHistoryEntry(segments *segment.Segments, segmentIndex, candidateIndex int) bool
	Finish(req request.Request, segments *segment.Segments)
	Revert(segments *segment.Segments)
	Sync() bool
	Reload() bool
}

// SuppressionDictionary is a blocklist of (reading, surface) pairs.
type SuppressionDictionary interface {
	IsEmpty() bool
	SuppressEntry(key, value string) bool
}

// POSMatcher resolves well-known part-of-speech ids used by the core
// (e.g. the general-noun fallback for CompletePosIds) and by
// collaborators.
type POSMatcher interface {
	GetGeneralNounId() uint16
	GetNumberId() uint16
	GetUniqueNounId() uint16
}

// UsageStats is the abstract sink the core emits counters through. No
// production backend is in scope; callers supply an implementation
// (e.g. this module's usagestats.Memory) or a no-op.
type UsageStats interface {
	UpdateTiming(name string, value int64)
	IncrementCount(name string)
	IncrementCountBy(name string, n int64)
}

// ReverseConverter is the thin facade exposed by the orchestrator's
// StartReverseConversion. It is specified only by its external contract.
type ReverseConverter interface {
	ReverseConvert(key string, segments *segment.Segments) bool
}

// HistoryReconstructor extracts a trailing "connective" substring of
// preceding text and materializes it as a history segment.
type HistoryReconstructor interface {
	ReconstructHistory(precedingText string, segments *segment.Segments) bool
}
