// Package converter implements the conversion orchestrator: the state
// machine over a segmented conversion buffer that composes the
// immutable-converter, predictor, and rewriter collaborators, suppresses
// blocked entries, resizes segments with boundary repair, and maintains
// a short conversation history.
package converter

import (
	"log/slog"

	"github.com/sousuke0422/mozcgo/request"
	"github.com/sousuke0422/mozcgo/segment"

	"github.com/google/uuid"
)

// numT13nTypes bounds how far negative a candidate index may go: it is
// the number of meta-candidate slots a segment carries (transliteration
// variants: hiragana, katakana, half-width, etc).
const numT13nTypes = 10

// maxResizeRecursionDepth caps the Rewrite&Suppress pipeline's
// resize-feedback recursion per spec §9: a Rewriter must not request
// further resizes on an already-resized buffer, and implementations
// should enforce the cap defensively.
const maxResizeRecursionDepth = 1

// Converter is the public orchestrator. All operations are logically
// const with respect to its own configuration: they mutate the
// caller-provided Segments buffer, not the Converter itself (aside from
// collaborators that hold their own learning state).
type Converter struct {
	immutableConverter ImmutableConverter
	predictor          Predictor
	rewriter           Rewriter
	suppression        SuppressionDictionary
	posMatcher         POSMatcher
	historyReconstruct HistoryReconstructor
	reverseConverter   ReverseConverter
	usageStats         UsageStats
	logger             *slog.Logger

	generalNounID uint16
}

// Option configures a Converter at construction time.
type Option func(*Converter)

// WithSuppressionDictionary installs a suppression dictionary. Defaults
// to an always-empty one.
func WithSuppressionDictionary(d SuppressionDictionary) Option {
	return func(c *Converter) { c.suppression = d }
}

// WithHistoryReconstructor installs the history-reconstructor facade.
func WithHistoryReconstructor(h HistoryReconstructor) Option {
	return func(c *Converter) { c.historyReconstruct = h }
}

// WithReverseConverter installs the reverse-converter facade.
func WithReverseConverter(r ReverseConverter) Option {
	return func(c *Converter) { c.reverseConverter = r }
}

// WithUsageStats installs the usage-counters sink. Defaults to a no-op.
func WithUsageStats(u UsageStats) Option {
	return func(c *Converter) { c.usageStats = u }
}

// WithLogger installs a structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

type noopUsageStats struct{}

func (noopUsageStats) UpdateTiming(string, int64)     {}
func (noopUsageStats) IncrementCount(string)          {}
func (noopUsageStats) IncrementCountBy(string, int64)  {}

type emptySuppressionDictionary struct{}

func (emptySuppressionDictionary) IsEmpty() bool                { return true }
func (emptySuppressionDictionary) SuppressEntry(string, string) bool { return false }

// New constructs a Converter from its three required collaborators
// (immutable converter, predictor, rewriter) and a POS matcher, applying
// any Options. This keeps collaborator construction explicit per spec
// §9: callers build the decoder/predictor/rewriter themselves (directly
// or via factory closures) and hand the constructed instances in, rather
// than the Converter reaching for a hidden singleton.
func New(ic ImmutableConverter, p Predictor, rw Rewriter, pm POSMatcher, opts ...Option) *Converter {
	c := &Converter{
		immutableConverter: ic,
		predictor:          p,
		rewriter:           rw,
		posMatcher:         pm,
		suppression:        emptySuppressionDictionary{},
		usageStats:         noopUsageStats{},
		logger:             slog.Default(),
		generalNounID:      pm.GetGeneralNounId(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func setKey(segments *segment.Segments, key string) {
	segments.SetMaxHistorySegmentsSize(segment.DefaultMaxHistorySegmentsSize)
	segments.ClearConversionSegments()

	seg := segments.AddSegment()
	seg.Key = key
	seg.Type = segment.Free
}

func shouldSetKeyForPrediction(key string, segments *segment.Segments) bool {
	return segments.ConversionSegmentsSize() == 0 || segments.ConversionSegment(0).Key != key
}

// isValidSegments checks invariant (2): every conversion segment has
// either >=1 candidate, or (in mobile mode) >=1 meta-candidate.
func isValidSegments(req request.Request, segments *segment.Segments) bool {
	isMobile := req.IsMobile()
	for i := 0; i < segments.ConversionSegmentsSize(); i++ {
		seg := segments.ConversionSegment(i)
		if seg.CandidatesSize() != 0 {
			continue
		}
		if isMobile && seg.MetaCandidatesSize() != 0 {
			continue
		}
		return false
	}
	return true
}

// StartConversion installs a single FREE segment holding req.Key and
// runs ApplyConversion. Returns false without side effects if the key is
// empty.
func (c *Converter) StartConversion(req request.Request, segments *segment.Segments) bool {
	if req.Key() == "" {
		return false
	}
	setKey(segments, req.Key())
	c.ApplyConversion(segments, req)
	return isValidSegments(req, segments)
}

// StartPrediction runs the predictor (and the Rewrite&Suppress
// pipeline) for PREDICTION/SUGGESTION/PARTIAL_PREDICTION/
// PARTIAL_SUGGESTION requests.
func (c *Converter) StartPrediction(req request.Request, segments *segment.Segments) bool {
	if req.Type().IsPartial() {
		cursor, length := req.Cursor(), req.Length()
		if !(0 < cursor && cursor < length) {
			return false
		}
	}

	key := req.Key()
	if shouldSetKeyForPrediction(key, segments) {
		setKey(segments, key)
	}

	if !c.predictor.PredictForRequest(req, segments) {
		c.logger.Debug("predictor found no candidates for key", "key", key)
	}
	c.applyRewriteAndSuppress(req, segments, 0)
	c.trimCandidates(req, segments)

	if req.Type().IsPartial() {
		maybeSetConsumedKeySizeToSegment(segment.CharLen(key), segments.ConversionSegment(0))
	}
	return isValidSegments(req, segments)
}

// StartReverseConversion installs a single FREE segment and delegates
// entirely to the ReverseConverter facade.
func (c *Converter) StartReverseConversion(segments *segment.Segments, key string) bool {
	segments.Clear()
	if key == "" {
		return false
	}
	setKey(segments, key)
	return c.reverseConverter.ReverseConvert(key, segments)
}

func maybeSetConsumedKeySizeToCandidate(consumedKeySize int, cand *segment.Candidate) {
	if cand.HasAttr(segment.PartiallyKeyConsumed) {
		return
	}
	cand.Attributes |= segment.PartiallyKeyConsumed
	cand.ConsumedKeySize = consumedKeySize
}

func maybeSetConsumedKeySizeToSegment(consumedKeySize int, seg *segment.Segment) {
	for i := range seg.Candidates {
		maybeSetConsumedKeySizeToCandidate(consumedKeySize, &seg.Candidates[i])
	}
	for i := range seg.MetaCandidates {
		maybeSetConsumedKeySizeToCandidate(consumedKeySize, &seg.MetaCandidates[i])
	}
}

// FinishConversion emits usage counters, promotes SUBMITTED segments to
// FIXED_VALUE, completes POS ids, notifies collaborators, evicts
// overflowing history, and marks every remaining segment HISTORY.
func (c *Converter) FinishConversion(req request.Request, segments *segment.Segments) {
	c.commitUsageStats(segments, segments.HistorySegmentsSize(), segments.ConversionSegmentsSize())

	all := segments.All()
	for i := range all {
		seg := &all[i]
		if seg.Type == segment.Submitted {
			seg.Type = segment.FixedValue
		}
		if seg.CandidatesSize() > 0 {
			c.completePosIds(&seg.Candidates[0])
		}
	}

	segments.ClearRevertEntries()
	c.rewriter.Finish(req, segments)
	c.predictor.Finish(req, segments)

	startIndex := segments.SegmentsSize() - segments.MaxHistorySegmentsSize()
	for i := 0; i < startIndex; i++ {
		segments.PopFrontSegment()
	}

	segments.PromoteAllToHistory()
}

// CancelConversion clears the conversion suffix only, keeping history.
func (c *Converter) CancelConversion(segments *segment.Segments) {
	segments.ClearConversionSegments()
}

// ResetConversion clears everything, including history.
func (c *Converter) ResetConversion(segments *segment.Segments) {
	segments.Clear()
}

// RevertConversion propagates Revert to Rewriter and Predictor if there
// are any recorded revert entries, then clears them. No-op otherwise.
func (c *Converter) RevertConversion(segments *segment.Segments) {
	if len(segments.RevertEntries()) == 0 {
		return
	}
	c.rewriter.Revert(segments)
	c.predictor.Revert(segments)
	segments.ClearRevertEntries()
}

// DeleteCandidateFromHistory forwards to both Rewriter and Predictor and
// returns the OR of their success flags.
func (c *Converter) DeleteCandidateFromHistory(segments *segment.Segments, segmentIndex, candidateIndex int) bool {
	if segmentIndex < 0 || segmentIndex >= segments.SegmentsSize() {
		return false
	}
	seg := segments.Segment(segmentIndex)
	if !seg.IsValidIndex(candidateIndex) {
		return false
	}
	cand := seg.Candidate(candidateIndex)

	result := c.rewriter.ClearHistoryEntry(segments, segmentIndex, candidateIndex)
	result = c.predictor.ClearHistoryEntry(cand.Key, cand.Value) || result
	return result
}

// ReconstructHistory clears segments and delegates to the History
// Reconstructor facade.
func (c *Converter) ReconstructHistory(segments *segment.Segments, precedingText string) bool {
	segments.Clear()
	return c.historyReconstruct.ReconstructHistory(precedingText, segments)
}

// commitSegmentValueInternal translates segmentIndex from
// conversion-relative to absolute, validates candidateIndex, sets the
// segment's type, moves the selected candidate to index 0, and marks
// RERANKED if it was not already there. Returns the absolute index and
// whether the commit succeeded.
func (c *Converter) commitSegmentValueInternal(segments *segment.Segments, segmentIndex, candidateIndex int, segType segment.Type) (int, bool) {
	abs, ok := segments.AbsoluteIndex(segmentIndex)
	if !ok {
		return 0, false
	}

	seg := segments.Segment(abs)
	if candidateIndex < -numT13nTypes || candidateIndex >= seg.CandidatesSize() {
		return 0, false
	}

	seg.Type = segType
	seg.MoveCandidate(candidateIndex, 0)
	if candidateIndex != 0 {
		seg.Candidates[0].Attributes |= segment.Reranked
	}

	segments.AddRevertEntry(segment.RevertEntry{ID: uuid.New(), SegmentsSizeAtCommit: segments.SegmentsSize()})

	return abs, true
}

// CommitSegmentValue commits candidateIndex as the value for the
// conversion-relative segment segmentIndex, typing it FIXED_VALUE.
func (c *Converter) CommitSegmentValue(segments *segment.Segments, segmentIndex, candidateIndex int) bool {
	_, ok := c.commitSegmentValueInternal(segments, segmentIndex, candidateIndex, segment.FixedValue)
	return ok
}

// CommitPartialSuggestionSegmentValue commits candidateIndex as
// SUBMITTED, rewrites the committed segment's key to currentKey, and
// inserts a fresh FREE segment after it holding newKey.
func (c *Converter) CommitPartialSuggestionSegmentValue(segments *segment.Segments, segmentIndex, candidateIndex int, currentKey, newKey string) bool {
	if segments.ConversionSegmentsSize() == 0 {
		return false
	}

	abs, ok := c.commitSegmentValueInternal(segments, segmentIndex, candidateIndex, segment.Submitted)
	if !ok {
		return false
	}
	c.commitUsageStats(segments, abs, 1)

	seg := segments.Segment(abs)
	submitted := seg.Candidates[0]
	autoPartialSuggestion := segment.CharLen(submitted.Key) != segment.CharLen(seg.Key)
	seg.Key = currentKey

	newSeg := segments.InsertSegment(abs + 1)
	newSeg.Key = newKey
	newSeg.Type = segment.Free

	if autoPartialSuggestion {
		c.usageStats.IncrementCount("CommitAutoPartialSuggestion")
	} else {
		c.usageStats.IncrementCount("CommitPartialSuggestion")
	}

	return true
}

// FocusSegmentValue translates segmentIndex and delegates to the
// Rewriter's Focus hook.
func (c *Converter) FocusSegmentValue(segments *segment.Segments, segmentIndex, candidateIndex int) bool {
	abs, ok := segments.AbsoluteIndex(segmentIndex)
	if !ok {
		return false
	}
	return c.rewriter.Focus(segments, abs, candidateIndex)
}

// CommitSegments iteratively commits the first conversion segment with
// each candidate index in order, as SUBMITTED. Because each commit
// shifts the committed segment into the history prefix, the relative
// index used on every iteration is 0. Aborts on the first failure,
// leaving prior commits in place.
func (c *Converter) CommitSegments(segments *segment.Segments, candidateIndices []int) bool {
	begin := segments.HistorySegmentsSize()
	for _, ci := range candidateIndices {
		if _, ok := c.commitSegmentValueInternal(segments, 0, ci, segment.Submitted); !ok {
			return false
		}
		segments.AdvanceHistoryBoundary(1)
	}
	c.commitUsageStats(segments, begin, len(candidateIndices))
	return true
}

// ResizeSegment resizes a single conversion-relative segment by offset
// codepoints and delegates to ResizeSegments.
func (c *Converter) ResizeSegment(segments *segment.Segments, req request.Request, segmentIndex, offset int) bool {
	if req.Type() != request.Conversion {
		return false
	}
	if offset == 0 {
		return false
	}
	if segmentIndex < 0 || segmentIndex >= segments.ConversionSegmentsSize() {
		return false
	}

	key := segments.ConversionSegment(segmentIndex).Key
	if key == "" {
		return false
	}

	keyLen := segment.CharLen(key)
	newSize := keyLen + offset
	if newSize <= 0 || newSize > 255 {
		return false
	}

	return c.ResizeSegments(segments, req, segmentIndex, []int{newSize})
}

// ResizeSegments is the core boundary-repair operation described in
// spec §4.1: it collects the source key across as many segments as
// needed, slices it into the requested sizes, erases the consumed
// segments, inserts FIXED_BOUNDARY replacements, folds any remainder
// into (or before) the following segment, marks the buffer resized, and
// re-runs ApplyConversion.
func (c *Converter) ResizeSegments(segments *segment.Segments, req request.Request, startSegmentIndex int, newSizes []int) bool {
	return c.resizeSegments(segments, req, startSegmentIndex, newSizes, 0)
}

// resizeSegments is ResizeSegments at a given resize-recursion depth.
func (c *Converter) resizeSegments(segments *segment.Segments, req request.Request, startSegmentIndex int, newSizes []int, depth int) bool {
	if req.Type() != request.Conversion {
		return false
	}

	start, ok := segments.AbsoluteIndex(startSegmentIndex)
	if !ok {
		return false
	}

	total := 0
	for _, n := range newSizes {
		total += n
	}
	if total == 0 {
		return false
	}

	var key string
	keyLen := 0
	segmentsConsumed := 0
	all := segments.All()
	for i := start; i < len(all); i++ {
		key += all[i].Key
		keyLen += segment.CharLen(all[i].Key)
		segmentsConsumed++
		if keyLen >= total {
			break
		}
	}

	if keyLen == 0 || keyLen < total {
		return false
	}

	consumed := 0
	var newKeys []string
	for _, size := range newSizes {
		if size != 0 && consumed < keyLen {
			newKeys = append(newKeys, segment.Utf8SubString(key, consumed, size))
			consumed += size
		}
	}

	segments.EraseSegments(start, segmentsConsumed)

	for i, k := range newKeys {
		seg := segments.InsertSegment(start + i)
		seg.Type = segment.FixedBoundary
		seg.Key = k
	}

	if consumed < keyLen {
		remainder := segment.Utf8SubString(key, consumed, keyLen-consumed)
		nextIndex := start + len(newKeys)
		if nextIndex < segments.SegmentsSize() {
			remainder += segments.Segment(nextIndex).Key
			segments.EraseSegment(nextIndex)
		}
		seg := segments.InsertSegment(nextIndex)
		seg.Type = segment.Free
		seg.Key = remainder
	}

	segments.SetResized(true)

	c.applyConversion(segments, req, depth)
	return true
}

// ApplyConversion runs the Immutable Converter, then the Rewrite&Suppress
// pipeline, then Trim. Failure of the immutable stage is non-fatal.
func (c *Converter) ApplyConversion(segments *segment.Segments, req request.Request) {
	c.applyConversion(segments, req, 0)
}

func (c *Converter) applyConversion(segments *segment.Segments, req request.Request, depth int) {
	if !c.immutableConverter.ConvertForRequest(req, segments) {
		c.logger.Debug("immutable converter found no candidates", "key", req.Key())
	}
	c.applyRewriteAndSuppress(req, segments, depth)
	c.trimCandidates(req, segments)
}

// applyRewriteAndSuppress implements the fixed resize -> rewrite ->
// suppress order, re-entering itself (via resizeSegments ->
// applyConversion, with depth+1) at most maxResizeRecursionDepth times.
func (c *Converter) applyRewriteAndSuppress(req request.Request, segments *segment.Segments, depth int) {
	if depth < maxResizeRecursionDepth {
		if resizeReq, ok := c.rewriter.CheckResizeSegmentsRequest(req, segments); ok {
			if c.resizeSegments(segments, req, resizeReq.SegmentIndex, resizeReq.SegmentSizes, depth+1) {
				// ResizeSegments re-entered ApplyConversion, which already
				// rewrote and suppressed the resized buffer.
				return
			}
		}
	}

	if !c.rewriter.Rewrite(req, segments) {
		return
	}

	if c.suppression.IsEmpty() {
		return
	}

	n := segments.ConversionSegmentsSize()
	for i := 0; i < n; i++ {
		seg := segments.ConversionSegment(i)
		j := 0
		for j < seg.CandidatesSize() {
			cand := seg.Candidates[j]
			if c.suppression.SuppressEntry(cand.Key, cand.Value) {
				seg.EraseCandidate(j)
			} else {
				j++
			}
		}
	}
}

// trimCandidates caps each conversion segment's primary candidate list
// to the request's candidates_size_limit, if any. Meta-candidates are
// never trimmed.
func (c *Converter) trimCandidates(req request.Request, segments *segment.Segments) {
	limit, ok := req.CandidatesSizeLimit()
	if !ok {
		return
	}

	n := segments.ConversionSegmentsSize()
	for i := 0; i < n; i++ {
		seg := segments.ConversionSegment(i)
		candidatesSize := seg.CandidatesSize()
		candidatesLimit := limit - seg.MetaCandidatesSize()
		if candidatesLimit < 1 {
			candidatesLimit = 1
		}
		if candidatesSize < candidatesLimit {
			continue
		}
		seg.EraseCandidates(candidatesLimit, candidatesSize-candidatesLimit)
	}
}

// commitUsageStats emits the counters described in spec §4.3 for the
// segmentLength segments starting at beginSegmentIndex (an absolute
// index). Logs an error and emits nothing if the range overflows the
// buffer (an invariant violation per spec §7).
func (c *Converter) commitUsageStats(segments *segment.Segments, beginSegmentIndex, segmentLength int) {
	if segmentLength == 0 {
		return
	}
	if beginSegmentIndex+segmentLength > segments.SegmentsSize() {
		c.logger.Error("invalid usage-stats range",
			"segments_size", segments.SegmentsSize(),
			"required_size", beginSegmentIndex+segmentLength)
		return
	}

	all := segments.All()
	var submittedTotalLength int64
	for i := beginSegmentIndex; i < beginSegmentIndex+segmentLength; i++ {
		seg := &all[i]
		length := int64(0)
		if seg.CandidatesSize() > 0 {
			length = int64(segment.CharLen(seg.Candidates[0].Value))
		}
		c.usageStats.UpdateTiming("SubmittedSegmentLengthx1000", length*1000)
		submittedTotalLength += length
	}

	c.usageStats.UpdateTiming("SubmittedLengthx1000", submittedTotalLength*1000)
	c.usageStats.UpdateTiming("SubmittedSegmentNumberx1000", int64(segmentLength)*1000)
	c.usageStats.IncrementCountBy("SubmittedTotalLength", submittedTotalLength)
}

// Reload reloads internal collaborator data (e.g. user dictionary).
func (c *Converter) Reload() bool {
	return c.rewriter.Reload() && c.predictor.Reload()
}

// Sync synchronizes internal collaborator data.
func (c *Converter) Sync() bool {
	return c.rewriter.Sync() && c.predictor.Sync()
}

// Wait blocks until background reloaders/workers quiesce.
func (c *Converter) Wait() bool {
	return c.predictor.Wait()
}
