package segment

// DefaultMaxHistorySegmentsSize is the default cap on retained history
// segments; the converter pins the cap back to this value whenever it
// installs a new key (StartConversion, and StartPrediction on a key
// change).
const DefaultMaxHistorySegmentsSize = 4

// Segments is the mutable buffer the orchestrator operates on: a history
// prefix (segments already committed and retained as context) followed
// by a conversion suffix (segments currently being edited).
//
// The boundary between the two regions is tracked explicitly rather
// than inferred from Segment.Type: a SUBMITTED segment produced by
// CommitPartialSuggestionSegmentValue or a FIXED_VALUE segment produced
// by a plain CommitSegmentValue stays part of the conversion suffix (it can still be resized,
// refocused, or re-edited before FinishConversion), while CommitSegments
// advances the boundary itself, one segment per successful sub-commit,
// matching spec's note that each of its commits "shifts the first
// conversion segment into the history prefix".
type Segments struct {
	segments               []Segment
	historyBoundary        int
	maxHistorySegmentsSize int
	resized                bool
	revertEntries          []RevertEntry
}

// New returns an empty Segments buffer with the default history cap.
func New() *Segments {
	return &Segments{maxHistorySegmentsSize: DefaultMaxHistorySegmentsSize}
}

// FromSnapshot reconstructs a Segments buffer from a previously saved
// snapshot (see sessionstore), restoring the history boundary and
// revert entries alongside the segment slice itself.
func FromSnapshot(segments []Segment, historyBoundary, maxHistorySegmentsSize int, resized bool, revertEntries []RevertEntry) *Segments {
	if maxHistorySegmentsSize == 0 {
		maxHistorySegmentsSize = DefaultMaxHistorySegmentsSize
	}
	return &Segments{
		segments:               segments,
		historyBoundary:        historyBoundary,
		maxHistorySegmentsSize: maxHistorySegmentsSize,
		resized:                resized,
		revertEntries:          revertEntries,
	}
}

// SegmentsSize returns the total number of segments (history + conversion).
func (s *Segments) SegmentsSize() int { return len(s.segments) }

// MaxHistorySegmentsSize returns the configured history retention cap.
func (s *Segments) MaxHistorySegmentsSize() int { return s.maxHistorySegmentsSize }

// SetMaxHistorySegmentsSize sets the history retention cap.
func (s *Segments) SetMaxHistorySegmentsSize(n int) { s.maxHistorySegmentsSize = n }

// Resized reports whether ResizeSegments has pinned boundaries on this
// buffer since it was last cleared.
func (s *Segments) Resized() bool { return s.resized }

// SetResized sets the resized flag.
func (s *Segments) SetResized(v bool) { s.resized = v }

// HistorySegmentsSize returns the number of segments in the history
// prefix.
func (s *Segments) HistorySegmentsSize() int { return s.historyBoundary }

// ConversionSegmentsSize returns the number of segments in the
// conversion suffix.
func (s *Segments) ConversionSegmentsSize() int {
	return len(s.segments) - s.historyBoundary
}

// AdvanceHistoryBoundary grows the history prefix by n segments,
// pulling them from the front of the conversion suffix. Used only by
// CommitSegments, whose per-iteration commits are specified to shift
// the committed segment into the history prefix immediately (unlike
// CommitSegmentValue / CommitPartialSuggestionSegmentValue, which leave
// their SUBMITTED/FIXED_VALUE segment in the conversion suffix).
func (s *Segments) AdvanceHistoryBoundary(n int) {
	s.historyBoundary += n
	if s.historyBoundary > len(s.segments) {
		s.historyBoundary = len(s.segments)
	}
}

// Segment returns a pointer to the segment at the given absolute index.
func (s *Segments) Segment(i int) *Segment {
	if i < 0 || i >= len(s.segments) {
		return nil
	}
	return &s.segments[i]
}

// ConversionSegment returns a pointer to the i-th conversion segment
// (relative to the conversion suffix).
func (s *Segments) ConversionSegment(i int) *Segment {
	return s.Segment(s.historyBoundary + i)
}

// AbsoluteIndex translates a conversion-relative index into an absolute
// index, returning ok=false if it is negative (it would land in the
// history prefix) or would overflow the buffer. This is the
// single centralized translation point spec §9 calls for.
func (s *Segments) AbsoluteIndex(conversionRelative int) (idx int, ok bool) {
	idx = s.historyBoundary + conversionRelative
	if conversionRelative < 0 || idx >= len(s.segments) {
		return 0, false
	}
	return idx, true
}

// AddSegment appends a new empty segment and returns a pointer to it.
func (s *Segments) AddSegment() *Segment {
	s.segments = append(s.segments, Segment{})
	return &s.segments[len(s.segments)-1]
}

// InsertSegment inserts a new empty segment at absolute index i and
// returns a pointer to it. Inserting before the history boundary grows
// the boundary so history segments stay history; inserting exactly at the
// boundary adds a new first conversion segment.
func (s *Segments) InsertSegment(i int) *Segment {
	if i < 0 {
		i = 0
	}
	if i > len(s.segments) {
		i = len(s.segments)
	}
	s.segments = append(s.segments, Segment{})
	copy(s.segments[i+1:], s.segments[i:])
	s.segments[i] = Segment{}
	if i < s.historyBoundary {
		s.historyBoundary++
	}
	return &s.segments[i]
}

// EraseSegment removes the segment at absolute index i.
func (s *Segments) EraseSegment(i int) {
	s.EraseSegments(i, 1)
}

// EraseSegments removes n segments starting at absolute index start.
func (s *Segments) EraseSegments(start, n int) {
	if start < 0 || n <= 0 {
		return
	}
	end := start + n
	if end > len(s.segments) {
		end = len(s.segments)
	}
	if start >= end {
		return
	}
	removedFromHistory := 0
	if start < s.historyBoundary {
		removedFromHistory = s.historyBoundary - start
		if removedFromHistory > end-start {
			removedFromHistory = end - start
		}
	}
	s.segments = append(s.segments[:start], s.segments[end:]...)
	s.historyBoundary -= removedFromHistory
}

// PopFrontSegment removes the first segment, if any.
func (s *Segments) PopFrontSegment() {
	if len(s.segments) == 0 {
		return
	}
	s.segments = s.segments[1:]
	if s.historyBoundary > 0 {
		s.historyBoundary--
	}
}

// ClearConversionSegments removes every segment in the conversion suffix,
// keeping the history prefix intact.
func (s *Segments) ClearConversionSegments() {
	s.segments = s.segments[:s.historyBoundary]
	s.resized = false
}

// Clear removes every segment and all revert entries.
func (s *Segments) Clear() {
	s.segments = nil
	s.historyBoundary = 0
	s.resized = false
	s.revertEntries = nil
}

// PromoteAllToHistory marks every remaining segment HISTORY and sets the
// history boundary to the full buffer length. Called by FinishConversion
// after evicting overflow segments.
func (s *Segments) PromoteAllToHistory() {
	for i := range s.segments {
		s.segments[i].Type = History
	}
	s.historyBoundary = len(s.segments)
}

// All returns every segment, history then conversion, in order.
func (s *Segments) All() []Segment {
	return s.segments
}

// RevertEntries returns the recorded revert entries.
func (s *Segments) RevertEntries() []RevertEntry {
	return s.revertEntries
}

// AddRevertEntry appends a revert entry.
func (s *Segments) AddRevertEntry(e RevertEntry) {
	s.revertEntries = append(s.revertEntries, e)
}

// ClearRevertEntries discards all recorded revert entries.
func (s *Segments) ClearRevertEntries() {
	s.revertEntries = nil
}
