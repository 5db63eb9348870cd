// Package segment defines the data model shared by the conversion
// orchestrator: segments, candidates, and the segments buffer that a
// session mutates across a sequence of Start/Commit/Resize/Finish calls.
package segment

import "github.com/google/uuid"

// Type records how much of a Segment the user has pinned.
type Type int

const (
	// Free segments have not been boundary-pinned or committed.
	Free Type = iota
	// FixedBoundary segments have a user- or rewriter-pinned key length,
	// set by ResizeSegments.
	FixedBoundary
	// FixedValue segments have a committed candidate.
	FixedValue
	// Submitted segments were committed via a multi-segment commit and are
	// waiting to be folded into history on FinishConversion.
	Submitted
	// History segments are retained context from a prior conversion.
	History
)

// String renders the segment type for logging, mirroring the
// DimensionType.String() convention used elsewhere in this codebase.
func (t Type) String() string {
	switch t {
	case Free:
		return "FREE"
	case FixedBoundary:
		return "FIXED_BOUNDARY"
	case FixedValue:
		return "FIXED_VALUE"
	case Submitted:
		return "SUBMITTED"
	case History:
		return "HISTORY"
	default:
		return "UNKNOWN"
	}
}

// Attr is a bitset of candidate attributes.
type Attr uint32

const (
	// PartiallyKeyConsumed marks a candidate that commits only a prefix of
	// its segment's key (partial suggestion/prediction).
	PartiallyKeyConsumed Attr = 1 << iota
	// Reranked marks a candidate that was moved to index 0 by a commit
	// operation after already having a different preferred ordering.
	Reranked
	// NoLearning marks a candidate that must not be fed back into user
	// history (e.g. a history-reconstructor placeholder).
	NoLearning
)

// Candidate is a single ranked conversion choice for a segment.
type Candidate struct {
	Key   string // reading actually consumed by this candidate
	Value string // surface form

	// ContentKey/ContentValue hold the content-word part (without any
	// trailing functional word) of Key/Value, as produced by the decoder and consulted by
	// rewriters that reattach okurigana. This core does not interpret
	// them itself.
	ContentKey   string
	ContentValue string

	LID, RID                  uint16
	Cost, WCost, StructureCost int32

	Attributes Attr

	// ConsumedKeySize is the codepoint count of the key prefix this
	// candidate actually consumes. Valid only when PartiallyKeyConsumed
	// is set.
	ConsumedKeySize int
}

// HasAttr reports whether attr is set.
func (c Candidate) HasAttr(attr Attr) bool {
	return c.Attributes&attr != 0
}

// RevertEntry records that a commit happened, so RevertConversion can
// notify collaborators which specific commit to undo.
type RevertEntry struct {
	ID uuid.UUID
	// SegmentsSizeAtCommit is the total segment count (history +
	// conversion) at the time this entry was recorded.
	SegmentsSizeAtCommit int
}

// Segment is a contiguous region of the user's reading mapped to a
// ranked list of candidate conversions.
type Segment struct {
	Key            string
	Type           Type
	Candidates     []Candidate
	MetaCandidates []Candidate
}

// CandidatesSize returns the number of primary candidates.
func (s *Segment) CandidatesSize() int { return len(s.Candidates) }

// MetaCandidatesSize returns the number of meta-candidates.
func (s *Segment) MetaCandidatesSize() int { return len(s.MetaCandidates) }

// IsValidIndex reports whether c addresses a real candidate or
// meta-candidate: the valid range is [-MetaCandidatesSize, CandidatesSize).
func (s *Segment) IsValidIndex(c int) bool {
	return c >= -s.MetaCandidatesSize() && c < s.CandidatesSize()
}

// Candidate returns the candidate at index c. Negative indices address
// meta-candidates, matching the public addressing convention: -1 is the
// last meta-candidate, -MetaCandidatesSize is the first.
func (s *Segment) Candidate(c int) *Candidate {
	if c >= 0 {
		return &s.Candidates[c]
	}
	idx := s.MetaCandidatesSize() + c
	return &s.MetaCandidates[idx]
}

// PushCandidate appends a primary candidate and returns a pointer to it.
func (s *Segment) PushCandidate(c Candidate) *Candidate {
	s.Candidates = append(s.Candidates, c)
	return &s.Candidates[len(s.Candidates)-1]
}

// MoveCandidate relocates the candidate at index from to index to,
// shifting the candidates between them. Only non-negative indices are
// supported: meta-candidates are never reordered.
func (s *Segment) MoveCandidate(from, to int) {
	if from == to || from < 0 || to < 0 {
		return
	}
	if from >= len(s.Candidates) || to >= len(s.Candidates) {
		return
	}
	moved := s.Candidates[from]
	if from < to {
		copy(s.Candidates[from:to], s.Candidates[from+1:to+1])
	} else {
		copy(s.Candidates[to+1:from+1], s.Candidates[to:from])
	}
	s.Candidates[to] = moved
}

// EraseCandidate removes the candidate at index i.
func (s *Segment) EraseCandidate(i int) {
	if i < 0 || i >= len(s.Candidates) {
		return
	}
	s.Candidates = append(s.Candidates[:i], s.Candidates[i+1:]...)
}

// EraseCandidates removes the n candidates starting at start.
func (s *Segment) EraseCandidates(start, n int) {
	if start < 0 || n <= 0 {
		return
	}
	end := start + n
	if end > len(s.Candidates) {
		end = len(s.Candidates)
	}
	if start >= end {
		return
	}
	s.Candidates = append(s.Candidates[:start], s.Candidates[end:]...)
}

// CharLen returns the number of Unicode codepoints in s.
func CharLen(s string) int {
	return len([]rune(s))
}

// Utf8SubString returns the codepoint substring of s starting at
// codepoint offset start, taking length codepoints.
func Utf8SubString(s string, start, length int) string {
	r := []rune(s)
	if start < 0 {
		start = 0
	}
	if start > len(r) {
		start = len(r)
	}
	end := start + length
	if end > len(r) {
		end = len(r)
	}
	return string(r[start:end])
}
