package converter

import (
	"github.com/sousuke0422/mozcgo/request"
	"github.com/sousuke0422/mozcgo/segment"
)

// Geometric candidate-size widening used by completePosIds: try 5 first
// (the overwhelming majority of commits resolve there), then widen by
// 50 until reaching (but not including) 80.
const (
	posExpandSizeStart = 5
	posExpandSizeDiff  = 50
	posExpandSizeMax   = 80
)

// completePosIds back-fills lid/rid (and the cost fields that ride
// along with them) on a directly-typed candidate that never went
// through full conversion. It defaults to the general-noun class, then
// tries to find a matching value by re-decoding the candidate's own key
// in PREDICTION mode with a widening candidate budget.
func (c *Converter) completePosIds(cand *segment.Candidate) {
	if cand.Value == "" || cand.Key == "" {
		return
	}
	if cand.LID != 0 && cand.RID != 0 {
		return
	}

	// General noun is a deliberate, safe default: the unknown/"sahen"
	// class tends to produce spurious "する"/"して" attachments.
	cand.LID = c.generalNounID
	cand.RID = c.generalNounID

	for size := posExpandSizeStart; size < posExpandSizeMax; size += posExpandSizeDiff {
		probe := newProbeSegments(cand.Key)
		req := request.NewBuilder().WithOptions(request.Options{
			Type:                        request.Prediction,
			Key:                         cand.Key,
			MaxConversionCandidatesSize: size,
		}).Build()

		if !c.immutableConverter.ConvertForRequest(req, probe) {
			c.logger.Error("immutable converter failed during POS back-fill", "key", cand.Key)
			return
		}

		seg := probe.ConversionSegment(0)
		if seg == nil {
			return
		}
		for i := 0; i < seg.CandidatesSize(); i++ {
			ref := seg.Candidates[i]
			if ref.Value != cand.Value {
				continue
			}
			cand.LID = ref.LID
			cand.RID = ref.RID
			cand.Cost = ref.Cost
			cand.WCost = ref.WCost
			cand.StructureCost = ref.StructureCost
			return
		}
	}
}

// newProbeSegments builds a throwaway single-segment buffer keyed on
// key, mirroring the SetKey helper used by StartConversion/StartPrediction.
func newProbeSegments(key string) *segment.Segments {
	s := segment.New()
	seg := s.AddSegment()
	seg.Key = key
	seg.Type = segment.Free
	return s
}
