package toydict

import (
	"testing"

	"github.com/sousuke0422/mozcgo/request"
	"github.com/sousuke0422/mozcgo/segment"
)

func testFixture() Fixture {
	return Fixture{
		GeneralNounID: 1,
		NumberID:      2,
		UniqueNounID:  3,
		Entries: []Entry{
			{Key: "あ", Value: "亜", LID: 1, RID: 1, Cost: 100},
			{Key: "い", Value: "胃", LID: 1, RID: 1, Cost: 120},
			{Key: "あい", Value: "愛", LID: 1, RID: 1, Cost: 90},
			{Key: "あい", Value: "相", LID: 1, RID: 1, Cost: 200},
		},
		Suppressed: []Entry{{Key: "う", Value: "鵜"}},
	}
}

func TestConvertForRequestExactMatch(t *testing.T) {
	d := New(testFixture())
	segs := segment.New()
	seg := segs.AddSegment()
	seg.Key = "あい"

	req := request.NewBuilder().WithOptions(request.Options{Type: request.Conversion, Key: "あい"}).Build()
	if !d.ConvertForRequest(req, segs) {
		t.Fatal("expected candidates for あい")
	}
	if got := seg.CandidatesSize(); got != 2 {
		t.Fatalf("CandidatesSize() = %d, want 2", got)
	}
	if seg.Candidates[0].Value != "愛" {
		t.Fatalf("Candidates[0].Value = %q, want 愛", seg.Candidates[0].Value)
	}
}

func TestConvertForRequestIdentityFallback(t *testing.T) {
	d := New(testFixture())
	segs := segment.New()
	seg := segs.AddSegment()
	seg.Key = "ぞ"

	req := request.NewBuilder().WithOptions(request.Options{Type: request.Conversion, Key: "ぞ"}).Build()
	d.ConvertForRequest(req, segs)

	if got := seg.CandidatesSize(); got != 1 {
		t.Fatalf("CandidatesSize() = %d, want 1 (identity fallback)", got)
	}
	if seg.Candidates[0].Value != "ぞ" {
		t.Fatalf("Candidates[0].Value = %q, want ぞ", seg.Candidates[0].Value)
	}
}

func TestSuppressionDictionary(t *testing.T) {
	d := New(testFixture())
	if d.IsEmpty() {
		t.Fatal("expected non-empty suppression dictionary")
	}
	if !d.SuppressEntry("う", "鵜") {
		t.Fatal("expected う/鵜 to be suppressed")
	}
	if d.SuppressEntry("あ", "亜") {
		t.Fatal("did not expect あ/亜 to be suppressed")
	}
}

func TestPredictorPrefixMatch(t *testing.T) {
	d := New(testFixture())
	p := NewPredictor(d)
	segs := segment.New()
	segs.AddSegment().Key = "あ"

	req := request.NewBuilder().WithOptions(request.Options{Type: request.Prediction, Key: "あ"}).Build()
	if !p.PredictForRequest(req, segs) {
		t.Fatal("expected prediction candidates for prefix あ")
	}
	seg := segs.ConversionSegment(0)
	if seg.CandidatesSize() != 3 {
		t.Fatalf("CandidatesSize() = %d, want 3 (あ, あい x2)", seg.CandidatesSize())
	}
	// longest-key-first: あい candidates should precede あ's own candidate.
	if seg.Candidates[0].Key != "あい" {
		t.Fatalf("Candidates[0].Key = %q, want あい first", seg.Candidates[0].Key)
	}
}

func TestPOSMatcherDefaults(t *testing.T) {
	d := New(Fixture{})
	if d.GetGeneralNounId() != 1 || d.GetNumberId() != 2 || d.GetUniqueNounId() != 3 {
		t.Fatalf("unexpected POS defaults: general=%d number=%d unique=%d",
			d.GetGeneralNounId(), d.GetNumberId(), d.GetUniqueNounId())
	}
}
