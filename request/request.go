// Package request models the immutable, composer-derived bundle of
// options the orchestrator consults on every operation: what kind of
// conversion is being asked for, the reading key, and the configured
// limits and flags that shape rewriting and trimming.
package request

// Type identifies what kind of operation the request is for.
type Type int

const (
	Conversion Type = iota
	ReverseConversion
	Prediction
	Suggestion
	PartialPrediction
	PartialSuggestion
)

func (t Type) String() string {
	switch t {
	case Conversion:
		return "CONVERSION"
	case ReverseConversion:
		return "REVERSE_CONVERSION"
	case Prediction:
		return "PREDICTION"
	case Suggestion:
		return "SUGGESTION"
	case PartialPrediction:
		return "PARTIAL_PREDICTION"
	case PartialSuggestion:
		return "PARTIAL_SUGGESTION"
	default:
		return "UNKNOWN"
	}
}

// IsPartial reports whether t is one of the partial prediction/suggestion
// variants, which additionally require a composer cursor strictly inside
// the composition.
func (t Type) IsPartial() bool {
	return t == PartialPrediction || t == PartialSuggestion
}

// KeySelection chooses whether the composer's trailing unresolved romaji
// tail is trimmed before producing the request key.
type KeySelection int

const (
	ConversionKey KeySelection = iota
	PredictionKey
)

// Composer is the minimal view of the keystroke-to-reading front-end the
// Request builder needs. Its full implementation is out of scope for
// this module.
type Composer interface {
	GetQueryForConversion() string
	GetQueryForPrediction() string
	GetCursor() int
	GetLength() int
}

// Request is an immutable bundle of the options the orchestrator needs
// for a single operation.
type Request struct {
	reqType              Type
	composerKeySelection KeySelection
	key                  string

	maxConversionCandidatesSize                      int
	maxUserHistoryPredictionCandidatesSize            int
	maxUserHistoryPredictionCandidatesSizeZeroQuery   int
	maxDictionaryPredictionCandidatesSize             int

	useActualConverterForRealtimeConversion bool
	skipSlowRewriters                       bool
	createPartialCandidates                 bool
	enableUserHistoryForConversion          bool
	kanaModifierInsensitiveConversion       bool
	useAlreadyTypingCorrectedKey            bool

	zeroQuerySuggestion bool
	mixedConversion     bool

	candidatesSizeLimit    int
	hasCandidatesSizeLimit bool

	cursor int
	length int
}

// Type returns the request type.
func (r Request) Type() Type { return r.reqType }

// ComposerKeySelection returns which composer query was used to build
// the key.
func (r Request) ComposerKeySelection() KeySelection { return r.composerKeySelection }

// Key returns the reading text this request converts/predicts for.
func (r Request) Key() string { return r.key }

// Cursor returns the composer cursor position recorded when the request
// was built (meaningful only for partial variants).
func (r Request) Cursor() int { return r.cursor }

// Length returns the composer composition length recorded when the
// request was built.
func (r Request) Length() int { return r.length }

func (r Request) MaxConversionCandidatesSize() int { return r.maxConversionCandidatesSize }
func (r Request) MaxUserHistoryPredictionCandidatesSize() int {
	return r.maxUserHistoryPredictionCandidatesSize
}
func (r Request) MaxUserHistoryPredictionCandidatesSizeForZeroQuery() int {
	return r.maxUserHistoryPredictionCandidatesSizeZeroQuery
}
func (r Request) MaxDictionaryPredictionCandidatesSize() int {
	return r.maxDictionaryPredictionCandidatesSize
}

func (r Request) UseActualConverterForRealtimeConversion() bool {
	return r.useActualConverterForRealtimeConversion
}
func (r Request) SkipSlowRewriters() bool          { return r.skipSlowRewriters }
func (r Request) CreatePartialCandidates() bool    { return r.createPartialCandidates }
func (r Request) EnableUserHistoryForConversion() bool {
	return r.enableUserHistoryForConversion
}
func (r Request) KanaModifierInsensitiveConversion() bool {
	return r.kanaModifierInsensitiveConversion
}
func (r Request) UseAlreadyTypingCorrectedKey() bool {
	return r.useAlreadyTypingCorrectedKey
}

// ZeroQuerySuggestion and MixedConversion jointly identify "mobile" mode
// per spec §4.1 (StartConversion's mobile check in IsValidSegments).
func (r Request) ZeroQuerySuggestion() bool { return r.zeroQuerySuggestion }
func (r Request) MixedConversion() bool     { return r.mixedConversion }

// IsMobile reports whether this request should apply the mobile
// candidate-or-meta-candidate leniency of invariant (2).
func (r Request) IsMobile() bool { return r.zeroQuerySuggestion && r.mixedConversion }

// CandidatesSizeLimit returns the per-request candidate cap and whether
// one was configured at all.
func (r Request) CandidatesSizeLimit() (int, bool) {
	return r.candidatesSizeLimit, r.hasCandidatesSizeLimit
}

// Options configures a Request via NewBuilder(...).WithOptions(Options{...}).
type Options struct {
	Type                 Type
	ComposerKeySelection KeySelection
	Key                  string

	MaxConversionCandidatesSize                      int
	MaxUserHistoryPredictionCandidatesSize            int
	MaxUserHistoryPredictionCandidatesSizeForZeroQuery int
	MaxDictionaryPredictionCandidatesSize             int

	UseActualConverterForRealtimeConversion bool
	SkipSlowRewriters                       bool
	CreatePartialCandidates                 bool
	EnableUserHistoryForConversion          bool
	KanaModifierInsensitiveConversion       bool
	UseAlreadyTypingCorrectedKey            bool

	ZeroQuerySuggestion bool
	MixedConversion     bool

	CandidatesSizeLimit    int
	HasCandidatesSizeLimit bool
}

// Builder assembles a Request from a Composer and explicit Options,
// mirroring the layered option-building nanostore uses for ListOptions.
type Builder struct {
	opts     Options
	composer Composer
}

// NewBuilder returns a Builder seeded with the documented defaults from
// spec §6.
func NewBuilder() *Builder {
	return &Builder{opts: Options{
		MaxConversionCandidatesSize:                        200,
		MaxUserHistoryPredictionCandidatesSize:             3,
		MaxUserHistoryPredictionCandidatesSizeForZeroQuery: 4,
		MaxDictionaryPredictionCandidatesSize:               20,
	}}
}

// WithOptions overlays opts onto the builder's current state: a zero
// candidate-size limit in opts keeps the builder's current value (the
// NewBuilder defaults unless set earlier); every other field is taken
// from opts.
func (b *Builder) WithOptions(opts Options) *Builder {
	prev := b.opts
	b.opts = opts
	if opts.MaxConversionCandidatesSize == 0 {
		b.opts.MaxConversionCandidatesSize = prev.MaxConversionCandidatesSize
	}
	if opts.MaxUserHistoryPredictionCandidatesSize == 0 {
		b.opts.MaxUserHistoryPredictionCandidatesSize = prev.MaxUserHistoryPredictionCandidatesSize
	}
	if opts.MaxUserHistoryPredictionCandidatesSizeForZeroQuery == 0 {
		b.opts.MaxUserHistoryPredictionCandidatesSizeForZeroQuery = prev.MaxUserHistoryPredictionCandidatesSizeForZeroQuery
	}
	if opts.MaxDictionaryPredictionCandidatesSize == 0 {
		b.opts.MaxDictionaryPredictionCandidatesSize = prev.MaxDictionaryPredictionCandidatesSize
	}
	return b
}

// WithComposer attaches a Composer the builder will pull the key and
// cursor from, honoring ComposerKeySelection.
func (b *Builder) WithComposer(c Composer) *Builder {
	b.composer = c
	return b
}

// Build finalizes the Request.
func (b *Builder) Build() Request {
	o := b.opts
	r := Request{
		reqType:              o.Type,
		composerKeySelection: o.ComposerKeySelection,
		key:                  o.Key,

		maxConversionCandidatesSize:                      o.MaxConversionCandidatesSize,
		maxUserHistoryPredictionCandidatesSize:            o.MaxUserHistoryPredictionCandidatesSize,
		maxUserHistoryPredictionCandidatesSizeZeroQuery:   o.MaxUserHistoryPredictionCandidatesSizeForZeroQuery,
		maxDictionaryPredictionCandidatesSize:             o.MaxDictionaryPredictionCandidatesSize,

		useActualConverterForRealtimeConversion: o.UseActualConverterForRealtimeConversion,
		skipSlowRewriters:                       o.SkipSlowRewriters,
		createPartialCandidates:                 o.CreatePartialCandidates,
		enableUserHistoryForConversion:          o.EnableUserHistoryForConversion,
		kanaModifierInsensitiveConversion:       o.KanaModifierInsensitiveConversion,
		useAlreadyTypingCorrectedKey:            o.UseAlreadyTypingCorrectedKey,

		zeroQuerySuggestion: o.ZeroQuerySuggestion,
		mixedConversion:     o.MixedConversion,

		candidatesSizeLimit:    o.CandidatesSizeLimit,
		hasCandidatesSizeLimit: o.HasCandidatesSizeLimit,
	}

	if b.composer != nil {
		r.cursor = b.composer.GetCursor()
		r.length = b.composer.GetLength()
		if r.key == "" {
			switch o.ComposerKeySelection {
			case PredictionKey:
				r.key = b.composer.GetQueryForPrediction()
			default:
				r.key = b.composer.GetQueryForConversion()
			}
		}
	}

	return r
}
