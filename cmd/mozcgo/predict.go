package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sousuke0422/mozcgo/request"
)

var (
	predictKey    string
	predictType   string
	predictCursor int
	predictLength int
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run StartPrediction for --key (type: prediction, suggestion, partial_prediction, partial_suggestion)",
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictKey, "key", "", "reading to predict from (required)")
	predictCmd.Flags().StringVar(&predictType, "type", "prediction", "prediction, suggestion, partial_prediction, or partial_suggestion")
	predictCmd.Flags().IntVar(&predictCursor, "cursor", 0, "composer cursor (required for partial_* types)")
	predictCmd.Flags().IntVar(&predictLength, "length", 0, "composer composition length (0 means the key's codepoint length)")
	_ = predictCmd.MarkFlagRequired("key")
}

func parsePredictionType(s string) (request.Type, error) {
	switch s {
	case "prediction":
		return request.Prediction, nil
	case "suggestion":
		return request.Suggestion, nil
	case "partial_prediction":
		return request.PartialPrediction, nil
	case "partial_suggestion":
		return request.PartialSuggestion, nil
	default:
		return 0, fmt.Errorf("unknown prediction type %q", s)
	}
}

// fixedComposer is a constant-answer request.Composer, standing in for
// the real keystroke-to-reading front-end this module doesn't carry.
type fixedComposer struct {
	key    string
	cursor int
	length int
}

func (f fixedComposer) GetQueryForConversion() string { return f.key }
func (f fixedComposer) GetQueryForPrediction() string { return f.key }
func (f fixedComposer) GetCursor() int                { return f.cursor }
func (f fixedComposer) GetLength() int                { return f.length }

func runPredict(cmd *cobra.Command, args []string) error {
	reqType, err := parsePredictionType(predictType)
	if err != nil {
		return err
	}

	conv, store, cfg, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	segs, err := loadSession(store, cfg)
	if err != nil {
		return err
	}

	length := predictLength
	if length == 0 {
		length = len([]rune(predictKey))
	}

	req := request.NewBuilder().
		WithOptions(request.Options{Type: reqType}).
		WithComposer(fixedComposer{key: predictKey, cursor: predictCursor, length: length}).
		Build()

	if !conv.StartPrediction(req, segs) {
		return fmt.Errorf("prediction failed for key %q", predictKey)
	}

	if err := store.Save(segs); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	printSegments(segs)
	return nil
}
