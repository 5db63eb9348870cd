package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sousuke0422/mozcgo/request"
)

var convertKey string

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Start a fresh conversion for --key, replacing the session's conversion suffix",
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertKey, "key", "", "reading to convert (required)")
	_ = convertCmd.MarkFlagRequired("key")
}

func runConvert(cmd *cobra.Command, args []string) error {
	conv, store, cfg, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	segs, err := loadSession(store, cfg)
	if err != nil {
		return err
	}

	req := request.NewBuilder().WithOptions(request.Options{
		Type: request.Conversion,
		Key:  convertKey,
	}).Build()

	if !conv.StartConversion(req, segs) {
		return fmt.Errorf("conversion failed for key %q", convertKey)
	}

	if err := store.Save(segs); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	printSegments(segs)
	return nil
}
