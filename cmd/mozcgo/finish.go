package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sousuke0422/mozcgo/request"
)

var finishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Run FinishConversion: back-fill POS ids, notify collaborators, and fold everything into history",
	RunE:  runFinish,
}

func runFinish(cmd *cobra.Command, args []string) error {
	conv, store, cfg, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	segs, err := loadSession(store, cfg)
	if err != nil {
		return err
	}

	req := request.NewBuilder().WithOptions(request.Options{Type: request.Conversion}).Build()
	conv.FinishConversion(req, segs)

	if err := store.Save(segs); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	printSegments(segs)
	return nil
}
