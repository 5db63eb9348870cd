package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var revertCmd = &cobra.Command{
	Use:   "revert",
	Short: "Run RevertConversion, undoing the outstanding commits collaborators were notified of",
	RunE:  runRevert,
}

func runRevert(cmd *cobra.Command, args []string) error {
	conv, store, cfg, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	segs, err := loadSession(store, cfg)
	if err != nil {
		return err
	}

	conv.RevertConversion(segs)

	if err := store.Save(segs); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	printSegments(segs)
	return nil
}
