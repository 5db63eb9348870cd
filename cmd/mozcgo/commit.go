package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	commitSegmentIndex int
	commitCandidate    int
	commitAll          string
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit a single segment/candidate pair, or --all a comma-separated list of candidate indices",
	RunE:  runCommit,
}

func init() {
	commitCmd.Flags().IntVar(&commitSegmentIndex, "segment", 0, "conversion-relative segment index")
	commitCmd.Flags().IntVar(&commitCandidate, "candidate", 0, "candidate index to commit")
	commitCmd.Flags().StringVar(&commitAll, "all", "", "comma-separated candidate indices; commits segments 0,1,2,... in order via CommitSegments")
}

func runCommit(cmd *cobra.Command, args []string) error {
	conv, store, cfg, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	segs, err := loadSession(store, cfg)
	if err != nil {
		return err
	}

	var ok bool
	if commitAll != "" {
		indices, perr := parseSizes(commitAll)
		if perr != nil {
			return perr
		}
		ok = conv.CommitSegments(segs, indices)
	} else {
		ok = conv.CommitSegmentValue(segs, commitSegmentIndex, commitCandidate)
	}
	if !ok {
		return fmt.Errorf("commit failed")
	}

	if err := store.Save(segs); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	printSegments(segs)
	return nil
}

var partialKeyNew, partialKeyCurrent string

var partialCommitCmd = &cobra.Command{
	Use:   "commit-partial",
	Short: "Commit a partial suggestion, splitting the segment at --current-key/--new-key",
	RunE:  runCommitPartial,
}

func init() {
	partialCommitCmd.Flags().IntVar(&commitSegmentIndex, "segment", 0, "conversion-relative segment index")
	partialCommitCmd.Flags().IntVar(&commitCandidate, "candidate", 0, "candidate index to commit")
	partialCommitCmd.Flags().StringVar(&partialKeyCurrent, "current-key", "", "committed segment's rewritten key (required)")
	partialCommitCmd.Flags().StringVar(&partialKeyNew, "new-key", "", "new trailing segment's key (required)")
	_ = partialCommitCmd.MarkFlagRequired("current-key")
	_ = partialCommitCmd.MarkFlagRequired("new-key")
	rootCmd.AddCommand(partialCommitCmd)
}

func runCommitPartial(cmd *cobra.Command, args []string) error {
	conv, store, cfg, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	segs, err := loadSession(store, cfg)
	if err != nil {
		return err
	}

	if !conv.CommitPartialSuggestionSegmentValue(segs, commitSegmentIndex, commitCandidate, partialKeyCurrent, partialKeyNew) {
		return fmt.Errorf("partial commit failed")
	}

	if err := store.Save(segs); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	printSegments(segs)
	return nil
}
