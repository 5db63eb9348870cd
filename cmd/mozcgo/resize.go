package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sousuke0422/mozcgo/request"
)

var (
	resizeSegmentIndex int
	resizeOffset       int
	resizeSizes        string
)

var resizeCmd = &cobra.Command{
	Use:   "resize",
	Short: "Resize a conversion segment by --offset, or re-pin several segments with --sizes",
	RunE:  runResize,
}

func init() {
	resizeCmd.Flags().IntVar(&resizeSegmentIndex, "segment", 0, "conversion-relative segment index")
	resizeCmd.Flags().IntVar(&resizeOffset, "offset", 0, "codepoint offset for a single-segment resize")
	resizeCmd.Flags().StringVar(&resizeSizes, "sizes", "", "comma-separated sizes for a multi-segment resize, e.g. 1,2")
}

func runResize(cmd *cobra.Command, args []string) error {
	conv, store, cfg, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	segs, err := loadSession(store, cfg)
	if err != nil {
		return err
	}

	req := request.NewBuilder().WithOptions(request.Options{Type: request.Conversion}).Build()

	var ok bool
	if resizeSizes != "" {
		sizes, perr := parseSizes(resizeSizes)
		if perr != nil {
			return perr
		}
		ok = conv.ResizeSegments(segs, req, resizeSegmentIndex, sizes)
	} else {
		ok = conv.ResizeSegment(segs, req, resizeSegmentIndex, resizeOffset)
	}
	if !ok {
		return fmt.Errorf("resize failed")
	}

	if err := store.Save(segs); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	printSegments(segs)
	return nil
}

func parseSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", p, err)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}
