package main

import (
	"fmt"

	"github.com/sousuke0422/mozcgo/segment"
)

func printSegments(segs *segment.Segments) {
	historySize := segs.HistorySegmentsSize()
	for i, seg := range segs.All() {
		region := "history"
		if i >= historySize {
			region = "conversion"
		}
		fmt.Printf("[%d] %-10s type=%-14s key=%q\n", i, region, seg.Type, seg.Key)
		for j := 0; j < seg.CandidatesSize(); j++ {
			c := seg.Candidates[j]
			marker := " "
			if j == 0 {
				marker = "*"
			}
			fmt.Printf("      %s %d: %q (lid=%d rid=%d cost=%d)\n", marker, j, c.Value, c.LID, c.RID, c.Cost)
		}
	}
}
