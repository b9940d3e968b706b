package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/autogram/internal/autogram"
	"github.com/verte-zerg/autogram/internal/stats"
)

func runModelCmd(cmd *cobra.Command, _ []string) error {
	m, err := buildModel()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	baseline := autogram.Render(m, minimumCounts(m))
	if _, err := fmt.Fprintf(w, "%s\nMinimum sentence: %s\n\n", m, baseline); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return stats.RenderModelTable(w, m)
}

// minimumCounts returns the smallest count every slot can take.
func minimumCounts(m *autogram.Model) []int {
	slots := m.Slots()
	counts := make([]int, len(slots))
	for i, slot := range slots {
		counts[i] = slot.Minimum
	}
	return counts
}
