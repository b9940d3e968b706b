package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/autogram/internal/verify"
)

var verifyTrack string

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [sentence]",
		Short: "Check whether a sentence counts its own characters",
		RunE:  runVerifyCmd,
	}
	cmd.Flags().StringVar(&verifyTrack, "track", "", "characters that must be stated when present")
	return cmd
}

func runVerifyCmd(cmd *cobra.Command, args []string) error {
	sentence := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read sentence: %w", err)
		}
		sentence = string(data)
	}
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return fmt.Errorf("sentence is empty")
	}

	report := verify.Check(sentence, verify.Options{
		PluralSuffix: modelPlural,
		Tracked:      []rune(verifyTrack),
	})
	if err := writeVerifyReport(cmd.OutOrStdout(), report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !report.OK() {
		return fmt.Errorf("not an autogram")
	}
	return nil
}

func writeVerifyReport(w io.Writer, report verify.Report) error {
	if len(report.Stated) == 0 {
		_, err := fmt.Fprintln(w, "No character counts stated.")
		return err
	}
	if report.OK() {
		_, err := fmt.Fprintf(w, "Autogram: all %d stated counts are correct.\n", len(report.Stated))
		return err
	}
	for _, mm := range report.Mismatches {
		var line string
		if mm.Missing {
			line = fmt.Sprintf("%q: not stated, actual %d", mm.Char, mm.Actual)
		} else {
			line = fmt.Sprintf("%q: stated %d, actual %d", mm.Char, mm.Stated, mm.Actual)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
