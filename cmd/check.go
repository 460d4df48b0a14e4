package cmd

import (
	"fmt"
	"os"

	"github.com/agentic-research/seedstamp/internal/audit"
	"github.com/agentic-research/seedstamp/internal/rewrite"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Report record bodies that are still missing id or updated_at",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := loadRules()
		if err != nil {
			return err
		}
		target, err := resolveTarget(args)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(target)
		if err != nil {
			return fmt.Errorf("read %s: %w", target, err)
		}

		report, err := audit.Scan(src, target, rs)
		if err != nil {
			return err
		}

		// Compare the syntax tree's view with what the recognizers see.
		rw, err := rewrite.New(rs, rewrite.WithLogger(logger))
		if err != nil {
			return err
		}
		_, stats, err := rw.InjectIdentifiers(string(src))
		if err != nil {
			return err
		}
		matched := 0
		for _, r := range stats.Rules {
			matched += r.Matched
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d record bodies, %d recognized by block rules\n", target, len(report.Bodies), matched)
		missing := report.Missing()
		for _, b := range missing {
			fmt.Fprintf(out, "  %s missing", b)
			if !b.HasIdentifier {
				fmt.Fprintf(out, " %s", rs.Identifier.Field)
			}
			if !b.HasTimestamp {
				fmt.Fprintf(out, " %s", rs.Timestamp.Field)
			}
			fmt.Fprintln(out)
		}
		if len(missing) > 0 {
			return fmt.Errorf("%d of %d record bodies are not fully stamped", len(missing), len(report.Bodies))
		}
		fmt.Fprintln(out, "All record bodies are stamped.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
