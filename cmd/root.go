package cmd

import (
	"fmt"
	"os"

	"github.com/agentic-research/seedstamp/api"
	"github.com/agentic-research/seedstamp/internal/config"
	"github.com/agentic-research/seedstamp/internal/rewrite"
	"github.com/agentic-research/seedstamp/internal/writeback"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	rulesPath  string
	dryRun     bool
	noValidate bool
	verbose    bool

	logger *zap.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rulesPath, "rules", "r", "", "Path to a YAML or .hcl rule file (overlays the built-in rules)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Rewrite in memory and report, without writing the file")
	rootCmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip the syntax check of the rewritten file")
}

var rootCmd = &cobra.Command{
	Use:   "seedstamp [file]",
	Short: "Add id and updated_at fields to every record body of a seed script",
	Long: `seedstamp rewrites a seed script so that every upsert/create record body
carries a generated id and an updated_at timestamp. Running it again on an
already stamped file changes nothing.

Without a file argument the seed script named by package.json (prisma.seed)
is used, falling back to prisma/seed.ts.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.DisableStacktrace = true
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := loadRules()
		if err != nil {
			return err
		}
		target, err := resolveTarget(args)
		if err != nil {
			return err
		}

		// 1. Read the whole file; nothing below touches disk until the final write.
		src, err := os.ReadFile(target)
		if err != nil {
			return fmt.Errorf("read %s: %w", target, err)
		}

		// 2. Rewrite in memory
		rw, err := rewrite.New(rs, rewrite.WithLogger(logger))
		if err != nil {
			return err
		}
		res, err := rw.Rewrite(string(src))
		if err != nil {
			return fmt.Errorf("rewrite %s: %w", target, err)
		}

		out := cmd.OutOrStdout()
		if !res.Changed() {
			fmt.Fprintf(out, "%s is already stamped, nothing to do.\n", target)
			return nil
		}

		// 3. Guard and normalise the result
		updated := []byte(res.Text)
		if !noValidate {
			if err := writeback.CheckRewrite(src, updated, target); err != nil {
				return err
			}
		}
		updated = writeback.Format(updated, target)

		summary := fmt.Sprintf("%s to %d record bodies and %s to %d",
			rs.Identifier.Field, res.Identifiers.Injected, rs.Timestamp.Field, res.Timestamps.Injected)
		if dryRun {
			fmt.Fprintf(out, "Dry run: would add %s in %s.\n", summary, target)
			return nil
		}

		// 4. Write the whole file back
		if err := writeback.WriteFile(target, updated); err != nil {
			return err
		}
		logger.Debug("stamped lines",
			zap.Uint32s("identifier_lines", res.Identifiers.Lines.ToArray()),
			zap.Uint32s("timestamp_lines", res.Timestamps.Lines.ToArray()))
		fmt.Fprintf(out, "Added %s in %s.\n", summary, target)
		return nil
	},
}

func loadRules() (*api.RuleSet, error) {
	if rulesPath == "" {
		return config.Default(), nil
	}
	rs, err := config.Load(rulesPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded rules", zap.String("path", rulesPath))
	return rs, nil
}

func resolveTarget(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working dir: %w", err)
	}
	target, origin, err := config.DiscoverTarget(wd)
	if err != nil {
		return "", err
	}
	logger.Debug("resolved target", zap.String("path", target), zap.String("from", origin))
	return target, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
