// -- cmd/scan.go --
package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/advisor"
	"github.com/emelas-tomoro/llm-linter/internal/config"
	"github.com/emelas-tomoro/llm-linter/internal/index"
	"github.com/emelas-tomoro/llm-linter/internal/observability"
	"github.com/emelas-tomoro/llm-linter/internal/orchestrator"
	"github.com/emelas-tomoro/llm-linter/internal/reporting"
	"github.com/emelas-tomoro/llm-linter/internal/rules"
	"github.com/emelas-tomoro/llm-linter/internal/snippet"
)

var (
	outputFormat string
	outputPath   string
	outputIndent int
	noAdvisor    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [repo-path]",
	Short: "Run every heuristic scanner against a repository and emit a consolidated report.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().String("subpath", "", "restrict the scan to a subdirectory of the repository")
	scanCmd.Flags().StringSlice("exclude", nil, "additional directory names to exclude")
	scanCmd.Flags().Int("max-issues", 0, "cap on findings per scanner (0 uses the configured default)")
	scanCmd.Flags().Int("dup-max-issues", 0, "cap on duplication findings (0 uses the configured default)")
	scanCmd.Flags().Bool("include-index-sample", false, "include a sampled file list in the index summary")
	scanCmd.Flags().Int("sample-limit", 0, "max sampled file paths (0 uses the configured default)")
	scanCmd.Flags().String("rules-path", "", "directory of .md/.txt best-practice files forwarded to the advisor")
	scanCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json or human)")
	scanCmd.Flags().StringVarP(&outputPath, "out", "o", "", "write output to a file (prints to stdout if omitted)")
	scanCmd.Flags().IntVar(&outputIndent, "indent", 2, "JSON indent (when --format=json)")
	scanCmd.Flags().BoolVar(&noAdvisor, "no-advisor", false, "skip the LLM recommendation stage")

	viper.BindPFlag("scan.target_subpath", scanCmd.Flags().Lookup("subpath"))
	viper.BindPFlag("scan.exclude_dirs", scanCmd.Flags().Lookup("exclude"))
	viper.BindPFlag("scan.max_issues_per_scanner", scanCmd.Flags().Lookup("max-issues"))
	viper.BindPFlag("scan.duplication_max_issues", scanCmd.Flags().Lookup("dup-max-issues"))
	viper.BindPFlag("scan.include_index_sample", scanCmd.Flags().Lookup("include-index-sample"))
	viper.BindPFlag("scan.index_sample_limit", scanCmd.Flags().Lookup("sample-limit"))
	viper.BindPFlag("scan.rules_path", scanCmd.Flags().Lookup("rules-path"))

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := observability.GetLogger()

	cfg, err := config.NewConfigFromViper(viper.GetViper())
	if err != nil {
		return err
	}
	cfg.Scan.RepoPath = args[0]

	sc := cfg.ScanContext()
	rulesText := rules.Load(cfg.Scan.RulesPath)

	opts := []orchestrator.Option{}
	if adv := buildAdvisor(cfg, sc, logger); adv != nil {
		opts = append(opts, orchestrator.WithAdvisor(adv, cfg.Advisor.MaxFindings))
	}
	engine := orchestrator.New(logger, opts...)

	result, err := engine.Run(cmd.Context(), sc, rulesText)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	report := &schemas.Report{
		ScanID:      uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Summary:     result.Summary,
		Issues:      result.Findings,
	}

	return writeReport(report)
}

// buildAdvisor returns nil when the advisory stage is disabled or cannot be
// constructed; a scan without recommendations is still a valid scan.
func buildAdvisor(cfg *config.Config, sc schemas.ScanContext, logger *zap.Logger) schemas.Advisor {
	if noAdvisor || !cfg.Advisor.Enabled {
		return nil
	}
	if cfg.Advisor.APIKey == "" {
		logger.Warn("LLM_LINTER_ADVISOR_API_KEY is not set; skipping the recommendation stage")
		return nil
	}
	adv, err := advisor.NewGeminiAdvisor(cfg.Advisor, logger)
	if err != nil {
		logger.Warn("Failed to initialize advisor; continuing without recommendations", zap.Error(err))
		return nil
	}
	if root, err := index.ResolveRoot(sc.RepoRoot, ""); err == nil {
		adv.WithSnippets(snippet.NewReader(root))
	}
	return adv
}

func writeReport(report *schemas.Report) error {
	reporter, err := reporting.New(outputFormat, outputPath, outputIndent)
	if err != nil {
		return err
	}
	defer reporter.Close()
	return reporter.Write(report)
}
