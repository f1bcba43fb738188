// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Scan    ScanConfig    `mapstructure:"scan" yaml:"scan"`
	Advisor AdvisorConfig `mapstructure:"advisor" yaml:"advisor"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// ScanConfig collects the per-run scan settings. RepoPath and TargetSubpath
// come from CLI arguments; everything else can also be set from the config
// file or LLM_LINTER_* environment variables.
type ScanConfig struct {
	RepoPath      string `mapstructure:"repo_path" yaml:"repo_path"`
	TargetSubpath string `mapstructure:"target_subpath" yaml:"target_subpath"`

	ExcludeDirs []string `mapstructure:"exclude_dirs" yaml:"exclude_dirs"`

	MaxIssuesPerScanner  int `mapstructure:"max_issues_per_scanner" yaml:"max_issues_per_scanner"`
	DuplicationMaxIssues int `mapstructure:"duplication_max_issues" yaml:"duplication_max_issues"`

	IncludeIndexSample bool `mapstructure:"include_index_sample" yaml:"include_index_sample"`
	IndexSampleLimit   int  `mapstructure:"index_sample_limit" yaml:"index_sample_limit"`

	// RulesPath is a directory of .md/.txt guideline files handed verbatim
	// to the advisor. The scanners themselves never read it.
	RulesPath string `mapstructure:"rules_path" yaml:"rules_path"`

	Thresholds schemas.Thresholds `mapstructure:"thresholds" yaml:"thresholds"`
}

// AdvisorConfig configures the remediation advisor (Gemini HTTP client).
type AdvisorConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Model   string `mapstructure:"model" yaml:"model"`
	// APIKey is read from LLM_LINTER_ADVISOR_API_KEY and never written back
	// to configuration files.
	APIKey   string `mapstructure:"api_key" yaml:"-"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`

	// MaxFindings bounds how many top-ranked findings are forwarded for
	// enrichment.
	MaxFindings int `mapstructure:"max_findings" yaml:"max_findings"`

	// RateLimit is requests per second; Burst is the limiter bucket size.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst     int     `mapstructure:"burst" yaml:"burst"`
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "llm-linter")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Scan --
	v.SetDefault("scan.exclude_dirs", []string{})
	v.SetDefault("scan.max_issues_per_scanner", 300)
	v.SetDefault("scan.duplication_max_issues", 200)
	v.SetDefault("scan.include_index_sample", false)
	v.SetDefault("scan.index_sample_limit", 200)
	v.SetDefault("scan.thresholds.max_file_lines", 1000)
	v.SetDefault("scan.thresholds.max_class_lines", 400)
	v.SetDefault("scan.thresholds.max_func_lines", 50)
	v.SetDefault("scan.thresholds.shingle_lines", 5)
	v.SetDefault("scan.thresholds.min_occurrences", 2)
	v.SetDefault("scan.thresholds.large_dir_files", 50)
	v.SetDefault("scan.thresholds.comment_density_min_lines", 50)
	v.SetDefault("scan.thresholds.comment_density_pct", 2.0)
	v.SetDefault("scan.thresholds.low_coverage_pct", 10.0)

	// -- Advisor --
	v.SetDefault("advisor.enabled", true)
	v.SetDefault("advisor.model", "gemini-2.5-flash")
	v.SetDefault("advisor.api_timeout", "60s")
	v.SetDefault("advisor.max_tokens", 4096)
	v.SetDefault("advisor.temperature", 0.2)
	v.SetDefault("advisor.max_findings", 100)
	v.SetDefault("advisor.rate_limit", 1.0)
	v.SetDefault("advisor.burst", 1)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("advisor.api_key", "LLM_LINTER_ADVISOR_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Scan.MaxIssuesPerScanner <= 0 {
		return fmt.Errorf("scan.max_issues_per_scanner must be a positive integer")
	}
	if c.Scan.IndexSampleLimit < 0 {
		return fmt.Errorf("scan.index_sample_limit must not be negative")
	}
	if err := c.Advisor.Validate(); err != nil {
		return fmt.Errorf("advisor configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the advisor configuration.
func (a *AdvisorConfig) Validate() error {
	if !a.Enabled {
		return nil
	}
	if a.MaxFindings <= 0 {
		return fmt.Errorf("max_findings must be greater than 0")
	}
	if a.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be a positive number of requests per second")
	}
	return nil
}

// ScanContext assembles the immutable per-run scan context from the resolved
// configuration. Zero thresholds fall back to the documented defaults so a
// partially specified config file still yields a fully usable context.
func (c *Config) ScanContext() schemas.ScanContext {
	th := c.Scan.Thresholds
	def := schemas.DefaultThresholds()
	if th.MaxFileLines <= 0 {
		th.MaxFileLines = def.MaxFileLines
	}
	if th.MaxClassLines <= 0 {
		th.MaxClassLines = def.MaxClassLines
	}
	if th.MaxFuncLines <= 0 {
		th.MaxFuncLines = def.MaxFuncLines
	}
	if th.ShingleLines <= 0 {
		th.ShingleLines = def.ShingleLines
	}
	if th.MinOccurrences <= 0 {
		th.MinOccurrences = def.MinOccurrences
	}
	if th.LargeDirFiles <= 0 {
		th.LargeDirFiles = def.LargeDirFiles
	}
	if th.CommentDensityMinLines <= 0 {
		th.CommentDensityMinLines = def.CommentDensityMinLines
	}
	if th.CommentDensityPct <= 0 {
		th.CommentDensityPct = def.CommentDensityPct
	}
	if th.LowCoveragePct <= 0 {
		th.LowCoveragePct = def.LowCoveragePct
	}

	sampleLimit := c.Scan.IndexSampleLimit
	if sampleLimit == 0 {
		sampleLimit = 200
	}

	return schemas.ScanContext{
		RepoRoot:             c.Scan.RepoPath,
		TargetSubpath:        c.Scan.TargetSubpath,
		ExcludeDirs:          append([]string(nil), c.Scan.ExcludeDirs...),
		MaxIssues:            c.Scan.MaxIssuesPerScanner,
		DuplicationMaxIssues: c.Scan.DuplicationMaxIssues,
		IncludeIndexSample:   c.Scan.IncludeIndexSample,
		IndexSampleLimit:     sampleLimit,
		Thresholds:           th,
	}
}
