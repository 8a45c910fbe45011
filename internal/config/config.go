// =============================================================================
// Donation Receipts - Configuration Module
// =============================================================================
//
// This module loads the generator configuration. Settings are layered:
//
//   1. Built-in defaults
//   2. The YAML file (receipts.yaml), if present
//   3. Environment variables (RECEIPTS_*), optionally from a .env file
//   4. Command line flags (applied by the cmd package)
//
// EXAMPLE (receipts.yaml):
//
//   output_dir: spendenbescheinigungen
//   templates:
//     single: 00-spendenbescheinigung.tex
//     collective: 00-sammelbescheinigung.tex
//   locale: de
//   currency: Euro
//   compiler:
//     command: pdflatex
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up when --config is not given.
const DefaultFile = "receipts.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RECEIPTS_"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the generator settings.
type Config struct {
	// OutputDir receives the compiled receipts.
	// Default: "spendenbescheinigungen"
	OutputDir string `yaml:"output_dir"`

	Templates TemplateConfig `yaml:"templates"`
	Ledger    LedgerConfig   `yaml:"ledger"`
	Rows      RowConfig      `yaml:"rows"`
	Compiler  CompilerConfig `yaml:"compiler"`

	// Locale selects the number speller. Default: "de"
	Locale string `yaml:"locale"`

	// Currency is the unit name in words and table rows. Default: "Euro"
	Currency string `yaml:"currency"`

	// KeepIntermediate keeps .tex, .aux and .log files next to the PDFs.
	KeepIntermediate bool `yaml:"keep_intermediate"`

	// Strict makes malformed amounts fail the affected receipt instead of
	// counting as zero.
	Strict bool `yaml:"strict"`

	// Register writes an XML register of issued receipts.
	Register bool `yaml:"register"`

	// SummaryLog writes a text summary into the output directory.
	SummaryLog bool `yaml:"summary_log"`

	// LogLevel: "debug", "info", "warn", "error". Default: "info"
	LogLevel string `yaml:"log_level"`
}

// TemplateConfig names the two receipt templates.
type TemplateConfig struct {
	Single     string `yaml:"single"`
	Collective string `yaml:"collective"`
}

// LedgerConfig describes the input format.
type LedgerConfig struct {
	// Delimiter separates fields. Default: ";"
	Delimiter string `yaml:"delimiter"`
}

// RowConfig fills the fixed columns of consolidated receipt rows.
type RowConfig struct {
	DonationKind string `yaml:"donation_kind"`
	Waiver       string `yaml:"waiver"`
	Separator    string `yaml:"separator"`
}

// CompilerConfig selects the typesetter.
type CompilerConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the YAML file at path and applies defaults and environment
// overrides. A missing file is only an error when required is true.
func Load(path string, required bool) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(cfg, os.LookupEnv)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads environment variables from path without overriding
// variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// DelimiterRune returns the configured delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	switch c.Ledger.Delimiter {
	case "\\t", "tab", "TAB":
		return '\t'
	case "semicolon":
		return ';'
	case "comma":
		return ','
	case "pipe":
		return '|'
	}
	for _, r := range c.Ledger.Delimiter {
		return r
	}
	return ';'
}

// applyEnv overrides settings from RECEIPTS_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(name string, target *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*target = v
		}
	}
	flag := func(name string, target *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*target = b
			}
		}
	}

	str("OUTPUT_DIR", &cfg.OutputDir)
	str("TEMPLATE", &cfg.Templates.Single)
	str("COLLECTIVE_TEMPLATE", &cfg.Templates.Collective)
	str("DELIMITER", &cfg.Ledger.Delimiter)
	str("LOCALE", &cfg.Locale)
	str("CURRENCY", &cfg.Currency)
	str("COMPILER", &cfg.Compiler.Command)
	str("LOG_LEVEL", &cfg.LogLevel)
	flag("KEEP_INTERMEDIATE", &cfg.KeepIntermediate)
	flag("STRICT", &cfg.Strict)
	flag("REGISTER", &cfg.Register)
	flag("SUMMARY_LOG", &cfg.SummaryLog)
}

// applyDefaults sets default values for any unset option.
func applyDefaults(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "spendenbescheinigungen"
	}
	if cfg.Templates.Single == "" {
		cfg.Templates.Single = "00-spendenbescheinigung.tex"
	}
	if cfg.Templates.Collective == "" {
		cfg.Templates.Collective = "00-sammelbescheinigung.tex"
	}
	if cfg.Ledger.Delimiter == "" {
		cfg.Ledger.Delimiter = ";"
	}
	if cfg.Rows.DonationKind == "" {
		cfg.Rows.DonationKind = "Spende"
	}
	if cfg.Rows.Waiver == "" {
		cfg.Rows.Waiver = "Nein"
	}
	if cfg.Rows.Separator == "" {
		cfg.Rows.Separator = "\n"
	}
	if cfg.Compiler.Command == "" {
		cfg.Compiler.Command = "pdflatex"
	}
	if cfg.Locale == "" {
		cfg.Locale = "de"
	}
	if cfg.Currency == "" {
		cfg.Currency = "Euro"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// validate checks settings that defaults cannot repair.
func validate(cfg *Config) error {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	return nil
}
