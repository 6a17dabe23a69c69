// =============================================================================
// Accurate XML Converter - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Settings come from three
// layers, later layers winning:
//
//   1. config.yaml (optional when the default path is used)
//   2. .env file and process environment (ACCURATE_* variables)
//   3. built-in defaults for anything still unset
//
// The loaded configuration is validated before it is handed to the
// converter, the HTTP server or the CLI commands.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no --config flag is given. A missing file at
// this path is not an error.
const DefaultConfigPath = "config.yaml"

// Transaction date sources.
const (
	DateSourceColumn = "column"
	DateSourceFixed  = "fixed"
)

// DateLayout is the format of configured and generated transaction dates.
const DateLayout = "2006-01-02"

// Environment variables that override the file configuration.
const (
	EnvLogLevel        = "ACCURATE_LOG_LEVEL"
	EnvLogFormat       = "ACCURATE_LOG_FORMAT"
	EnvOutputDir       = "ACCURATE_OUTPUT_DIR"
	EnvServerAddr      = "ACCURATE_SERVER_ADDR"
	EnvMaxUploadMB     = "ACCURATE_MAX_UPLOAD_MB"
	EnvTransactionDate = "ACCURATE_TRANSACTION_DATE"
	EnvDateSource      = "ACCURATE_DATE_SOURCE"
	EnvSheetName       = "ACCURATE_SHEET_NAME"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	// OutputDir receives generated XML files and validation error logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// OutputNameFormat names generated files. Placeholders:
	//   {name}      - the category file stem (pembayaran_accurate / penerimaan_accurate)
	//   {category}  - the category label in lower case
	//   {uuid}      - a random UUID
	//   {timestamp} - current time as YYYYMMDD_HHMMSS
	//   {date}      - current date as YYYYMMDD
	// Default: "{name}.xml"
	OutputNameFormat string `yaml:"output_name_format"`

	// LogLevel is one of "debug", "info", "warn", "error". Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json". Default: "text"
	LogFormat string `yaml:"log_format"`

	Spreadsheet     SpreadsheetSettings     `yaml:"spreadsheet"`
	CSV             CSVSettings             `yaml:"csv"`
	TransactionDate TransactionDateSettings `yaml:"transaction_date"`
	Server          ServerSettings          `yaml:"server"`

	// Transformations are per-column rewrites applied before validation.
	Transformations []TransformationRule `yaml:"transformations"`
}

// SpreadsheetSettings describes the layout of the input workbook.
type SpreadsheetSettings struct {
	// SheetName selects the sheet to read. Empty means the first sheet.
	SheetName string `yaml:"sheet_name"`

	// StartingIDCell holds the first transaction id. Default: "B1"
	StartingIDCell string `yaml:"starting_id_cell"`

	// HeaderRow is the 1-based row with the column names. Default: 2
	HeaderRow int `yaml:"header_row"`
}

// CSVSettings applies to CSV exports of the same layout.
type CSVSettings struct {
	// Delimiter is a single character. Default: ","
	Delimiter string `yaml:"delimiter"`
}

// TransactionDateSettings controls how TRANSDATE is filled.
type TransactionDateSettings struct {
	// Source is "column" (derive from TANGGAL) or "fixed". Default: "column"
	Source string `yaml:"source"`

	// Fixed is a YYYY-MM-DD date used in fixed mode and as the fallback for
	// rows without a usable TANGGAL. Empty means the conversion date.
	Fixed string `yaml:"fixed"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address. Default: ":8080"
	Addr string `yaml:"addr"`

	// MaxUploadMB bounds multipart uploads. Default: 10
	MaxUploadMB int64 `yaml:"max_upload_mb"`

	// SessionIdleTimeout drops sessions unused for this long, e.g. "12h".
	// Default: 12h
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`

	// AllowedOrigins enables CORS for browser front-ends. Each entry is an
	// http(s) origin or "*". Empty disables CORS handling.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// TransformationRule lists the actions applied to one column, in order.
type TransformationRule struct {
	Column  string                 `yaml:"column"`
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction is a single rewrite step.
//
// Supported types: trim, uppercase, lowercase, prepend_string, append_string,
// pad_zeros_to_length, replace, regex_replace, lookup.
type TransformationAction struct {
	Type string `yaml:"type"`

	// Value is the argument: the string to add, the target length, or the
	// replacement text.
	Value string `yaml:"value"`

	// Find is the substring or pattern for replace and regex_replace.
	Find string `yaml:"find,omitempty"`

	// LookupTable maps input values to output values for lookup.
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load builds the configuration.
//
// PARAMETERS:
//   - configPath: YAML file to read. A missing file is only tolerated for
//     DefaultConfigPath; an empty path skips the file layer entirely.
//   - envPath: optional .env file. Without it a .env in the working
//     directory is loaded when present.
//
// RETURNS:
//   - The validated configuration.
//   - An error if a file cannot be read or parsed, or validation fails.
func Load(configPath string, envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist) && configPath == DefaultConfigPath:
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	cfg.LogLevel = getEnvOrDefault(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault(EnvLogFormat, cfg.LogFormat)
	cfg.OutputDir = getEnvOrDefault(EnvOutputDir, cfg.OutputDir)
	cfg.Server.Addr = getEnvOrDefault(EnvServerAddr, cfg.Server.Addr)
	cfg.TransactionDate.Fixed = getEnvOrDefault(EnvTransactionDate, cfg.TransactionDate.Fixed)
	cfg.TransactionDate.Source = getEnvOrDefault(EnvDateSource, cfg.TransactionDate.Source)
	cfg.Spreadsheet.SheetName = getEnvOrDefault(EnvSheetName, cfg.Spreadsheet.SheetName)

	if v := os.Getenv(EnvMaxUploadMB); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxUploadMB, err)
		}
		cfg.Server.MaxUploadMB = n
	}
	return nil
}

// getEnvOrDefault returns the environment variable or fallback when unset.
func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{name}.xml"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Spreadsheet.StartingIDCell == "" {
		cfg.Spreadsheet.StartingIDCell = "B1"
	}
	if cfg.Spreadsheet.HeaderRow == 0 {
		cfg.Spreadsheet.HeaderRow = 2
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ","
	}
	if cfg.TransactionDate.Source == "" {
		cfg.TransactionDate.Source = DateSourceColumn
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 10
	}
	if cfg.Server.SessionIdleTimeout == 0 {
		cfg.Server.SessionIdleTimeout = 12 * time.Hour
	}
}

// Validate checks the configuration for values the converter cannot use.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q is not one of text, json", c.LogFormat)
	}

	if _, _, err := excelize.CellNameToCoordinates(c.Spreadsheet.StartingIDCell); err != nil {
		return fmt.Errorf("starting_id_cell %q: %w", c.Spreadsheet.StartingIDCell, err)
	}
	if c.Spreadsheet.HeaderRow < 1 {
		return fmt.Errorf("header_row must be at least 1, got %d", c.Spreadsheet.HeaderRow)
	}

	if utf8.RuneCountInString(c.CSV.Delimiter) != 1 {
		return fmt.Errorf("csv delimiter must be a single character, got %q", c.CSV.Delimiter)
	}

	switch c.TransactionDate.Source {
	case DateSourceColumn, DateSourceFixed:
	default:
		return fmt.Errorf("transaction_date.source %q is not one of column, fixed", c.TransactionDate.Source)
	}
	if c.TransactionDate.Fixed != "" {
		if _, err := time.Parse(DateLayout, c.TransactionDate.Fixed); err != nil {
			return fmt.Errorf("transaction_date.fixed %q is not YYYY-MM-DD: %w", c.TransactionDate.Fixed, err)
		}
	}

	if c.Server.MaxUploadMB < 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.SessionIdleTimeout < 0 {
		return fmt.Errorf("server.session_idle_timeout must be positive, got %s", c.Server.SessionIdleTimeout)
	}
	for _, origin := range c.Server.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("server.allowed_origins: %q must be \"*\" or start with http:// or https://", origin)
		}
	}

	for i, rule := range c.Transformations {
		if strings.TrimSpace(rule.Column) == "" {
			return fmt.Errorf("transformations[%d]: column is required", i)
		}
		for j, action := range rule.Actions {
			if action.Type == "" {
				return fmt.Errorf("transformations[%d].actions[%d]: type is required", i, j)
			}
		}
	}
	return nil
}

// DelimiterRune returns the CSV delimiter as a rune.
func (c CSVSettings) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

// MaxUploadBytes is the upload limit in bytes.
func (s ServerSettings) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}
