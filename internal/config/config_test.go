package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "{name}.xml", cfg.OutputNameFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "B1", cfg.Spreadsheet.StartingIDCell)
	assert.Equal(t, 2, cfg.Spreadsheet.HeaderRow)
	assert.Equal(t, ',', cfg.CSV.DelimiterRune())
	assert.Equal(t, DateSourceColumn, cfg.TransactionDate.Source)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes())
	assert.Equal(t, 12*time.Hour, cfg.Server.SessionIdleTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
output_dir: /tmp/accurate
log_level: debug
spreadsheet:
  sheet_name: Data
  header_row: 3
csv:
  delimiter: ";"
transaction_date:
  source: fixed
  fixed: "2024-03-01"
server:
  session_idle_timeout: 30m
transformations:
  - column: NO AKUN
    actions:
      - type: pad_zeros_to_length
        value: "6"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/accurate", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "Data", cfg.Spreadsheet.SheetName)
	assert.Equal(t, 3, cfg.Spreadsheet.HeaderRow)
	assert.Equal(t, "B1", cfg.Spreadsheet.StartingIDCell)
	assert.Equal(t, ';', cfg.CSV.DelimiterRune())
	assert.Equal(t, DateSourceFixed, cfg.TransactionDate.Source)
	assert.Equal(t, "2024-03-01", cfg.TransactionDate.Fixed)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionIdleTimeout)
	require.Len(t, cfg.Transformations, 1)
	assert.Equal(t, "pad_zeros_to_length", cfg.Transformations[0].Actions[0].Type)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	// Equivalent of t.Chdir (Go 1.24+) for older toolchains.
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	cfg, err := Load(DefaultConfigPath)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvServerAddr, "127.0.0.1:9000")
	t.Setenv(EnvTransactionDate, "2023-12-31")
	t.Setenv(EnvSheetName, "Sheet1")
	t.Setenv(EnvMaxUploadMB, "2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "2023-12-31", cfg.TransactionDate.Fixed)
	assert.Equal(t, "Sheet1", cfg.Spreadsheet.SheetName)
	assert.Equal(t, int64(2), cfg.Server.MaxUploadMB)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "ACCURATE_LOG_FORMAT=json\n")
	t.Cleanup(func() { os.Unsetenv(EnvLogFormat) })

	cfg, err := Load("", envPath)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadBadEnvUpload(t *testing.T) {
	t.Setenv(EnvMaxUploadMB, "lots")

	_, err := Load("")
	assert.ErrorContains(t, err, EnvMaxUploadMB)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"log format", func(c *Config) { c.LogFormat = "xml" }},
		{"starting id cell", func(c *Config) { c.Spreadsheet.StartingIDCell = "1B" }},
		{"header row", func(c *Config) { c.Spreadsheet.HeaderRow = -1 }},
		{"delimiter", func(c *Config) { c.CSV.Delimiter = ";;" }},
		{"date source", func(c *Config) { c.TransactionDate.Source = "sheet" }},
		{"fixed date", func(c *Config) { c.TransactionDate.Fixed = "01/02/2024" }},
		{"upload limit", func(c *Config) { c.Server.MaxUploadMB = -5 }},
		{"session idle timeout", func(c *Config) { c.Server.SessionIdleTimeout = -time.Minute }},
		{"cors origin", func(c *Config) { c.Server.AllowedOrigins = []string{"localhost:3000"} }},
		{"transformation column", func(c *Config) {
			c.Transformations = []TransformationRule{{Actions: []TransformationAction{{Type: "trim"}}}}
		}},
		{"transformation type", func(c *Config) {
			c.Transformations = []TransformationRule{{Column: "MEMO", Actions: []TransformationAction{{}}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
