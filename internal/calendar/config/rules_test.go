package config

import (
	"os"
	"path/filepath"
	"testing"

	"vistoria/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRules_Defaults(t *testing.T) {
	rules, err := LoadRules("", logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, int64(21600), rules.DailyCapSeconds())
	assert.Equal(t, "#f59e0b", rules.Colors.Palette["Silo"])
	assert.Equal(t, "#3b82f6", rules.Colors.Default)
}

func TestLoadRules_File(t *testing.T) {
	path := writeRules(t, `
daily_cap_hours = 4.5

[colors]
default = "#111111"

[colors.palette]
Britador = "#222222"
Silo = "#333333"
`)

	rules, err := LoadRules(path, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, int64(16200), rules.DailyCapSeconds())
	assert.Equal(t, "#111111", rules.Colors.Default)
	assert.Equal(t, "#222222", rules.Colors.Palette["Britador"])
	assert.Equal(t, "#333333", rules.Colors.Palette["Silo"])
	assert.Equal(t, "#10b981", rules.Colors.Palette["Correia"])
}

func TestLoadRules_Invalid(t *testing.T) {
	_, err := LoadRules(writeRules(t, `daily_cap_hours = 0`), logger.Nop())
	assert.Error(t, err)

	_, err = LoadRules(writeRules(t, "[colors.palette]\nSilo = \"orange\"\n"), logger.Nop())
	assert.Error(t, err)

	_, err = LoadRules(writeRules(t, "daily_cap_hours = "), logger.Nop())
	assert.Error(t, err)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.toml"), logger.Nop())
	assert.Error(t, err)
}
