package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[general]
WebPort = "9000"
LogLevel = "Debug"
EnablePprof = true
CorsOrigins = ["http://localhost:3000"]

[backend]
BaseURL = "http://holmes.local:8085/"
TimeoutSeconds = 3

[ui]
Locale = "fr"
LegacyConfigErrorMessage = true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCfg(t *testing.T) {
	cfg, f, err := LoadCfg(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	require.NotNil(t, f)

	assert.Equal(t, "9000", cfg.General.WebPort)
	assert.Equal(t, ":9000", cfg.ListenAddr())
	assert.Equal(t, "Debug", cfg.General.LogLevel)
	assert.True(t, cfg.General.EnablePprof)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.General.CorsOrigins)

	assert.Equal(t, "http://holmes.local:8085", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout())
	// keys missing from the file keep their defaults
	assert.Equal(t, 20, cfg.Backend.LimiterCalls)
	assert.Equal(t, "holmes_admin", cfg.Backend.UserAgent)

	assert.Equal(t, "fr", cfg.UI.Locale)
	assert.Equal(t, 300, cfg.UI.GridHeight)
	assert.Equal(t, 10*time.Minute, cfg.UI.RowCacheTTL())
	assert.True(t, cfg.UI.LegacyConfigErrorMessage)
}

func TestLoadCfgMissingFile(t *testing.T) {
	_, _, err := LoadCfg(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadCfgDataRejectsBadBackend(t *testing.T) {
	_, err := LoadCfgData(rawbytes.Provider([]byte("[backend]\nBaseURL = \"ftp://nope\"\n")), Configfile)
	assert.Error(t, err)
}

func TestLoadCfgDataZeroValuesGetDefaults(t *testing.T) {
	cfg, err := LoadCfgData(rawbytes.Provider([]byte("[general]\nWebPort = \"\"\n[ui]\nGridHeight = 0\n")), Configfile)
	require.NoError(t, err)
	assert.Equal(t, "8086", cfg.General.WebPort)
	assert.Equal(t, 300, cfg.UI.GridHeight)
}

func TestLoadCfgDataUnsupportedFormat(t *testing.T) {
	_, err := LoadCfgData(rawbytes.Provider([]byte("{}")), "config.json")
	assert.Error(t, err)
}
