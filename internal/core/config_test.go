package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 600*time.Second, cfg.Browser.IdleTimeout)
	assert.Equal(t, 5*time.Second, cfg.Browser.LivenessTimeout)
	assert.Equal(t, 15*time.Second, cfg.Search.ResultsTimeout)
	assert.Equal(t, 10*time.Second, cfg.Search.ElementTimeout)
	assert.Equal(t, "browser", cfg.Detail.Mode)
	assert.False(t, cfg.StaticDetail())
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, uint64(500), cfg.Resource.SafetyThresholdMB)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
browser:
  headless: false
  idle_timeout: 2m
detail:
  mode: static
headers:
  Accept-Language: en-US
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 2*time.Minute, cfg.Browser.IdleTimeout)
	assert.True(t, cfg.StaticDetail())
	assert.Equal(t, "en-US", cfg.Headers["accept-language"])
	assert.Equal(t, "debug", cfg.LogConfig().Level)
	assert.Equal(t, 10, cfg.LogConfig().MaxSize)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("browser: [unclosed"), 0644))

	_, err := LoadConfig(path)
	var cfgErr *models.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestHeaderManager(t *testing.T) {
	hm, err := NewHeaderManager(
		map[string]string{"Referer": "https://www.cnki.net/", "Accept-Language": "en"},
		[]string{"Accept-Language: zh-TW", "Cookie: SID=1"},
	)
	require.NoError(t, err)

	headers, err := hm.GetHeaders()
	require.NoError(t, err)
	assert.Equal(t, "zh-TW", headers.Get("Accept-Language"), "命令行优先于配置文件")
	assert.Equal(t, "https://www.cnki.net/", headers.Get("Referer"))
	assert.Equal(t, "SID=1", headers.Get("Cookie"))
}

func TestHeaderManager_Invalid(t *testing.T) {
	_, err := NewHeaderManager(nil, []string{"no-colon"})
	assert.Error(t, err)

	hm, err := NewHeaderManager(map[string]string{"Host": "evil"}, nil)
	require.NoError(t, err)
	_, err = hm.GetHeaders()
	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
}
