package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setKeys(t *testing.T) {
	t.Helper()
	t.Setenv("ETHERSCAN_API_KEY", "etherscan-test-key")
	t.Setenv("LLM_API_KEY", "llm-test-key")
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	setKeys(t)

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Listen)
	require.Equal(t, "https://api.etherscan.io/api", cfg.EtherscanURL)
	require.Equal(t, "https://openrouter.ai/api/v1/chat/completions", cfg.LLMURL)
	require.Equal(t, "deepseek/deepseek-chat", cfg.LLMModel)
	require.Equal(t, 15, cfg.QuotaPerDay)
	require.Equal(t, 24*time.Hour, cfg.CacheTTL)
	require.Equal(t, "./data/kv", cfg.StorageDir)
	require.Equal(t, "etherscan-test-key", cfg.EtherscanKey)
	require.Equal(t, "llm-test-key", cfg.LLMKey)
}

func TestLoad_FileOverrides(t *testing.T) {
	setKeys(t)
	path := writeConfig(t, `
listen: ":9090"
llm_model: "openai/gpt-4o-mini"
quota_per_day: 50
cache_ttl: 1h30m
storage_dir: /var/lib/walletstory
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Listen)
	require.Equal(t, "openai/gpt-4o-mini", cfg.LLMModel)
	require.Equal(t, 50, cfg.QuotaPerDay)
	require.Equal(t, 90*time.Minute, cfg.CacheTTL)
	require.Equal(t, "/var/lib/walletstory", cfg.StorageDir)

	// unset fields still get defaults
	require.Equal(t, "https://api.etherscan.io/api", cfg.EtherscanURL)
}

func TestLoad_BadDuration(t *testing.T) {
	setKeys(t)
	path := writeConfig(t, "cache_ttl: one-day\n")

	_, err := Load(path)
	require.ErrorContains(t, err, "cache_ttl")
}

func TestLoad_MissingFile(t *testing.T) {
	setKeys(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("ETHERSCAN_API_KEY", "")
	t.Setenv("LLM_API_KEY", "llm-test-key")
	_, err := Load("")
	require.ErrorContains(t, err, "ETHERSCAN_API_KEY")

	t.Setenv("ETHERSCAN_API_KEY", "etherscan-test-key")
	t.Setenv("LLM_API_KEY", "")
	_, err = Load("")
	require.ErrorContains(t, err, "LLM_API_KEY")
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	setKeys(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, Save(path, Config{
		Listen:      ":3000",
		LLMModel:    "deepseek/deepseek-chat",
		QuotaPerDay: 20,
		CacheTTL:    12 * time.Hour,
		StorageDir:  "./data/kv",
	}))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":3000", cfg.Listen)
	require.Equal(t, 20, cfg.QuotaPerDay)
	require.Equal(t, 12*time.Hour, cfg.CacheTTL)
}

func TestSave_OmitsSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, Save(path, Config{
		Listen:       ":3000",
		EtherscanKey: "super-secret",
		LLMKey:       "also-secret",
	}))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(contents), "super-secret")
	require.NotContains(t, string(contents), "also-secret")
}
