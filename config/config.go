// Package config loads the service configuration from an optional YAML file,
// with environment variables supplying the API secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/walletstory/walletstory/internal/clients"
	"github.com/walletstory/walletstory/internal/quota"
	"github.com/walletstory/walletstory/internal/resultcache"
)

const (
	defaultListen     = ":8080"
	defaultLLMURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel   = "deepseek/deepseek-chat"
	defaultStorageDir = "./data/kv"

	etherscanKeyEnv = "ETHERSCAN_API_KEY"
	llmKeyEnv       = "LLM_API_KEY"
)

// Config is the resolved service configuration.
type Config struct {
	Listen       string
	EtherscanURL string
	EtherscanKey string
	LLMURL       string
	LLMKey       string
	LLMModel     string
	QuotaPerDay  int
	CacheTTL     time.Duration
	StorageDir   string
}

// configTmp mirrors the YAML layout before defaults are applied. Durations
// travel as strings ("24h") and are parsed explicitly.
type configTmp struct {
	Listen       string `yaml:"listen,omitempty"`
	EtherscanURL string `yaml:"etherscan_url,omitempty"`
	LLMURL       string `yaml:"llm_url,omitempty"`
	LLMModel     string `yaml:"llm_model,omitempty"`
	QuotaPerDay  int    `yaml:"quota_per_day,omitempty"`
	CacheTTLStr  string `yaml:"cache_ttl,omitempty"`
	StorageDir   string `yaml:"storage_dir,omitempty"`
}

// Load reads the YAML file at path (path may be empty for pure defaults),
// fills defaults, and pulls API keys from the environment.
func Load(path string) (Config, error) {
	var tmp configTmp

	if path != "" {
		f, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(f, &tmp); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg := Config{
		Listen:       tmp.Listen,
		EtherscanURL: tmp.EtherscanURL,
		EtherscanKey: os.Getenv(etherscanKeyEnv),
		LLMURL:       tmp.LLMURL,
		LLMKey:       os.Getenv(llmKeyEnv),
		LLMModel:     tmp.LLMModel,
		QuotaPerDay:  tmp.QuotaPerDay,
		StorageDir:   tmp.StorageDir,
	}

	if tmp.CacheTTLStr != "" {
		ttl, err := time.ParseDuration(tmp.CacheTTLStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'cache_ttl' param in yaml config (correct format is 24h): %w", err)
		}
		cfg.CacheTTL = ttl
	}

	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	if cfg.EtherscanURL == "" {
		cfg.EtherscanURL = clients.DefaultEtherscanURL
	}
	if cfg.LLMURL == "" {
		cfg.LLMURL = defaultLLMURL
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultLLMModel
	}
	if cfg.QuotaPerDay <= 0 {
		cfg.QuotaPerDay = quota.DefaultMaxPerDay
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = resultcache.DefaultTTL
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = defaultStorageDir
	}

	if cfg.EtherscanKey == "" {
		return Config{}, fmt.Errorf("%s environment variable must be set", etherscanKeyEnv)
	}
	if cfg.LLMKey == "" {
		return Config{}, fmt.Errorf("%s environment variable must be set", llmKeyEnv)
	}

	return cfg, nil
}

// Save writes the non-secret parts of cfg as YAML, for the setup wizard.
func Save(path string, cfg Config) error {
	tmp := configTmp{
		Listen:       cfg.Listen,
		EtherscanURL: cfg.EtherscanURL,
		LLMURL:       cfg.LLMURL,
		LLMModel:     cfg.LLMModel,
		QuotaPerDay:  cfg.QuotaPerDay,
		StorageDir:   cfg.StorageDir,
	}
	if cfg.CacheTTL > 0 {
		tmp.CacheTTLStr = cfg.CacheTTL.String()
	}

	payload, err := yaml.Marshal(tmp)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
