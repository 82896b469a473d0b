package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".funeralscraper.yml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// fileConfig is the YAML shape of the config file. Only non-secret
// settings may appear here; credentials stay in the environment.
type fileConfig struct {
	StoreURL          string `yaml:"store_url"`
	OCREndpoint       string `yaml:"ocr_endpoint"`
	EnrichEndpoint    string `yaml:"enrich_endpoint"`
	NoticeWebhookURL  string `yaml:"notice_webhook_url"`
	GeneralWebhookURL string `yaml:"general_webhook_url"`
	TorProxyAddress   string `yaml:"tor_proxy_address"`
	UseExternalTor    *bool  `yaml:"use_external_tor"`
	DisableTor        *bool  `yaml:"disable_tor"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	MaxPages          int    `yaml:"max_pages"`
	Concurrency       int    `yaml:"concurrency"`
	CrawlDelayMillis  int    `yaml:"crawl_delay_ms"`
	DBDir             string `yaml:"db_dir"`
}

// LoadFile overlays settings from a YAML file onto the config. Returns
// ErrConfigNotFound when the file does not exist; callers decide whether
// that matters based on whether the path was explicit.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return ErrConfigNotFound
		}
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.StoreURL != "" {
		c.StoreURL = fc.StoreURL
	}
	if fc.OCREndpoint != "" {
		c.OCREndpoint = fc.OCREndpoint
	}
	if fc.EnrichEndpoint != "" {
		c.EnrichEndpoint = fc.EnrichEndpoint
	}
	if fc.NoticeWebhookURL != "" {
		c.NoticeWebhookURL = fc.NoticeWebhookURL
	}
	if fc.GeneralWebhookURL != "" {
		c.GeneralWebhookURL = fc.GeneralWebhookURL
	}
	if fc.TorProxyAddress != "" {
		c.TorProxyAddress = fc.TorProxyAddress
	}
	if fc.UseExternalTor != nil {
		c.UseExternalTor = *fc.UseExternalTor
	}
	if fc.DisableTor != nil {
		c.DisableTor = *fc.DisableTor
	}
	if fc.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}
	if fc.MaxPages > 0 {
		c.MaxPages = fc.MaxPages
	}
	if fc.Concurrency > 0 {
		c.Concurrency = fc.Concurrency
	}
	if fc.CrawlDelayMillis > 0 {
		c.CrawlDelay = time.Duration(fc.CrawlDelayMillis) * time.Millisecond
	}
	if fc.DBDir != "" {
		c.DBDir = fc.DBDir
	}
	return nil
}

// FindConfigFile resolves the config file path: the explicit path if
// given, else the default name in the current directory, the XDG config
// directory, then the home directory. Empty when nothing exists.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
