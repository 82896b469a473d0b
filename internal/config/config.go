package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address when
	// an external daemon is used instead of the embedded one.
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultTimeout bounds each board request. Municipal boards are slow
	// but not Tor-slow; 30 seconds covers the worst observed responses.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxPages caps list pagination per board. Notices older than a
	// few pages have long been delivered; deep walks only add load.
	DefaultMaxPages = 5

	// DefaultConcurrency runs district crawls sequentially. The boards are
	// municipal infrastructure; parallelism is opt-in.
	DefaultConcurrency = 1

	// DefaultCrawlDelay is the politeness delay between detail fetches.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultTorStartupTimeout is the maximum wait for the embedded Tor
	// daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is used for XDG directory paths and the config file name.
	AppName = "funeralscraper"
)

// Environment variable names for credentials and endpoints. Secrets are
// environment-only.
const (
	EnvStoreURL        = "FUNERAL_STORE_URL"
	EnvStoreIdentity   = "FUNERAL_STORE_IDENTITY"
	EnvStorePassword   = "FUNERAL_STORE_PASSWORD" //nolint:gosec // env var name, not a credential
	EnvOCREndpoint     = "FUNERAL_OCR_ENDPOINT"
	EnvOCRSecret       = "FUNERAL_OCR_SECRET" //nolint:gosec // env var name, not a credential
	EnvEnrichEndpoint  = "FUNERAL_ENRICH_ENDPOINT"
	EnvEnrichAPIKey    = "FUNERAL_ENRICH_API_KEY" //nolint:gosec // env var name, not a credential
	EnvNoticeWebhook   = "FUNERAL_NOTICE_WEBHOOK"
	EnvGeneralWebhook  = "FUNERAL_GENERAL_WEBHOOK"
	EnvTorProxyAddress = "FUNERAL_TOR_PROXY"
)

// Config holds all runtime options. Populated from defaults, then the
// optional YAML file, then environment credentials, then CLI flags, and
// passed by dependency injection rather than global state.
type Config struct {
	// StoreURL is the record store base URL.
	StoreURL string

	// StoreIdentity and StorePassword authenticate against the store.
	// Environment-only.
	StoreIdentity string
	StorePassword string

	// OCREndpoint and OCRSecret configure the table-aware OCR service used
	// for image-only notices. Empty endpoint disables OCR; image-only
	// notices are then skipped with a warning.
	OCREndpoint string
	OCRSecret   string

	// EnrichEndpoint and EnrichAPIKey configure the analysis service that
	// structures notice text.
	EnrichEndpoint string
	EnrichAPIKey   string

	// NoticeWebhookURL and GeneralWebhookURL are the two delivery channels.
	// Both empty means console delivery.
	NoticeWebhookURL  string
	GeneralWebhookURL string

	// TorProxyAddress is the external Tor SOCKS5 proxy in host:port form.
	// Used when UseExternalTor is true.
	TorProxyAddress string

	// UseExternalTor disables the embedded Tor daemon in favor of an
	// already-running proxy at TorProxyAddress.
	UseExternalTor bool

	// DisableTor turns off the Tor failover entirely. Sources that require
	// Tor will fail while it is set.
	DisableTor bool

	// TorStartupTimeout is the maximum wait for the embedded daemon to
	// bootstrap. Only used when UseExternalTor is false.
	TorStartupTimeout time.Duration

	// Timeout bounds each board and store request.
	Timeout time.Duration

	// MaxPages caps list pagination per board.
	MaxPages int

	// Concurrency is the number of simultaneous district crawls.
	Concurrency int

	// CrawlDelay is the politeness delay between detail fetches.
	CrawlDelay time.Duration

	// SkipCollect jumps straight to the analyze phase, rerunning analysis
	// and delivery over already-collected data.
	SkipCollect bool

	// TestMode reroutes all notices to the general channel.
	TestMode bool

	// Verbose enables debug-level log output.
	Verbose bool

	// DBDir is the directory for the local run-history database. Empty
	// disables local archiving.
	DBDir string

	// ReportFile writes a Markdown run report to this path after the run.
	// Empty disables the report.
	ReportFile string

	// ConfigFilePath overrides the config file search.
	ConfigFilePath string
}

// New creates a Config with defaults and environment credentials applied.
func New() *Config {
	c := &Config{
		TorProxyAddress:   DefaultTorProxyAddress,
		TorStartupTimeout: DefaultTorStartupTimeout,
		Timeout:           DefaultTimeout,
		MaxPages:          DefaultMaxPages,
		Concurrency:       DefaultConcurrency,
		CrawlDelay:        DefaultCrawlDelay,
	}
	c.applyEnv()
	return c
}

// applyEnv overlays environment-provided endpoints and credentials.
func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.StoreURL, EnvStoreURL)
	set(&c.StoreIdentity, EnvStoreIdentity)
	set(&c.StorePassword, EnvStorePassword)
	set(&c.OCREndpoint, EnvOCREndpoint)
	set(&c.OCRSecret, EnvOCRSecret)
	set(&c.EnrichEndpoint, EnvEnrichEndpoint)
	set(&c.EnrichAPIKey, EnvEnrichAPIKey)
	set(&c.NoticeWebhookURL, EnvNoticeWebhook)
	set(&c.GeneralWebhookURL, EnvGeneralWebhook)
	set(&c.TorProxyAddress, EnvTorProxyAddress)
}

// XDGDataDir returns the XDG data directory for the scraper, used for the
// local run-history database.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the scraper.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// Called once after flag parsing, before the run starts.
func (c *Config) Validate() error {
	if c.StoreURL == "" {
		return ErrNoStoreURL
	}
	if c.StoreIdentity == "" || c.StorePassword == "" {
		return ErrNoStoreCredentials
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	return nil
}
