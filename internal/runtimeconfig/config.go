package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrContentDirRequired        = errors.New("blog config: content directory is required")
	ErrContentExtensionInvalid   = errors.New("blog config: content extension must start with a dot")
	ErrPageSizeInvalid           = errors.New("blog config: page size must be positive")
	ErrWorkersInvalid            = errors.New("blog config: workers must be zero or positive")
	ErrWatcherTimingInvalid      = errors.New("blog config: watcher stability threshold and poll interval must be positive")
	ErrWatcherPollTooSlow        = errors.New("blog config: watcher poll interval must not exceed the stability threshold")
	ErrStoreProviderUnknown      = errors.New("blog config: store provider is invalid")
	ErrStoreDSNRequired          = errors.New("blog config: store dsn is required for sql providers")
	ErrSiteURLRequired           = errors.New("blog config: site base url is required")
	ErrHTTPAddrRequired          = errors.New("blog config: http address is required")
	ErrLoggingLevelInvalid       = errors.New("blog config: logging level is invalid")
	ErrLoggingFormatInvalid      = errors.New("blog config: logging format is invalid")
	ErrWatcherRequiresNewsletter = errors.New("blog config: watcher requires a newsletter api key")
)

// Config aggregates every runtime setting of the blog.
type Config struct {
	Content    ContentConfig    `yaml:"content"`
	Markdown   MarkdownConfig   `yaml:"markdown"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Store      StoreConfig      `yaml:"store"`
	Newsletter NewsletterConfig `yaml:"newsletter"`
	Mailer     MailerConfig     `yaml:"mailer"`
	Site       SiteConfig       `yaml:"site"`
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ContentConfig locates the post sources.
type ContentConfig struct {
	Dir                string   `yaml:"dir"`
	Extension          string   `yaml:"extension"`
	DefaultAuthor      string   `yaml:"default_author"`
	PageSize           int      `yaml:"page_size"`
	Workers            int      `yaml:"workers"`
	FeaturedCategories []string `yaml:"featured_categories"`
	FrontMatterSchema  string   `yaml:"front_matter_schema"`
}

// MarkdownConfig configures the goldmark renderer.
type MarkdownConfig struct {
	Extensions     []string `yaml:"extensions"`
	HardWraps      bool     `yaml:"hard_wraps"`
	Unsafe         bool     `yaml:"unsafe"`
	HighlightStyle string   `yaml:"highlight_style"`
}

// WatcherConfig drives new-post detection.
type WatcherConfig struct {
	Enabled            bool          `yaml:"enabled"`
	StabilityThreshold time.Duration `yaml:"stability_threshold"`
	PollInterval       time.Duration `yaml:"poll_interval"`
	NotifyTimeout      time.Duration `yaml:"notify_timeout"`
	ScanExisting       bool          `yaml:"scan_existing"`
}

// StoreConfig selects the processed-files store.
type StoreConfig struct {
	Provider string `yaml:"provider"`
	DSN      string `yaml:"dsn"`
}

// NewsletterConfig holds ConvertKit settings.
type NewsletterConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	APISecret string        `yaml:"api_secret"`
	FormID    string        `yaml:"form_id"`
	TagID     string        `yaml:"tag_id"`
	Timeout   time.Duration `yaml:"timeout"`
}

// MailerConfig holds SendGrid settings.
type MailerConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	From       string        `yaml:"from"`
	To         string        `yaml:"to"`
	SenderName string        `yaml:"sender_name"`
	Timeout    time.Duration `yaml:"timeout"`
}

// SiteConfig describes the public site.
type SiteConfig struct {
	BaseURL string `yaml:"base_url"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	BasePath     string        `yaml:"base_path"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	Metrics      bool          `yaml:"metrics"`

	// PlainTextSearch makes ?q= ignore markup unless the request sets ?plain=.
	PlainTextSearch bool `yaml:"plain_text_search"`
}

// LoggingConfig captures go-logger options.
type LoggingConfig struct {
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Content: ContentConfig{
			Dir:                "src/posts",
			Extension:          ".md",
			DefaultAuthor:      "Darshan Bajgain",
			PageSize:           6,
			Workers:            4,
			FeaturedCategories: []string{"ConvertKit", "Troubleshooting"},
		},
		Markdown: MarkdownConfig{
			Extensions:     []string{"gfm"},
			HardWraps:      true,
			Unsafe:         true,
			HighlightStyle: "github",
		},
		Watcher: WatcherConfig{
			StabilityThreshold: 2 * time.Second,
			PollInterval:       100 * time.Millisecond,
			NotifyTimeout:      30 * time.Second,
		},
		Store: StoreConfig{
			Provider: "memory",
		},
		Newsletter: NewsletterConfig{
			BaseURL: "https://api.convertkit.com",
			Timeout: 10 * time.Second,
		},
		Mailer: MailerConfig{
			BaseURL:    "https://api.sendgrid.com",
			SenderName: "Blog Contact Form",
			Timeout:    10 * time.Second,
		},
		Site: SiteConfig{
			BaseURL: "http://localhost:3000",
		},
		HTTP: HTTPConfig{
			Addr:         ":8080",
			BasePath:     "/api",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			Metrics:      true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if ext := strings.TrimSpace(cfg.Content.Extension); ext != "" && !strings.HasPrefix(ext, ".") {
		return fmt.Errorf("%w: %s", ErrContentExtensionInvalid, ext)
	}
	if cfg.Content.PageSize <= 0 {
		return ErrPageSizeInvalid
	}
	if cfg.Content.Workers < 0 {
		return ErrWorkersInvalid
	}
	if cfg.Watcher.StabilityThreshold <= 0 || cfg.Watcher.PollInterval <= 0 {
		return ErrWatcherTimingInvalid
	}
	if cfg.Watcher.PollInterval > cfg.Watcher.StabilityThreshold {
		return ErrWatcherPollTooSlow
	}
	if cfg.Watcher.Enabled && strings.TrimSpace(cfg.Newsletter.APIKey) == "" {
		return ErrWatcherRequiresNewsletter
	}
	switch provider := normalize(cfg.Store.Provider); provider {
	case "", "memory":
	case "sqlite", "postgres":
		if strings.TrimSpace(cfg.Store.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStoreDSNRequired, provider)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStoreProviderUnknown, provider)
	}
	if strings.TrimSpace(cfg.Site.BaseURL) == "" {
		return ErrSiteURLRequired
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return ErrHTTPAddrRequired
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
