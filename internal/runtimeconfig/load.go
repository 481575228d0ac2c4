package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load builds a Config from defaults, the optional YAML file at path, the
// .env files in the working directory, and finally process environment
// overrides. An empty path skips the YAML step.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if err := loadEnvFiles(); err != nil {
		return cfg, err
	}

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.Site.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Site.BaseURL), "/")
	return cfg, cfg.Validate()
}

// loadEnvFiles loads ENV_FILE when set, otherwise .env.local then .env.
// godotenv never overrides variables that are already set, so the first
// file to define a key wins.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv applies the supported environment overrides to cfg.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if cfg == nil || lookup == nil {
		return nil
	}
	str := func(target *string, keys ...string) {
		for _, key := range keys {
			if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
				*target = strings.TrimSpace(value)
				return
			}
		}
	}

	str(&cfg.Content.Dir, "BLOG_POSTS_DIR")
	str(&cfg.Content.DefaultAuthor, "BLOG_DEFAULT_AUTHOR")
	str(&cfg.Newsletter.APIKey, "CONVERTKIT_API_KEY")
	str(&cfg.Newsletter.APISecret, "CONVERTKIT_API_SECRET")
	str(&cfg.Newsletter.FormID, "CONVERTKIT_FORM_ID")
	str(&cfg.Newsletter.TagID, "CONVERTKIT_TAG_ID")
	str(&cfg.Mailer.APIKey, "SENDGRID_API_KEY")
	str(&cfg.Mailer.From, "SENDGRID_FROM_EMAIL")
	str(&cfg.Mailer.To, "SENDGRID_TO_EMAIL")
	str(&cfg.Site.BaseURL, "SITE_URL", "NEXT_PUBLIC_SITE_URL")
	str(&cfg.HTTP.Addr, "BLOG_HTTP_ADDR")
	str(&cfg.Store.Provider, "BLOG_STORE_PROVIDER")
	str(&cfg.Store.DSN, "BLOG_STORE_DSN")
	str(&cfg.Logging.Level, "BLOG_LOG_LEVEL")
	str(&cfg.Logging.Format, "BLOG_LOG_FORMAT")

	if value, ok := lookup("BLOG_WATCH"); ok && strings.TrimSpace(value) != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("parse BLOG_WATCH: %w", err)
		}
		cfg.Watcher.Enabled = enabled
	}
	if value, ok := lookup("BLOG_WATCH_STABILITY"); ok && strings.TrimSpace(value) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("parse BLOG_WATCH_STABILITY: %w", err)
		}
		cfg.Watcher.StabilityThreshold = d
	}
	if value, ok := lookup("BLOG_WATCH_SCAN_EXISTING"); ok && strings.TrimSpace(value) != "" {
		scan, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("parse BLOG_WATCH_SCAN_EXISTING: %w", err)
		}
		cfg.Watcher.ScanExisting = scan
	}
	return nil
}
