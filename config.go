package blog

import "github.com/darshanbajgain/darshan-blog-temp/internal/runtimeconfig"

var (
	ErrContentDirRequired        = runtimeconfig.ErrContentDirRequired
	ErrPageSizeInvalid           = runtimeconfig.ErrPageSizeInvalid
	ErrWatcherTimingInvalid      = runtimeconfig.ErrWatcherTimingInvalid
	ErrWatcherPollTooSlow        = runtimeconfig.ErrWatcherPollTooSlow
	ErrWatcherRequiresNewsletter = runtimeconfig.ErrWatcherRequiresNewsletter
	ErrStoreProviderUnknown      = runtimeconfig.ErrStoreProviderUnknown
	ErrStoreDSNRequired          = runtimeconfig.ErrStoreDSNRequired
	ErrSiteURLRequired           = runtimeconfig.ErrSiteURLRequired
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	ContentConfig    = runtimeconfig.ContentConfig
	MarkdownConfig   = runtimeconfig.MarkdownConfig
	WatcherConfig    = runtimeconfig.WatcherConfig
	StoreConfig      = runtimeconfig.StoreConfig
	NewsletterConfig = runtimeconfig.NewsletterConfig
	MailerConfig     = runtimeconfig.MailerConfig
	SiteConfig       = runtimeconfig.SiteConfig
	HTTPConfig       = runtimeconfig.HTTPConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads defaults, .env files, an optional YAML file and the
// process environment, in that order.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
