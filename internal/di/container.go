package di

import (
	"context"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/darshanbajgain/darshan-blog-temp/internal/commands"
	notifycmd "github.com/darshanbajgain/darshan-blog-temp/internal/commands/notify"
	"github.com/darshanbajgain/darshan-blog-temp/internal/forms"
	bloghttp "github.com/darshanbajgain/darshan-blog-temp/internal/http"
	"github.com/darshanbajgain/darshan-blog-temp/internal/logging"
	"github.com/darshanbajgain/darshan-blog-temp/internal/logging/gologger"
	"github.com/darshanbajgain/darshan-blog-temp/internal/mailer"
	"github.com/darshanbajgain/darshan-blog-temp/internal/markdown"
	"github.com/darshanbajgain/darshan-blog-temp/internal/metrics"
	"github.com/darshanbajgain/darshan-blog-temp/internal/newsletter"
	"github.com/darshanbajgain/darshan-blog-temp/internal/posts"
	"github.com/darshanbajgain/darshan-blog-temp/internal/processed"
	"github.com/darshanbajgain/darshan-blog-temp/internal/routes"
	"github.com/darshanbajgain/darshan-blog-temp/internal/runtimeconfig"
	"github.com/darshanbajgain/darshan-blog-temp/internal/validation"
	"github.com/darshanbajgain/darshan-blog-temp/internal/watcher"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

// Container wires the blog runtime from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	httpClient     *http.Client
	contentFS      fs.FS

	parser     interfaces.MarkdownParser
	builder    *posts.Builder
	repository *posts.Repository
	urls       *routes.Resolver

	newsletterClient *newsletter.Client
	notifier         interfaces.Notifier
	mailer           *mailer.Mailer
	formSvc          *forms.Service

	store      interfaces.ProcessedStore
	closeStore func() error

	metrics  *metrics.Metrics
	handlers *notifycmd.HandlerSet
	api      *bloghttp.API

	linterOnce sync.Once
	linter     *validation.Linter
	linterErr  error
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the go-logger provider built from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithHTTPClient sets the client used for ConvertKit and SendGrid calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithContentFS reads post sources from filesystem instead of the content directory.
func WithContentFS(filesystem fs.FS) Option {
	return func(c *Container) {
		if filesystem != nil {
			c.contentFS = filesystem
		}
	}
}

// WithMarkdownParser overrides the goldmark parser.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		if parser != nil {
			c.parser = parser
		}
	}
}

// WithNotifier replaces the ConvertKit broadcast notifier.
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(c *Container) {
		if notifier != nil {
			c.notifier = notifier
		}
	}
}

// WithProcessedStore replaces the store selected by configuration.
func WithProcessedStore(store interfaces.ProcessedStore) Option {
	return func(c *Container) {
		if store != nil {
			c.store = store
		}
	}
}

// WithMetrics replaces the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Container) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewContainer validates cfg and builds every component it describes.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogger(); err != nil {
		return nil, err
	}
	if c.metrics == nil {
		c.metrics = metrics.New()
	}
	if err := c.configureContent(); err != nil {
		return nil, err
	}
	c.configureIntegrations()
	if err := c.configureStore(ctx); err != nil {
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.configureAPI()

	logging.ModuleLogger(c.loggerProvider, "blog.di").Info("container.configured",
		"content_dir", cfg.Content.Dir,
		"store", storeProvider(cfg.Store.Provider),
		"newsletter", c.newsletterClient.Configured(),
		"mailer", c.mailer.Configured(),
	)
	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider != nil {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureContent() error {
	if c.parser == nil {
		c.parser = markdown.NewGoldmarkParser(ParseOptions(c.Config.Markdown))
	}
	c.builder = posts.NewBuilder(
		posts.WithParser(c.parser),
		posts.WithDefaultAuthor(c.Config.Content.DefaultAuthor),
	)

	repoOpts := []posts.RepositoryOption{
		posts.WithBuilder(c.builder),
		posts.WithLogger(logging.PostsLogger(c.loggerProvider)),
		posts.WithObserver(c.metrics),
	}
	if c.contentFS != nil {
		repoOpts = append(repoOpts, posts.WithFS(c.contentFS))
	}
	c.repository = posts.NewRepository(posts.Config{
		Dir:       c.Config.Content.Dir,
		Extension: c.Config.Content.Extension,
		Workers:   c.Config.Content.Workers,
	}, repoOpts...)

	urls, err := routes.NewResolver(c.Config.Site.BaseURL)
	if err != nil {
		return err
	}
	c.urls = urls
	return nil
}

func (c *Container) configureIntegrations() {
	newsletterOpts := []newsletter.ClientOption{
		newsletter.WithLogger(logging.NewsletterLogger(c.loggerProvider)),
	}
	mailerOpts := []mailer.Option{
		mailer.WithLogger(logging.ModuleLogger(c.loggerProvider, "blog.mailer")),
	}
	if c.httpClient != nil {
		newsletterOpts = append(newsletterOpts, newsletter.WithHTTPClient(c.httpClient))
		mailerOpts = append(mailerOpts, mailer.WithHTTPClient(c.httpClient))
	}

	nl := c.Config.Newsletter
	c.newsletterClient = newsletter.NewClient(newsletter.Config{
		BaseURL:   nl.BaseURL,
		APIKey:    nl.APIKey,
		APISecret: nl.APISecret,
		FormID:    nl.FormID,
		TagID:     nl.TagID,
		Timeout:   nl.Timeout,
	}, newsletterOpts...)
	if c.notifier == nil {
		c.notifier = newsletter.NewBroadcastNotifier(c.newsletterClient, c.urls)
	}

	ml := c.Config.Mailer
	c.mailer = mailer.New(mailer.Config{
		APIKey:     ml.APIKey,
		Host:       ml.BaseURL,
		To:         ml.To,
		From:       ml.From,
		SenderName: ml.SenderName,
		Timeout:    ml.Timeout,
	}, mailerOpts...)

	c.formSvc = forms.NewService(c.newsletterClient, c.mailer,
		forms.WithLogger(logging.ModuleLogger(c.loggerProvider, "blog.forms")))
}

func (c *Container) configureStore(ctx context.Context) error {
	if c.store != nil {
		c.closeStore = func() error { return nil }
		return nil
	}
	store, closeFn, err := processed.Open(ctx, processed.Config{
		Provider: c.Config.Store.Provider,
		DSN:      c.Config.Store.DSN,
	})
	if err != nil {
		return err
	}
	c.store = store
	c.closeStore = closeFn
	return nil
}

func (c *Container) configureCommands() error {
	_, viaConvertKit := c.notifier.(*newsletter.BroadcastNotifier)
	gates := notifycmd.FeatureGates{
		NotificationsEnabled: func() bool {
			return !viaConvertKit || c.newsletterClient.Configured()
		},
		Recorder: c.metrics,
	}

	var notifyOpts []commands.HandlerOption[notifycmd.NotifyPostCommand]
	if timeout := c.Config.Watcher.NotifyTimeout; timeout > 0 {
		notifyOpts = append(notifyOpts, commands.WithTimeout[notifycmd.NotifyPostCommand](timeout))
	}

	handlers, err := notifycmd.RegisterNotifyCommands(nil, c.notifier, c.store, c.loggerProvider, gates,
		notifycmd.WithNotifyHandlerOptions(notifyOpts...))
	if err != nil {
		return err
	}
	c.handlers = handlers
	return nil
}

func (c *Container) configureAPI() {
	var schema map[string]any
	if path := strings.TrimSpace(c.Config.Content.FrontMatterSchema); path != "" {
		loaded, err := validation.LoadSchemaFile(path)
		if err != nil {
			logging.HTTPLogger(c.loggerProvider).Warn("http.openapi.schema_unavailable", "path", path, "error", err)
		}
		schema = loaded
	}
	c.api = bloghttp.NewAPI(
		bloghttp.WithBasePath(c.Config.HTTP.BasePath),
		bloghttp.WithPostSource(c.repository),
		bloghttp.WithFormService(c.formSvc),
		bloghttp.WithURLResolver(c.urls),
		bloghttp.WithPageSize(c.Config.Content.PageSize),
		bloghttp.WithFeaturedCategories(c.Config.Content.FeaturedCategories),
		bloghttp.WithFrontMatterSchema(schema),
		bloghttp.WithPlainTextSearch(c.Config.HTTP.PlainTextSearch),
		bloghttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
		bloghttp.WithRequestObserver(c.metrics),
	)
}

// ParseOptions maps the markdown configuration onto renderer options.
func ParseOptions(cfg runtimeconfig.MarkdownConfig) interfaces.ParseOptions {
	opts := markdown.DefaultParseOptions()
	if len(cfg.Extensions) > 0 {
		opts.Extensions = append([]string(nil), cfg.Extensions...)
	}
	opts.HardWraps = cfg.HardWraps
	opts.SafeMode = !cfg.Unsafe
	opts.HighlightStyle = strings.TrimSpace(cfg.HighlightStyle)
	return opts
}

// Watcher builds a content watcher that announces through the notify command.
func (c *Container) Watcher() (*watcher.Watcher, error) {
	return watcher.New(watcher.Config{
		Dir:                c.Config.Content.Dir,
		Extension:          c.Config.Content.Extension,
		StabilityThreshold: c.Config.Watcher.StabilityThreshold,
		PollInterval:       c.Config.Watcher.PollInterval,
		ScanExisting:       c.Config.Watcher.ScanExisting,
	}, c.store, c.handlers.Notify,
		watcher.WithLogger(logging.WatcherLogger(c.loggerProvider)),
		watcher.WithObserver(c.metrics),
	)
}

// Linter returns the front matter linter, loading a custom schema when one is configured.
func (c *Container) Linter() (*validation.Linter, error) {
	c.linterOnce.Do(func() {
		var schema map[string]any
		if path := strings.TrimSpace(c.Config.Content.FrontMatterSchema); path != "" {
			schema, c.linterErr = validation.LoadSchemaFile(path)
			if c.linterErr != nil {
				return
			}
		}
		c.linter, c.linterErr = validation.NewLinter(schema)
	})
	return c.linter, c.linterErr
}

// Close releases the processed store.
func (c *Container) Close() error {
	if c == nil || c.closeStore == nil {
		return nil
	}
	closeFn := c.closeStore
	c.closeStore = nil
	return closeFn()
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) MarkdownParser() interfaces.MarkdownParser {
	return c.parser
}

func (c *Container) Posts() *posts.Repository {
	return c.repository
}

func (c *Container) URLs() *routes.Resolver {
	return c.urls
}

func (c *Container) Newsletter() *newsletter.Client {
	return c.newsletterClient
}

func (c *Container) Notifier() interfaces.Notifier {
	return c.notifier
}

func (c *Container) Mailer() *mailer.Mailer {
	return c.mailer
}

func (c *Container) Forms() *forms.Service {
	return c.formSvc
}

func (c *Container) ProcessedStore() interfaces.ProcessedStore {
	return c.store
}

func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

func (c *Container) CommandHandlers() *notifycmd.HandlerSet {
	return c.handlers
}

func (c *Container) API() *bloghttp.API {
	return c.api
}

func storeProvider(provider string) string {
	if p := strings.TrimSpace(provider); p != "" {
		return p
	}
	return processed.ProviderMemory
}
