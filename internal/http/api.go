package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/darshanbajgain/darshan-blog-temp/internal/forms"
	"github.com/darshanbajgain/darshan-blog-temp/internal/logging"
	"github.com/darshanbajgain/darshan-blog-temp/internal/openapi"
	"github.com/darshanbajgain/darshan-blog-temp/internal/posts"
	"github.com/darshanbajgain/darshan-blog-temp/internal/query"
	"github.com/darshanbajgain/darshan-blog-temp/internal/validation"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

const (
	DefaultBasePath      = "/api"
	DefaultLatestCount   = 6
	DefaultTopCategories = 5
	DefaultFeaturedCount = 3
)

// PostSource loads the post collection.
type PostSource interface {
	LoadAll(ctx context.Context) ([]posts.Post, error)
	LoadOne(ctx context.Context, slug string) (posts.Post, error)
}

// FormService handles reader form submissions.
type FormService interface {
	Subscribe(ctx context.Context, req forms.SubscribeRequest) (forms.SubscribeResult, error)
	Contact(ctx context.Context, req forms.ContactRequest) (forms.ContactResult, error)
}

// URLResolver builds public URLs for API payloads.
type URLResolver interface {
	PostURL(slug string) (string, error)
	CategoryURL(category string) (string, error)
}

// API registers the public blog endpoints.
type API struct {
	basePath  string
	posts     PostSource
	forms     FormService
	urls      URLResolver
	pageSize  int
	featured  []string
	plainText bool
	schema    map[string]any
	logger    interfaces.Logger
	observer  RequestObserver
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(opts ...Option) *API {
	api := &API{
		basePath: DefaultBasePath,
		pageSize: query.DefaultPageSize,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/api").
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithPostSource wires the post collection.
func WithPostSource(source PostSource) Option {
	return func(api *API) {
		api.posts = source
	}
}

// WithFormService wires the contact and subscribe handlers.
func WithFormService(service FormService) Option {
	return func(api *API) {
		api.forms = service
	}
}

// WithURLResolver adds public URLs to post and category payloads.
func WithURLResolver(urls URLResolver) Option {
	return func(api *API) {
		api.urls = urls
	}
}

// WithPageSize overrides the listing page size.
func WithPageSize(size int) Option {
	return func(api *API) {
		if size > 0 {
			api.pageSize = size
		}
	}
}

// WithFeaturedCategories sets the categories the home page features.
func WithFeaturedCategories(categories []string) Option {
	return func(api *API) {
		api.featured = append([]string(nil), categories...)
	}
}

// WithPlainTextSearch matches search text against rendered content with
// markup removed.
func WithPlainTextSearch(enabled bool) Option {
	return func(api *API) {
		api.plainText = enabled
	}
}

// WithFrontMatterSchema sets the schema published in the OpenAPI document.
func WithFrontMatterSchema(schema map[string]any) Option {
	return func(api *API) {
		if schema != nil {
			api.schema = schema
		}
	}
}

// WithLogger sets the API logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		api.logger = logging.OrNoOp(logger)
	}
}

// WithRequestObserver records per-route request metrics.
func WithRequestObserver(observer RequestObserver) Option {
	return func(api *API) {
		api.observer = observer
	}
}

// Register attaches the endpoints to the provided mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: api is nil")
	}

	base := joinPath(api.basePath, "")
	api.handle(mux, "GET "+joinPath(base, "posts"), api.handlePostList)
	api.handle(mux, "GET "+joinPath(base, "posts")+"/{slug}", api.handlePostGet)
	api.handle(mux, "GET "+joinPath(base, "categories"), api.handleCategoryList)
	api.handle(mux, "GET "+joinPath(base, "categories")+"/{category}", api.handleCategoryGet)
	api.handle(mux, "GET "+joinPath(base, "home"), api.handleHome)
	api.handle(mux, "POST "+joinPath(base, "contact"), api.handleContact)
	api.handle(mux, "POST "+joinPath(base, "subscribe"), api.handleSubscribe)
	api.handle(mux, "GET "+joinPath(base, "openapi.json"), api.handleOpenAPI)
	return nil
}

func (api *API) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	schema := api.schema
	if schema == nil {
		schema = validation.DefaultFrontMatterSchema()
	}
	writeJSON(w, http.StatusOK, openapi.BlogAPI(api.basePath, schema))
}

func (api *API) handle(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	mux.Handle(pattern, instrument(pattern, api.observer, api.logger, handler))
}
