// Package blog is the runtime façade of the Markdown blog: it loads posts
// from a content directory, answers listing and search queries, announces
// new posts to newsletter subscribers and handles reader form submissions.
package blog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"gopkg.in/yaml.v3"

	notifycmd "github.com/darshanbajgain/darshan-blog-temp/internal/commands/notify"
	"github.com/darshanbajgain/darshan-blog-temp/internal/di"
	bloghttp "github.com/darshanbajgain/darshan-blog-temp/internal/http"
	"github.com/darshanbajgain/darshan-blog-temp/internal/markdown"
	"github.com/darshanbajgain/darshan-blog-temp/internal/metrics"
	"github.com/darshanbajgain/darshan-blog-temp/internal/posts"
	"github.com/darshanbajgain/darshan-blog-temp/internal/query"
	"github.com/darshanbajgain/darshan-blog-temp/internal/validation"
	"github.com/darshanbajgain/darshan-blog-temp/internal/watcher"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

// Post exports the rendered post record.
type Post = posts.Post

// Query exports the listing filter.
type Query = query.Query

// Page exports one page of query results.
type Page = query.Page

// CategoryCount exports a category with its post count.
type CategoryCount = query.CategoryCount

// ProcessedFile exports a processed-store record.
type ProcessedFile = interfaces.ProcessedFile

// NotifyPostCommand exports the post announcement command.
type NotifyPostCommand = notifycmd.NotifyPostCommand

// AllCategories is the category filter that matches every post.
const AllCategories = query.AllCategories

var (
	// ErrPostExists is returned by CreatePost when the target file is present.
	ErrPostExists = errors.New("blog: post already exists")
	// ErrEmptyTitle is returned by CreatePost for a blank title.
	ErrEmptyTitle = errors.New("blog: title is required")
)

// IsNotFound reports whether err means a post does not exist.
func IsNotFound(err error) bool {
	return posts.IsNotFound(err)
}

// Module represents the top level blog runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a blog module using the provided configuration and optional DI overrides.
func New(ctx context.Context, cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases resources held by the module.
func (m *Module) Close() error {
	if m == nil {
		return nil
	}
	return m.container.Close()
}

// API returns the JSON API handlers.
func (m *Module) API() *bloghttp.API {
	return m.container.API()
}

// Metrics returns the Prometheus collectors.
func (m *Module) Metrics() *metrics.Metrics {
	return m.container.Metrics()
}

// Watcher builds the new-post watcher.
func (m *Module) Watcher() (*watcher.Watcher, error) {
	return m.container.Watcher()
}

// LoadAll returns every post, newest first.
func (m *Module) LoadAll(ctx context.Context) ([]Post, error) {
	return m.container.Posts().LoadAll(ctx)
}

// LoadOne returns the post stored under slug.
func (m *Module) LoadOne(ctx context.Context, postSlug string) (Post, error) {
	return m.container.Posts().LoadOne(ctx, postSlug)
}

// Search filters and paginates the collection. A zero page size uses the
// configured one.
func (m *Module) Search(ctx context.Context, q Query, pageSize int) (Page, error) {
	list, err := m.LoadAll(ctx)
	if err != nil {
		return Page{}, err
	}
	if pageSize <= 0 {
		pageSize = m.container.Config.Content.PageSize
	}
	if strings.TrimSpace(q.Category) == "" {
		q.Category = AllCategories
	}
	return query.Run(list, q, pageSize), nil
}

// Categories returns every category with its post count, most used first.
func (m *Module) Categories(ctx context.Context) ([]CategoryCount, error) {
	list, err := m.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return query.TopCategories(list, 0), nil
}

// Notify announces the post stored under slug. Unless force is set, a post
// already recorded in the processed store is skipped with an error matching
// IsAlreadyProcessed.
func (m *Module) Notify(ctx context.Context, postSlug string, force bool) error {
	cmd, err := m.NotifyCommand(postSlug, force)
	if err != nil {
		return err
	}
	return m.container.CommandHandlers().Notify.Execute(ctx, cmd)
}

// NotifyCommand builds the announcement command for the post stored under slug.
func (m *Module) NotifyCommand(postSlug string, force bool) (NotifyPostCommand, error) {
	repo := m.container.Posts()
	source, err := repo.Source(postSlug)
	if err != nil {
		return NotifyPostCommand{}, err
	}
	cmd, err := notifycmd.CommandFromSource(postSlug+repo.Extension(), postSlug, source)
	if err != nil {
		return NotifyPostCommand{}, err
	}
	cmd.Force = force
	return cmd, nil
}

// IsAlreadyProcessed reports whether a notification was skipped because the
// file was announced before.
func IsAlreadyProcessed(err error) bool {
	return notifycmd.IsAlreadyProcessed(err)
}

// Forget clears the processed marker of filename.
func (m *Module) Forget(ctx context.Context, filename string) error {
	return m.container.CommandHandlers().Forget.Execute(ctx, notifycmd.ForgetProcessedCommand{Filename: filename})
}

// Processed lists the announced files.
func (m *Module) Processed(ctx context.Context) ([]ProcessedFile, error) {
	return m.container.ProcessedStore().List(ctx)
}

// LintResult is the front matter check of one source file.
type LintResult struct {
	Slug   string
	Err    error
	Issues []validation.ValidationIssue
}

// OK reports whether the source passed every check.
func (r LintResult) OK() bool {
	return r.Err == nil
}

// Lint checks the front matter of every source against the configured schema
// and reports sources that fail to build.
func (m *Module) Lint(ctx context.Context) ([]LintResult, error) {
	linter, err := m.container.Linter()
	if err != nil {
		return nil, err
	}
	repo := m.container.Posts()
	slugs, err := repo.Slugs()
	if err != nil {
		return nil, err
	}

	results := make([]LintResult, 0, len(slugs))
	for _, s := range slugs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := LintResult{Slug: s}
		source, err := repo.Source(s)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		meta, _, err := markdown.ParseFrontMatter(source)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		if err := linter.Lint(meta); err != nil {
			result.Err = err
			result.Issues = validation.Issues(err)
		} else if _, err := repo.Builder().Build(s, source); err != nil {
			result.Err = err
		}
		results = append(results, result)
	}
	return results, nil
}

// NewPost describes a post scaffold.
type NewPost struct {
	Title       string
	Description string
	Categories  []string
	Date        time.Time
}

// CreatePost writes a Markdown scaffold for post into the content directory
// and returns its slug. Existing files are never overwritten.
func (m *Module) CreatePost(post NewPost) (string, error) {
	title := strings.TrimSpace(post.Title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	postSlug, err := slug.Normalize(title)
	if err != nil {
		return "", fmt.Errorf("blog: slug for %q: %w", title, err)
	}
	if !posts.ValidSlug(postSlug) {
		return "", fmt.Errorf("blog: slug %q is not usable as a filename", postSlug)
	}

	source, err := RenderScaffold(post)
	if err != nil {
		return "", err
	}

	repo := m.container.Posts()
	dir := repo.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("blog: create content dir: %w", err)
	}
	path := filepath.Join(dir, postSlug+repo.Extension())
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrPostExists, path)
		}
		return "", fmt.Errorf("blog: create %s: %w", path, err)
	}
	if _, err := file.Write(source); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("blog: write %s: %w", path, err)
	}
	return postSlug, file.Close()
}

type scaffoldFrontMatter struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description"`
	Categories  []string `yaml:"categories"`
}

// RenderScaffold renders the source of a new post.
func RenderScaffold(post NewPost) ([]byte, error) {
	date := post.Date
	if date.IsZero() {
		date = time.Now()
	}
	categories := post.Categories
	if categories == nil {
		categories = []string{}
	}
	meta, err := yaml.Marshal(scaffoldFrontMatter{
		Title:       strings.TrimSpace(post.Title),
		Date:        date.Format(time.DateOnly),
		Description: strings.TrimSpace(post.Description),
		Categories:  categories,
	})
	if err != nil {
		return nil, fmt.Errorf("blog: render front matter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	b.WriteString("Write your post here.\n")
	return []byte(b.String()), nil
}
