package posts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/darshanbajgain/darshan-blog-temp/internal/logging"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

// DefaultExtension is the suffix of post source files.
const DefaultExtension = ".md"

// Config controls where posts are discovered.
type Config struct {
	// Dir is the directory holding post sources.
	Dir string
	// Extension selects source files. Defaults to ".md".
	Extension string
	// Workers bounds concurrent builds. Values below 2 build sequentially.
	Workers int
}

// LoadObserver receives a summary of every collection load.
type LoadObserver interface {
	ObserveLoad(total, failed int, elapsed time.Duration)
}

// Repository loads posts from a content directory. Every call reads the
// directory afresh; nothing is cached between loads.
type Repository struct {
	fs        fs.FS
	dir       string
	extension string
	workers   int
	builder   *Builder
	logger    interfaces.Logger
	observer  LoadObserver
}

// RepositoryOption customises a Repository.
type RepositoryOption func(*Repository)

// WithFS reads sources from filesystem instead of the directory named in Config.
func WithFS(filesystem fs.FS) RepositoryOption {
	return func(r *Repository) {
		if filesystem != nil {
			r.fs = filesystem
		}
	}
}

// WithBuilder sets the record builder.
func WithBuilder(builder *Builder) RepositoryOption {
	return func(r *Repository) {
		if builder != nil {
			r.builder = builder
		}
	}
}

// WithLogger sets the repository logger.
func WithLogger(logger interfaces.Logger) RepositoryOption {
	return func(r *Repository) {
		r.logger = logging.OrNoOp(logger)
	}
}

// WithObserver registers a load observer such as the metrics collector.
func WithObserver(observer LoadObserver) RepositoryOption {
	return func(r *Repository) {
		r.observer = observer
	}
}

// NewRepository constructs a Repository for cfg.
func NewRepository(cfg Config, opts ...RepositoryOption) *Repository {
	ext := strings.TrimSpace(cfg.Extension)
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	r := &Repository{
		dir:       cfg.Dir,
		extension: ext,
		workers:   cfg.Workers,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fs == nil {
		r.fs = os.DirFS(dirOrDot(cfg.Dir))
	}
	if r.builder == nil {
		r.builder = NewBuilder()
	}
	return r
}

// Dir returns the configured content directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Extension returns the source file suffix.
func (r *Repository) Extension() string {
	return r.extension
}

// Builder returns the record builder used by the repository.
func (r *Repository) Builder() *Builder {
	return r.builder
}

// LoadAll returns every post sorted by date, newest first. Sources that fail
// to process appear as placeholder records. A missing directory yields an
// empty collection.
func (r *Repository) LoadAll(ctx context.Context) ([]Post, error) {
	entries, err := r.LoadEntries(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Post, len(entries))
	for i, entry := range entries {
		out[i] = entry.Post
	}
	return out, nil
}

// LoadEntries is LoadAll keeping per-file failures visible. The result is
// sorted like LoadAll. Only context cancellation and an unreadable directory
// are returned as errors.
func (r *Repository) LoadEntries(ctx context.Context) ([]Entry, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	started := time.Now()
	slugs, err := r.discover()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(slugs))
	group, gctx := errgroup.WithContext(ctx)
	if r.workers > 1 {
		group.SetLimit(r.workers)
	} else {
		group.SetLimit(1)
	}

	for i, slug := range slugs {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = r.loadEntry(slug)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	SortEntries(entries)

	failed := 0
	for _, entry := range entries {
		if !entry.Failed() {
			continue
		}
		failed++
		logging.WithPostContext(r.logger, entry.Post.Slug, r.filename(entry.Post.Slug)).
			Warn("posts.load.failed", "error", entry.Err)
	}

	elapsed := time.Since(started)
	r.logger.Debug("posts.load.completed", "total", len(entries), "failed", failed, "elapsed", elapsed)
	if r.observer != nil {
		r.observer.ObserveLoad(len(entries), failed, elapsed)
	}

	return entries, nil
}

// LoadOne returns the post stored in slug plus the extension. A missing file
// is reported with ErrPostNotFound; a file that exists but fails to process
// yields the placeholder record.
func (r *Repository) LoadOne(ctx context.Context, slug string) (Post, error) {
	entry, err := r.LoadEntry(ctx, slug)
	if err != nil {
		return Post{}, err
	}
	if entry.Failed() {
		logging.WithPostContext(r.logger, slug, r.filename(slug)).
			Warn("posts.load.failed", "error", entry.Err)
	}
	return entry.Post, nil
}

// LoadEntry is LoadOne keeping a processing failure visible.
func (r *Repository) LoadEntry(ctx context.Context, slug string) (Entry, error) {
	select {
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	default:
	}

	if !ValidSlug(slug) {
		return Entry{}, invalidSlugError(slug)
	}

	name := r.filename(slug)
	info, err := fs.Stat(r.fs, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, notFoundError(slug)
		}
		return Entry{Post: Placeholder(slug, r.builder.Today()), Err: fmt.Errorf("stat %s: %w", name, err)}, nil
	}
	if !info.Mode().IsRegular() {
		return Entry{}, notFoundError(slug)
	}

	return r.loadEntry(slug), nil
}

// Source returns the raw bytes of the source for slug.
func (r *Repository) Source(slug string) ([]byte, error) {
	if !ValidSlug(slug) {
		return nil, invalidSlugError(slug)
	}
	data, err := fs.ReadFile(r.fs, r.filename(slug))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFoundError(slug)
		}
		return nil, fmt.Errorf("read %s: %w", r.filename(slug), err)
	}
	return data, nil
}

// Slugs lists the slugs of every source file in enumeration order.
func (r *Repository) Slugs() ([]string, error) {
	return r.discover()
}

func (r *Repository) loadEntry(slug string) Entry {
	name := r.filename(slug)
	data, err := fs.ReadFile(r.fs, name)
	if err != nil {
		return Entry{Post: Placeholder(slug, r.builder.Today()), Err: fmt.Errorf("read %s: %w", name, err)}
	}
	return r.builder.BuildEntry(slug, data)
}

func (r *Repository) discover() ([]string, error) {
	dirEntries, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("posts.dir.missing", "dir", r.dir)
			return []string{}, nil
		}
		return nil, fmt.Errorf("posts read dir %s: %w", r.dir, err)
	}

	slugs := make([]string, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if !entry.Type().IsRegular() {
			continue
		}
		slug, ok := SlugFromFilename(entry.Name(), r.extension)
		if !ok {
			continue
		}
		slugs = append(slugs, slug)
	}
	return slugs, nil
}

func (r *Repository) filename(slug string) string {
	return slug + r.extension
}

// ValidSlug reports whether slug names a file directly inside the content
// directory.
func ValidSlug(slug string) bool {
	if strings.TrimSpace(slug) == "" || slug == "." || slug == ".." {
		return false
	}
	if strings.ContainsAny(slug, `/\`) || strings.ContainsRune(slug, 0) {
		return false
	}
	return fs.ValidPath(path.Clean(slug))
}

// SortEntries orders entries by date, newest first. Dates that cannot be
// parsed sort after every parseable date; ties fall back to slug order.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return postLess(entries[i].Post, entries[j].Post)
	})
}

// SortPosts orders posts the same way as SortEntries.
func SortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return postLess(posts[i], posts[j])
	})
}

func postLess(a, b Post) bool {
	ta, okA := ParseDate(a.Date)
	tb, okB := ParseDate(b.Date)
	switch {
	case okA && okB && !ta.Equal(tb):
		return ta.After(tb)
	case okA != okB:
		return okA
	case !okA && !okB && a.Date != b.Date:
		return a.Date > b.Date
	}
	return a.Slug < b.Slug
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02 Jan 2006",
}

// ParseDate interprets a post date in any of the accepted layouts.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dirOrDot(dir string) string {
	if strings.TrimSpace(dir) == "" {
		return "."
	}
	return dir
}
