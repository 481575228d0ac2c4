package posts

import (
	"fmt"
	"strings"
	"time"

	"github.com/darshanbajgain/darshan-blog-temp/internal/markdown"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

// Front matter keys read by the builder.
const (
	keyTitle       = "title"
	keyDate        = "date"
	keyDescription = "description"
	keyCategories  = "categories"
	keyImage       = "image"
	keyAuthor      = "author"
)

// Builder turns a source file into a Post.
type Builder struct {
	parser        interfaces.MarkdownParser
	defaultAuthor string
	now           func() time.Time
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithParser sets the Markdown renderer.
func WithParser(parser interfaces.MarkdownParser) BuilderOption {
	return func(b *Builder) {
		if parser != nil {
			b.parser = parser
		}
	}
}

// WithDefaultAuthor overrides the author used when a source names none.
func WithDefaultAuthor(author string) BuilderOption {
	return func(b *Builder) {
		if author = strings.TrimSpace(author); author != "" {
			b.defaultAuthor = author
		}
	}
}

// WithClock sets the time source for the default date.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder constructs a Builder. Without WithParser it renders with
// markdown.DefaultParseOptions.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		defaultAuthor: DefaultAuthor,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.parser == nil {
		b.parser = markdown.NewGoldmarkParser(markdown.DefaultParseOptions())
	}
	return b
}

// Today returns the default date in markdown.DateLayout form.
func (b *Builder) Today() string {
	return b.now().UTC().Format(markdown.DateLayout)
}

// Build parses source into a Post. When processing fails the returned Post is
// the placeholder record for slug and the error explains why.
func (b *Builder) Build(slug string, source []byte) (post Post, err error) {
	defer func() {
		if r := recover(); r != nil {
			post = Placeholder(slug, b.Today())
			err = fmt.Errorf("build post %s: panic: %v", slug, r)
		}
	}()

	meta, body, err := markdown.ParseFrontMatter(source)
	if err != nil {
		return Placeholder(slug, b.Today()), fmt.Errorf("build post %s: %w", slug, err)
	}

	html, err := b.parser.Parse(body)
	if err != nil {
		return Placeholder(slug, b.Today()), fmt.Errorf("build post %s: %w", slug, err)
	}

	return Post{
		Slug:        slug,
		Title:       stringOr(meta, keyTitle, DefaultTitle),
		Date:        stringOr(meta, keyDate, b.Today()),
		Description: stringOr(meta, keyDescription, DefaultDescription),
		Content:     string(html),
		Categories:  meta.Strings(keyCategories),
		Image:       stringOr(meta, keyImage, ""),
		Author:      stringOr(meta, keyAuthor, b.defaultAuthor),
	}, nil
}

// BuildEntry is Build expressed as an Entry.
func (b *Builder) BuildEntry(slug string, source []byte) Entry {
	post, err := b.Build(slug, source)
	return Entry{Post: post, Err: err}
}

func stringOr(meta markdown.FrontMatter, key, fallback string) string {
	value, ok := meta.String(key)
	if !ok {
		return fallback
	}
	if value = strings.TrimSpace(value); value == "" {
		return fallback
	}
	return value
}
