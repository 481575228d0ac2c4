// Package posts builds blog post records from Markdown sources and loads
// them as a collection ordered newest first.
package posts

import "strings"

// Defaults applied when a source omits a field.
const (
	DefaultTitle       = "Untitled Post"
	DefaultDescription = "No description available"
	DefaultAuthor      = "Darshan Bajgain"
)

// Placeholder values used for sources that could not be processed.
const (
	ErrorTitle       = "Error Loading Post"
	ErrorDescription = "Could not load this post due to an error"
	ErrorContent     = "<p>Error loading content</p>"
)

// Post is a rendered blog entry. Content always carries HTML.
type Post struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Categories  []string `json:"categories"`
	Image       string   `json:"image,omitempty"`
	Author      string   `json:"author,omitempty"`
}

// HasCategory reports whether the post is tagged with category.
func (p Post) HasCategory(category string) bool {
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Placeholder returns the record used in place of a source that failed to load.
func Placeholder(slug, date string) Post {
	return Post{
		Slug:        slug,
		Title:       ErrorTitle,
		Date:        date,
		Description: ErrorDescription,
		Content:     ErrorContent,
		Categories:  []string{},
	}
}

// IsPlaceholder reports whether p was produced by Placeholder.
func (p Post) IsPlaceholder() bool {
	return p.Title == ErrorTitle && p.Content == ErrorContent
}

// Entry is the outcome of loading one source file. Err is set when the source
// could not be processed; Post then holds the placeholder record.
type Entry struct {
	Post Post
	Err  error
}

// Failed reports whether the entry carries a processing error.
func (e Entry) Failed() bool {
	return e.Err != nil
}

// SlugFromFilename strips ext from name. It returns false when name does not
// carry ext or nothing is left once it is removed.
func SlugFromFilename(name, ext string) (string, bool) {
	if !strings.HasSuffix(name, ext) {
		return "", false
	}
	slug := strings.TrimSuffix(name, ext)
	if slug == "" {
		return "", false
	}
	return slug, true
}
