// Package query filters, paginates and summarises an already loaded post
// collection. Every function is pure and never touches the filesystem.
package query

import (
	"strings"

	"github.com/darshanbajgain/darshan-blog-temp/internal/posts"
)

// AllCategories is the category value that disables category filtering.
const AllCategories = "all"

// DefaultPageSize is the number of posts per listing page.
const DefaultPageSize = 6

// Query selects posts by free text and category. Page is 1-indexed.
type Query struct {
	Text     string `json:"q"`
	Category string `json:"category"`
	Page     int    `json:"page"`
	// PlainText matches Text against the rendered content with markup
	// removed instead of the raw HTML.
	PlainText bool `json:"plain_text,omitempty"`
}

// Page is one page of a filtered collection.
type Page struct {
	Items         []posts.Post `json:"items"`
	TotalMatching int          `json:"total_matching"`
	TotalPages    int          `json:"total_pages"`
	Page          int          `json:"page"`
	PageSize      int          `json:"page_size"`
}

// Matches reports whether post satisfies q, ignoring q.Page.
func Matches(post posts.Post, q Query) bool {
	return matchesText(post, q) && matchesCategory(post, q.Category)
}

// Filter returns the posts matching q in their original order.
func Filter(list []posts.Post, q Query) []posts.Post {
	out := make([]posts.Post, 0, len(list))
	for _, post := range list {
		if Matches(post, q) {
			out = append(out, post)
		}
	}
	return out
}

// Paginate returns the 1-indexed page of list. Pages past the end, and page
// numbers below 1, yield an empty slice.
func Paginate(list []posts.Post, page, size int) []posts.Post {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		return []posts.Post{}
	}
	start := (page - 1) * size
	if start >= len(list) {
		return []posts.Post{}
	}
	end := min(start+size, len(list))
	return list[start:end]
}

// TotalPages returns how many pages of size hold total items.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Run filters list with q and returns the requested page. A page below 1 is
// treated as the first page.
func Run(list []posts.Post, q Query, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	page := max(q.Page, 1)

	matched := Filter(list, q)
	return Page{
		Items:         Paginate(matched, page, size),
		TotalMatching: len(matched),
		TotalPages:    TotalPages(len(matched), size),
		Page:          page,
		PageSize:      size,
	}
}

// ByCategory returns posts tagged with category, keeping their order.
func ByCategory(list []posts.Post, category string) []posts.Post {
	return Filter(list, Query{Category: category})
}

// Latest returns at most n posts from the head of list.
func Latest(list []posts.Post, n int) []posts.Post {
	if n <= 0 || len(list) == 0 {
		return []posts.Post{}
	}
	return list[:min(n, len(list))]
}

// Featured returns up to limit posts carrying any of categories.
func Featured(list []posts.Post, categories []string, limit int) []posts.Post {
	out := []posts.Post{}
	if limit <= 0 {
		return out
	}
	for _, post := range list {
		for _, category := range categories {
			if post.HasCategory(category) {
				out = append(out, post)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func matchesText(post posts.Post, q Query) bool {
	if q.Text == "" {
		return true
	}
	needle := strings.ToLower(q.Text)
	if strings.Contains(strings.ToLower(post.Title), needle) ||
		strings.Contains(strings.ToLower(post.Description), needle) {
		return true
	}
	content := post.Content
	if q.PlainText {
		content = PlainText(content)
	}
	return strings.Contains(strings.ToLower(content), needle)
}

func matchesCategory(post posts.Post, category string) bool {
	if category == "" || category == AllCategories {
		return true
	}
	return post.HasCategory(category)
}
