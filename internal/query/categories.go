package query

import (
	"sort"

	"github.com/darshanbajgain/darshan-blog-temp/internal/posts"
)

// CategoryCount pairs a category with the number of posts carrying it.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CategoryCounts maps every category to the number of posts tagged with it.
func CategoryCounts(list []posts.Post) map[string]int {
	counts := make(map[string]int)
	for _, post := range list {
		for _, category := range post.Categories {
			counts[category]++
		}
	}
	return counts
}

// TopCategories returns the n most used categories, highest count first.
// Equal counts are ordered by name.
func TopCategories(list []posts.Post, n int) []CategoryCount {
	counts := CategoryCounts(list)
	out := make([]CategoryCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, CategoryCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Categories lists the distinct categories in first-seen order.
func Categories(list []posts.Post) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, post := range list {
		for _, category := range post.Categories {
			if category == "" {
				continue
			}
			if _, ok := seen[category]; ok {
				continue
			}
			seen[category] = struct{}{}
			out = append(out, category)
		}
	}
	return out
}
