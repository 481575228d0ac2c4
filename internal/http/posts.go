package http

import (
	"net/http"
	"strings"

	"github.com/darshanbajgain/darshan-blog-temp/internal/posts"
	"github.com/darshanbajgain/darshan-blog-temp/internal/query"
)

type postView struct {
	posts.Post
	ReadingTime int    `json:"readingTime"`
	URL         string `json:"url,omitempty"`
}

type postListResponse struct {
	Posts         []postView `json:"posts"`
	TotalMatching int        `json:"totalMatching"`
	TotalPages    int        `json:"totalPages"`
	Page          int        `json:"page"`
	PageSize      int        `json:"pageSize"`
	Query         string     `json:"q,omitempty"`
	Category      string     `json:"category"`
}

type categoryView struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	URL   string `json:"url,omitempty"`
}

type categoryResponse struct {
	Category string     `json:"category"`
	Posts    []postView `json:"posts"`
}

type homeResponse struct {
	Latest        []postView     `json:"latest"`
	TopCategories []categoryView `json:"topCategories"`
	Featured      []postView     `json:"featured"`
}

func (api *API) handlePostList(w http.ResponseWriter, r *http.Request) {
	if api.posts == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	values := r.URL.Query()
	q := query.Query{
		Text:      strings.TrimSpace(values.Get("q")),
		Category:  strings.TrimSpace(values.Get("category")),
		Page:      parsePage(values.Get("page")),
		PlainText: parseBoolQuery(values.Get("plain"), api.plainText),
	}
	if q.Category == "" {
		q.Category = query.AllCategories
	}

	list, err := api.posts.LoadAll(r.Context())
	if err != nil {
		api.logger.Error("http.posts.load_failed", "error", err)
		writeError(w, err)
		return
	}
	page := query.Run(list, q, api.pageSize)
	writeJSON(w, http.StatusOK, postListResponse{
		Posts:         api.views(page.Items),
		TotalMatching: page.TotalMatching,
		TotalPages:    page.TotalPages,
		Page:          page.Page,
		PageSize:      page.PageSize,
		Query:         q.Text,
		Category:      q.Category,
	})
}

func (api *API) handlePostGet(w http.ResponseWriter, r *http.Request) {
	if api.posts == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	post, err := api.posts.LoadOne(r.Context(), r.PathValue("slug"))
	if err != nil {
		if !posts.IsNotFound(err) {
			api.logger.Error("http.post.load_failed", "slug", r.PathValue("slug"), "error", err)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.view(post))
}

func (api *API) handleCategoryList(w http.ResponseWriter, r *http.Request) {
	if api.posts == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	list, err := api.posts.LoadAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.categoryViews(query.TopCategories(list, 0)))
}

func (api *API) handleCategoryGet(w http.ResponseWriter, r *http.Request) {
	if api.posts == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	category := strings.TrimSpace(r.PathValue("category"))
	list, err := api.posts.LoadAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	matching := query.ByCategory(list, category)
	if category == "" || len(matching) == 0 || strings.EqualFold(category, query.AllCategories) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "Category not found"})
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{Category: category, Posts: api.views(matching)})
}

func (api *API) handleHome(w http.ResponseWriter, r *http.Request) {
	if api.posts == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	list, err := api.posts.LoadAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, homeResponse{
		Latest:        api.views(query.Latest(list, DefaultLatestCount)),
		TopCategories: api.categoryViews(query.TopCategories(list, DefaultTopCategories)),
		Featured:      api.views(query.Featured(list, api.featured, DefaultFeaturedCount)),
	})
}

func (api *API) view(post posts.Post) postView {
	view := postView{Post: post, ReadingTime: query.ReadingTime(post.Content)}
	if api.urls != nil {
		if url, err := api.urls.PostURL(post.Slug); err == nil {
			view.URL = url
		}
	}
	return view
}

func (api *API) views(list []posts.Post) []postView {
	out := make([]postView, 0, len(list))
	for _, post := range list {
		out = append(out, api.view(post))
	}
	return out
}

func (api *API) categoryViews(counts []query.CategoryCount) []categoryView {
	out := make([]categoryView, 0, len(counts))
	for _, count := range counts {
		view := categoryView{Name: count.Name, Count: count.Count}
		if api.urls != nil {
			if url, err := api.urls.CategoryURL(count.Name); err == nil {
				view.URL = url
			}
		}
		out = append(out, view)
	}
	return out
}
