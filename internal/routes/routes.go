// Package routes builds public URLs for posts and categories with go-urlkit.
package routes

import (
	"errors"
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

const (
	GroupSite     = "site"
	RouteHome     = "home"
	RoutePosts    = "posts"
	RoutePost     = "post"
	RouteCategory = "category"
	RouteContact  = "contact"
)

var (
	ErrEmptySlug     = errors.New("routes: slug is required")
	ErrEmptyCategory = errors.New("routes: category is required")
)

// DefaultPaths mirrors the public site layout.
func DefaultPaths() map[string]string {
	return map[string]string{
		RouteHome:     "/",
		RoutePosts:    "/posts",
		RoutePost:     "/posts/:slug",
		RouteCategory: "/categories/:category",
		RouteContact:  "/contact",
	}
}

// Config returns a route manager configuration rooted at baseURL.
func Config(baseURL string) *urlkit.Config {
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    GroupSite,
				BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
				Paths:   DefaultPaths(),
			},
		},
	}
}

// Resolver resolves named site routes.
type Resolver struct {
	manager *urlkit.RouteManager
	group   *urlkit.Group
}

// NewResolver constructs a resolver for the given site base URL.
func NewResolver(baseURL string) (*Resolver, error) {
	return NewResolverWithManager(urlkit.NewRouteManager(Config(baseURL)))
}

// NewResolverWithManager wraps an existing manager that declares the site group.
func NewResolverWithManager(manager *urlkit.RouteManager) (*Resolver, error) {
	if manager == nil {
		return nil, fmt.Errorf("routes: route manager not configured")
	}
	group, err := lookupGroup(manager, GroupSite)
	if err != nil {
		return nil, err
	}
	return &Resolver{manager: manager, group: group}, nil
}

// PostURL returns the absolute URL of a post.
func (r *Resolver) PostURL(slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", ErrEmptySlug
	}
	return r.build(RoutePost, map[string]any{"slug": slug}, nil)
}

// CategoryURL returns the absolute URL of a category listing.
func (r *Resolver) CategoryURL(category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", ErrEmptyCategory
	}
	return r.build(RouteCategory, map[string]any{"category": category}, nil)
}

// SearchURL returns the posts listing URL with the search and filter query applied.
func (r *Resolver) SearchURL(text, category string, page int) (string, error) {
	query := map[string]string{}
	if text = strings.TrimSpace(text); text != "" {
		query["q"] = text
	}
	if category = strings.TrimSpace(category); category != "" && !strings.EqualFold(category, "all") {
		query["category"] = category
	}
	if page > 1 {
		query["page"] = fmt.Sprint(page)
	}
	return r.build(RoutePosts, nil, query)
}

// URL resolves any named route in the site group.
func (r *Resolver) URL(route string, params map[string]any) (string, error) {
	return r.build(route, params, nil)
}

func (r *Resolver) build(route string, params map[string]any, query map[string]string) (string, error) {
	if r == nil || r.group == nil {
		return "", fmt.Errorf("routes: resolver not configured")
	}
	builder, err := safeBuilder(r.group, route)
	if err != nil {
		return "", err
	}
	for key, val := range params {
		builder.WithParam(key, val)
	}
	for key, val := range query {
		builder.WithQuery(key, val)
	}
	return builder.Build()
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("routes: unknown route %q", route)
		}
	}()
	builder = group.Builder(route)
	return builder, nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("routes: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	if group == nil {
		return nil, fmt.Errorf("routes: route group %q not found", name)
	}
	return group, nil
}
