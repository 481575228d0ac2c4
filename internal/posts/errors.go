package posts

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrPostNotFound indicates that no source file exists for a slug.
	ErrPostNotFound = errors.New("posts: post not found")
	// ErrInvalidSlug indicates a slug that cannot name a file in the content directory.
	ErrInvalidSlug = errors.New("posts: invalid slug")
)

const (
	textCodePostNotFound = "POST_NOT_FOUND"
	textCodeInvalidSlug  = "POST_INVALID_SLUG"
)

func notFoundError(slug string) error {
	return goerrors.Wrap(ErrPostNotFound, goerrors.CategoryNotFound, fmt.Sprintf("post %q not found", slug)).
		WithTextCode(textCodePostNotFound)
}

func invalidSlugError(slug string) error {
	return goerrors.Wrap(ErrInvalidSlug, goerrors.CategoryValidation, fmt.Sprintf("slug %q is not valid", slug)).
		WithTextCode(textCodeInvalidSlug)
}

// IsNotFound reports whether err signals a missing post. Invalid slugs are
// reported as not found as well since no file can match them.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPostNotFound) || errors.Is(err, ErrInvalidSlug) {
		return true
	}
	return goerrors.IsCategory(err, goerrors.CategoryNotFound)
}
