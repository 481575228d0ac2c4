package notifycmd

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/darshanbajgain/darshan-blog-temp/internal/markdown"
	"github.com/darshanbajgain/darshan-blog-temp/internal/posts"
)

const (
	notifyPostMessageType      = "blog.posts.notify"
	forgetProcessedMessageType = "blog.posts.forget_processed"
)

// NotifyPostCommand announces a new post to subscribers. Filename is the
// dedup key recorded once the announcement succeeds.
type NotifyPostCommand struct {
	// Filename is the source file name inside the content directory.
	Filename string `json:"filename"`
	// Slug is the post identifier used to build its public URL.
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Content carries the raw Markdown body, not rendered HTML.
	Content string `json:"content"`
	// Force sends the announcement even if Filename was already recorded.
	Force bool `json:"force,omitempty"`
}

// Type implements command.Message.
func (NotifyPostCommand) Type() string { return notifyPostMessageType }

// Validate ensures identifying fields are present before handlers execute.
func (cmd NotifyPostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Filename, validation.Required, validation.By(notBlank("blog.posts.notify.filename_required", "filename is required"))),
		validation.Field(&cmd.Slug, validation.Required, validation.By(notBlank("blog.posts.notify.slug_required", "slug is required"))),
		validation.Field(&cmd.Title, validation.Required),
	)
}

// CommandFromSource builds the announcement for a post source. Content keeps
// the raw Markdown body; missing title and description fall back to the post
// defaults.
func CommandFromSource(filename, slug string, source []byte) (NotifyPostCommand, error) {
	meta, body, err := markdown.ParseFrontMatter(source)
	if err != nil {
		return NotifyPostCommand{}, fmt.Errorf("front matter %s: %w", filename, err)
	}

	title, _ := meta.String("title")
	if strings.TrimSpace(title) == "" {
		title = posts.DefaultTitle
	}
	description, _ := meta.String("description")
	if strings.TrimSpace(description) == "" {
		description = posts.DefaultDescription
	}

	return NotifyPostCommand{
		Filename:    filename,
		Slug:        slug,
		Title:       title,
		Description: description,
		Content:     string(body),
	}, nil
}

// ForgetProcessedCommand clears the processed marker for Filename so the
// next detection announces it again.
type ForgetProcessedCommand struct {
	Filename string `json:"filename"`
}

// Type implements command.Message.
func (ForgetProcessedCommand) Type() string { return forgetProcessedMessageType }

// Validate ensures the filename is present.
func (cmd ForgetProcessedCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Filename, validation.Required, validation.By(notBlank("blog.posts.forget_processed.filename_required", "filename is required"))),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
