package interfaces

import "context"

// PostNotification is the payload pushed to the broadcast service when a new
// post file settles on disk. Content carries the raw, unrendered body.
type PostNotification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Slug        string `json:"slug"`
}

// Notifier delivers post notifications to an external broadcast service.
// Implementations must treat any non-2xx response as a failure.
type Notifier interface {
	Notify(ctx context.Context, post PostNotification) error
}
