package newsletter

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

// PostURLs resolves the public URL of a post.
type PostURLs interface {
	PostURL(slug string) (string, error)
}

// BroadcastNotifier announces new posts as ConvertKit broadcasts.
type BroadcastNotifier struct {
	client *Client
	urls   PostURLs
}

var _ interfaces.Notifier = (*BroadcastNotifier)(nil)

// NewBroadcastNotifier wires a client and URL resolver into a Notifier.
func NewBroadcastNotifier(client *Client, urls PostURLs) *BroadcastNotifier {
	return &BroadcastNotifier{client: client, urls: urls}
}

// Notify sends one broadcast for post.
func (n *BroadcastNotifier) Notify(ctx context.Context, post interfaces.PostNotification) error {
	if n == nil || n.client == nil {
		return missingConfig(ErrMissingAPIKey)
	}
	link, err := n.postURL(post.Slug)
	if err != nil {
		return err
	}
	_, err = n.client.SendBroadcast(ctx, BuildBroadcast(post, link))
	return err
}

func (n *BroadcastNotifier) postURL(slug string) (string, error) {
	if n.urls == nil {
		return "/posts/" + slug, nil
	}
	link, err := n.urls.PostURL(slug)
	if err != nil {
		return "", fmt.Errorf("newsletter: resolve post url: %w", err)
	}
	return link, nil
}

// BuildBroadcast renders the broadcast announcing post at link.
func BuildBroadcast(post interfaces.PostNotification, link string) Broadcast {
	title := strings.TrimSpace(post.Title)
	description := strings.TrimSpace(post.Description)
	safeTitle := html.EscapeString(title)
	safeLink := html.EscapeString(link)

	var content strings.Builder
	content.WriteString("<h2>" + safeTitle + "</h2>")
	content.WriteString("<p>" + html.EscapeString(description) + "</p>")
	content.WriteString(`<p>Read the full post here: <a href="` + safeLink + `">` + safeLink + `</a></p>`)

	return Broadcast{
		Subject:     "New Blog Post: " + title,
		Content:     content.String(),
		Description: "Broadcast for new blog post: " + title,
	}
}
