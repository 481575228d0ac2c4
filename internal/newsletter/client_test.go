package newsletter_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/darshanbajgain/darshan-blog-temp/internal/newsletter"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	Body   map[string]any
}

type fakeConvertKit struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	response string
}

func (f *fakeConvertKit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	captured := capturedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  map[string]string{},
		Auth:   r.Header.Get("Authorization"),
	}
	for key := range r.URL.Query() {
		captured.Query[key] = r.URL.Query().Get(key)
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&captured.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, captured)
	f.mu.Unlock()

	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(f.response))
}

func (f *fakeConvertKit) last(t *testing.T) capturedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, fake *fakeConvertKit, cfg newsletter.Config) *newsletter.Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	cfg.BaseURL = server.URL
	return newsletter.NewClient(cfg, newsletter.WithHTTPClient(server.Client()))
}

func TestSendBroadcastPostsBearerRequest(t *testing.T) {
	fake := &fakeConvertKit{response: `{"broadcast":{"id":42,"subject":"New Blog Post: Hello"}}`}
	client := newTestClient(t, fake, newsletter.Config{APIKey: "key-123"})

	result, err := client.SendBroadcast(context.Background(), newsletter.Broadcast{
		Subject: "New Blog Post: Hello",
		Content: "<h2>Hello</h2>",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.ID)

	req := fake.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v3/broadcasts", req.Path)
	assert.Equal(t, "Bearer key-123", req.Auth)
	broadcast, ok := req.Body["broadcast"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "New Blog Post: Hello", broadcast["subject"])
}

func TestSendBroadcastNon2xxIsExternalError(t *testing.T) {
	fake := &fakeConvertKit{status: http.StatusUnauthorized, response: `{"error":"Authorization Failed"}`}
	client := newTestClient(t, fake, newsletter.Config{APIKey: "bad"})

	_, err := client.SendBroadcast(context.Background(), newsletter.Broadcast{Subject: "x"})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryExternal))

	apiErr, ok := newsletter.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Authorization Failed", apiErr.Message)
}

func TestSendBroadcastWithoutKey(t *testing.T) {
	client := newsletter.NewClient(newsletter.Config{})
	_, err := client.SendBroadcast(context.Background(), newsletter.Broadcast{Subject: "x"})
	assert.True(t, errors.Is(err, newsletter.ErrMissingAPIKey))
}

func TestFindSubscriberPrefersSecret(t *testing.T) {
	fake := &fakeConvertKit{response: `{"total_subscribers":1}`}
	client := newTestClient(t, fake, newsletter.Config{APIKey: "key", APISecret: "secret"})

	found, err := client.FindSubscriber(context.Background(), "reader@example.com")
	require.NoError(t, err)
	assert.True(t, found)

	req := fake.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/v3/subscribers", req.Path)
	assert.Equal(t, "secret", req.Query["api_secret"])
	assert.Equal(t, "reader@example.com", req.Query["email_address"])
}

func TestFindSubscriberFallsBackToKey(t *testing.T) {
	fake := &fakeConvertKit{response: `{"total_subscribers":0}`}
	client := newTestClient(t, fake, newsletter.Config{APIKey: "key"})

	found, err := client.FindSubscriber(context.Background(), "reader@example.com")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "key", fake.last(t).Query["api_secret"])
}

func TestSubscribeSendsFormPayload(t *testing.T) {
	fake := &fakeConvertKit{response: `{"subscription":{"id":7,"state":"inactive","subscriber":{"id":99}}}`}
	client := newTestClient(t, fake, newsletter.Config{APIKey: "key", FormID: "123", TagID: "456"})

	result, err := client.Subscribe(context.Background(), newsletter.Subscription{Email: " reader@example.com ", FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.ID)
	assert.Equal(t, int64(99), result.Subscriber.ID)

	req := fake.last(t)
	assert.Equal(t, "/v3/forms/123/subscribe", req.Path)
	assert.Equal(t, "key", req.Body["api_key"])
	assert.Equal(t, "reader@example.com", req.Body["email"])
	assert.Equal(t, "Ada", req.Body["first_name"])
	assert.Equal(t, []any{float64(456)}, req.Body["tags"])
	assert.Equal(t, map[string]any{"source": newsletter.DefaultSignupSource}, req.Body["fields"])
}

func TestSubscribeRequiresForm(t *testing.T) {
	client := newsletter.NewClient(newsletter.Config{APIKey: "key"})
	_, err := client.Subscribe(context.Background(), newsletter.Subscription{Email: "a@b.co"})
	assert.ErrorIs(t, err, newsletter.ErrMissingFormID)
}

type staticURLs struct{}

func (staticURLs) PostURL(slug string) (string, error) {
	return "https://blog.example.com/posts/" + slug, nil
}

func TestBroadcastNotifierBuildsAnnouncement(t *testing.T) {
	fake := &fakeConvertKit{response: `{"broadcast":{"id":1}}`}
	client := newTestClient(t, fake, newsletter.Config{APIKey: "key"})
	notifier := newsletter.NewBroadcastNotifier(client, staticURLs{})

	err := notifier.Notify(context.Background(), interfaces.PostNotification{
		Title:       "Hello <World>",
		Description: "First post",
		Content:     "# raw body",
		Slug:        "hello-world",
	})
	require.NoError(t, err)

	broadcast := fake.last(t).Body["broadcast"].(map[string]any)
	assert.Equal(t, "New Blog Post: Hello <World>", broadcast["subject"])
	assert.Equal(t, "Broadcast for new blog post: Hello <World>", broadcast["description"])
	content := broadcast["content"].(string)
	assert.True(t, strings.HasPrefix(content, "<h2>Hello &lt;World&gt;</h2>"))
	assert.Contains(t, content, `<a href="https://blog.example.com/posts/hello-world">`)
}

func TestBroadcastNotifierPropagatesFailure(t *testing.T) {
	fake := &fakeConvertKit{status: http.StatusInternalServerError, response: `oops`}
	client := newTestClient(t, fake, newsletter.Config{APIKey: "key"})
	notifier := newsletter.NewBroadcastNotifier(client, staticURLs{})

	err := notifier.Notify(context.Background(), interfaces.PostNotification{Title: "T", Slug: "t"})
	require.Error(t, err)
	apiErr, ok := newsletter.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "oops", apiErr.Message)
}
