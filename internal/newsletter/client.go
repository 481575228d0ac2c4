// Package newsletter talks to the ConvertKit v3 API: broadcasts for new posts
// and form subscriptions for readers.
package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/darshanbajgain/darshan-blog-temp/internal/logging"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
)

const (
	DefaultBaseURL        = "https://api.convertkit.com"
	DefaultTimeout        = 10 * time.Second
	DefaultSignupSource   = "Website Newsletter Form"
	maxErrorBodyBytes     = 64 << 10
	textCodeAPIFailure    = "CONVERTKIT_REQUEST_FAILED"
	textCodeMissingConfig = "CONVERTKIT_NOT_CONFIGURED"
)

var (
	ErrMissingAPIKey = errors.New("newsletter: api key is required")
	ErrMissingFormID = errors.New("newsletter: form id is required")
	ErrEmptyEmail    = errors.New("newsletter: email is required")
)

// Config holds the ConvertKit credentials and endpoints.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	FormID    string
	TagID     string
	Timeout   time.Duration
}

// Client is a thin ConvertKit HTTP client.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	formID     string
	tagID      string
	httpClient *http.Client
	logger     interfaces.Logger
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger interfaces.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logging.OrNoOp(logger)
	}
}

// NewClient builds a ConvertKit client.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		apiSecret:  strings.TrimSpace(cfg.APISecret),
		formID:     strings.TrimSpace(cfg.FormID),
		tagID:      strings.TrimSpace(cfg.TagID),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Configured reports whether the client has credentials to call the API.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Broadcast is the payload of a ConvertKit broadcast.
type Broadcast struct {
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	Description string `json:"description,omitempty"`
}

// BroadcastResult is the created broadcast as reported by ConvertKit.
type BroadcastResult struct {
	ID        int64  `json:"id"`
	Subject   string `json:"subject"`
	CreatedAt string `json:"created_at"`
}

// SendBroadcast creates a broadcast. Any non-2xx response is an error.
func (c *Client) SendBroadcast(ctx context.Context, broadcast Broadcast) (*BroadcastResult, error) {
	if !c.Configured() {
		return nil, missingConfig(ErrMissingAPIKey)
	}
	body := map[string]any{"broadcast": broadcast}
	var out struct {
		Broadcast BroadcastResult `json:"broadcast"`
	}
	if err := c.do(ctx, http.MethodPost, "/v3/broadcasts", nil, body, true, &out); err != nil {
		return nil, err
	}
	c.logger.Info("newsletter.broadcast.created", "subject", broadcast.Subject, "broadcast_id", out.Broadcast.ID)
	return &out.Broadcast, nil
}

// FindSubscriber reports whether email is already a subscriber.
func (c *Client) FindSubscriber(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, ErrEmptyEmail
	}
	secret := c.apiSecret
	if secret == "" {
		secret = c.apiKey
	}
	if secret == "" {
		return false, missingConfig(ErrMissingAPIKey)
	}
	query := url.Values{}
	query.Set("api_secret", secret)
	query.Set("email_address", email)

	var out struct {
		TotalSubscribers int `json:"total_subscribers"`
	}
	if err := c.do(ctx, http.MethodGet, "/v3/subscribers", query, nil, false, &out); err != nil {
		return false, err
	}
	return out.TotalSubscribers > 0, nil
}

// Subscription describes a form signup.
type Subscription struct {
	Email     string
	FirstName string
	Source    string
}

// SubscriptionResult is the subscription record returned by ConvertKit.
type SubscriptionResult struct {
	ID         int64  `json:"id"`
	State      string `json:"state"`
	Subscriber struct {
		ID int64 `json:"id"`
	} `json:"subscriber"`
}

// Subscribe adds a reader to the configured form, tagging them when a tag is set.
func (c *Client) Subscribe(ctx context.Context, sub Subscription) (*SubscriptionResult, error) {
	if !c.Configured() {
		return nil, missingConfig(ErrMissingAPIKey)
	}
	if c.formID == "" {
		return nil, missingConfig(ErrMissingFormID)
	}
	email := strings.TrimSpace(sub.Email)
	if email == "" {
		return nil, ErrEmptyEmail
	}
	source := strings.TrimSpace(sub.Source)
	if source == "" {
		source = DefaultSignupSource
	}

	body := map[string]any{
		"api_key":    c.apiKey,
		"email":      email,
		"first_name": strings.TrimSpace(sub.FirstName),
		"fields":     map[string]string{"source": source},
	}
	if tag, err := strconv.ParseInt(c.tagID, 10, 64); err == nil {
		body["tags"] = []int64{tag}
	}

	var out struct {
		Subscription SubscriptionResult `json:"subscription"`
	}
	path := "/v3/forms/" + url.PathEscape(c.formID) + "/subscribe"
	if err := c.do(ctx, http.MethodPost, path, nil, body, false, &out); err != nil {
		return nil, err
	}
	c.logger.Info("newsletter.subscribe.completed", "subscription_id", out.Subscription.ID)
	return &out.Subscription, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, bearer bool, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("newsletter: marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("newsletter: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "convertkit request failed").
			WithTextCode(textCodeAPIFailure)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return fmt.Errorf("newsletter: read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
		c.logger.Warn("newsletter.request.failed", "path", path, "status", resp.StatusCode, "error", apiErr.Message)
		return goerrors.Wrap(apiErr, goerrors.CategoryExternal, "convertkit rejected the request").
			WithTextCode(textCodeAPIFailure)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("newsletter: decode response: %w", err)
	}
	return nil
}

// APIError is a non-2xx ConvertKit response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("convertkit: status %d: %s", e.StatusCode, e.Message)
}

// AsAPIError extracts an APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func errorMessage(raw []byte, status string) string {
	var body struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Error != nil && fmt.Sprint(body.Error) != "":
			return fmt.Sprint(body.Error)
		case body.Message != "":
			return body.Message
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return status
}

func missingConfig(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, "convertkit is not configured").
		WithTextCode(textCodeMissingConfig)
}
