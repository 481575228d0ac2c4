package mailer_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darshanbajgain/darshan-blog-temp/internal/mailer"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendGridPayload struct {
	Subject string `json:"subject"`
	From    struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"from"`
	ReplyTo struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"reply_to"`
	Personalizations []struct {
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func newServer(t *testing.T, status int, captured *sendGridPayload, auth *string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte(`{"errors":[{"message":"bad"}]}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSendContactPostsMail(t *testing.T) {
	var payload sendGridPayload
	var auth string
	server := newServer(t, http.StatusAccepted, &payload, &auth)

	m := mailer.New(mailer.Config{
		APIKey: "sg-key",
		Host:   server.URL,
		To:     "owner@example.com",
		From:   "noreply@example.com",
	}, mailer.WithHTTPClient(server.Client()))

	err := m.SendContact(context.Background(), mailer.ContactMessage{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Message:   "Line one\nLine <two>",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sg-key", auth)
	assert.Equal(t, "Contact Form: New message from your blog", payload.Subject)
	assert.Equal(t, "noreply@example.com", payload.From.Email)
	assert.Equal(t, mailer.DefaultSenderName, payload.From.Name)
	assert.Equal(t, "ada@example.com", payload.ReplyTo.Email)
	assert.Equal(t, "Ada Lovelace", payload.ReplyTo.Name)
	require.Len(t, payload.Personalizations, 1)
	assert.Equal(t, "owner@example.com", payload.Personalizations[0].To[0].Email)
	require.Len(t, payload.Content, 2)
	assert.Equal(t, "text/plain", payload.Content[0].Type)
	assert.Contains(t, payload.Content[0].Value, "Subject: N/A")
	assert.Equal(t, "text/html", payload.Content[1].Type)
	assert.Contains(t, payload.Content[1].Value, "Line one<br>Line &lt;two&gt;")
}

func TestSendContactRejected(t *testing.T) {
	server := newServer(t, http.StatusBadRequest, nil, nil)
	m := mailer.New(mailer.Config{
		APIKey: "sg-key",
		Host:   server.URL,
		To:     "owner@example.com",
		From:   "noreply@example.com",
	}, mailer.WithHTTPClient(server.Client()))

	err := m.SendContact(context.Background(), mailer.ContactMessage{Email: "a@b.co", Message: "hi"})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryExternal))
}

func TestSendContactRequiresConfig(t *testing.T) {
	m := mailer.New(mailer.Config{To: "owner@example.com", From: "noreply@example.com"})
	assert.False(t, m.Configured())
	err := m.SendContact(context.Background(), mailer.ContactMessage{Email: "a@b.co", Message: "hi"})
	assert.True(t, errors.Is(err, mailer.ErrMissingAPIKey))

	m = mailer.New(mailer.Config{APIKey: "k", From: "noreply@example.com"})
	err = m.SendContact(context.Background(), mailer.ContactMessage{})
	assert.True(t, errors.Is(err, mailer.ErrMissingRecipient))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Contact Form: Hello", mailer.Subject(mailer.ContactMessage{Subject: " Hello "}))
	assert.Equal(t, "Contact Form: New message from your blog", mailer.Subject(mailer.ContactMessage{}))
}
