// Package mailer delivers contact form messages through SendGrid.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/darshanbajgain/darshan-blog-temp/internal/logging"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	DefaultHost           = "https://api.sendgrid.com"
	DefaultTimeout        = 10 * time.Second
	DefaultSubject        = "New message from your blog"
	DefaultSenderName     = "Blog Contact Form"
	sendEndpoint          = "/v3/mail/send"
	textCodeSendFailed    = "SENDGRID_SEND_FAILED"
	textCodeMissingConfig = "SENDGRID_NOT_CONFIGURED"
)

var (
	ErrMissingAPIKey    = errors.New("mailer: sendgrid api key is required")
	ErrMissingRecipient = errors.New("mailer: recipient address is required")
	ErrMissingSender    = errors.New("mailer: sender address is required")
)

// Config holds SendGrid credentials and addressing.
type Config struct {
	APIKey     string
	Host       string
	To         string
	From       string
	SenderName string
	Timeout    time.Duration
}

// ContactMessage is a validated contact form submission.
type ContactMessage struct {
	FirstName string
	LastName  string
	Email     string
	Subject   string
	Message   string
}

// Name joins the first and last name.
func (m ContactMessage) Name() string {
	return strings.TrimSpace(strings.TrimSpace(m.FirstName) + " " + strings.TrimSpace(m.LastName))
}

// Mailer sends contact messages.
type Mailer struct {
	cfg    Config
	client *rest.Client
	logger interfaces.Logger
}

// Option customises a Mailer.
type Option func(*Mailer)

// WithHTTPClient overrides the HTTP client used for SendGrid calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(m *Mailer) {
		if httpClient != nil {
			m.client = &rest.Client{HTTPClient: httpClient}
		}
	}
}

// WithLogger sets the mailer logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(m *Mailer) {
		m.logger = logging.OrNoOp(logger)
	}
}

// New constructs a Mailer.
func New(cfg Config, opts ...Option) *Mailer {
	cfg.Host = strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if strings.TrimSpace(cfg.SenderName) == "" {
		cfg.SenderName = DefaultSenderName
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := &Mailer{
		cfg:    cfg,
		client: &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Configured reports whether the mailer can send.
func (m *Mailer) Configured() bool {
	return m != nil && m.cfg.APIKey != "" && m.cfg.To != "" && m.cfg.From != ""
}

// SendContact delivers msg to the site owner with a reply-to of the sender.
func (m *Mailer) SendContact(ctx context.Context, msg ContactMessage) error {
	if err := m.checkConfig(); err != nil {
		return err
	}

	request := sendgrid.GetRequest(m.cfg.APIKey, sendEndpoint, m.cfg.Host)
	request.Method = rest.Post
	request.Body = mail.GetRequestBody(BuildContactMail(m.cfg, msg))

	resp, err := m.client.SendWithContext(ctx, request)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "sendgrid request failed").
			WithTextCode(textCodeSendFailed)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		m.logger.Warn("mailer.contact.rejected", "status", resp.StatusCode)
		return goerrors.Wrap(&rest.RestError{Response: resp}, goerrors.CategoryExternal,
			fmt.Sprintf("sendgrid rejected the message with status %d", resp.StatusCode)).
			WithTextCode(textCodeSendFailed)
	}
	m.logger.Info("mailer.contact.sent", "status", resp.StatusCode)
	return nil
}

func (m *Mailer) checkConfig() error {
	var err error
	switch {
	case m == nil || m.cfg.APIKey == "":
		err = ErrMissingAPIKey
	case m.cfg.To == "":
		err = ErrMissingRecipient
	case m.cfg.From == "":
		err = ErrMissingSender
	default:
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, "sendgrid is not configured").
		WithTextCode(textCodeMissingConfig)
}

// Subject returns the email subject for msg.
func Subject(msg ContactMessage) string {
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = DefaultSubject
	}
	return "Contact Form: " + subject
}

// BuildContactMail renders the SendGrid payload for msg.
func BuildContactMail(cfg Config, msg ContactMessage) *mail.SGMailV3 {
	from := mail.NewEmail(cfg.SenderName, cfg.From)
	to := mail.NewEmail("", cfg.To)
	message := mail.NewSingleEmail(from, Subject(msg), to, plainBody(msg), htmlBody(msg))
	message.SetReplyTo(mail.NewEmail(msg.Name(), strings.TrimSpace(msg.Email)))
	return message
}

func plainBody(msg ContactMessage) string {
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "N/A"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", msg.Name())
	fmt.Fprintf(&b, "Email: %s\n", strings.TrimSpace(msg.Email))
	fmt.Fprintf(&b, "Subject: %s\n\n", subject)
	fmt.Fprintf(&b, "Message:\n%s\n", msg.Message)
	return b.String()
}

func htmlBody(msg ContactMessage) string {
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "N/A"
	}
	message := strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br>")
	var b strings.Builder
	b.WriteString("<h2>New Contact Form Submission</h2>")
	b.WriteString("<p><strong>Name:</strong> " + html.EscapeString(msg.Name()) + "</p>")
	b.WriteString("<p><strong>Email:</strong> " + html.EscapeString(strings.TrimSpace(msg.Email)) + "</p>")
	b.WriteString("<p><strong>Subject:</strong> " + html.EscapeString(subject) + "</p>")
	b.WriteString("<h3>Message:</h3>")
	b.WriteString("<p>" + message + "</p>")
	return b.String()
}
