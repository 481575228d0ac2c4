package forms

import (
	"context"
	"errors"
	"strings"

	"github.com/darshanbajgain/darshan-blog-temp/internal/logging"
	"github.com/darshanbajgain/darshan-blog-temp/internal/mailer"
	"github.com/darshanbajgain/darshan-blog-temp/internal/newsletter"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

var ErrServiceUnavailable = errors.New("forms: backing service not configured")

// Subscriptions is the newsletter backend used by signups.
type Subscriptions interface {
	FindSubscriber(ctx context.Context, email string) (bool, error)
	Subscribe(ctx context.Context, sub newsletter.Subscription) (*newsletter.SubscriptionResult, error)
}

// ContactSender delivers contact messages.
type ContactSender interface {
	SendContact(ctx context.Context, msg mailer.ContactMessage) error
}

// SubscribeResult reports the outcome of a signup.
type SubscribeResult struct {
	Message           string                         `json:"message"`
	AlreadySubscribed bool                           `json:"alreadySubscribed,omitempty"`
	Subscriber        *newsletter.SubscriptionResult `json:"subscriber,omitempty"`
}

// ContactResult reports the outcome of a contact submission.
type ContactResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service handles form submissions.
type Service struct {
	subscriptions Subscriptions
	sender        ContactSender
	logger        interfaces.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		s.logger = logging.OrNoOp(logger)
	}
}

// NewService wires the form backends. Either may be nil, in which case the
// matching operation returns ErrServiceUnavailable.
func NewService(subscriptions Subscriptions, sender ContactSender, opts ...Option) *Service {
	s := &Service{
		subscriptions: subscriptions,
		sender:        sender,
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Subscribe signs a reader up unless they are already subscribed.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (SubscribeResult, error) {
	if err := req.Validate(); err != nil {
		return SubscribeResult{}, err
	}
	if s.subscriptions == nil {
		return SubscribeResult{}, ErrServiceUnavailable
	}
	email := strings.TrimSpace(req.Email)

	exists, err := s.subscriptions.FindSubscriber(ctx, email)
	if err != nil {
		s.logger.Error("forms.subscribe.lookup_failed", "error", err)
		return SubscribeResult{}, err
	}
	if exists {
		return SubscribeResult{Message: MessageAlreadySubscribed, AlreadySubscribed: true}, nil
	}

	sub, err := s.subscriptions.Subscribe(ctx, newsletter.Subscription{
		Email:     email,
		FirstName: req.FirstName,
	})
	if err != nil {
		s.logger.Error("forms.subscribe.failed", "error", err)
		return SubscribeResult{}, err
	}
	s.logger.Info("forms.subscribe.completed")
	return SubscribeResult{Message: MessageSubscribed, Subscriber: sub}, nil
}

// Contact forwards a contact message to the site owner.
func (s *Service) Contact(ctx context.Context, req ContactRequest) (ContactResult, error) {
	if err := req.Validate(); err != nil {
		return ContactResult{}, err
	}
	if s.sender == nil {
		return ContactResult{}, ErrServiceUnavailable
	}
	err := s.sender.SendContact(ctx, mailer.ContactMessage{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.TrimSpace(req.Email),
		Subject:   req.Subject,
		Message:   req.Message,
	})
	if err != nil {
		s.logger.Error("forms.contact.failed", "error", err)
		return ContactResult{}, err
	}
	s.logger.Info("forms.contact.sent")
	return ContactResult{Success: true, Message: MessageContactSent}, nil
}
