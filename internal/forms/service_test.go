package forms_test

import (
	"context"
	"errors"
	"testing"

	"github.com/darshanbajgain/darshan-blog-temp/internal/forms"
	"github.com/darshanbajgain/darshan-blog-temp/internal/mailer"
	"github.com/darshanbajgain/darshan-blog-temp/internal/newsletter"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSubscriptions struct {
	exists     bool
	findErr    error
	subErr     error
	subscribed []newsletter.Subscription
}

func (s *stubSubscriptions) FindSubscriber(context.Context, string) (bool, error) {
	return s.exists, s.findErr
}

func (s *stubSubscriptions) Subscribe(_ context.Context, sub newsletter.Subscription) (*newsletter.SubscriptionResult, error) {
	if s.subErr != nil {
		return nil, s.subErr
	}
	s.subscribed = append(s.subscribed, sub)
	return &newsletter.SubscriptionResult{ID: 1}, nil
}

type stubSender struct {
	sent []mailer.ContactMessage
	err  error
}

func (s *stubSender) SendContact(_ context.Context, msg mailer.ContactMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestSubscribeValidation(t *testing.T) {
	cases := []struct {
		name    string
		email   string
		message string
	}{
		{name: "missing", email: "", message: forms.MessageEmailRequired},
		{name: "no at sign", email: "reader.example.com", message: forms.MessageInvalidEmail},
		{name: "no dot", email: "reader@example", message: forms.MessageInvalidEmail},
		{name: "spaces", email: "rea der@example.com", message: forms.MessageInvalidEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := forms.SubscribeRequest{Email: tc.email}.Validate()
			require.Error(t, err)
			assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
			assert.Equal(t, tc.message, forms.UserMessage(err))
		})
	}
	assert.NoError(t, forms.SubscribeRequest{Email: " reader@example.com "}.Validate())
}

func TestContactValidation(t *testing.T) {
	err := forms.ContactRequest{Email: "a@b.co", Message: "   "}.Validate()
	require.Error(t, err)
	assert.Equal(t, forms.MessageEmailAndMessageRequired, forms.UserMessage(err))

	err = forms.ContactRequest{Message: "hello"}.Validate()
	require.Error(t, err)
	assert.Equal(t, forms.MessageEmailAndMessageRequired, forms.UserMessage(err))

	assert.NoError(t, forms.ContactRequest{Email: "a@b.co", Message: "hello"}.Validate())
}

func TestServiceSubscribe(t *testing.T) {
	subs := &stubSubscriptions{}
	svc := forms.NewService(subs, nil)

	result, err := svc.Subscribe(context.Background(), forms.SubscribeRequest{Email: " reader@example.com ", FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, forms.MessageSubscribed, result.Message)
	assert.False(t, result.AlreadySubscribed)
	require.Len(t, subs.subscribed, 1)
	assert.Equal(t, "reader@example.com", subs.subscribed[0].Email)
	assert.Equal(t, "Ada", subs.subscribed[0].FirstName)
}

func TestServiceSubscribeExisting(t *testing.T) {
	subs := &stubSubscriptions{exists: true}
	svc := forms.NewService(subs, nil)

	result, err := svc.Subscribe(context.Background(), forms.SubscribeRequest{Email: "reader@example.com"})
	require.NoError(t, err)
	assert.True(t, result.AlreadySubscribed)
	assert.Equal(t, forms.MessageAlreadySubscribed, result.Message)
	assert.Empty(t, subs.subscribed)
}

func TestServiceSubscribeFailure(t *testing.T) {
	boom := errors.New("boom")
	svc := forms.NewService(&stubSubscriptions{subErr: boom}, nil)
	_, err := svc.Subscribe(context.Background(), forms.SubscribeRequest{Email: "reader@example.com"})
	assert.ErrorIs(t, err, boom)
}

func TestServiceUnavailable(t *testing.T) {
	svc := forms.NewService(nil, nil)
	_, err := svc.Subscribe(context.Background(), forms.SubscribeRequest{Email: "reader@example.com"})
	assert.ErrorIs(t, err, forms.ErrServiceUnavailable)
	_, err = svc.Contact(context.Background(), forms.ContactRequest{Email: "a@b.co", Message: "hi"})
	assert.ErrorIs(t, err, forms.ErrServiceUnavailable)
}

func TestServiceContact(t *testing.T) {
	sender := &stubSender{}
	svc := forms.NewService(nil, sender)

	result, err := svc.Contact(context.Background(), forms.ContactRequest{
		FirstName: "Ada",
		Email:     " ada@example.com",
		Subject:   "Hi",
		Message:   "Hello there",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, forms.MessageContactSent, result.Message)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ada@example.com", sender.sent[0].Email)
	assert.Equal(t, "Hello there", sender.sent[0].Message)
}

func TestServiceContactValidationSkipsSender(t *testing.T) {
	sender := &stubSender{}
	svc := forms.NewService(nil, sender)
	_, err := svc.Contact(context.Background(), forms.ContactRequest{Email: "a@b.co"})
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}
