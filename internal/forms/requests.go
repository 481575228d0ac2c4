// Package forms validates and handles the reader-facing contact and
// newsletter signup forms.
package forms

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

const (
	MessageEmailAndMessageRequired = "Email and message are required"
	MessageEmailRequired           = "Email is required"
	MessageInvalidEmail            = "Invalid email format"
	MessageSubscribed              = "Thanks for subscribing!"
	MessageAlreadySubscribed       = "You're already subscribed to the newsletter!"
	MessageContactSent             = "Your message has been sent successfully!"
	MessageSubscribeFailed         = "Failed to subscribe to the newsletter. Please try again later."
	MessageContactFailed           = "Failed to send message. Please try again later."
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactRequest is the contact form payload.
type ContactRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// Validate requires an email and a message.
func (r ContactRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error(MessageEmailAndMessageRequired),
			validation.By(notBlank(MessageEmailAndMessageRequired))),
		validation.Field(&r.Message,
			validation.Required.Error(MessageEmailAndMessageRequired),
			validation.By(notBlank(MessageEmailAndMessageRequired))),
	)
	return validationError(err)
}

// SubscribeRequest is the newsletter signup payload.
type SubscribeRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
}

// Validate requires a well-formed email address.
func (r SubscribeRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error(MessageEmailRequired),
			validation.Match(emailPattern).Error(MessageInvalidEmail)),
	)
	return validationError(err)
}

func notBlank(message string) validation.RuleFunc {
	return func(value any) error {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return errors.New(message)
		}
		return nil
	}
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, UserMessage(err)).
		WithTextCode("FORM_INVALID")
}

// UserMessage returns the first field message of a validation failure in
// field name order.
func UserMessage(err error) string {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		keys := make([]string, 0, len(fieldErrs))
		for key := range fieldErrs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return fieldErrs[keys[0]].Error()
	}
	var structured *goerrors.Error
	if errors.As(err, &structured) && structured.Message != "" {
		return structured.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
