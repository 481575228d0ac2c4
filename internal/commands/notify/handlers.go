package notifycmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/darshanbajgain/darshan-blog-temp/internal/commands"
	"github.com/darshanbajgain/darshan-blog-temp/internal/logging"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

const (
	notifyOperation = "posts.notify"
	forgetOperation = "posts.forget_processed"
)

var (
	// ErrNotificationsDisabled is returned when announcements are switched off at runtime.
	ErrNotificationsDisabled = errors.New("notify command: notifications disabled")
	// ErrAlreadyProcessed is returned when a filename was announced before and Force is unset.
	ErrAlreadyProcessed = errors.New("notify command: file already processed")
)

var (
	_ command.Commander[NotifyPostCommand]      = (*NotifyPostHandler)(nil)
	_ command.Commander[ForgetProcessedCommand] = (*ForgetProcessedHandler)(nil)
)

// NotifyPostHandler sends a post announcement and records the filename on success.
type NotifyPostHandler struct {
	inner *commands.Handler[NotifyPostCommand]
}

// NewNotifyPostHandler creates a handler bound to notifier and store.
func NewNotifyPostHandler(notifier interfaces.Notifier, store interfaces.ProcessedStore, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[NotifyPostCommand]) *NotifyPostHandler {
	baseLogger := logging.OrNoOp(logger)
	now := gates.clock()

	exec := func(ctx context.Context, msg NotifyPostCommand) error {
		if !gates.notificationsEnabled() {
			return ErrNotificationsDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !msg.Force {
			seen, err := store.Has(ctx, msg.Filename)
			if err != nil {
				return commands.StoreError(fmt.Errorf("check processed %s: %w", msg.Filename, err), "lookup")
			}
			if seen {
				return ErrAlreadyProcessed
			}
		}

		if err := notifier.Notify(ctx, interfaces.PostNotification{
			Title:       msg.Title,
			Description: msg.Description,
			Content:     msg.Content,
			Slug:        msg.Slug,
		}); err != nil {
			return commands.NotifierError(err)
		}

		if err := store.Mark(ctx, msg.Filename, now()); err != nil {
			return commands.StoreError(fmt.Errorf("mark processed %s: %w", msg.Filename, err), "mark")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[NotifyPostCommand]{
		commands.WithLogger[NotifyPostCommand](baseLogger),
		commands.WithOperation[NotifyPostCommand](notifyOperation),
		commands.WithMessageFields(func(msg NotifyPostCommand) map[string]any {
			fields := map[string]any{
				"file": msg.Filename,
				"slug": msg.Slug,
			}
			if msg.Force {
				fields["force"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[NotifyPostCommand](baseLogger, gates.Recorder)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &NotifyPostHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[NotifyPostCommand].
func (h *NotifyPostHandler) Execute(ctx context.Context, msg NotifyPostCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ForgetProcessedHandler removes a processed marker.
type ForgetProcessedHandler struct {
	inner *commands.Handler[ForgetProcessedCommand]
}

// NewForgetProcessedHandler creates a handler bound to store.
func NewForgetProcessedHandler(store interfaces.ProcessedStore, logger interfaces.Logger, opts ...commands.HandlerOption[ForgetProcessedCommand]) *ForgetProcessedHandler {
	baseLogger := logging.OrNoOp(logger)

	exec := func(ctx context.Context, msg ForgetProcessedCommand) error {
		return commands.StoreError(store.Forget(ctx, msg.Filename), "forget")
	}

	handlerOpts := []commands.HandlerOption[ForgetProcessedCommand]{
		commands.WithLogger[ForgetProcessedCommand](baseLogger),
		commands.WithOperation[ForgetProcessedCommand](forgetOperation),
		commands.WithMessageFields(func(msg ForgetProcessedCommand) map[string]any {
			return map[string]any{"file": msg.Filename}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ForgetProcessedHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ForgetProcessedCommand].
func (h *ForgetProcessedHandler) Execute(ctx context.Context, msg ForgetProcessedCommand) error {
	return h.inner.Execute(ctx, msg)
}

// IsAlreadyProcessed reports whether err came from a duplicate announcement.
func IsAlreadyProcessed(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed)
}

func defaultClock() func() time.Time {
	return func() time.Time { return time.Now().UTC() }
}
