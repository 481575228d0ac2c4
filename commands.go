package blog

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	notifycmd "github.com/darshanbajgain/darshan-blog-temp/internal/commands/notify"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures how handlers are registered.
type RegistrationOptions struct {
	Registry   CommandRegistry
	Dispatcher CommandDispatcher
}

// RegistrationResult captures the command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Unsubscribe tears down every dispatcher subscription.
func (r *RegistrationResult) Unsubscribe() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		sub.Unsubscribe()
	}
	r.Subscriptions = nil
}

// RegisterCommands exposes the module's command handlers to a registry and
// dispatcher.
func RegisterCommands(m *Module, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{}
	if m == nil || m.container == nil {
		return result, nil
	}
	set := m.container.CommandHandlers()
	if set == nil {
		return result, errors.New("no command handlers registered")
	}

	var errs error
	for _, handler := range []any{set.Notify, set.Forget} {
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		if opts.Dispatcher != nil {
			sub, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if sub != nil {
				result.Subscriptions = append(result.Subscriptions, sub)
			}
		}
	}
	return result, errs
}

// NewDispatcher returns a CommandDispatcher backed by the go-command global
// dispatcher. Failed executions are retried up to retries times.
func NewDispatcher(retries int) CommandDispatcher {
	if retries < 0 {
		retries = 0
	}
	return goCommandDispatcher{retries: retries}
}

type goCommandDispatcher struct {
	retries int
}

func (d goCommandDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *notifycmd.NotifyPostHandler:
		return dispatcher.SubscribeCommand(h, runner.WithMaxRetries(d.retries)), nil
	case *notifycmd.ForgetProcessedHandler:
		return dispatcher.SubscribeCommand(h, runner.WithMaxRetries(d.retries)), nil
	default:
		return nil, fmt.Errorf("blog: unsupported command handler %T", handler)
	}
}
