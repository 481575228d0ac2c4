package notifycmd

import (
	"errors"

	"github.com/darshanbajgain/darshan-blog-temp/internal/commands"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterNotifyCommands.
type HandlerSet struct {
	Notify *NotifyPostHandler
	Forget *ForgetProcessedHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	notifyHandlerOpts []commands.HandlerOption[NotifyPostCommand]
	forgetHandlerOpts []commands.HandlerOption[ForgetProcessedCommand]
}

// WithNotifyHandlerOptions forwards options to the NotifyPostHandler constructor.
func WithNotifyHandlerOptions(opts ...commands.HandlerOption[NotifyPostCommand]) Option {
	return func(cfg *options) {
		cfg.notifyHandlerOpts = append(cfg.notifyHandlerOpts, opts...)
	}
}

// WithForgetHandlerOptions forwards options to the ForgetProcessedHandler constructor.
func WithForgetHandlerOptions(opts ...commands.HandlerOption[ForgetProcessedCommand]) Option {
	return func(cfg *options) {
		cfg.forgetHandlerOpts = append(cfg.forgetHandlerOpts, opts...)
	}
}

// RegisterNotifyCommands builds the notification handlers and registers them with reg when it
// is not nil.
func RegisterNotifyCommands(reg CommandRegistry, notifier interfaces.Notifier, store interfaces.ProcessedStore, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if notifier == nil {
		return nil, errors.New("notify command registration: notifier is nil")
	}
	if store == nil {
		return nil, errors.New("notify command registration: processed store is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "notify")

	notifyHandler := NewNotifyPostHandler(notifier, store, logger, gates, cfg.notifyHandlerOpts...)
	forgetHandler := NewForgetProcessedHandler(store, logger, cfg.forgetHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(notifyHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(forgetHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Notify: notifyHandler,
		Forget: forgetHandler,
	}, nil
}
