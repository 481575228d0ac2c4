package notifycmd

import (
	"errors"
	"testing"

	"github.com/darshanbajgain/darshan-blog-temp/internal/commands"
	"github.com/darshanbajgain/darshan-blog-temp/internal/processed"
)

type recordingRegistry struct {
	handlers []any
	err      error
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	if r.err != nil {
		return r.err
	}
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestRegisterNotifyCommandsRegistersHandlers(t *testing.T) {
	reg := &recordingRegistry{}

	set, err := RegisterNotifyCommands(reg, &stubNotifier{}, processed.NewMemory(), nil, FeatureGates{})
	if err != nil {
		t.Fatalf("register notify commands: %v", err)
	}
	if set.Notify == nil || set.Forget == nil {
		t.Fatalf("expected handlers, got %+v", set)
	}
	if len(reg.handlers) != 2 {
		t.Fatalf("expected 2 registered handlers, got %d", len(reg.handlers))
	}
	if _, ok := reg.handlers[0].(*NotifyPostHandler); !ok {
		t.Fatalf("expected NotifyPostHandler first, got %T", reg.handlers[0])
	}
}

func TestRegisterNotifyCommandsHandlerOptionsApplied(t *testing.T) {
	notifyApplied := false
	forgetApplied := false

	_, err := RegisterNotifyCommands(nil, &stubNotifier{}, processed.NewMemory(), nil, FeatureGates{},
		WithNotifyHandlerOptions(func(h *commands.Handler[NotifyPostCommand]) {
			notifyApplied = true
		}),
		WithForgetHandlerOptions(func(h *commands.Handler[ForgetProcessedCommand]) {
			forgetApplied = true
		}),
	)
	if err != nil {
		t.Fatalf("register notify commands: %v", err)
	}
	if !notifyApplied || !forgetApplied {
		t.Fatalf("expected handler options applied, notify=%v forget=%v", notifyApplied, forgetApplied)
	}
}

func TestRegisterNotifyCommandsErrors(t *testing.T) {
	if _, err := RegisterNotifyCommands(nil, nil, processed.NewMemory(), nil, FeatureGates{}); err == nil {
		t.Fatal("expected error for nil notifier")
	}
	if _, err := RegisterNotifyCommands(nil, &stubNotifier{}, nil, nil, FeatureGates{}); err == nil {
		t.Fatal("expected error for nil store")
	}

	boom := errors.New("registry down")
	if _, err := RegisterNotifyCommands(&recordingRegistry{err: boom}, &stubNotifier{}, processed.NewMemory(), nil, FeatureGates{}); !errors.Is(err, boom) {
		t.Fatalf("expected registry error, got %v", err)
	}
}
