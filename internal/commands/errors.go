package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by command errors. Hosts map them to exit codes and HTTP statuses.
const (
	CodeInvalidCommand   = "POST_COMMAND_INVALID"
	CodeCommandCancelled = "POST_COMMAND_CANCELLED"
	CodeCommandTimeout   = "POST_COMMAND_TIMEOUT"
	CodeCommandFailed    = "POST_COMMAND_FAILED"
	CodeNotifyFailed     = "POST_NOTIFY_FAILED"
	CodeStoreFailed      = "POST_STORE_FAILED"
)

// NotifierError marks err as a failure of the announcement provider.
// Errors already categorised by the provider client pass through.
func NotifierError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "post announcement failed").
		WithTextCode(CodeNotifyFailed)
}

// StoreError marks err as a failure of the processed-files store during op.
func StoreError(err error, op string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "processed store "+op+" failed").
		WithTextCode(CodeStoreFailed)
}

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid post command").
		WithTextCode(CodeInvalidCommand)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "post command timed out").
			WithTextCode(CodeCommandTimeout)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "post command cancelled").
		WithTextCode(CodeCommandCancelled)
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "post command failed").
		WithTextCode(CodeCommandFailed)
}
