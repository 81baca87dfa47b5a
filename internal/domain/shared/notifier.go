package shared

import "context"

// ErrorNotifier reports unexpected failures to an external notification
// channel (email, ops pager). It is injected explicitly into services
// rather than reached through global state, and is invoked only after the
// failing transaction has been rolled back.
type ErrorNotifier interface {
	NotifyError(ctx context.Context, operation string, err error)
}

// NopNotifier discards all notifications
type NopNotifier struct{}

// NotifyError implements ErrorNotifier
func (NopNotifier) NotifyError(context.Context, string, error) {}
