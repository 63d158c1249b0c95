package notify

import (
	"context"
	"log/slog"
	"unicode/utf8"
)

// NoOpNotifier implements Notifier by logging discarded digests. It is used
// for dry runs and when the noop backend is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards digests with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Send logs and discards the digest.
func (n *NoOpNotifier) Send(_ context.Context, text string) error {
	n.log.Info("notification discarded (no backend configured)",
		"chars", utf8.RuneCountInString(text),
	)
	n.log.Debug("discarded digest", "text", text)
	return nil
}
