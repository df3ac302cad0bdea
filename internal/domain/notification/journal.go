// internal/domain/notification/journal.go
package notification

import (
	"context"
	"time"
)

// Entry is one delivered notification.
type Entry struct {
	ID      int64
	Key     string
	Message string
	ChatID  string
	SentAt  time.Time
}

// Journal is a write-only audit trail of delivered notifications.
// The poller never reads it back; dedup state lives in Records.
type Journal interface {
	Append(ctx context.Context, entry *Entry) error
}
