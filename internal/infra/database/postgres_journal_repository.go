// internal/infra/database/postgres_journal_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"homework_status_bot/internal/domain/notification"
)

var ErrJournalTableMissing = fmt.Errorf("notification journal table does not exist")

const journalSchema = `CREATE TABLE IF NOT EXISTS notification_journal (
    id         BIGSERIAL PRIMARY KEY,
    record_key TEXT        NOT NULL,
    message    TEXT        NOT NULL,
    chat_id    TEXT        NOT NULL,
    sent_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// undefinedTable is the SQLSTATE for a missing relation.
const undefinedTable pq.ErrorCode = "42P01"

type PostgresJournalRepository struct {
	db *sql.DB
}

func NewPostgresJournalRepository(db *sql.DB) *PostgresJournalRepository {
	return &PostgresJournalRepository{db: db}
}

// EnsureSchema creates the journal table when it is absent.
func (r *PostgresJournalRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, journalSchema); err != nil {
		return fmt.Errorf("error creating notification journal table: %w", err)
	}
	return nil
}

func (r *PostgresJournalRepository) Append(ctx context.Context, entry *notification.Entry) error {
	query := `INSERT INTO notification_journal (record_key, message, chat_id, sent_at)
               VALUES ($1, $2, $3, $4)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, entry.Key, entry.Message, entry.ChatID, entry.SentAt).Scan(&entry.ID)
	if err != nil {
		return classifyError(err)
	}
	return nil
}

func classifyError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return fmt.Errorf("%w: %v", ErrJournalTableMissing, err)
	}
	return fmt.Errorf("error appending notification journal entry: %w", err)
}
