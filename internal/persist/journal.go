package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JournalEntry is one recorded state transition edge.
type JournalEntry struct {
	Frame      uint64
	Kind       string // "entered" or "exited"
	State      string
	RecordedAt time.Time
}

// JournalRepo writes transition journal entries for one host session.
type JournalRepo struct {
	db      *DB
	session uuid.UUID
}

func NewJournalRepo(db *DB, session uuid.UUID) *JournalRepo {
	return &JournalRepo{db: db, session: session}
}

// WriteEntries atomically writes a batch of entries in a single transaction.
func (r *JournalRepo) WriteEntries(ctx context.Context, entries []JournalEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO ui_journal (session_id, frame, kind, state, recorded_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			r.session, int64(e.Frame), e.Kind, e.State, e.RecordedAt,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// CountSession returns how many entries this session has written.
func (r *JournalRepo) CountSession(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM ui_journal WHERE session_id = $1`, r.session,
	).Scan(&n)
	return n, err
}
