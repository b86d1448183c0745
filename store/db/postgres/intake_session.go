package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sitewizard/sitewizard/store"
)

func (d *DB) CreateIntakeSession(ctx context.Context, create *store.IntakeSession) (*store.IntakeSession, error) {
	fields := []string{"id", "token", "owner_id", "provider", "collected_data", "progress", "is_complete", "created_ts", "updated_ts"}
	args := []any{create.ID, create.Token, create.OwnerID, create.Provider, create.CollectedData, create.Progress, create.IsComplete, create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO intake_session (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to create intake_session: %w", err)
	}

	return create, nil
}

func (d *DB) ListIntakeSessions(ctx context.Context, find *store.FindIntakeSession) ([]*store.IntakeSession, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.Token != nil {
		where, args = append(where, "token = "+placeholder(len(args)+1)), append(args, *find.Token)
	}
	if find.OwnerID != nil {
		where, args = append(where, "owner_id = "+placeholder(len(args)+1)), append(args, *find.OwnerID)
	}

	query := `SELECT id, token, owner_id, provider, collected_data, progress, is_complete, created_ts, updated_ts
		FROM intake_session WHERE ` + strings.Join(where, " AND ") + ` ORDER BY updated_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake_sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.IntakeSession, 0)
	for rows.Next() {
		s := &store.IntakeSession{}
		if err := rows.Scan(&s.ID, &s.Token, &s.OwnerID, &s.Provider, &s.CollectedData, &s.Progress, &s.IsComplete, &s.CreatedTs, &s.UpdatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan intake_session: %w", err)
		}
		list = append(list, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate intake_sessions: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateIntakeSession(ctx context.Context, update *store.UpdateIntakeSession) (*store.IntakeSession, error) {
	return updateIntakeSession(ctx, d.db, update)
}

func (d *DB) DeleteIntakeSession(ctx context.Context, delete *store.DeleteIntakeSession) error {
	// Messages go with the session via ON DELETE CASCADE.
	if _, err := d.db.ExecContext(ctx, `DELETE FROM intake_session WHERE id = `+placeholder(1), delete.ID); err != nil {
		return fmt.Errorf("failed to delete intake_session: %w", err)
	}
	return nil
}

func (d *DB) CreateIntakeMessage(ctx context.Context, create *store.IntakeMessage) (*store.IntakeMessage, error) {
	return createIntakeMessage(ctx, d.db, create)
}

func (d *DB) ListIntakeMessages(ctx context.Context, find *store.FindIntakeMessage) ([]*store.IntakeMessage, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *find.UID)
	}
	if find.SessionID != nil {
		where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *find.SessionID)
	}

	query := `SELECT id, uid, session_id, role, content, created_ts
		FROM intake_message WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake_messages: %w", err)
	}
	defer rows.Close()

	list := make([]*store.IntakeMessage, 0)
	for rows.Next() {
		m := &store.IntakeMessage{}
		if err := rows.Scan(&m.ID, &m.UID, &m.SessionID, &m.Role, &m.Content, &m.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan intake_message: %w", err)
		}
		list = append(list, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate intake_messages: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteIntakeMessage(ctx context.Context, delete *store.DeleteIntakeMessage) error {
	where, args := []string{"1 = 1"}, []any{}

	if delete.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *delete.ID)
	}
	if delete.SessionID != nil {
		where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *delete.SessionID)
	}

	if _, err := d.db.ExecContext(ctx, `DELETE FROM intake_message WHERE `+strings.Join(where, " AND "), args...); err != nil {
		return fmt.Errorf("failed to delete intake_messages: %w", err)
	}
	return nil
}

func (d *DB) CommitIntakeTurn(ctx context.Context, turn *store.IntakeTurn) (*store.IntakeSession, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin turn transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := createIntakeMessage(ctx, tx, turn.UserMessage); err != nil {
		return nil, err
	}
	if _, err := createIntakeMessage(ctx, tx, turn.AssistantMessage); err != nil {
		return nil, err
	}
	session, err := updateIntakeSession(ctx, tx, turn.Update)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit turn transaction: %w", err)
	}
	return session, nil
}

func (d *DB) DeleteIntakeSessionsBefore(ctx context.Context, beforeTs int64) (int64, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM intake_session WHERE updated_ts < `+placeholder(1), beforeTs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired intake_sessions: %w", err)
	}
	return result.RowsAffected()
}

// execer covers both *sql.DB and *sql.Tx so turn commits reuse the
// single-statement helpers.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func createIntakeMessage(ctx context.Context, db execer, create *store.IntakeMessage) (*store.IntakeMessage, error) {
	fields := []string{"uid", "session_id", "role", "content", "created_ts"}
	args := []any{create.UID, create.SessionID, create.Role, create.Content, create.CreatedTs}

	stmt := `INSERT INTO intake_message (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create intake_message: %w", err)
	}
	return create, nil
}

func updateIntakeSession(ctx context.Context, db execer, update *store.UpdateIntakeSession) (*store.IntakeSession, error) {
	set, args := []string{}, []any{}

	if update.CollectedData != nil {
		set, args = append(set, "collected_data = "+placeholder(len(args)+1)), append(args, *update.CollectedData)
	}
	if update.Progress != nil {
		set, args = append(set, "progress = "+placeholder(len(args)+1)), append(args, *update.Progress)
	}
	if update.IsComplete != nil {
		set, args = append(set, "is_complete = "+placeholder(len(args)+1)), append(args, *update.IsComplete)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *update.UpdatedTs)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)
	// RETURNING all fields to avoid a follow-up read
	stmt := `UPDATE intake_session SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, token, owner_id, provider, collected_data, progress, is_complete, created_ts, updated_ts`
	result := &store.IntakeSession{}
	err := db.QueryRowContext(ctx, stmt, args...).Scan(
		&result.ID, &result.Token, &result.OwnerID, &result.Provider, &result.CollectedData, &result.Progress, &result.IsComplete, &result.CreatedTs, &result.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("intake_session not found")
		}
		return nil, fmt.Errorf("failed to update intake_session: %w", err)
	}

	return result, nil
}
