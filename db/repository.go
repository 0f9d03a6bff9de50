package db

import (
	"database/sql"
	"fmt"
	"time"
)

// WorkflowEntry is one journaled workflow operation (generate or upload).
type WorkflowEntry struct {
	ID        int64
	Action    string // "generate" or "upload"
	Outcome   string // "succeeded" or "failed"
	Detail    string // failure message or artifact filename
	CreatedAt time.Time
}

// UploadEntry is one journaled upload task outcome.
type UploadEntry struct {
	ID        int64
	Filename  string
	Outcome   string // terminal task state
	Detail    string // failure reason, "" on success
	CreatedAt time.Time
}

// SessionEntry is one journaled push-channel session.
type SessionEntry struct {
	ID          int64
	Endpoint    string
	CloseReason string
	Error       string
	ConnectedAt time.Time
	ClosedAt    time.Time
}

// Repository persists and queries journal entries. All writes are single-row
// inserts; history queries exist for the diagnostics commands.
type Repository struct {
	conn *sql.DB
}

// NewRepository wraps an open journal connection.
func NewRepository(conn *sql.DB) *Repository {
	return &Repository{conn: conn}
}

// InsertWorkflow records one workflow operation outcome.
func (r *Repository) InsertWorkflow(e WorkflowEntry) error {
	_, err := r.conn.Exec(
		`INSERT INTO workflow_history (action, outcome, detail, created_at) VALUES (?, ?, ?, ?)`,
		e.Action, e.Outcome, e.Detail, e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert workflow entry: %w", err)
	}
	return nil
}

// InsertUpload records one finished upload task.
func (r *Repository) InsertUpload(e UploadEntry) error {
	_, err := r.conn.Exec(
		`INSERT INTO upload_history (filename, outcome, detail, created_at) VALUES (?, ?, ?, ?)`,
		e.Filename, e.Outcome, e.Detail, e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert upload entry: %w", err)
	}
	return nil
}

// InsertSession records one finished push-channel session.
func (r *Repository) InsertSession(e SessionEntry) error {
	_, err := r.conn.Exec(
		`INSERT INTO session_history (endpoint, close_reason, error, connected_at, closed_at, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Endpoint, e.CloseReason, e.Error,
		e.ConnectedAt.UTC().Format(time.RFC3339Nano),
		e.ClosedAt.UTC().Format(time.RFC3339Nano),
		e.ClosedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert session entry: %w", err)
	}
	return nil
}

// RecentWorkflow returns the newest workflow entries, newest first.
func (r *Repository) RecentWorkflow(limit int) ([]WorkflowEntry, error) {
	rows, err := r.conn.Query(
		`SELECT id, action, outcome, detail, created_at FROM workflow_history ORDER BY id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow history: %w", err)
	}
	defer rows.Close()

	var out []WorkflowEntry
	for rows.Next() {
		var e WorkflowEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Action, &e.Outcome, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan workflow entry: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecentUploads returns the newest upload entries, newest first.
func (r *Repository) RecentUploads(limit int) ([]UploadEntry, error) {
	rows, err := r.conn.Query(
		`SELECT id, filename, outcome, detail, created_at FROM upload_history ORDER BY id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upload history: %w", err)
	}
	defer rows.Close()

	var out []UploadEntry
	for rows.Next() {
		var e UploadEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Filename, &e.Outcome, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload entry: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecentSessions returns the newest session entries, newest first.
func (r *Repository) RecentSessions(limit int) ([]SessionEntry, error) {
	rows, err := r.conn.Query(
		`SELECT id, endpoint, close_reason, error, connected_at, closed_at FROM session_history ORDER BY id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query session history: %w", err)
	}
	defer rows.Close()

	var out []SessionEntry
	for rows.Next() {
		var e SessionEntry
		var connectedAt, closedAt string
		if err := rows.Scan(&e.ID, &e.Endpoint, &e.CloseReason, &e.Error, &connectedAt, &closedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session entry: %w", err)
		}
		e.ConnectedAt, _ = time.Parse(time.RFC3339Nano, connectedAt)
		e.ClosedAt, _ = time.Parse(time.RFC3339Nano, closedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// PruneOlderThan deletes journal entries created before the cutoff.
// Returns the total number of rows removed.
func (r *Repository) PruneOlderThan(cutoff time.Time) (int64, error) {
	stamp := cutoff.UTC().Format(time.RFC3339Nano)
	var total int64
	for _, table := range []string{"workflow_history", "upload_history", "session_history"} {
		res, err := r.conn.Exec(
			fmt.Sprintf(`DELETE FROM %s WHERE created_at < ?`, table), stamp)
		if err != nil {
			return total, fmt.Errorf("failed to prune %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}
