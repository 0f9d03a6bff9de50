package db

import (
	"database/sql"
	"fmt"
	"time"

	"go_client/logging"

	"go.uber.org/zap"
)

// Journal is the client's local activity record. It implements the recorder
// interfaces of the syncview, workflow, and uploads packages, queuing every
// entry through an AsyncWriter so no caller ever waits on SQLite.
//
// A nil *Journal is valid and records nothing, so callers wire it without
// checking whether journaling is enabled.
type Journal struct {
	conn   *sql.DB
	repo   *Repository
	writer *AsyncWriter
	logger *logging.Logger
}

// OpenJournal opens (creating if needed) the journal database at path,
// applies the embedded schema, and starts the async writer.
func OpenJournal(path string, logger *logging.Logger) (*Journal, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	conn, err := NewSQLiteConnectionWithDefaults(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := MigrateUpEmbedded(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}

	j := &Journal{
		conn:   conn,
		repo:   NewRepository(conn),
		logger: logger,
	}
	j.writer = NewAsyncWriter(j.handleWrite)
	j.writer.Start()

	logger.Info("Activity journal opened", zap.String("path", path))
	return j, nil
}

// handleWrite persists one queued entry. Failures are logged and dropped;
// the journal never pushes errors back into the code that produced the entry.
func (j *Journal) handleWrite(op WriteOperation) error {
	var err error
	switch e := op.Data.(type) {
	case WorkflowEntry:
		err = j.repo.InsertWorkflow(e)
	case UploadEntry:
		err = j.repo.InsertUpload(e)
	case SessionEntry:
		err = j.repo.InsertSession(e)
	default:
		err = fmt.Errorf("unknown journal entry type %T", op.Data)
	}
	if err != nil {
		j.logger.Warn("Failed to journal entry", zap.Error(err))
	}
	return err
}

// RecordWorkflow journals one workflow operation outcome.
func (j *Journal) RecordWorkflow(action, outcome, detail string) {
	if j == nil {
		return
	}
	j.enqueue(WorkflowEntry{
		Action:    action,
		Outcome:   outcome,
		Detail:    detail,
		CreatedAt: time.Now(),
	})
}

// RecordUpload journals one finished upload task.
func (j *Journal) RecordUpload(filename, outcome, detail string) {
	if j == nil {
		return
	}
	j.enqueue(UploadEntry{
		Filename:  filename,
		Outcome:   outcome,
		Detail:    detail,
		CreatedAt: time.Now(),
	})
}

// RecordSession journals one finished push-channel session.
func (j *Journal) RecordSession(endpoint, reason, errMsg string, connectedAt, closedAt time.Time) {
	if j == nil {
		return
	}
	j.enqueue(SessionEntry{
		Endpoint:    endpoint,
		CloseReason: reason,
		Error:       errMsg,
		ConnectedAt: connectedAt,
		ClosedAt:    closedAt,
	})
}

func (j *Journal) enqueue(entry interface{}) {
	if !j.writer.Write(entry) {
		j.logger.Debug("Journal buffer full, entry dropped")
	}
}

// Repository exposes the journal's history queries. Returns nil on a nil
// journal.
func (j *Journal) Repository() *Repository {
	if j == nil {
		return nil
	}
	return j.repo
}

// Close drains pending writes and closes the database.
func (j *Journal) Close() {
	if j == nil {
		return
	}
	j.writer.Stop()
	if err := j.conn.Close(); err != nil {
		j.logger.Warn("Failed to close journal", zap.Error(err))
	}
}
