// Package uploads orchestrates multi-file config ingestion and single-artifact
// retrieval. Each offered file becomes an independent UploadTask; one file's
// failure never blocks or rolls back its siblings.
package uploads

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// TaskState identifies where an upload task is in its lifecycle.
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskUploading TaskState = "uploading"
	TaskCompleted TaskState = "completed"
	TaskFailed    TaskState = "failed"
)

// allowedExtensions is the fixed allow-set for offered files. Matching is
// extension-only and case-insensitive; declared content types are advisory
// and never consulted.
var allowedExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
}

// UploadTask tracks one offered file from Pending through its terminal state.
// Tasks are owned by the gateway until dismissed.
type UploadTask struct {
	ID       string
	Filename string
	Size     int64
	State    TaskState
	Error    string // reason for TaskFailed, "" otherwise
	ConfigID string // backend config id once TaskCompleted
}

// File is one file offered for ingestion.
type File struct {
	Name    string
	Size    int64
	Content io.Reader
}

// newTask builds a pending task for an offered file.
func newTask(f File) *UploadTask {
	return &UploadTask{
		ID:       uuid.New().String(),
		Filename: filepath.Base(f.Name),
		Size:     f.Size,
		State:    TaskPending,
	}
}

// extensionAllowed reports whether a filename passes the allow-set.
func extensionAllowed(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}
