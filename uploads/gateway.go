package uploads

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go_client/logging"
	"go_client/workflow"

	"go.uber.org/zap"
)

// ArtifactService is the slice of the REST gateway this package consumes.
type ArtifactService interface {
	UploadConfig(ctx context.Context, filename string, document io.Reader) (*workflow.UploadReceipt, error)
	UploadDataset(ctx context.Context, configID string) (*workflow.UploadReceipt, error)
	DownloadArtifact(ctx context.Context, configID, destDir string) (string, error)
}

// TaskRecorder journals finished upload tasks. A nil recorder disables
// journaling; recording never affects task state.
type TaskRecorder interface {
	RecordUpload(filename, outcome, detail string)
}

// GatewayOptions configures an upload gateway.
type GatewayOptions struct {
	// MaxFileSize rejects larger files before any network call; 0 disables
	// the size check
	MaxFileSize int64

	// DownloadsDir receives retrieved dataset artifacts
	DownloadsDir string

	Logger   *logging.Logger
	Recorder TaskRecorder
}

// Gateway turns offered files into independently-progressing upload tasks and
// issues fire-and-forget artifact retrievals.
type Gateway struct {
	svc          ArtifactService
	logger       *logging.Logger
	recorder     TaskRecorder
	maxFileSize  int64
	downloadsDir string

	mu    sync.Mutex
	tasks []*UploadTask
	wg    sync.WaitGroup
}

// NewGateway builds an upload gateway over the given REST service.
func NewGateway(svc ArtifactService, opts GatewayOptions) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Gateway{
		svc:          svc,
		logger:       logger,
		recorder:     opts.Recorder,
		maxFileSize:  opts.MaxFileSize,
		downloadsDir: opts.DownloadsDir,
	}
}

// OfferFiles registers every file as a pending task, then validates and
// uploads each one concurrently. Invalid files fail immediately without a
// network call. Returns the new task IDs in offer order.
func (g *Gateway) OfferFiles(ctx context.Context, files []File) []string {
	ids := make([]string, 0, len(files))

	for _, f := range files {
		task := newTask(f)
		g.mu.Lock()
		g.tasks = append(g.tasks, task)
		g.mu.Unlock()
		ids = append(ids, task.ID)

		if reason := g.validate(f); reason != "" {
			g.finish(task.ID, TaskFailed, reason, "")
			continue
		}

		g.wg.Add(1)
		go g.runUpload(ctx, task.ID, f)
	}

	return ids
}

// validate applies the extension allow-set and the size limit.
func (g *Gateway) validate(f File) string {
	if !extensionAllowed(f.Name) {
		return "Only .yaml and .yml files are accepted"
	}
	if g.maxFileSize > 0 && f.Size > g.maxFileSize {
		return fmt.Sprintf("File exceeds the %d byte limit", g.maxFileSize)
	}
	return ""
}

// runUpload drives one task through Uploading to its terminal state.
func (g *Gateway) runUpload(ctx context.Context, id string, f File) {
	defer g.wg.Done()

	g.setState(id, TaskUploading)
	g.logger.Info("Uploading offered file", zap.String("filename", f.Name))

	receipt, err := g.svc.UploadConfig(ctx, f.Name, f.Content)
	if err != nil {
		g.finish(id, TaskFailed, err.Error(), "")
		return
	}

	configID := ""
	if receipt != nil {
		configID = receipt.ConfigID
	}
	g.finish(id, TaskCompleted, "", configID)
}

// Tasks returns a snapshot of all live tasks in offer order.
func (g *Gateway) Tasks() []UploadTask {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]UploadTask, 0, len(g.tasks))
	for _, t := range g.tasks {
		out = append(out, *t)
	}
	return out
}

// Task returns one task's snapshot by ID.
func (g *Gateway) Task(id string) (UploadTask, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.tasks {
		if t.ID == id {
			return *t, true
		}
	}
	return UploadTask{}, false
}

// Dismiss removes a terminal task from the gateway. In-flight tasks stay.
func (g *Gateway) Dismiss(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, t := range g.tasks {
		if t.ID == id {
			if t.State != TaskCompleted && t.State != TaskFailed {
				return false
			}
			g.tasks = append(g.tasks[:i], g.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Wait blocks until every in-flight upload has reached a terminal state.
func (g *Gateway) Wait() {
	g.wg.Wait()
}

// TriggerDatasetUpload asks the backend to attach a finished config's dataset.
func (g *Gateway) TriggerDatasetUpload(ctx context.Context, configID string) error {
	_, err := g.svc.UploadDataset(ctx, configID)
	if err != nil {
		g.logger.Warn("Dataset upload failed",
			zap.String("config_id", configID),
			zap.Error(err))
		return err
	}
	g.logger.Info("Dataset upload triggered", zap.String("config_id", configID))
	return nil
}

// Download starts a fire-and-forget artifact retrieval into the downloads
// directory. No task tracks its completion; the outcome is only logged.
func (g *Gateway) Download(ctx context.Context, configID string) {
	go func() {
		if _, err := g.svc.DownloadArtifact(ctx, configID, g.downloadsDir); err != nil {
			g.logger.Warn("Artifact download failed",
				zap.String("config_id", configID),
				zap.Error(err))
		}
	}()
}

func (g *Gateway) setState(id string, state TaskState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.tasks {
		if t.ID == id {
			t.State = state
			return
		}
	}
}

// finish moves a task to its terminal state and journals the outcome.
func (g *Gateway) finish(id string, state TaskState, reason, configID string) {
	var filename string
	g.mu.Lock()
	for _, t := range g.tasks {
		if t.ID == id {
			t.State = state
			t.Error = reason
			t.ConfigID = configID
			filename = t.Filename
			break
		}
	}
	g.mu.Unlock()

	if state == TaskFailed {
		g.logger.Warn("Upload task failed",
			zap.String("filename", filename),
			zap.String("reason", reason))
	} else {
		g.logger.Info("Upload task completed", zap.String("filename", filename))
	}

	if g.recorder != nil {
		g.recorder.RecordUpload(filename, string(state), reason)
	}
}
