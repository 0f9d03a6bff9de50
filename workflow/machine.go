package workflow

import (
	"context"
	"io"
	"strings"
	"sync"

	"go_client/core"
	"go_client/logging"

	"go.uber.org/zap"
)

// State identifies where a workflow item is in its lifecycle.
type State string

const (
	StateIdle             State = "idle"
	StateGenerating       State = "generating"
	StateGeneratedReady   State = "generated_ready"
	StateGenerationFailed State = "generation_failed"
	StateUploading        State = "uploading"
	StateUploadSucceeded  State = "upload_succeeded"
	StateUploadFailed     State = "upload_failed"
)

// ErrBusy is returned when a generate or upload is triggered while another
// operation is still in flight. The single-item workflow never runs two
// network operations at once.
var ErrBusy = &core.ClientError{
	Code:    core.ErrCodeValidation,
	Message: "Another operation is already in progress",
}

// ConfigService is the slice of the REST gateway the state machine consumes.
type ConfigService interface {
	GenerateConfig(ctx context.Context, description string) (string, error)
	UploadConfig(ctx context.Context, filename string, document io.Reader) (*UploadReceipt, error)
}

// OutcomeRecorder journals finished workflow operations. A nil recorder
// disables journaling; recording never affects the machine's own state.
type OutcomeRecorder interface {
	RecordWorkflow(action, outcome, detail string)
}

// Machine is one workflow item: a single generate -> edit -> upload cycle.
// It is transient and owned by its consumer; nothing about it is shared with
// the live monitoring views, and its document is never persisted.
//
// Generate and Upload block until the operation finishes; transitions are
// guarded so a second trigger while busy is rejected with ErrBusy instead of
// racing the first.
type Machine struct {
	svc      ConfigService
	logger   *logging.Logger
	recorder OutcomeRecorder

	mu       sync.Mutex
	state    State
	document string // editable buffer, valid from GeneratedReady onward
	errText  string // human-readable message for the current failure, if any
	receipt  *UploadReceipt
}

// NewMachine builds an idle workflow item.
func NewMachine(svc ConfigService, logger *logging.Logger, recorder OutcomeRecorder) *Machine {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Machine{
		svc:      svc,
		logger:   logger,
		recorder: recorder,
		state:    StateIdle,
	}
}

// State returns the machine's current lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the message of the most recent failure, or "" when none.
func (m *Machine) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errText
}

// Document returns the editable buffer's current contents.
func (m *Machine) Document() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.document
}

// SetDocument replaces the editable buffer. Rejected while an operation is
// in flight; the buffer otherwise stays editable in every state, including
// after a failed or succeeded upload.
func (m *Machine) SetDocument(doc string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateGenerating || m.state == StateUploading {
		return false
	}
	m.document = doc
	return true
}

// Receipt returns the acknowledgement of the last successful upload, if any.
func (m *Machine) Receipt() *UploadReceipt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.receipt
}

// Generate runs the description -> document transition. An empty or
// whitespace description fails fast with a validation error and never reaches
// the network. Regeneration overwrites the editable buffer, discarding any
// edits: triggering it is an explicit user decision.
func (m *Machine) Generate(ctx context.Context, description string) error {
	if strings.TrimSpace(description) == "" {
		err := core.ErrEmptyDescription()
		m.setError(err.Message)
		return err
	}

	if !m.begin(StateGenerating) {
		return ErrBusy
	}

	doc, err := m.svc.GenerateConfig(ctx, description)
	if err != nil {
		m.finishFailure(StateGenerationFailed, err)
		m.record("generate", "failed", messageOf(err))
		return err
	}

	m.mu.Lock()
	m.state = StateGeneratedReady
	m.document = doc
	m.errText = ""
	m.mu.Unlock()

	m.logger.Info("Workflow item ready for editing", zap.Int("document_bytes", len(doc)))
	m.record("generate", "succeeded", "")
	return nil
}

// Upload sends the edited buffer to the backend. The artifact filename is
// derived from the buffer's YAML "name" field when one parses out, otherwise
// the fixed default; name extraction never blocks the upload.
func (m *Machine) Upload(ctx context.Context) error {
	m.mu.Lock()
	doc := m.document
	m.mu.Unlock()

	if strings.TrimSpace(doc) == "" {
		err := core.ErrEmptyDocument()
		m.setError(err.Message)
		return err
	}

	if !m.begin(StateUploading) {
		return ErrBusy
	}

	filename := core.ArtifactFileName(ExtractConfigName(doc))
	m.logger.Info("Uploading config document", zap.String("filename", filename))

	receipt, err := m.svc.UploadConfig(ctx, filename, strings.NewReader(doc))
	if err != nil {
		m.finishFailure(StateUploadFailed, err)
		m.record("upload", "failed", messageOf(err))
		return err
	}

	m.mu.Lock()
	m.state = StateUploadSucceeded
	m.errText = ""
	m.receipt = receipt
	m.mu.Unlock()

	m.record("upload", "succeeded", filename)
	return nil
}

// begin moves the machine into a busy state unless one is already active.
func (m *Machine) begin(target State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateGenerating || m.state == StateUploading {
		return false
	}
	m.state = target
	m.errText = ""
	return true
}

func (m *Machine) finishFailure(target State, err error) {
	m.mu.Lock()
	m.state = target
	m.errText = messageOf(err)
	m.mu.Unlock()

	m.logger.Warn("Workflow operation failed",
		zap.String("state", string(target)),
		zap.Error(err))
}

func (m *Machine) setError(msg string) {
	m.mu.Lock()
	m.errText = msg
	m.mu.Unlock()
}

func (m *Machine) record(action, outcome, detail string) {
	if m.recorder != nil {
		m.recorder.RecordWorkflow(action, outcome, detail)
	}
}

// messageOf prefers the coded client error's display message.
func messageOf(err error) string {
	if ce, ok := core.AsClientError(err); ok {
		return ce.Message
	}
	return err.Error()
}
