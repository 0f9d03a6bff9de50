package workflow

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"go_client/core"
)

// mockService records calls and plays back scripted responses.
type mockService struct {
	mu sync.Mutex

	generateCalls []string
	generateDoc   string
	generateErr   error

	uploadCalls []uploadCall
	uploadErr   error
}

type uploadCall struct {
	filename string
	document string
}

func (m *mockService) GenerateConfig(ctx context.Context, description string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateCalls = append(m.generateCalls, description)
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.generateDoc, nil
}

func (m *mockService) UploadConfig(ctx context.Context, filename string, document io.Reader) (*UploadReceipt, error) {
	body, _ := io.ReadAll(document)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadCalls = append(m.uploadCalls, uploadCall{filename: filename, document: string(body)})
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return &UploadReceipt{Message: "ok", ConfigID: "cfg-1"}, nil
}

func TestGenerateRejectsEmptyDescription(t *testing.T) {
	tests := []struct {
		name        string
		description string
	}{
		{"empty", ""},
		{"whitespace", "   \t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{generateDoc: "name: x\n"}
			m := NewMachine(svc, nil, nil)

			err := m.Generate(context.Background(), tt.description)
			if !core.IsValidationError(err) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if len(svc.generateCalls) != 0 {
				t.Error("Validation failure must not reach the network")
			}
			if m.State() != StateIdle {
				t.Errorf("Expected state unchanged, got %v", m.State())
			}
			if m.Err() == "" {
				t.Error("Expected a surfaced error message")
			}
		})
	}
}

func TestGenerateSuccessFillsBuffer(t *testing.T) {
	svc := &mockService{generateDoc: "name: emails\nnumber_of_samples: 50\n"}
	m := NewMachine(svc, nil, nil)

	if err := m.Generate(context.Background(), "fifty sample emails"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if m.State() != StateGeneratedReady {
		t.Errorf("Expected GeneratedReady, got %v", m.State())
	}
	if m.Document() != svc.generateDoc {
		t.Errorf("Buffer does not hold the generated document: %q", m.Document())
	}
	if m.Err() != "" {
		t.Errorf("Expected no error, got %q", m.Err())
	}
}

func TestGenerateFailureSurfacesServerDetail(t *testing.T) {
	svc := &mockService{generateErr: core.ErrRequestFailed(500, "boom")}
	m := NewMachine(svc, nil, nil)

	err := m.Generate(context.Background(), "x")
	if err == nil {
		t.Fatal("Expected error")
	}
	if m.State() != StateGenerationFailed {
		t.Errorf("Expected GenerationFailed, got %v", m.State())
	}
	if m.Err() != "boom" {
		t.Errorf("Expected server detail surfaced, got %q", m.Err())
	}
}

func TestGenerateProtocolErrorOnMissingDocument(t *testing.T) {
	svc := &mockService{generateErr: core.ErrMissingDocument()}
	m := NewMachine(svc, nil, nil)

	err := m.Generate(context.Background(), "x")
	if !core.IsProtocolError(err) {
		t.Fatalf("Expected protocol error, got %v", err)
	}
	if m.Err() != "Invalid response format from server" {
		t.Errorf("Expected fixed invalid-format message, got %q", m.Err())
	}
}

func TestRegenerateOverwritesEdits(t *testing.T) {
	svc := &mockService{generateDoc: "name: first\n"}
	m := NewMachine(svc, nil, nil)

	if err := m.Generate(context.Background(), "first"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !m.SetDocument("name: edited\nextra: true\n") {
		t.Fatal("SetDocument rejected while ready")
	}

	svc.generateDoc = "name: second\n"
	if err := m.Generate(context.Background(), "second"); err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	if m.Document() != "name: second\n" {
		t.Errorf("Regeneration must overwrite the buffer, got %q", m.Document())
	}
}

func TestUploadUsesFilenameFromEditedBuffer(t *testing.T) {
	svc := &mockService{generateDoc: "name: original\n"}
	m := NewMachine(svc, nil, nil)

	if err := m.Generate(context.Background(), "desc"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// The filename follows the edited buffer, not the generated one
	edited := "name: My Data Set!\nnumber_of_samples: 10\n"
	m.SetDocument(edited)

	if err := m.Upload(context.Background()); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if len(svc.uploadCalls) != 1 {
		t.Fatalf("Expected exactly one upload call, got %d", len(svc.uploadCalls))
	}
	call := svc.uploadCalls[0]
	if call.filename != "My-Data-Set-.yaml" {
		t.Errorf("Unexpected filename: %q", call.filename)
	}
	if call.document != edited {
		t.Errorf("Upload body must be the edited buffer, got %q", call.document)
	}
	if m.State() != StateUploadSucceeded {
		t.Errorf("Expected UploadSucceeded, got %v", m.State())
	}
	if m.Receipt() == nil || m.Receipt().ConfigID != "cfg-1" {
		t.Errorf("Expected receipt, got %+v", m.Receipt())
	}
}

func TestUploadFallsBackToDefaultFilename(t *testing.T) {
	svc := &mockService{}
	m := NewMachine(svc, nil, nil)

	// Not valid YAML - name extraction is best effort, never a gate
	m.SetDocument("{{{ not yaml")
	if err := m.Upload(context.Background()); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if svc.uploadCalls[0].filename != core.DefaultArtifactName {
		t.Errorf("Expected default filename, got %q", svc.uploadCalls[0].filename)
	}
}

func TestUploadRejectsEmptyBuffer(t *testing.T) {
	svc := &mockService{}
	m := NewMachine(svc, nil, nil)

	err := m.Upload(context.Background())
	if !core.IsValidationError(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if len(svc.uploadCalls) != 0 {
		t.Error("Empty buffer must not reach the network")
	}
}

func TestUploadFailureKeepsBufferEditable(t *testing.T) {
	svc := &mockService{uploadErr: core.ErrRequestFailed(400, "bad schema")}
	m := NewMachine(svc, nil, nil)

	m.SetDocument("name: keep-me\n")
	if err := m.Upload(context.Background()); err == nil {
		t.Fatal("Expected upload error")
	}

	if m.State() != StateUploadFailed {
		t.Errorf("Expected UploadFailed, got %v", m.State())
	}
	if m.Err() != "bad schema" {
		t.Errorf("Expected server detail, got %q", m.Err())
	}
	if m.Document() != "name: keep-me\n" {
		t.Error("Buffer must survive a failed upload")
	}
	if !m.SetDocument("name: fixed\n") {
		t.Error("Buffer must stay editable after failure")
	}
}

func TestBusyMachineRejectsConcurrentTriggers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	svc := &blockingService{started: started, release: release}
	m := NewMachine(svc, nil, nil)

	done := make(chan error, 1)
	go func() {
		done <- m.Generate(context.Background(), "slow")
	}()
	<-started

	if err := m.Generate(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for concurrent generate, got %v", err)
	}
	if err := m.Upload(context.Background()); err == nil {
		t.Error("Expected rejection of upload while generating")
	}
	if m.SetDocument("edit") {
		t.Error("Buffer edits must be rejected while busy")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("First generate failed: %v", err)
	}
	if m.State() != StateGeneratedReady {
		t.Errorf("Expected GeneratedReady after release, got %v", m.State())
	}
}

// blockingService parks GenerateConfig until released.
type blockingService struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingService) GenerateConfig(ctx context.Context, description string) (string, error) {
	close(b.started)
	<-b.release
	return "name: slow\n", nil
}

func (b *blockingService) UploadConfig(ctx context.Context, filename string, document io.Reader) (*UploadReceipt, error) {
	return &UploadReceipt{}, nil
}

func TestExtractConfigName(t *testing.T) {
	tests := []struct {
		name     string
		document string
		want     string
	}{
		{"simple", "name: emails\nmodel: m1\n", "emails"},
		{"quoted", `name: "Customer Reviews"` + "\n", "Customer Reviews"},
		{"missing", "model: m1\n", ""},
		{"invalid yaml", "{{{", ""},
		{"whitespace trimmed", "name: '  padded  '\n", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractConfigName(tt.document); got != tt.want {
				t.Errorf("ExtractConfigName() = %q, want %q", got, tt.want)
			}
		})
	}
}
