// Package workflow drives the single-item generate -> edit -> upload cycle:
// a free-text description becomes a generated YAML config document, the user
// edits it in a local buffer, and the edited document is uploaded as an
// artifact. The package also houses the REST gateway those steps call.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go_client/core"
	"go_client/logging"

	"go.uber.org/zap"
)

// UploadReceipt is the backend's acknowledgement of an accepted upload.
type UploadReceipt struct {
	Message  string `json:"message"`
	ConfigID string `json:"config_id"`
	Name     string `json:"name"`
}

// Gateway performs the workflow's REST calls against the backend. Responses
// are decoded into typed results; callers never probe raw JSON shapes.
type Gateway struct {
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

// NewGateway builds a gateway from the loaded configuration.
func NewGateway(cfg *core.Config, logger *logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Gateway{
		baseURL: cfg.APIBaseURL,
		client:  core.GetDefaultHTTPClient(cfg),
		logger:  logger,
	}
}

// NewGatewayWithClient builds a gateway with an explicit HTTP client.
func NewGatewayWithClient(baseURL string, client *http.Client, logger *logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// GenerateConfig asks the backend to synthesize a YAML config document from a
// natural-language description. Returns the document on success; failures
// carry the server's detail message when one was provided.
func (g *Gateway) GenerateConfig(ctx context.Context, description string) (string, error) {
	body, err := json.Marshal(map[string]string{"description": description})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/generate/generate-yaml", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("Generation request failed", zap.Error(err))
		return "", core.ErrNetwork(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", core.ErrNetwork(err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := extractDetail(respBody)
		g.logger.Warn("Generation rejected by backend",
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail))
		return "", core.ErrRequestFailed(resp.StatusCode, detail)
	}

	var result struct {
		YAML string `json:"yaml"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || result.YAML == "" {
		g.logger.Warn("Generation response missing document field")
		return "", core.ErrMissingDocument()
	}

	g.logger.Info("Config document generated", zap.Int("bytes", len(result.YAML)))
	return result.YAML, nil
}

// UploadConfig uploads one config document as a multipart form with fields
// "file" and "name".
func (g *Gateway) UploadConfig(ctx context.Context, filename string, document io.Reader) (*UploadReceipt, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, document); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := form.WriteField("name", filename); err != nil {
		return nil, fmt.Errorf("failed to write name field: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/upload/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("Upload request failed",
			zap.String("filename", filename),
			zap.Error(err))
		return nil, core.ErrNetwork(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.ErrNetwork(err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := extractDetail(respBody)
		g.logger.Warn("Upload rejected by backend",
			zap.String("filename", filename),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail))
		return nil, core.ErrRequestFailed(resp.StatusCode, detail)
	}

	var receipt UploadReceipt
	if err := json.Unmarshal(respBody, &receipt); err != nil {
		// An unreadable success body is still a success; the receipt is
		// informational only
		g.logger.Debug("Could not decode upload receipt", zap.Error(err))
	}

	g.logger.Info("Config uploaded", zap.String("filename", filename))
	return &receipt, nil
}

// UploadDataset triggers the server-side dataset upload for a finished config.
func (g *Gateway) UploadDataset(ctx context.Context, configID string) (*UploadReceipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/upload/dataset/%s", g.baseURL, configID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset upload request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, core.ErrNetwork(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.ErrNetwork(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, core.ErrRequestFailed(resp.StatusCode, extractDetail(respBody))
	}

	var receipt UploadReceipt
	if err := json.Unmarshal(respBody, &receipt); err != nil {
		g.logger.Debug("Could not decode dataset receipt", zap.Error(err))
	}

	g.logger.Info("Dataset upload triggered", zap.String("config_id", configID))
	return &receipt, nil
}

// DownloadArtifact retrieves a config's dataset artifact and streams it into
// destDir, returning the written path. The workflow never tracks a download's
// completion; this exists for the console commands that want the file on disk.
func (g *Gateway) DownloadArtifact(ctx context.Context, configID, destDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/upload/download/%s", g.baseURL, configID), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", core.ErrNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", core.ErrRequestFailed(resp.StatusCode, extractDetail(respBody))
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create downloads directory: %w", err)
	}

	name := attachmentFilename(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = configID + ".jsonl"
	}
	path := filepath.Join(destDir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		os.Remove(path)
		return "", core.ErrNetwork(err)
	}

	g.logger.Info("Artifact downloaded",
		zap.String("config_id", configID),
		zap.String("path", path),
		zap.Int64("bytes", written))
	return path, nil
}

// extractDetail pulls the human-readable reason out of an error body.
// The backend uses "detail"; older endpoints used "message".
func extractDetail(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Message
}

// attachmentFilename extracts the filename from a Content-Disposition header.
func attachmentFilename(header string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "filename=") {
			name := strings.Trim(strings.TrimPrefix(part, "filename="), `"`)
			return filepath.Base(name)
		}
	}
	return ""
}
