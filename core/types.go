package core

import (
	"go.uber.org/zap/zapcore"
)

// PaginationInfo describes the server's view of a paginated collection.
// The server recomputes these values on every push; the client never derives
// them locally beyond clamping outgoing page requests.
type PaginationInfo struct {
	// Page is the 1-based page number of the delivered records
	Page int `json:"page"`
	// PageSize is the number of records per page
	PageSize int `json:"page_size"`
	// TotalPages is the page count as last computed by the server (>= 1)
	TotalPages int `json:"total_pages"`
	// TotalCount is the total number of records in the collection
	TotalCount int `json:"total_count"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler for structured logging.
func (p PaginationInfo) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("page", p.Page)
	enc.AddInt("page_size", p.PageSize)
	enc.AddInt("total_pages", p.TotalPages)
	enc.AddInt("total_count", p.TotalCount)
	return nil
}

// ConfigProgress summarizes generation progress for one config.
type ConfigProgress struct {
	// Completed is the number of samples generated so far
	Completed int `json:"completed"`
	// Total is the target number of samples
	Total int `json:"total"`
	// Percent is the server-computed completion percentage (0-100)
	Percent int `json:"percent"`
}

// ConfigHeader identifies the parent config of a sample collection.
// Delivered alongside sample pages so the view can render job context.
type ConfigHeader struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Progress ConfigProgress `json:"progress"`
}

// ConfigSummary is one row of the config list collection: a generation job
// with its progress and aggregate performance metrics. Records are immutable
// snapshots; every push replaces the page wholesale.
type ConfigSummary struct {
	// ID is the full config identifier used for API operations
	ID string `json:"id"`
	// DisplayID is the shortened identifier shown in list views
	DisplayID string `json:"display_id"`
	// Name is the human-readable config name
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	Model     string `json:"model"`

	// Generation progress
	NumberOfSamples         int    `json:"number_of_samples"`
	TotalResponsesGenerated int    `json:"total_responses_generated"`
	ProgressPercent         int    `json:"progress_percent"`
	ProgressStatus          string `json:"progress_status"`

	OutputFormat string `json:"output_format"`

	// Aggregate performance metrics across generated samples
	AvgTokensPerSecond  float64 `json:"avg_tokens_per_second"`
	AvgTimeToFirstToken float64 `json:"avg_time_to_first_token"`
	AvgQueriesPerSecond float64 `json:"avg_queries_per_second"`
	AvgLatency          float64 `json:"avg_latency"`

	// Sampling parameters
	TemperatureRange []float64 `json:"temperature_range"`
	TopP             float64   `json:"top_p"`
	MaxTokens        int       `json:"max_tokens"`

	// Dataset upload status
	DatasetUploaded bool   `json:"dataset_uploaded,omitempty"`
	DatasetID       string `json:"dataset_id,omitempty"`
}

// Complete reports whether generation has finished for this config.
func (c ConfigSummary) Complete() bool {
	return c.ProgressPercent >= 100
}

// MarshalLogObject implements zapcore.ObjectMarshaler for structured logging.
func (c ConfigSummary) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", c.DisplayID)
	enc.AddString("name", c.Name)
	enc.AddInt("progress_percent", c.ProgressPercent)
	enc.AddInt("completed", c.TotalResponsesGenerated)
	enc.AddInt("total", c.NumberOfSamples)
	return nil
}

// SampleRecord is one row of a config's sample collection: a single
// generated sample with its sampling parameters and timing metrics.
type SampleRecord struct {
	ID           string `json:"id"`
	DisplayID    string `json:"display_id"`
	YAMLConfigID string `json:"yaml_config_id"`
	CreatedAt    string `json:"created_at"`

	// Sampling parameters used for this sample
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
	SeedValue   int     `json:"seed_value"`
	Model       string  `json:"model"`

	// Prompt and response text
	ResponseText string `json:"response_text"`
	InputRequest string `json:"input_request"`

	// Timing metrics
	TokensPerSecond  float64 `json:"tokens_per_second"`
	TimeToFirstToken float64 `json:"time_to_first_token"`
	Latency          float64 `json:"latency"`
	TotalTokens      int     `json:"total_tokens"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler for structured logging.
func (s SampleRecord) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", s.DisplayID)
	enc.AddString("config_id", s.YAMLConfigID)
	enc.AddFloat64("tokens_per_second", s.TokensPerSecond)
	enc.AddFloat64("latency", s.Latency)
	enc.AddInt("total_tokens", s.TotalTokens)
	return nil
}
