// Package syncview keeps a paginated, continuously-mutating server-side
// collection mirrored in a client view over a websocket push channel.
//
// Each monitored view owns one connection session, one synchronization state
// holder, and one pagination controller. The server is the sole source of
// truth for ordering, filtering, and pagination: every inbound push fully
// replaces the held page, and client-side requests are only ever optimistic
// hints that the next push overwrites.
package syncview

import (
	"encoding/json"

	"go_client/core"
)

// Message type constants for the push channel.
const (
	// MessageTypeDataUpdate carries a full replacement page from the server.
	MessageTypeDataUpdate = "data_update"

	// MessageTypePagination requests a specific page from the server.
	MessageTypePagination = "pagination"

	// MessageTypeToggleLiveMode switches the server between live re-pushes
	// and frozen on-demand delivery.
	MessageTypeToggleLiveMode = "toggle_live_mode"
)

// dataUpdate is the inbound push envelope. Data stays raw until the view
// decodes it into its record type; optional fields are pointers so absent
// and zero values can be told apart.
type dataUpdate struct {
	Type       string               `json:"type"`
	Data       json.RawMessage      `json:"data"`
	Pagination *core.PaginationInfo `json:"pagination"`
	Config     *core.ConfigHeader   `json:"config"`
	LiveMode   *bool                `json:"live_mode"`
	Error      string               `json:"error"`
}

// PaginationRequest is the outbound request for a specific page.
type PaginationRequest struct {
	Type     string `json:"type"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// NewPaginationRequest builds a pagination request for page n.
func NewPaginationRequest(page, pageSize int) PaginationRequest {
	return PaginationRequest{
		Type:     MessageTypePagination,
		Page:     page,
		PageSize: pageSize,
	}
}

// ToggleLiveModeRequest is the outbound request to flip live mode.
type ToggleLiveModeRequest struct {
	Type     string `json:"type"`
	LiveMode bool   `json:"live_mode"`
}

// NewToggleLiveModeRequest builds a live-mode toggle request.
func NewToggleLiveModeRequest(liveMode bool) ToggleLiveModeRequest {
	return ToggleLiveModeRequest{
		Type:     MessageTypeToggleLiveMode,
		LiveMode: liveMode,
	}
}
