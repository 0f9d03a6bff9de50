package syncview

import (
	"encoding/json"
	"sync"

	"go_client/core"
)

// Snapshot is an immutable copy of a view's synchronized state, safe to
// render without holding any lock.
type Snapshot[R any] struct {
	// Records is the current page, exactly as last pushed by the server
	Records []R

	// Pagination is the server's pagination info as last reported
	Pagination core.PaginationInfo

	// Config is the parent config header (sample views only, nil otherwise)
	Config *core.ConfigHeader

	// LiveMode reports whether the server re-pushes the page as data changes
	LiveMode bool

	// ServerError carries the error field of the last push, if any
	ServerError string

	// Status is the connectivity indicator for this view
	Status Status
}

// ViewState holds the synchronized state for one monitored collection.
// It applies inbound pushes with last-message-wins semantics: the server is
// the sole source of truth for ordering and filtering, so no client-side
// merge or diffing is ever attempted. Safe for concurrent use.
type ViewState[R any] struct {
	mu          sync.RWMutex
	records     []R
	pagination  core.PaginationInfo
	config      *core.ConfigHeader
	liveMode    bool
	serverError string
	status      Status
}

// NewViewState creates view state for a freshly mounted collection.
// Pagination starts at page 1 with the requested page size until the first
// push reports the server's authoritative values.
func NewViewState[R any](pageSize int, liveMode bool) *ViewState[R] {
	return &ViewState[R]{
		pagination: core.PaginationInfo{
			Page:       1,
			PageSize:   pageSize,
			TotalPages: 1,
		},
		liveMode: liveMode,
		status:   StatusConnected,
	}
}

// Apply consumes one inbound push-channel message. A data_update replaces
// the held page, pagination, and liveness wholesale; any other message type
// is ignored as a forward-compatible no-op. Returns true when state changed.
func (v *ViewState[R]) Apply(raw []byte) (bool, error) {
	var env dataUpdate
	if err := json.Unmarshal(raw, &env); err != nil {
		return false, err
	}

	if env.Type != MessageTypeDataUpdate {
		return false, nil
	}

	var records []R
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &records); err != nil {
			return false, err
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.records = records
	v.config = env.Config
	v.serverError = env.Error
	if env.Pagination != nil {
		v.pagination = *env.Pagination
	}
	if env.LiveMode != nil {
		v.liveMode = *env.LiveMode
	}

	return true, nil
}

// Snapshot returns a copy of the current state.
func (v *ViewState[R]) Snapshot() Snapshot[R] {
	v.mu.RLock()
	defer v.mu.RUnlock()

	records := make([]R, len(v.records))
	copy(records, v.records)

	var config *core.ConfigHeader
	if v.config != nil {
		c := *v.config
		config = &c
	}

	return Snapshot[R]{
		Records:     records,
		Pagination:  v.pagination,
		Config:      config,
		LiveMode:    v.liveMode,
		ServerError: v.serverError,
		Status:      v.status,
	}
}

// Pagination returns the pagination info as last reported or optimistically set.
func (v *ViewState[R]) Pagination() core.PaginationInfo {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pagination
}

// LiveMode returns the current live flag.
func (v *ViewState[R]) LiveMode() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.liveMode
}

// Status returns the connectivity indicator.
func (v *ViewState[R]) Status() Status {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.status
}

// SetStatus updates the connectivity indicator.
func (v *ViewState[R]) SetStatus(status Status) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = status
}

// setPageOptimistic records a locally requested page before the server
// confirms it. The next push overwrites this value.
func (v *ViewState[R]) setPageOptimistic(page int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pagination.Page = page
}

// setLiveModeOptimistic records a locally requested live flag before the
// server confirms it. The next push overwrites this value.
func (v *ViewState[R]) setLiveModeOptimistic(liveMode bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.liveMode = liveMode
}
