package syncview

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go_client/core"
	"go_client/logging"

	"go.uber.org/zap"
)

// SessionRecorder receives a record of every finished connection session.
// Implemented by the activity journal; a nil recorder disables recording.
type SessionRecorder interface {
	RecordSession(endpoint string, reason string, errMsg string, connectedAt, closedAt time.Time)
}

// ViewOptions configures a monitored view.
type ViewOptions struct {
	// Manager establishes the view's push-channel session (required)
	Manager *Manager

	// PageSize is the requested records-per-page (default: 10)
	PageSize int

	// Logger for view lifecycle events
	Logger *logging.Logger

	// Recorder journals finished sessions (optional)
	Recorder SessionRecorder
}

// MonitoredView mirrors one server-side collection: it owns a ConnectionSession,
// the view synchronization state, and a pagination controller. A view is
// created when its consumer mounts and must be closed when the consumer
// unmounts; after Close the view is inert and late-arriving pushes or
// pagination acknowledgements mutate nothing visible.
//
// No two views ever share a session or state; mount a fresh view per consumer.
type MonitoredView[R any] struct {
	state     *ViewState[R]
	session   *Session
	paginator *Paginator
	logger    *logging.Logger
	recorder  SessionRecorder

	endpoint    string
	connectedAt time.Time
	closed      atomic.Bool

	// updates is a capacity-1 notification channel; consumers drain it and
	// read Snapshot, so dropped notifications never lose data
	updates chan struct{}
}

// OpenConfigListView mounts a view over the config list collection.
// The server starts the session on page 1 in live mode.
func OpenConfigListView(ctx context.Context, wsBaseURL string, opts ViewOptions) (*MonitoredView[core.ConfigSummary], error) {
	pageSize := normalizePageSize(opts.PageSize)
	endpoint := fmt.Sprintf("%s/ws/yaml_configs?page=1&page_size=%d&live_mode=true", wsBaseURL, pageSize)
	return openView[core.ConfigSummary](ctx, endpoint, pageSize, true, opts)
}

// OpenSampleView mounts a view over one config's sample collection.
func OpenSampleView(ctx context.Context, wsBaseURL, configID string, opts ViewOptions) (*MonitoredView[core.SampleRecord], error) {
	pageSize := normalizePageSize(opts.PageSize)
	endpoint := fmt.Sprintf("%s/ws/config/%s/responses?page=1&page_size=%d", wsBaseURL, configID, pageSize)
	return openView[core.SampleRecord](ctx, endpoint, pageSize, true, opts)
}

func normalizePageSize(n int) int {
	if n < 1 {
		return 10
	}
	return n
}

// openView wires state, session, and paginator together for one collection.
func openView[R any](ctx context.Context, endpoint string, pageSize int, liveMode bool, opts ViewOptions) (*MonitoredView[R], error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	v := &MonitoredView[R]{
		state:    NewViewState[R](pageSize, liveMode),
		logger:   logger,
		recorder: opts.Recorder,
		endpoint: endpoint,
		updates:  make(chan struct{}, 1),
	}

	session, err := opts.Manager.Open(ctx, endpoint, v.handleMessage, v.handleClose)
	if err != nil {
		return nil, err
	}

	v.session = session
	v.connectedAt = time.Now()
	v.paginator = NewPaginator(v.state, session, logger)

	logger.Info("Monitored view mounted", zap.String("endpoint", endpoint))
	return v, nil
}

// Snapshot returns a copy of the view's current synchronized state.
func (v *MonitoredView[R]) Snapshot() Snapshot[R] {
	return v.state.Snapshot()
}

// Status returns Connected while the session is healthy and Disconnected
// after an unexpected closure.
func (v *MonitoredView[R]) Status() Status {
	return v.state.Status()
}

// Updates returns a channel that receives a notification whenever the
// snapshot may have changed. The channel never blocks the reader goroutine.
func (v *MonitoredView[R]) Updates() <-chan struct{} {
	return v.updates
}

// RequestPage forwards to the pagination controller. No-op after Close.
func (v *MonitoredView[R]) RequestPage(n int) bool {
	if v.closed.Load() {
		return false
	}
	return v.paginator.RequestPage(n)
}

// NextPage requests the following page. No-op after Close.
func (v *MonitoredView[R]) NextPage() bool {
	if v.closed.Load() {
		return false
	}
	return v.paginator.NextPage()
}

// PrevPage requests the preceding page. No-op after Close.
func (v *MonitoredView[R]) PrevPage() bool {
	if v.closed.Load() {
		return false
	}
	return v.paginator.PrevPage()
}

// ToggleLiveMode flips the live flag. No-op after Close.
func (v *MonitoredView[R]) ToggleLiveMode() bool {
	if v.closed.Load() {
		return false
	}
	return v.paginator.ToggleLiveMode()
}

// Close unmounts the view and closes its session immediately, discarding
// any in-flight acknowledgement. Safe to call more than once.
func (v *MonitoredView[R]) Close() {
	if v.closed.Swap(true) {
		return
	}
	v.session.Close()
	v.logger.Info("Monitored view closed", zap.String("endpoint", v.endpoint))
}

// handleMessage applies one inbound push. Messages arriving after Close are
// dropped: the state holder is inert from the consumer's point of view.
func (v *MonitoredView[R]) handleMessage(raw []byte) {
	if v.closed.Load() {
		v.logger.Debug("Dropping push for closed view", zap.String("endpoint", v.endpoint))
		return
	}

	applied, err := v.state.Apply(raw)
	if err != nil {
		v.logger.Warn("Failed to apply push message",
			zap.String("endpoint", v.endpoint),
			zap.Error(err))
		return
	}
	if applied {
		v.notify()
	}
}

// handleClose degrades the view to Disconnected on unexpected closure.
// The view never reconnects itself; the consumer remounts to retry.
func (v *MonitoredView[R]) handleClose(reason CloseReason, err error) {
	if reason != CloseClientClosed && !v.closed.Load() {
		v.state.SetStatus(StatusDisconnected)
		v.notify()
	}

	if v.recorder != nil {
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		}
		v.recorder.RecordSession(v.endpoint, string(reason), errMsg, v.connectedAt, time.Now())
	}
}

// notify signals consumers without ever blocking the reader goroutine.
func (v *MonitoredView[R]) notify() {
	select {
	case v.updates <- struct{}{}:
	default:
	}
}
