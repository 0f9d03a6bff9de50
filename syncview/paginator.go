package syncview

import (
	"go_client/core"
	"go_client/logging"

	"go.uber.org/zap"
)

// sender is the outbound half of a session, narrowed for testability.
type sender interface {
	Send(v interface{}) error
}

// paginationState is the part of a ViewState the controller reads and
// optimistically writes. Satisfied by *ViewState[R] for any record type.
type paginationState interface {
	Pagination() core.PaginationInfo
	LiveMode() bool
	setPageOptimistic(page int)
	setLiveModeOptimistic(liveMode bool)
}

// Paginator translates user navigation intents into protocol requests.
// Requests are optimistic: the local page and live flag flip immediately,
// and the server's subsequent push is authoritative and overwrites them.
// A push for a page the user has since navigated away from still wins;
// there is no vector clock to detect staleness and the server is the
// source of truth.
type Paginator struct {
	state   paginationState
	session sender
	logger  *logging.Logger
}

// NewPaginator creates a pagination controller over a view's state and session.
func NewPaginator(state paginationState, session sender, logger *logging.Logger) *Paginator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Paginator{
		state:   state,
		session: session,
		logger:  logger,
	}
}

// RequestPage asks the server for page n. Out-of-range requests are clamped
// before anything is sent: for n < 1 or n > total_pages this is a complete
// no-op (no outbound message, no state change) and returns false. For a
// valid n exactly one pagination request is sent and the local page is
// updated optimistically before confirmation arrives.
func (p *Paginator) RequestPage(n int) bool {
	pg := p.state.Pagination()
	if n < 1 || n > pg.TotalPages {
		p.logger.Debug("Rejected out-of-range page request",
			zap.Int("page", n),
			zap.Int("total_pages", pg.TotalPages))
		return false
	}

	if err := p.session.Send(NewPaginationRequest(n, pg.PageSize)); err != nil {
		p.logger.Warn("Failed to send pagination request",
			zap.Int("page", n),
			zap.Error(err))
		return false
	}

	p.state.setPageOptimistic(n)
	return true
}

// NextPage requests the page after the current one.
func (p *Paginator) NextPage() bool {
	return p.RequestPage(p.state.Pagination().Page + 1)
}

// PrevPage requests the page before the current one.
func (p *Paginator) PrevPage() bool {
	return p.RequestPage(p.state.Pagination().Page - 1)
}

// ToggleLiveMode flips the live flag. The flag is updated optimistically;
// the server's follow-up push carries the authoritative value (re-enabling
// live mode also resets the server to page 1, which arrives with that push).
func (p *Paginator) ToggleLiveMode() bool {
	target := !p.state.LiveMode()

	if err := p.session.Send(NewToggleLiveModeRequest(target)); err != nil {
		p.logger.Warn("Failed to send live mode toggle",
			zap.Bool("live_mode", target),
			zap.Error(err))
		return false
	}

	p.state.setLiveModeOptimistic(target)
	return true
}
