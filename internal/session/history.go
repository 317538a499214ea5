// Package session keeps the per-session report history: an append-only
// ordered sequence of completed reports. There are no deletion semantics.
package session

import (
	"sync"

	"github.com/scribelab/chronicler/internal/model"
)

// History stores completed reports per session. Safe for concurrent use;
// reports are immutable so readers never race with writers beyond the
// guarded slice itself.
type History struct {
	mu      sync.Mutex
	reports map[string][]model.Report
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{reports: make(map[string][]model.Report)}
}

// Append records a completed report for its session.
func (h *History) Append(report model.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reports[report.SessionID] = append(h.reports[report.SessionID], report)
}

// List returns the session's reports in completion order.
func (h *History) List(sessionID string) []model.Report {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]model.Report, len(h.reports[sessionID]))
	copy(out, h.reports[sessionID])
	return out
}

// Latest returns the most recently completed report for a session.
func (h *History) Latest(sessionID string) (model.Report, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	reports := h.reports[sessionID]
	if len(reports) == 0 {
		return model.Report{}, false
	}
	return reports[len(reports)-1], true
}
