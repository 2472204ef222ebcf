// Package sync relays results produced by background workers into the
// Bubble Tea event loop.
package sync

import (
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailsettings/internal/model"
)

// ResponseMsg is a tea.Msg carrying one validation response.
type ResponseMsg struct {
	Response model.ValidationResponse
}

// Stats summarises the responses relayed so far.
type Stats struct {
	Delivered int
	LastAt    time.Time
}

// Relay forwards validation responses from a channel to the UI. Only one
// read is outstanding at a time: the host calls WaitForNextResult after
// handling each ResponseMsg.
type Relay struct {
	responses <-chan model.ValidationResponse
	now       func() time.Time

	mu      gosync.Mutex
	running bool
	stats   Stats
}

// New creates a relay reading from responses.
func New(responses <-chan model.ValidationResponse) *Relay {
	return &Relay{
		responses: responses,
		now:       time.Now,
	}
}

// Start returns the command that waits for the first response. Calling it
// again returns nil.
func (r *Relay) Start() tea.Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}
	r.running = true
	return r.waitForResult()
}

// WaitForNextResult returns a tea.Cmd that waits for the next response.
// This should be called after processing a ResponseMsg to continue
// listening.
func (r *Relay) WaitForNextResult() tea.Cmd {
	return r.waitForResult()
}

// Stats returns a snapshot of the relay counters.
func (r *Relay) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// waitForResult blocks on the response channel. A closed channel yields a
// nil message, which ends the subscription.
func (r *Relay) waitForResult() tea.Cmd {
	return func() tea.Msg {
		resp, ok := <-r.responses
		if !ok {
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
			return nil
		}

		r.mu.Lock()
		r.stats.Delivered++
		r.stats.LastAt = r.now()
		r.mu.Unlock()
		return ResponseMsg{Response: resp}
	}
}
