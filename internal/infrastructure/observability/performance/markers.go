// Package performance provides lightweight timing markers for report renders,
// checkout calls and sweeps.
package performance

import (
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation string         `json:"operation"` // e.g. "report:render", "payment:checkout"
	Key       string         `json:"key"`       // scan id, session id or similar correlation value
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Duration  time.Duration  `json:"duration"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata"`
	Completed bool           `json:"completed"`

	tracker *Tracker
}

// Complete marks the operation as finished and hands it back to its tracker.
func (m *Marker) Complete() {
	if m.Completed {
		return // Prevent double completion
	}

	now := time.Now
	if m.tracker != nil {
		now = m.tracker.now
	}
	m.EndTime = now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true

	if m.tracker != nil {
		m.tracker.record(m)
	}
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}
