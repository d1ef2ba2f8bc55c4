// file: internal/operations/state.go
// version: 2.0.0
// guid: f4dd559b-6ddf-469d-a9bd-8f2cabb6521a

// Package operations supervises cancellable background tasks.
package operations

import "time"

// Generation identifies the most recently requested operation in a slot.
type Generation uint64

// Task states reported to listeners.
const (
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateCanceled  = "canceled"
)

// Well-known slots.
const (
	SlotFeed    = "feed"
	SlotWeather = "weather"
	SlotSports  = "sports"
	SlotTable   = "standings"
)

// TaskStatus is a lifecycle transition of one task.
type TaskStatus struct {
	ID         string     `json:"id"`
	Slot       string     `json:"slot"`
	Generation Generation `json:"generation"`
	State      string     `json:"state"`
	Error      string     `json:"error,omitempty"`
}

// ActiveTask is lightweight info about an in-flight task.
type ActiveTask struct {
	ID         string     `json:"id"`
	Slot       string     `json:"slot"`
	Generation Generation `json:"generation"`
	StartedAt  time.Time  `json:"started_at"`
}
