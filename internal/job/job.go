package job

import (
	"time"

	"gridlink/internal/source"
)

type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateDone    State = "done"
	StateError   State = "error"
)

// Terminal reports whether no further transition may leave this state.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError
}

// Metadata describes a finished export: where it was produced and what
// query shaped it.
type Metadata struct {
	MachineIP   string            `json:"machineIP"`
	ExportedAt  time.Time         `json:"exportedAt"`
	RowCount    int               `json:"rowCount"`
	Measurement string            `json:"measurement"`
	Filters     map[string]string `json:"filters"`
}

// ExportJob tracks one background export from creation to a terminal
// state. The canonical payload is held in memory for download and is
// never included in status snapshots.
type ExportJob struct {
	ID         string    `json:"id"`
	State      State     `json:"state"`
	Status     string    `json:"status,omitempty"`
	Progress   float64   `json:"progress"`
	RowCount   int       `json:"rowCount"`
	SHA256     string    `json:"sha256,omitempty"`
	OutputFile string    `json:"outputFile,omitempty"`
	Error      string    `json:"error,omitempty"`
	Metadata   *Metadata `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Data []source.Row `json:"-"`
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	State      *State
	Status     *string
	Progress   *float64
	RowCount   *int
	SHA256     *string
	OutputFile *string
	Error      *string
	Metadata   *Metadata
	Data       []source.Row
}

// Ptr is a convenience for building patches from literals.
func Ptr[T any](v T) *T {
	return &v
}
