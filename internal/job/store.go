package job

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("job: not found")
	ErrTerminal = errors.New("job: job already in a terminal state")
	ErrProgress = errors.New("job: progress may not decrease")
)

// Store holds export jobs keyed by id. Update is the only mutation
// path; reads return value snapshots so no caller ever observes a
// half-applied update. Jobs are kept for the process lifetime.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*ExportJob
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*ExportJob),
		now:  time.Now,
	}
}

// Create allocates a fresh pending job. Random ids make collisions
// practically impossible.
func (st *Store) Create() ExportJob {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	j := &ExportJob{
		ID:        uuid.New().String(),
		State:     StatePending,
		Progress:  0,
		RowCount:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.jobs[j.ID] = j
	return *j
}

// Update merges the patch into the stored record and refreshes
// updatedAt. Transitions out of a terminal state and decreasing
// progress are rejected.
func (st *Store) Update(id string, patch Patch) (ExportJob, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	j, ok := st.jobs[id]
	if !ok {
		return ExportJob{}, ErrNotFound
	}

	if j.State.Terminal() && patch.State != nil && *patch.State != j.State {
		return ExportJob{}, ErrTerminal
	}
	if patch.Progress != nil && *patch.Progress < j.Progress {
		return ExportJob{}, ErrProgress
	}

	if patch.State != nil {
		j.State = *patch.State
	}
	if patch.Status != nil {
		j.Status = *patch.Status
	}
	if patch.Progress != nil {
		j.Progress = *patch.Progress
	}
	if patch.RowCount != nil {
		j.RowCount = *patch.RowCount
	}
	if patch.SHA256 != nil {
		j.SHA256 = *patch.SHA256
	}
	if patch.OutputFile != nil {
		j.OutputFile = *patch.OutputFile
	}
	if patch.Error != nil {
		j.Error = *patch.Error
	}
	if patch.Metadata != nil {
		j.Metadata = patch.Metadata
	}
	if patch.Data != nil {
		j.Data = patch.Data
	}

	// updatedAt must strictly increase even when the wall clock has not
	// ticked between two updates.
	now := st.now()
	if !now.After(j.UpdatedAt) {
		now = j.UpdatedAt.Add(time.Nanosecond)
	}
	j.UpdatedAt = now

	return *j, nil
}

// Get returns a snapshot of the job.
func (st *Store) Get(id string) (ExportJob, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	j, ok := st.jobs[id]
	if !ok {
		return ExportJob{}, ErrNotFound
	}
	return *j, nil
}

// List returns snapshots of all jobs, for diagnostics.
func (st *Store) List() []ExportJob {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]ExportJob, 0, len(st.jobs))
	for _, j := range st.jobs {
		out = append(out, *j)
	}
	return out
}
