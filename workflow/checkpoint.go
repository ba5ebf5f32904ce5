package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BaSui01/contentpipe/state"
)

// ErrCheckpointNotFound 线程没有已保存的快照
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Checkpoint is the persisted snapshot of a workflow run. One snapshot per
// thread: later saves overwrite earlier ones.
type Checkpoint struct {
	ThreadID   string               `json:"thread_id"`
	WorkflowID string               `json:"workflow_id"`
	StepCount  int                  `json:"step_count"`
	State      *state.WorkflowState `json:"state"`
	SavedAt    time.Time            `json:"saved_at"`
}

// CheckpointStore persists the most recent state per thread. Stores must
// support concurrent access across distinct threads; per-thread writes are
// last-write-wins.
type CheckpointStore interface {
	// Save overwrites the snapshot for the thread.
	Save(ctx context.Context, threadID string, st *state.WorkflowState) error
	// Load returns the snapshot, or ErrCheckpointNotFound.
	Load(ctx context.Context, threadID string) (*state.WorkflowState, error)
	// Delete removes the snapshot. Deleting a missing thread is a no-op.
	Delete(ctx context.Context, threadID string) error
}

// MemoryCheckpointStore keeps snapshots in process memory. The default store
// for tests and single-process deployments.
type MemoryCheckpointStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Checkpoint
}

// NewMemoryCheckpointStore creates an empty in-memory store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{snapshots: make(map[string]*Checkpoint)}
}

func (m *MemoryCheckpointStore) Save(ctx context.Context, threadID string, st *state.WorkflowState) error {
	clone, err := st.Clone()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[threadID] = &Checkpoint{
		ThreadID:   threadID,
		WorkflowID: clone.WorkflowID,
		StepCount:  clone.StepCount,
		State:      clone,
		SavedAt:    time.Now().UTC(),
	}
	return nil
}

func (m *MemoryCheckpointStore) Load(ctx context.Context, threadID string) (*state.WorkflowState, error) {
	m.mu.RLock()
	cp, ok := m.snapshots[threadID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrCheckpointNotFound
	}
	return cp.State.Clone()
}

func (m *MemoryCheckpointStore) Delete(ctx context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, threadID)
	return nil
}
