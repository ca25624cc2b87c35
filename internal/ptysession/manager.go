package ptysession

import (
	"strconv"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/vanpelt/sareterm/internal/logger"
	"github.com/vanpelt/sareterm/internal/model"
	"github.com/vanpelt/sareterm/internal/session"
)

// Manager tracks every live Session in the process and reconciles them
// against the persisted store.
type Manager struct {
	store *session.Store

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager builds a Manager backed by store. The store must already be
// Initialize()'d.
func NewManager(store *session.Store) *Manager {
	return &Manager{
		store:    store,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Spawn starts a new session and registers it with the manager.
func (m *Manager) Spawn(opts SpawnOptions) (*Session, error) {
	s, err := Spawn(m.store, opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	return s, nil
}

// Get returns the live session for id, if the manager holds one.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// List returns every session the manager currently tracks.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Detach marks a live, in-process session Detached.
func (m *Manager) Detach(id uuid.UUID) error {
	s, ok := m.Get(id)
	if !ok {
		return model.NotFound("ptysession.Manager.Detach", id.String())
	}
	return s.Detach()
}

// Attach brings a session back to Active. If the session is already live in
// this process, it simply flips state. If it only exists in the persisted
// store — the common case after a process restart, since a PTY master file
// descriptor cannot be recovered without the owning process — the recorded
// PID is checked for liveness and the record is marked Terminated if the
// child is gone.
func (m *Manager) Attach(id uuid.UUID) (*Session, error) {
	if s, ok := m.Get(id); ok {
		if err := s.Attach(); err != nil {
			return nil, err
		}
		return s, nil
	}

	metadata, found, err := m.store.Load(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.NotFound("ptysession.Manager.Attach", id.String())
	}

	if !pidAlive(metadata.CustomMetadata["pid"]) {
		metadata.Touch(model.StateTerminated)
		if err := m.store.Save(metadata); err != nil {
			logger.Warnf("ptysession: failed to persist terminated session %s: %v", id, err)
		}
		return nil, model.InvalidState("ptysession.Manager.Attach", id.String(), "owning process is gone, session cannot be reattached")
	}

	return nil, model.InvalidState("ptysession.Manager.Attach", id.String(), "session is not live in this process")
}

// Terminate stops a live session's child and removes it from the manager.
func (m *Manager) Terminate(id uuid.UUID) error {
	s, ok := m.Get(id)
	if !ok {
		return model.NotFound("ptysession.Manager.Terminate", id.String())
	}
	if err := s.Terminate(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	return nil
}

// RecoverDetached scans the persisted store at startup for Detached records
// whose owning process is no longer alive and marks them Terminated. It
// returns the number of records reconciled this way. Sessions whose process
// is still alive are left Detached — this process has no PTY master for
// them and cannot resume pumping their output until a real attach mechanism
// (fd-passing) exists.
func (m *Manager) RecoverDetached() (int, error) {
	detached, err := m.store.LoadDetached()
	if err != nil {
		return 0, err
	}

	reconciled := 0
	for _, metadata := range detached {
		if pidAlive(metadata.CustomMetadata["pid"]) {
			continue
		}
		metadata.Touch(model.StateTerminated)
		if err := m.store.Save(metadata); err != nil {
			logger.Warnf("ptysession: failed to persist recovered session %s: %v", metadata.ID, err)
			continue
		}
		reconciled++
	}

	return reconciled, nil
}

func pidAlive(pidStr string) bool {
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}
