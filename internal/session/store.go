// Package session persists SessionMetadata records to a JSON-file-backed
// store and caches them in memory, so detached sessions survive process
// restarts.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vanpelt/sareterm/internal/logger"
	"github.com/vanpelt/sareterm/internal/model"
)

// Store is a UUID-keyed session metadata cache, mirrored to one JSON file
// per session under storageDir.
type Store struct {
	mu          sync.RWMutex
	storageDir  string
	cache       map[uuid.UUID]*model.SessionMetadata
	initialized bool
}

// NewStore returns a Store rooted at storageDir. Call Initialize before use
// to create the directory and load any persisted sessions.
func NewStore(storageDir string) *Store {
	return &Store{
		storageDir: storageDir,
		cache:      make(map[uuid.UUID]*model.SessionMetadata),
	}
}

// Initialize creates the storage directory if needed and loads all
// persisted sessions into the cache. A failure to read the directory's
// contents is logged and the store starts empty.
func (s *Store) Initialize() error {
	if err := os.MkdirAll(s.storageDir, 0755); err != nil {
		return model.IOError("session.Initialize", err)
	}
	if _, err := s.LoadAll(); err != nil {
		logger.Warnf("session: failed to load sessions from %s: %v", s.storageDir, err)
	}
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	return nil
}

// IsInitialized reports whether Initialize has completed successfully.
func (s *Store) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

func (s *Store) path(id uuid.UUID) string {
	return filepath.Join(s.storageDir, id.String()+".json")
}

// Save writes metadata to disk and updates the cache.
func (s *Store) Save(metadata *model.SessionMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return model.ParseError("session.Save", err)
	}

	s.mu.Lock()
	s.cache[metadata.ID] = metadata
	s.mu.Unlock()

	if err := os.WriteFile(s.path(metadata.ID), data, 0644); err != nil {
		return model.IOError("session.Save", err)
	}
	return nil
}

// Load returns the session for id, from cache if present, else from disk.
func (s *Store) Load(id uuid.UUID) (*model.SessionMetadata, bool, error) {
	s.mu.RLock()
	cached, ok := s.cache[id]
	s.mu.RUnlock()
	if ok {
		return cached, true, nil
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, model.IOError("session.Load", err)
	}

	var metadata model.SessionMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, false, model.ParseError("session.Load", err)
	}

	s.mu.Lock()
	s.cache[id] = &metadata
	s.mu.Unlock()

	return &metadata, true, nil
}

// LoadAll reads every session file under storageDir into the cache and
// returns all sessions.
func (s *Store) LoadAll() ([]*model.SessionMetadata, error) {
	entries, err := os.ReadDir(s.storageDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, model.IOError("session.LoadAll", err)
	}

	var sessions []*model.SessionMetadata
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		metadata, ok, err := s.Load(id)
		if err != nil || !ok {
			continue
		}
		sessions = append(sessions, metadata)
	}
	return sessions, nil
}

// LoadDetached returns every persisted session in the Detached state.
func (s *Store) LoadDetached() ([]*model.SessionMetadata, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	var detached []*model.SessionMetadata
	for _, m := range all {
		if m.State == model.StateDetached {
			detached = append(detached, m)
		}
	}
	return detached, nil
}

// Delete removes a session from both the cache and disk.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return model.IOError("session.Delete", err)
	}
	return nil
}

// Count returns the number of cached sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// ClearAll empties the cache and removes every session file on disk.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	s.cache = make(map[uuid.UUID]*model.SessionMetadata)
	s.mu.Unlock()

	entries, err := os.ReadDir(s.storageDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return model.IOError("session.ClearAll", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.storageDir, name)); err != nil && !os.IsNotExist(err) {
			return model.IOError("session.ClearAll", err)
		}
	}
	return nil
}

// Shutdown clears the in-memory cache and marks the store uninitialized.
// Persisted session files are left on disk for recovery on next start.
func (s *Store) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[uuid.UUID]*model.SessionMetadata)
	s.initialized = false
}

// StorageDir returns the directory sessions are persisted under.
func (s *Store) StorageDir() string {
	return s.storageDir
}

// Export writes the session for id to exportPath as pretty JSON.
func (s *Store) Export(id uuid.UUID, exportPath string) error {
	metadata, ok, err := s.Load(id)
	if err != nil {
		return err
	}
	if !ok {
		return model.NotFound("session.Export", id.String())
	}
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return model.ParseError("session.Export", err)
	}
	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return model.IOError("session.Export", err)
	}
	return nil
}

// Import reads a session from importPath and saves it into the store.
func (s *Store) Import(importPath string) (*model.SessionMetadata, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return nil, model.IOError("session.Import", err)
	}
	var metadata model.SessionMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, model.ParseError("session.Import", err)
	}
	if err := s.Save(&metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}
