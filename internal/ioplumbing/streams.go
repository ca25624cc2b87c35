// Package ioplumbing manages I/O streams, pipelines, background process
// output, and file-descriptor redirection for a spawned child.
package ioplumbing

import (
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/vanpelt/sareterm/internal/model"
)

const streamCacheLimit = 65536

type streamEntry struct {
	meta model.Stream
	file *os.File
}

// StreamManager creates, reads, writes, and closes I/O streams backed by
// real file descriptors (stdio, regular files, or named pipes).
type StreamManager struct {
	mu      sync.RWMutex
	streams map[string]*streamEntry
}

// NewStreamManager returns an empty StreamManager.
func NewStreamManager() *StreamManager {
	return &StreamManager{streams: make(map[string]*streamEntry)}
}

// CreateStream opens the file descriptor appropriate to kind (stdio
// passthrough, a regular file at path, or a named pipe created if absent)
// and registers it under a new stream ID.
func (m *StreamManager) CreateStream(kind model.StreamKind, path string) (string, error) {
	file, err := openStreamFile(kind, path)
	if err != nil {
		return "", model.IOError("ioplumbing.CreateStream", err)
	}

	id := uuid.New().String()
	entry := &streamEntry{
		meta: model.Stream{
			ID:    id,
			Kind:  kind,
			Path:  path,
			FD:    int(file.Fd()),
			State: model.StreamOpen,
		},
		file: file,
	}

	m.mu.Lock()
	m.streams[id] = entry
	m.mu.Unlock()
	return id, nil
}

func openStreamFile(kind model.StreamKind, path string) (*os.File, error) {
	switch kind {
	case model.StreamStdin:
		return os.Stdin, nil
	case model.StreamStdout:
		return os.Stdout, nil
	case model.StreamStderr:
		return os.Stderr, nil
	case model.StreamFile:
		return os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	case model.StreamPipe:
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := unix.Mkfifo(path, 0666); err != nil {
				return nil, err
			}
		}
		return os.OpenFile(path, os.O_RDWR, 0)
	default:
		return nil, os.ErrInvalid
	}
}

// WriteToStream writes data to the stream's file descriptor and mirrors it
// into a bounded in-memory cache for later inspection.
func (m *StreamManager) WriteToStream(id string, data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.streams[id]
	if !ok {
		return 0, model.NotFound("ioplumbing.WriteToStream", id)
	}
	if entry.meta.State != model.StreamOpen {
		return 0, model.InvalidState("ioplumbing.WriteToStream", id, "stream is not open")
	}

	n, err := entry.file.Write(data)
	if err != nil {
		entry.meta.State = model.StreamError
		entry.meta.Message = err.Error()
		return n, model.IOError("ioplumbing.WriteToStream", err)
	}

	entry.meta.Cached = append(entry.meta.Cached, data...)
	if len(entry.meta.Cached) > streamCacheLimit {
		entry.meta.Cached = entry.meta.Cached[len(entry.meta.Cached)-streamCacheLimit:]
	}
	return n, nil
}

// ReadFromStream reads directly from the stream's file descriptor into buf.
func (m *StreamManager) ReadFromStream(id string, buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.streams[id]
	if !ok {
		return 0, model.NotFound("ioplumbing.ReadFromStream", id)
	}
	if entry.meta.State != model.StreamOpen {
		return 0, model.InvalidState("ioplumbing.ReadFromStream", id, "stream is not open")
	}

	n, err := entry.file.Read(buf)
	if err != nil {
		entry.meta.State = model.StreamError
		entry.meta.Message = err.Error()
		return n, model.IOError("ioplumbing.ReadFromStream", err)
	}
	return n, nil
}

// CloseStream releases the stream's file descriptor (stdio handles are left
// open) and removes it from the manager.
func (m *StreamManager) CloseStream(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.streams[id]
	if !ok {
		return model.NotFound("ioplumbing.CloseStream", id)
	}

	if entry.meta.Kind != model.StreamStdin && entry.meta.Kind != model.StreamStdout && entry.meta.Kind != model.StreamStderr {
		_ = entry.file.Close()
	}
	entry.meta.State = model.StreamClosed
	entry.meta.Cached = nil
	delete(m.streams, id)
	return nil
}

// GetStream returns a copy of the stream's metadata.
func (m *StreamManager) GetStream(id string) (model.Stream, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.streams[id]
	if !ok {
		return model.Stream{}, false
	}
	return entry.meta, true
}

// ListStreams returns a copy of every registered stream's metadata.
func (m *StreamManager) ListStreams() []model.Stream {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Stream, 0, len(m.streams))
	for _, entry := range m.streams {
		out = append(out, entry.meta)
	}
	return out
}
