// Package ptysession spawns child processes under a pseudoterminal and
// drives their lifecycle: resize, bidirectional I/O, detach/attach, and
// terminate, mirrored into session metadata persisted via internal/session.
package ptysession

import (
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/vanpelt/sareterm/internal/ioplumbing"
	"github.com/vanpelt/sareterm/internal/logger"
	"github.com/vanpelt/sareterm/internal/model"
	"github.com/vanpelt/sareterm/internal/recovery"
	"github.com/vanpelt/sareterm/internal/session"
)

const (
	outputChannelCapacity = 64
	ringBufferLimit       = 65536
	terminateGracePeriod  = 2 * time.Second
)

// SpawnOptions configures a new PTY session.
type SpawnOptions struct {
	Name     string
	Command  []string
	Env      []string
	Dir      string
	Owner    string
	Redirect model.RedirectOptions
}

// Session owns one child process running under a PTY master/slave pair
// together with its persisted metadata record.
type Session struct {
	store *session.Store

	mu          sync.Mutex
	ptyFile     *os.File
	cmd         *exec.Cmd
	openedFiles []*os.File
	metadata    model.SessionMetadata
	terminated  bool

	outputCh chan []byte
	buffer   []byte
	bufMu    sync.Mutex
}

// Spawn allocates a PTY, starts the command under it, and registers the
// session as Active.
func Spawn(store *session.Store, opts SpawnOptions) (*Session, error) {
	if len(opts.Command) == 0 {
		return nil, model.InvalidState("ptysession.Spawn", "", "command must not be empty")
	}

	cmd := exec.Command(opts.Command[0], opts.Command[1:]...)
	if opts.Env != nil {
		cmd.Env = opts.Env
	}
	cmd.Dir = opts.Dir

	opened, err := ioplumbing.ApplyRedirections(cmd, opts.Redirect)
	if err != nil {
		for _, f := range opened {
			f.Close()
		}
		return nil, err
	}

	ptyFile, err := pty.Start(cmd)
	if err != nil {
		for _, f := range opened {
			f.Close()
		}
		return nil, model.SpawnFailure("ptysession.Spawn", err)
	}

	now := time.Now()
	id := uuid.New()
	metadata := model.SessionMetadata{
		ID:          id,
		Name:        opts.Name,
		SessionType: model.SessionNormal,
		State:       model.StateActive,
		Owner:       opts.Owner,
		CreatedAt:   now,
		UpdatedAt:   now,
		CustomMetadata: map[string]string{
			"pid": strconv.Itoa(cmd.Process.Pid),
		},
	}

	s := &Session{
		store:       store,
		ptyFile:     ptyFile,
		cmd:         cmd,
		openedFiles: opened,
		metadata:    metadata,
		outputCh:    make(chan []byte, outputChannelCapacity),
	}

	if err := store.Save(&s.metadata); err != nil {
		logger.Warnf("ptysession: failed to persist new session %s: %v", id, err)
	}

	recovery.SafeGoWithCleanup("ptysession-pump-"+id.String(), s.pump, s.onChildExit)

	return s, nil
}

// ID returns the session's UUID.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata.ID
}

// Metadata returns a copy of the session's current metadata.
func (s *Session) Metadata() model.SessionMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata
}

func (s *Session) pump() {
	buf := make([]byte, 4096)
	for {
		n, err := s.ptyFile.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			s.bufMu.Lock()
			s.buffer = append(s.buffer, chunk...)
			if len(s.buffer) > ringBufferLimit {
				s.buffer = s.buffer[len(s.buffer)-ringBufferLimit:]
			}
			s.bufMu.Unlock()

			select {
			case s.outputCh <- chunk:
			default:
			}
		}
		if err != nil {
			return
		}
	}
}

// onChildExit reaps the child and marks the session Terminated unless an
// explicit Terminate already did so.
func (s *Session) onChildExit() {
	_ = s.cmd.Wait()
	for _, f := range s.openedFiles {
		f.Close()
	}

	s.mu.Lock()
	already := s.terminated
	s.terminated = true
	s.metadata.Touch(model.StateTerminated)
	metadata := s.metadata
	s.mu.Unlock()

	if !already {
		if err := s.store.Save(&metadata); err != nil {
			logger.Warnf("ptysession: failed to persist terminated session %s: %v", metadata.ID, err)
		}
	}

	close(s.outputCh)
}

// Resize applies new terminal dimensions to the PTY master.
func (s *Session) Resize(cols, rows uint16) error {
	if err := pty.Setsize(s.ptyFile, &pty.Winsize{Rows: rows, Cols: cols}); err != nil {
		return model.IOError("ptysession.Resize", err)
	}
	return nil
}

// ReadOutput returns the channel new output chunks are pushed to. The
// channel is closed when the child exits.
func (s *Session) ReadOutput() <-chan []byte {
	return s.outputCh
}

// Buffer returns a copy of the accumulated output ring buffer, useful for
// replaying recent history to a newly attached reader.
func (s *Session) Buffer() []byte {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()
	return append([]byte(nil), s.buffer...)
}

// WriteInput writes bytes to the PTY master. A short write returns the
// count actually written; the caller retries with the remainder.
func (s *Session) WriteInput(data []byte) (int, error) {
	n, err := s.ptyFile.Write(data)
	if err != nil {
		return n, model.IOError("ptysession.WriteInput", err)
	}
	return n, nil
}

// Detach transitions the session to Detached and persists the change. The
// child and its PTY keep running.
func (s *Session) Detach() error {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return model.InvalidState("ptysession.Detach", s.metadata.ID.String(), "session already terminated")
	}
	s.metadata.Touch(model.StateDetached)
	metadata := s.metadata
	s.mu.Unlock()

	return s.store.Save(&metadata)
}

// Attach transitions a previously detached session back to Active.
func (s *Session) Attach() error {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return model.InvalidState("ptysession.Attach", s.metadata.ID.String(), "session already terminated")
	}
	s.metadata.Touch(model.StateActive)
	metadata := s.metadata
	s.mu.Unlock()

	return s.store.Save(&metadata)
}

// Suspend sends SIGSTOP to the child and marks the session Suspended.
func (s *Session) Suspend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return model.InvalidState("ptysession.Suspend", s.metadata.ID.String(), "session already terminated")
	}
	if err := s.cmd.Process.Signal(syscall.SIGSTOP); err != nil {
		return model.IOError("ptysession.Suspend", err)
	}
	s.metadata.Touch(model.StateSuspended)
	metadata := s.metadata
	return s.store.Save(&metadata)
}

// Resume sends SIGCONT to the child and marks the session Active.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return model.InvalidState("ptysession.Resume", s.metadata.ID.String(), "session already terminated")
	}
	if err := s.cmd.Process.Signal(syscall.SIGCONT); err != nil {
		return model.IOError("ptysession.Resume", err)
	}
	s.metadata.Touch(model.StateActive)
	metadata := s.metadata
	return s.store.Save(&metadata)
}

// Terminate signals the child (SIGHUP, then SIGKILL if still alive after a
// grace period), closes the PTY, and marks the session Terminated. It is
// idempotent.
func (s *Session) Terminate() error {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	_ = s.cmd.Process.Signal(syscall.SIGHUP)

	deadline := time.Now().Add(terminateGracePeriod)
	for time.Now().Before(deadline) {
		if s.cmd.Process.Signal(syscall.Signal(0)) != nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if s.cmd.Process.Signal(syscall.Signal(0)) == nil {
		_ = s.cmd.Process.Kill()
	}

	// Closing the master unblocks pump's Read, which drives onChildExit.
	return s.ptyFile.Close()
}
