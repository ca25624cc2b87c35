package ptysession

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanpelt/sareterm/internal/session"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	s := session.NewStore(filepath.Join(t.TempDir(), "sessions"))
	require.NoError(t, s.Initialize())
	return s
}

func waitForOutput(t *testing.T, s *Session, contains string) string {
	t.Helper()
	deadline := time.After(2 * time.Second)
	var got []byte
	for {
		select {
		case chunk, ok := <-s.ReadOutput():
			if !ok {
				t.Fatalf("output channel closed before seeing %q, got %q", contains, got)
			}
			got = append(got, chunk...)
			if len(got) > 0 {
				return string(got)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for output containing %q, got %q", contains, got)
		}
	}
}

func TestSpawnAndWriteInput(t *testing.T) {
	store := newTestStore(t)
	s, err := Spawn(store, SpawnOptions{
		Name:    "echo-session",
		Command: []string{"cat"},
		Owner:   "tester",
	})
	require.NoError(t, err)
	defer s.Terminate()

	_, err = s.WriteInput([]byte("hello\n"))
	require.NoError(t, err)

	out := waitForOutput(t, s, "hello")
	assert.Contains(t, out, "hello")

	meta := s.Metadata()
	assert.NotEmpty(t, meta.CustomMetadata["pid"])
}

func TestSpawnRejectsEmptyCommand(t *testing.T) {
	store := newTestStore(t)
	_, err := Spawn(store, SpawnOptions{Name: "empty"})
	assert.Error(t, err)
}

func TestResize(t *testing.T) {
	store := newTestStore(t)
	s, err := Spawn(store, SpawnOptions{Command: []string{"cat"}})
	require.NoError(t, err)
	defer s.Terminate()

	assert.NoError(t, s.Resize(120, 40))
}

func TestDetachAttach(t *testing.T) {
	store := newTestStore(t)
	s, err := Spawn(store, SpawnOptions{Command: []string{"cat"}})
	require.NoError(t, err)
	defer s.Terminate()

	require.NoError(t, s.Detach())
	require.NoError(t, s.Attach())
}

func TestSuspendResume(t *testing.T) {
	store := newTestStore(t)
	s, err := Spawn(store, SpawnOptions{Command: []string{"cat"}})
	require.NoError(t, err)
	defer s.Terminate()

	require.NoError(t, s.Suspend())
	require.NoError(t, s.Resume())
}

func TestTerminateIsIdempotentAndClosesOutput(t *testing.T) {
	store := newTestStore(t)
	s, err := Spawn(store, SpawnOptions{Command: []string{"cat"}})
	require.NoError(t, err)

	require.NoError(t, s.Terminate())
	require.NoError(t, s.Terminate())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-s.ReadOutput():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("output channel never closed after terminate")
		}
	}
}

func TestChildExitMarksTerminated(t *testing.T) {
	store := newTestStore(t)
	s, err := Spawn(store, SpawnOptions{Command: []string{"true"}})
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-s.ReadOutput():
			if !ok {
				meta, found, err := store.Load(s.ID())
				require.NoError(t, err)
				require.True(t, found)
				assert.Equal(t, "Terminated", string(meta.State))
				return
			}
		case <-deadline:
			t.Fatal("session never reached terminated state")
		}
	}
}
