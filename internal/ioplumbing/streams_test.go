package ioplumbing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanpelt/sareterm/internal/model"
)

func TestStreamFileLifecycle(t *testing.T) {
	m := NewStreamManager()
	path := filepath.Join(t.TempDir(), "stream.txt")

	id, err := m.CreateStream(model.StreamFile, path)
	require.NoError(t, err)

	n, err := m.WriteToStream(id, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	stream, ok := m.GetStream(id)
	require.True(t, ok)
	assert.Equal(t, model.StreamOpen, stream.State)
	assert.Equal(t, []byte("hello"), stream.Cached)

	require.NoError(t, m.CloseStream(id))
	_, ok = m.GetStream(id)
	assert.False(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStreamWriteAfterCloseFails(t *testing.T) {
	m := NewStreamManager()
	path := filepath.Join(t.TempDir(), "stream.txt")
	id, err := m.CreateStream(model.StreamFile, path)
	require.NoError(t, err)
	require.NoError(t, m.CloseStream(id))

	_, err = m.WriteToStream(id, []byte("x"))
	assert.Error(t, err)
}

func TestStreamNotFound(t *testing.T) {
	m := NewStreamManager()
	_, err := m.WriteToStream("missing", []byte("x"))
	assert.Error(t, err)
}

func TestListStreams(t *testing.T) {
	m := NewStreamManager()
	dir := t.TempDir()
	_, err := m.CreateStream(model.StreamFile, filepath.Join(dir, "a"))
	require.NoError(t, err)
	_, err = m.CreateStream(model.StreamFile, filepath.Join(dir, "b"))
	require.NoError(t, err)

	assert.Len(t, m.ListStreams(), 2)
}
