package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanpelt/sareterm/internal/model"
)

func newMetadata(name string, state model.SessionState) *model.SessionMetadata {
	return &model.SessionMetadata{
		ID:             uuid.New(),
		Name:           name,
		SessionType:    model.SessionNormal,
		State:          state,
		Owner:          "tester",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
		CustomMetadata: map[string]string{},
	}
}

func TestStoreInitializeCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	s := NewStore(dir)
	require.NoError(t, s.Initialize())
	assert.True(t, s.IsInitialized())
	assert.Equal(t, 0, s.Count())
}

func TestStoreSaveAndLoad(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Initialize())

	m := newMetadata("alpha", model.StateActive)
	require.NoError(t, s.Save(m))

	loaded, ok, err := s.Load(m.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alpha", loaded.Name)
}

func TestStoreLoadFromDiskWithoutCache(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, s.Initialize())

	m := newMetadata("beta", model.StateDetached)
	require.NoError(t, s.Save(m))

	fresh := NewStore(dir)
	loaded, ok, err := fresh.Load(m.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "beta", loaded.Name)
}

func TestStoreLoadMissing(t *testing.T) {
	s := NewStore(t.TempDir())
	_, ok, err := s.Load(uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreLoadAllAndDetached(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, s.Initialize())

	require.NoError(t, s.Save(newMetadata("active-one", model.StateActive)))
	require.NoError(t, s.Save(newMetadata("detached-one", model.StateDetached)))
	require.NoError(t, s.Save(newMetadata("detached-two", model.StateDetached)))

	all, err := s.LoadAll()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	detached, err := s.LoadDetached()
	require.NoError(t, err)
	assert.Len(t, detached, 2)
}

func TestStoreDelete(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Initialize())

	m := newMetadata("gamma", model.StateActive)
	require.NoError(t, s.Save(m))
	require.NoError(t, s.Delete(m.ID))

	_, ok, err := s.Load(m.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreClearAll(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, s.Initialize())

	require.NoError(t, s.Save(newMetadata("one", model.StateActive)))
	require.NoError(t, s.Save(newMetadata("two", model.StateActive)))
	require.NoError(t, s.ClearAll())

	assert.Equal(t, 0, s.Count())
	all, err := s.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStoreShutdownKeepsFilesOnDisk(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, s.Initialize())
	m := newMetadata("persisted", model.StateDetached)
	require.NoError(t, s.Save(m))

	s.Shutdown()
	assert.False(t, s.IsInitialized())
	assert.Equal(t, 0, s.Count())

	fresh := NewStore(dir)
	all, err := fresh.LoadAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStoreExportImport(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, s.Initialize())

	m := newMetadata("exported", model.StateActive)
	require.NoError(t, s.Save(m))

	exportPath := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, s.Export(m.ID, exportPath))

	other := NewStore(t.TempDir())
	imported, err := other.Import(exportPath)
	require.NoError(t, err)
	assert.Equal(t, m.ID, imported.ID)
	assert.Equal(t, "exported", imported.Name)
}
