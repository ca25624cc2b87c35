package ioplumbing

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanpelt/sareterm/internal/model"
)

func TestApplyRedirectionsStdoutTruncate(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(outPath, []byte("stale"), 0644))

	cmd := exec.Command("echo", "fresh")
	opened, err := ApplyRedirections(cmd, model.RedirectOptions{StdoutRedirect: outPath})
	require.NoError(t, err)
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	require.NoError(t, cmd.Run())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(data))
}

func TestApplyRedirectionsStdoutAppend(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(outPath, []byte("first\n"), 0644))

	cmd := exec.Command("echo", "second")
	opened, err := ApplyRedirections(cmd, model.RedirectOptions{StdoutRedirect: outPath, AppendOutput: true})
	require.NoError(t, err)
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	require.NoError(t, cmd.Run())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestApplyRedirectionsStdin(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(inPath, []byte("piped input\n"), 0644))
	outPath := filepath.Join(dir, "out.txt")

	cmd := exec.Command("cat")
	opened, err := ApplyRedirections(cmd, model.RedirectOptions{
		StdinRedirect:  inPath,
		StdoutRedirect: outPath,
	})
	require.NoError(t, err)
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	require.NoError(t, cmd.Run())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "piped input\n", string(data))
}

func TestApplyRedirectionsMissingInputFails(t *testing.T) {
	cmd := exec.Command("cat")
	_, err := ApplyRedirections(cmd, model.RedirectOptions{StdinRedirect: "/no/such/file"})
	assert.Error(t, err)
}

func TestCreateTempFile(t *testing.T) {
	path, err := CreateTempFile()
	require.NoError(t, err)
	defer os.Remove(path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}
