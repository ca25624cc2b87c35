package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vanpelt/sareterm/internal/model"
)

func TestFragmentClassification(t *testing.T) {
	frag, ctx := fragment("ec", 2)
	assert.Equal(t, "ec", frag)
	assert.Equal(t, model.ContextCommand, ctx)

	frag, ctx = fragment("ls -l", 5)
	assert.Equal(t, "-l", frag)
	assert.Equal(t, model.ContextFlag, ctx)

	frag, ctx = fragment("echo $HO", 8)
	assert.Equal(t, "$HO", frag)
	assert.Equal(t, model.ContextVariable, ctx)

	frag, ctx = fragment("cat some", 8)
	assert.Equal(t, "some", frag)
	assert.Equal(t, model.ContextFilePath, ctx)
}

func TestCompleterBuiltins(t *testing.T) {
	c := NewCompleter()
	comp := c.Complete("ech", 3)
	assert.Equal(t, model.ContextCommand, comp.Context)
	assert.Contains(t, comp.Alternatives, "echo")
	assert.Equal(t, "echo", comp.CompletedText)
}

func TestCompleterVariable(t *testing.T) {
	t.Setenv("COMPLETION_TEST_VAR", "x")
	c := NewCompleter()
	comp := c.Complete("echo $COMPLETION_TEST_", 22)
	assert.Equal(t, model.ContextVariable, comp.Context)
	assert.Contains(t, comp.Alternatives, "$COMPLETION_TEST_VAR")
}

func TestCompleterFilePath(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "report.txt"), []byte("x"), 0644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "report_final.txt"), []byte("x"), 0644))

	c := NewCompleter()
	frag := filepath.Join(dir, "rep")
	comp := c.Complete("cat "+frag, len("cat "+frag))
	assert.Equal(t, model.ContextFilePath, comp.Context)
	assert.Len(t, comp.Alternatives, 2)
}

func TestLongestCommonPrefixFallsBackToFragment(t *testing.T) {
	assert.Equal(t, "abc", longestCommonPrefix([]string{"abcX", "abcY"}, "abc"))
	assert.Equal(t, "foo", longestCommonPrefix(nil, "foo"))
}
