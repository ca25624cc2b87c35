package lineedit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vanpelt/sareterm/internal/model"
)

func TestBackslashContinuation(t *testing.T) {
	s := NewState()
	s.Update("echo hello \\")
	assert.True(t, s.IsMultiline())
	assert.Equal(t, '\\', *s.ContinuationChar())
	assert.Equal(t, "> ", s.Prompt())

	s.Update("echo hello \\\nworld")
	assert.False(t, s.IsMultiline())
	assert.Nil(t, s.ContinuationChar())
}

func TestPipeContinuation(t *testing.T) {
	s := NewState()
	s.Update("ls -la |")
	assert.True(t, s.IsMultiline())
	assert.Equal(t, '|', *s.ContinuationChar())
	assert.Equal(t, "| ", s.Prompt())

	s.Update("ls -la |\ngrep .txt")
	assert.False(t, s.IsMultiline())
}

func TestQuoteContinuation(t *testing.T) {
	s := NewState()
	s.Update("echo 'hello")
	assert.True(t, s.IsMultiline())
	assert.Equal(t, '\'', *s.ContinuationChar())
	assert.Equal(t, "'> ", s.Prompt())

	s.Update(`echo "hello`)
	assert.True(t, s.IsMultiline())
	assert.Equal(t, '"', *s.ContinuationChar())
	assert.Equal(t, "\"> ", s.Prompt())

	s.Update("echo 'hello\nworld'")
	assert.False(t, s.IsMultiline())
}

func TestBracketContinuation(t *testing.T) {
	cases := []struct {
		in     string
		char   rune
		prompt string
	}{
		{"echo (hello", '(', "(> "},
		{"echo {hello", '{', "{> "},
		{"echo [hello", '[', "[> "},
	}
	s := NewState()
	for _, c := range cases {
		s.Update(c.in)
		assert.True(t, s.IsMultiline())
		assert.Equal(t, c.char, *s.ContinuationChar())
		assert.Equal(t, c.prompt, s.Prompt())
	}
}

func TestCheckMultilineContinuation(t *testing.T) {
	ok, ch := CheckContinuation("echo hello \\")
	assert.True(t, ok)
	assert.Equal(t, '\\', ch)

	ok, _ = CheckContinuation("echo hello")
	assert.False(t, ok)
}

func TestMultilineEdgeCases(t *testing.T) {
	s := NewState()
	s.Update("")
	assert.False(t, s.IsMultiline())

	s.Update("   ")
	assert.False(t, s.IsMultiline())

	s.Update(`echo hello\world`)
	assert.False(t, s.IsMultiline())

	s.Update("echo hello|world")
	assert.False(t, s.IsMultiline())

	s.Update("echo 'hello' world")
	assert.False(t, s.IsMultiline())
}

func TestMultilineNestedQuotes(t *testing.T) {
	s := NewState()
	s.Update(`echo 'hello "world"'`)
	assert.False(t, s.IsMultiline())

	s.Update(`echo "hello 'world'"`)
	assert.False(t, s.IsMultiline())

	s.Update(`echo 'hello "world'`)
	assert.True(t, s.IsMultiline())
	assert.Equal(t, '\'', *s.ContinuationChar())

	s.Update(`echo "hello 'world"`)
	assert.True(t, s.IsMultiline())
	assert.Equal(t, '"', *s.ContinuationChar())
}

func TestComplexMultilinePipeChain(t *testing.T) {
	s := NewState()
	s.Update("echo 'hello world' |")
	assert.True(t, s.IsMultiline())

	s.Update("echo 'hello world' |\ngrep 'hello' |")
	assert.True(t, s.IsMultiline())

	s.Update("echo 'hello world' |\ngrep 'hello' |\nwc -l")
	assert.False(t, s.IsMultiline())
}

func TestSnapshot(t *testing.T) {
	s := NewState()
	s.Update("ls -la |")
	snap := s.Snapshot()
	assert.True(t, snap.IsMultiline)
	assert.Equal(t, model.ContinuationPipe, snap.Class)
	assert.Equal(t, "| ", snap.Prompt)
}
