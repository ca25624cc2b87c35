package lineedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectHeredocBasic(t *testing.T) {
	delim, expand, ok := DetectHeredoc("cat <<EOF")
	assert.True(t, ok)
	assert.Equal(t, "EOF", delim)
	assert.True(t, expand)
}

func TestDetectHeredocQuoted(t *testing.T) {
	delim, expand, ok := DetectHeredoc("cat <<'EOF'")
	assert.True(t, ok)
	assert.Equal(t, "EOF", delim)
	assert.False(t, expand)

	delim, expand, ok = DetectHeredoc(`cat <<"EOF"`)
	assert.True(t, ok)
	assert.Equal(t, "EOF", delim)
	assert.False(t, expand)
}

func TestDetectHeredocNone(t *testing.T) {
	_, _, ok := DetectHeredoc("cat file.txt")
	assert.False(t, ok)

	_, _, ok = DetectHeredoc("cat <<")
	assert.False(t, ok)
}

func TestDetectHeredocFirstOccurrenceWins(t *testing.T) {
	delim, _, ok := DetectHeredoc("cat <<EOF <<END")
	assert.True(t, ok)
	assert.Equal(t, "EOF", delim)
}

func TestDetectHeredocSpecialCharsInDelimiter(t *testing.T) {
	delim, _, ok := DetectHeredoc("cat <<EOF-123")
	assert.True(t, ok)
	assert.Equal(t, "EOF-123", delim)
}

func TestDetectorLifecycle(t *testing.T) {
	d := NewDetector()
	assert.False(t, d.Active())

	started := d.Begin("cat <<EOF")
	assert.True(t, started)
	assert.True(t, d.Active())
	assert.Equal(t, "heredoc> ", d.Prompt())

	assert.True(t, d.IsDelimiterLine("  EOF  "))
	assert.False(t, d.IsDelimiterLine("END"))

	d.AddLine("line 1")
	d.AddLine("line 2")
	content := d.End()
	assert.Equal(t, "line 1\nline 2\n", content)
	assert.False(t, d.Active())
	assert.Equal(t, "$ ", d.Prompt())
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("TEST_VAR", "test_value")

	assert.Equal(t, "Hello test_value, welcome", ExpandVariables("Hello $TEST_VAR, welcome"))
	assert.Equal(t, "Hello $NONEXISTENT_VAR", ExpandVariables("Hello $NONEXISTENT_VAR"))
	assert.Equal(t, "Hello $", ExpandVariables("Hello $"))
	assert.Equal(t, "$VAR1 $VAR2", ExpandVariables("$VAR1 $VAR2"))
}

func TestDetectorExpandsOnlyUnquotedDelimiters(t *testing.T) {
	t.Setenv("NAME", "world")

	d := NewDetector()
	d.Begin("cat <<EOF")
	d.AddLine("hello $NAME")
	assert.Equal(t, "hello world\n", d.End())

	d2 := NewDetector()
	d2.Begin("cat <<'EOF'")
	d2.AddLine("hello $NAME")
	assert.Equal(t, "hello $NAME\n", d2.End())
}
