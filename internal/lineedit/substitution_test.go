package lineedit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSubstitutionsBasic(t *testing.T) {
	subs := DetectSubstitutions("echo $(date)")
	assert.Len(t, subs, 1)
	assert.Equal(t, 5, subs[0].Start)
	assert.Equal(t, 12, subs[0].End)
	assert.Equal(t, "date", subs[0].Inner)
	assert.False(t, subs[0].Backtick)

	subs = DetectSubstitutions("echo `date`")
	assert.Len(t, subs, 1)
	assert.Equal(t, 5, subs[0].Start)
	assert.Equal(t, 11, subs[0].End)
	assert.Equal(t, "date", subs[0].Inner)
	assert.True(t, subs[0].Backtick)
}

func TestDetectSubstitutionsNested(t *testing.T) {
	subs := DetectSubstitutions("echo $(echo $(date))")
	assert.Len(t, subs, 2)

	subs = DetectSubstitutions("echo `echo `date``")
	assert.Len(t, subs, 2)

	subs = DetectSubstitutions("echo $(echo `date`)")
	assert.Len(t, subs, 2)
}

func TestDetectSubstitutionsNone(t *testing.T) {
	subs := DetectSubstitutions("echo hello")
	assert.Empty(t, subs)
}

func TestExecuteSubstitution(t *testing.T) {
	out, err := ExecuteSubstitution(context.Background(), "echo hello world")
	assert.NoError(t, err)
	assert.Equal(t, "hello world", out)
}

func TestExecuteSubstitutionNonexistentCommand(t *testing.T) {
	_, err := ExecuteSubstitution(context.Background(), "definitely_not_a_real_command_xyz")
	assert.Error(t, err)
}

func TestReplaceSubstitutions(t *testing.T) {
	result := ReplaceSubstitutions(context.Background(), "say $(echo hi) now")
	assert.Equal(t, "say hi now", result)
}
