package lineedit

import (
	"context"
	"os/exec"
	"strings"

	"github.com/vanpelt/sareterm/internal/config"
	"github.com/vanpelt/sareterm/internal/model"
)

// DetectSubstitutions scans input for `$(command)` (nesting-aware, matched
// by paren depth) and `` `command` `` (non-nesting: the first backtick
// closes at the next backtick it finds) substitutions, left to right.
// Substitutions nested inside a `$(...)` are reported too, after the
// interval that encloses them, so results are ordered by start offset.
func DetectSubstitutions(input string) []model.SubstitutionInterval {
	var out []model.SubstitutionInterval
	runes := []rune(input)
	i := 0
	for i < len(runes) {
		switch {
		case runes[i] == '$' && i+1 < len(runes) && runes[i+1] == '(':
			start := i
			depth := 1
			j := i + 2
			for j < len(runes) && depth > 0 {
				switch runes[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
				j++
			}
			if depth == 0 {
				inner := string(runes[start+2 : j-1])
				out = append(out, model.SubstitutionInterval{Start: start, End: j, Inner: inner, Backtick: false})
				// Keep scanning inside so nested substitutions are reported.
				i = start + 2
			} else {
				i = j
			}
		case runes[i] == '`':
			start := i
			j := i + 1
			for j < len(runes) && runes[j] != '`' {
				j++
			}
			if j < len(runes) {
				inner := string(runes[start+1 : j])
				out = append(out, model.SubstitutionInterval{Start: start, End: j + 1, Inner: inner, Backtick: true})
				i = j + 1
			} else {
				i = j
			}
		default:
			i++
		}
	}
	return out
}

// ExecuteSubstitution runs command through the host shell and returns its
// combined, trimmed stdout+stderr. Unlike a naive whitespace split, this
// lets the substituted command itself use pipes, quoting, and redirection.
func ExecuteSubstitution(ctx context.Context, command string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", nil
	}
	cmd := exec.CommandContext(ctx, config.Runtime.Shell, "-c", command)
	var out strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

// ReplaceSubstitutions finds every substitution in input, executes each
// command, and splices the output back in. Replacements proceed in reverse
// order (last interval first) so earlier byte offsets stay valid as later
// ones are rewritten. Only outermost intervals are executed; a nested
// substitution runs as part of the shell command of the one enclosing it.
// A failed substitution is replaced with an empty string rather than
// aborting the whole line.
func ReplaceSubstitutions(ctx context.Context, input string) string {
	var intervals []model.SubstitutionInterval
	lastEnd := 0
	for _, iv := range DetectSubstitutions(input) {
		if iv.Start >= lastEnd {
			intervals = append(intervals, iv)
			lastEnd = iv.End
		}
	}
	runes := []rune(input)

	for k := len(intervals) - 1; k >= 0; k-- {
		iv := intervals[k]
		output, err := ExecuteSubstitution(ctx, iv.Inner)
		if err != nil {
			output = ""
		}
		runes = append(runes[:iv.Start], append([]rune(output), runes[iv.End:]...)...)
	}
	return string(runes)
}
