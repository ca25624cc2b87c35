package lineedit

import (
	"os"
	"strings"
	"unicode"

	"github.com/vanpelt/sareterm/internal/model"
)

// DetectHeredoc scans input for a `<<DELIM`, `<<'DELIM'`, or `<<"DELIM"`
// word and returns the delimiter and whether its content should expand
// variables (quoted delimiters suppress expansion). The first matching word
// wins, even on malformed input like "cat <<EOF <<END".
func DetectHeredoc(input string) (delimiter string, expandVars bool, ok bool) {
	for _, word := range strings.Fields(input) {
		if !strings.HasPrefix(word, "<<") {
			continue
		}
		if strings.HasPrefix(word, "<<'") || strings.HasPrefix(word, `<<"`) {
			rest := word[3:]
			rest = strings.TrimSuffix(rest, `'`)
			rest = strings.TrimSuffix(rest, `"`)
			return rest, false, true
		}
		if len(word) > 2 {
			return word[2:], true, true
		}
	}
	return "", false, false
}

// Detector holds an in-progress here-doc collection.
type Detector struct {
	state model.HeredocState
}

// NewDetector returns a Detector with here-doc mode off.
func NewDetector() *Detector {
	return &Detector{}
}

// Active reports whether a here-doc is currently being collected.
func (d *Detector) Active() bool {
	return d.state.Active
}

// State returns the current here-doc state snapshot.
func (d *Detector) State() model.HeredocState {
	return d.state
}

// Begin starts here-doc collection if input contains a here-doc marker.
// Returns true if collection began.
func (d *Detector) Begin(input string) bool {
	delim, expand, ok := DetectHeredoc(input)
	if !ok {
		return false
	}
	d.state = model.HeredocState{
		Active:     true,
		Delimiter:  delim,
		ExpandVars: expand,
	}
	return true
}

// IsDelimiterLine reports whether line (after trimming) terminates the
// active here-doc.
func (d *Detector) IsDelimiterLine(line string) bool {
	if !d.state.Active {
		return false
	}
	return strings.TrimSpace(line) == d.state.Delimiter
}

// AddLine appends a line of here-doc content, expanding $VAR references
// first when the here-doc's delimiter was unquoted.
func (d *Detector) AddLine(line string) {
	if !d.state.Active {
		return
	}
	if d.state.ExpandVars {
		line = ExpandVariables(line)
	}
	d.state.Content += line + "\n"
}

// End closes here-doc collection and returns the collected content.
func (d *Detector) End() string {
	content := d.state.Content
	d.state = model.HeredocState{}
	return content
}

// Prompt returns the secondary prompt shown while collecting here-doc
// content.
func (d *Detector) Prompt() string {
	if d.state.Active {
		return "heredoc> "
	}
	return "$ "
}

// ExpandVariables replaces $NAME references in content with the matching
// environment variable's value, leaving unset variables (and a bare
// trailing "$") untouched.
func ExpandVariables(content string) string {
	var out strings.Builder
	runes := []rune(content)
	for i := 0; i < len(runes); {
		if runes[i] != '$' {
			out.WriteRune(runes[i])
			i++
			continue
		}
		j := i + 1
		for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
			j++
		}
		if j == i+1 {
			out.WriteRune('$')
			i++
			continue
		}
		name := string(runes[i+1 : j])
		if val, found := os.LookupEnv(name); found {
			out.WriteString(val)
		} else {
			out.WriteString(string(runes[i:j]))
		}
		i = j
	}
	return out.String()
}
