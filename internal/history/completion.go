package history

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vanpelt/sareterm/internal/model"
)

var defaultBuiltins = []string{
	"cd", "exit", "export", "unset", "alias", "history", "pwd", "echo", "help",
}

var commonFlags = []string{
	"--help", "--version", "--verbose", "--force", "--output", "--quiet",
}

// Completer produces tab-completion alternatives for a line buffer.
type Completer struct {
	builtins []string
}

// NewCompleter returns a Completer seeded with the shell's builtin commands.
func NewCompleter() *Completer {
	return &Completer{builtins: defaultBuiltins}
}

// fragment is the token under the cursor together with its classification.
func fragment(input string, cursorPos int) (string, model.CompletionContext) {
	if cursorPos > len(input) {
		cursorPos = len(input)
	}
	head := input[:cursorPos]

	if idx := strings.LastIndexByte(head, '$'); idx != -1 {
		rest := head[idx+1:]
		if rest == "" || isIdentifierFragment(rest) {
			return head[idx:], model.ContextVariable
		}
	}

	fields := strings.Fields(head)
	var current string
	if len(fields) > 0 && !strings.HasSuffix(head, " ") {
		current = fields[len(fields)-1]
	}

	if strings.HasPrefix(current, "-") {
		return current, model.ContextFlag
	}

	firstToken := len(fields) == 0 || (len(fields) == 1 && !strings.HasSuffix(head, " "))
	if firstToken {
		return current, model.ContextCommand
	}

	return current, model.ContextFilePath
}

func isIdentifierFragment(s string) bool {
	for _, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// Complete classifies the token at cursorPos and returns the matching
// alternatives together with the longest common prefix extension.
func (c *Completer) Complete(input string, cursorPos int) model.Completion {
	frag, ctx := fragment(input, cursorPos)

	var alts []string
	switch ctx {
	case model.ContextCommand:
		alts = c.commandAlternatives(frag)
	case model.ContextFlag:
		alts = filterPrefix(commonFlags, frag)
	case model.ContextVariable:
		alts = c.variableAlternatives(frag)
	default:
		alts = filePathAlternatives(frag)
	}

	sort.Strings(alts)
	return model.Completion{
		CompletedText: longestCommonPrefix(alts, frag),
		Context:       ctx,
		Alternatives:  alts,
	}
}

func (c *Completer) commandAlternatives(frag string) []string {
	seen := map[string]bool{}
	var out []string
	for _, b := range c.builtins {
		if strings.HasPrefix(b, frag) && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, frag) && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func (c *Completer) variableAlternatives(frag string) []string {
	prefix := strings.TrimPrefix(frag, "$")
	var out []string
	for _, kv := range os.Environ() {
		name := kv[:strings.IndexByte(kv, '=')]
		if strings.HasPrefix(name, prefix) {
			out = append(out, "$"+name)
		}
	}
	return out
}

func filePathAlternatives(frag string) []string {
	dir := filepath.Dir(frag)
	base := filepath.Base(frag)
	if frag == "" {
		dir, base = ".", ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		full := name
		if dir != "." {
			full = filepath.Join(dir, name)
		}
		if e.IsDir() {
			full += string(filepath.Separator)
		}
		out = append(out, full)
	}
	return out
}

func filterPrefix(candidates []string, frag string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, frag) {
			out = append(out, c)
		}
	}
	return out
}

// longestCommonPrefix returns the longest prefix shared by every alternative,
// never shorter than frag itself.
func longestCommonPrefix(alts []string, frag string) string {
	if len(alts) == 0 {
		return frag
	}
	prefix := alts[0]
	for _, a := range alts[1:] {
		for !strings.HasPrefix(a, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return frag
			}
		}
	}
	if len(prefix) < len(frag) {
		return frag
	}
	return prefix
}
