// Package termwidth computes display-column widths for Unicode text and
// reorders mixed-direction runs for display, per the Width & Bidi
// component.
package termwidth

import (
	"strings"
	"sync"

	"github.com/unilibs/uniwidth"
	"github.com/vanpelt/sareterm/internal/model"
)

// zero-width ranges: combining marks, emoji modifiers, ZWJ, variation
// selectors. Grounded on original_source's width_handler.rs CharWidth::Zero
// arm.
var zeroRanges = [][2]rune{
	{0x0300, 0x036F},
	{0x1AB0, 0x1AFF},
	{0x20D0, 0x20FF},
	{0xFE20, 0xFE2F},
	{0x1F3FB, 0x1F3FF},
}

// full-width ranges: ideographic space, CJK Unified Ideographs and their
// extensions, fullwidth ASCII forms, and fullwidth symbols.
var fullRanges = [][2]rune{
	{0x3000, 0x3000},
	{0x3400, 0x4DBF},
	{0x4E00, 0x9FFF},
	{0xFF01, 0xFF60},
	{0xFFE0, 0xFFE6},
	{0x20000, 0x2FA1F},
}

const (
	zwj  = 0x200D
	vs15 = 0xFE0E
	vs16 = 0xFE0F
)

// ambiguous-width Latin-1 codepoints, per width_handler.rs CharWidth::Ambiguous.
var ambiguousSet = map[rune]bool{}

func init() {
	for _, r := range []rune{
		0x00A1, 0x00A4, 0x00A7, 0x00A8, 0x00AA, 0x00AD, 0x00AE, 0x00B0,
		0x00B2, 0x00B3, 0x00B5, 0x00B6, 0x00B7, 0x00B9, 0x00BA, 0x00BC,
		0x00BD, 0x00BE, 0x00C0, 0x00C1, 0x00C2, 0x00C3, 0x00C4, 0x00C5,
		0x00C6, 0x00C7, 0x00C8, 0x00C9, 0x00CA, 0x00CB, 0x00CC, 0x00CD,
		0x00CE, 0x00CF, 0x00D1, 0x00D2, 0x00D3, 0x00D4, 0x00D5, 0x00D6,
		0x00D9, 0x00DA, 0x00DB, 0x00DC, 0x00DD, 0x00E0, 0x00E1, 0x00E2,
		0x00E3, 0x00E4, 0x00E5, 0x00E6, 0x00E7, 0x00E8, 0x00E9, 0x00EA,
		0x00EB, 0x00EC, 0x00ED, 0x00EE, 0x00EF, 0x00F1, 0x00F2, 0x00F3,
		0x00F4, 0x00F5, 0x00F6, 0x00F9, 0x00FA, 0x00FB, 0x00FC, 0x00FD,
		0x00FE, 0x00FF,
	} {
		ambiguousSet[r] = true
	}
}

func inRanges(r rune, ranges [][2]rune) bool {
	for _, rg := range ranges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// classify returns the raw (pre-ambiguous-policy) CharWidth for r, checking
// the Zero/Ambiguous/Full override ranges first and falling back to
// uniwidth's East Asian Width table for Zero/Half/Double.
func classify(r rune) model.CharWidth {
	if inRanges(r, zeroRanges) || r == zwj || r == vs15 || r == vs16 {
		return model.WidthZero
	}
	if ambiguousSet[r] {
		return model.WidthAmbiguous
	}
	if inRanges(r, fullRanges) {
		return model.WidthFull
	}
	switch uniwidth.RuneWidth(r) {
	case 0:
		return model.WidthZero
	case 2:
		return model.WidthDouble
	default:
		return model.WidthHalf
	}
}

// Handler computes widths with a per-character cache keyed on the rune; a
// change of the ambiguous-width policy clears the whole cache.
type Handler struct {
	mu               sync.Mutex
	cache            map[rune]model.CharWidth
	ambiguousContext bool // true = ambiguous chars resolve Full
}

// NewHandler returns a Handler with ambiguous characters defaulting to
// half-width (Western context).
func NewHandler() *Handler {
	return &Handler{cache: make(map[rune]model.CharWidth)}
}

// SetAmbiguousContext selects whether ambiguous-width characters resolve to
// full-width (East Asian context) or half-width. Changing it clears the
// cache, since the resolved width depends on it.
func (h *Handler) SetAmbiguousContext(fullWidth bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ambiguousContext = fullWidth
	h.cache = make(map[rune]model.CharWidth)
}

// CharWidth returns the resolved width class of r under the handler's
// current ambiguous-width policy.
func (h *Handler) CharWidth(r rune) model.CharWidth {
	h.mu.Lock()
	defer h.mu.Unlock()
	if w, ok := h.cache[r]; ok {
		return w
	}
	w := classify(r)
	if w == model.WidthAmbiguous {
		if h.ambiguousContext {
			w = model.WidthFull
		} else {
			w = model.WidthHalf
		}
	}
	h.cache[r] = w
	return w
}

func (h *Handler) columns(r rune) int {
	// Ambiguous has already been resolved by CharWidth, so Columns'
	// ambiguousIsFull argument is irrelevant here.
	return h.CharWidth(r).Columns(false)
}

// cluster is one grapheme-like unit for width purposes: a rune run joined
// by zero-width-joiners counts once, at the width of its first member (a
// ZWJ-joined emoji sequence renders as a single glyph).
type cluster struct {
	start, end int // byte offsets in the source string
	width      int
}

// clusters walks s and groups ZWJ-joined runes into single-width units.
func (h *Handler) clusters(s string) []cluster {
	var out []cluster
	pos := 0
	runes := []rune(s)
	offsets := make([]int, 0, len(runes)+1)
	for _, r := range s {
		offsets = append(offsets, pos)
		pos += len(string(r))
	}
	offsets = append(offsets, len(s))

	i := 0
	for i < len(runes) {
		start := offsets[i]
		width := h.columns(runes[i])
		j := i + 1
		for j < len(runes) && runes[j] == zwj {
			j++ // consume the joiner
			if j < len(runes) {
				j++ // consume the joined rune; its width is absorbed
			}
		}
		end := offsets[j]
		out = append(out, cluster{start: start, end: end, width: width})
		i = j
	}
	return out
}

// StringWidth returns s's display width, treating ZWJ-joined rune sequences
// as a single glyph at the width of their first member.
func (h *Handler) StringWidth(s string) int {
	width := 0
	for _, c := range h.clusters(s) {
		width += c.width
	}
	return width
}

// CursorColumn returns the column of the cursor positioned just before
// byteIndex, stopping at the last cluster boundary at or before byteIndex.
func (h *Handler) CursorColumn(s string, byteIndex int) int {
	col := 0
	for _, c := range h.clusters(s) {
		if c.end > byteIndex {
			break
		}
		col += c.width
	}
	return col
}

// ByteIndex returns the smallest byte boundary whose accumulated column
// width is >= column, clamped to len(s).
func (h *Handler) ByteIndex(s string, column int) int {
	col := 0
	for _, c := range h.clusters(s) {
		if col >= column {
			return c.start
		}
		col += c.width
	}
	return len(s)
}

// SplitAtWidth splits s into substrings each measuring <= maxCols, never
// splitting a double-width character (or ZWJ cluster) across a boundary.
func (h *Handler) SplitAtWidth(s string, maxCols int) []string {
	var lines []string
	lineStart := 0
	curWidth := 0

	for _, c := range h.clusters(s) {
		if curWidth+c.width > maxCols {
			if c.end > lineStart {
				lines = append(lines, s[lineStart:c.start])
			}
			lineStart = c.start
			curWidth = 0
		}
		curWidth += c.width
	}
	if lineStart < len(s) {
		lines = append(lines, s[lineStart:])
	}
	return lines
}

// TruncateToWidth returns the longest prefix of s whose width is <= maxCols.
func (h *Handler) TruncateToWidth(s string, maxCols int) string {
	width := 0
	end := 0
	for _, c := range h.clusters(s) {
		if width+c.width > maxCols {
			break
		}
		width += c.width
		end = c.end
	}
	return s[:end]
}

// PadToWidth pads s with padChar until its width is >= target, returning s
// unchanged if it already is.
func (h *Handler) PadToWidth(s string, target int, padChar rune) string {
	width := h.StringWidth(s)
	if width >= target {
		return s
	}
	padCharWidth := h.columns(padChar)
	if padCharWidth == 0 {
		padCharWidth = 1
	}
	count := (target - width) / padCharWidth
	var out strings.Builder
	out.WriteString(s)
	for i := 0; i < count; i++ {
		out.WriteRune(padChar)
	}
	return out.String()
}

// ValidateText reports whether s contains no U+FFFD replacement characters
// (a sentinel for already-invalid Unicode having entered the pipeline).
func ValidateText(s string) bool {
	return !strings.ContainsRune(s, '�')
}

// NormalizeText replaces C0 controls (except TAB/LF/CR, left to the caller
// to special-case) and C1 controls with U+FFFD.
func NormalizeText(s string) string {
	var out strings.Builder
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			out.WriteRune(r)
		case r <= 0x1F:
			out.WriteRune('�')
		case r >= 0x7F && r <= 0x9F:
			out.WriteRune('�')
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}
