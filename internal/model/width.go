package model

// CharWidth classifies the display width of a single character.
type CharWidth int

const (
	// WidthZero covers combining marks, the zero-width joiner, variation
	// selectors, and emoji modifiers: the character occupies no column.
	WidthZero CharWidth = iota
	// WidthHalf covers ASCII and most Latin script: one column.
	WidthHalf
	// WidthFull covers CJK ideographs, fullwidth forms, and the
	// ideographic space: two columns, never ambiguous.
	WidthFull
	// WidthDouble covers most emoji in the pictographic ranges: two
	// columns.
	WidthDouble
	// WidthAmbiguous covers a fixed set of Latin-1 characters whose width
	// depends on locale context; resolved to Half or Full by policy.
	WidthAmbiguous
)

// Columns returns the number of display columns occupied under the given
// ambiguous-width policy (ambiguousIsFull selects the East Asian context).
func (w CharWidth) Columns(ambiguousIsFull bool) int {
	switch w {
	case WidthZero:
		return 0
	case WidthHalf:
		return 1
	case WidthFull, WidthDouble:
		return 2
	case WidthAmbiguous:
		if ambiguousIsFull {
			return 2
		}
		return 1
	default:
		return 1
	}
}

// BidiClass is the per-character bidirectional category used for base
// direction detection and reordering.
type BidiClass int

const (
	// BidiNeutral covers characters with no inherent direction.
	BidiNeutral BidiClass = iota
	// BidiL is strong left-to-right.
	BidiL
	// BidiR is strong right-to-left (non-Arabic).
	BidiR
	// BidiAL is an Arabic letter (right-to-left).
	BidiAL
	// BidiAN is an Arabic-indic digit.
	BidiAN
	// BidiEN is a European digit.
	BidiEN
)

// Direction is a resolved paragraph/base direction.
type Direction int

const (
	// DirLTR is left-to-right.
	DirLTR Direction = iota
	// DirRTL is right-to-left.
	DirRTL
)
