// Package steno models raw stroke input and the key layout used to
// render chords on the tape.
package steno

import "strings"

// Stroke is a single chord as reported by the host engine.
type Stroke struct {
	// Keys are the raw key identifiers pressed in this chord.
	Keys []string

	// IsCorrection marks the stroke as an undo of the previous one.
	IsCorrection bool
}

// Layout describes the key order and numeric aliases of a steno machine.
type Layout struct {
	// Keys lists every key slot in tape order.
	Keys []string

	// Numbers maps numeric aliases to the letter key sharing their slot.
	Numbers map[string]string

	// NumberKey is the key implied by any numeric alias.
	NumberKey string
}

// DefaultLayout returns the English stenotype layout.
func DefaultLayout() *Layout {
	return &Layout{
		Keys: []string{
			"#",
			"S-", "T-", "K-", "P-", "W-", "H-", "R-",
			"A-", "O-",
			"*",
			"-E", "-U",
			"-F", "-R", "-P", "-B", "-L", "-G", "-T", "-S", "-D", "-Z",
		},
		Numbers: map[string]string{
			"1-": "S-", "2-": "T-", "3-": "P-", "4-": "H-", "5-": "A-",
			"0-": "O-", "-6": "-F", "-7": "-P", "-8": "-L", "-9": "-T",
		},
		NumberKey: "#",
	}
}

// Width returns the number of slots in a rendered chord.
func (l *Layout) Width() int {
	return len(l.Keys)
}

// Render draws a chord on a fixed-width band: each slot shows its key
// label when pressed and a space otherwise. A numeric alias lights up
// both the letter key it stands for and the number key. Keys outside
// the layout are ignored.
func (l *Layout) Render(keys []string) string {
	pressed := make(map[string]bool, len(keys))
	for _, key := range keys {
		if letter, ok := l.Numbers[key]; ok {
			pressed[letter] = true
			pressed[l.NumberKey] = true
		} else {
			pressed[key] = true
		}
	}

	var b strings.Builder
	b.Grow(len(l.Keys))
	for _, key := range l.Keys {
		if pressed[key] {
			b.WriteString(strings.Trim(key, "-"))
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
