// Package translation models entries of the host engine's output
// history and the classifiers the tape applies to them.
package translation

import "strings"

// Action is one formatting action contributed by a history entry.
type Action struct {
	// Text is the text the action emits, leading space included.
	Text string `json:"text"`

	// Glue marks text that fuses with adjacent glued text, the way
	// fingerspelled letters do.
	Glue bool `json:"glue,omitempty"`
}

// Translation is one entry of the engine's output history.
type Translation struct {
	// Outline is the chord sequence that produced the entry.
	Outline []string `json:"outline"`

	// Actions are the formatting actions the entry contributed.
	Actions []Action `json:"actions"`

	// Definition is the dictionary definition behind the entry, nil when
	// the chords had no entry.
	Definition *string `json:"definition,omitempty"`

	// StrokeCount is the number of strokes that fed the entry. Zero
	// means unknown; Strokes falls back to the outline length.
	StrokeCount int `json:"strokes,omitempty"`

	// Replaced reports whether the entry displaced older entries when it
	// was pushed, as multi-stroke definitions do on their last stroke.
	Replaced bool `json:"replaced,omitempty"`
}

// Strokes returns the number of strokes behind the entry.
func (t *Translation) Strokes() int {
	if t.StrokeCount > 0 {
		return t.StrokeCount
	}
	return len(t.Outline)
}

// IsFingerspelling reports whether the entry spells out a letter.
// Glue is what fingerspelled letters carry, so glue is what is tested.
func (t *Translation) IsFingerspelling() bool {
	for _, a := range t.Actions {
		if a.Glue {
			return true
		}
	}
	return false
}

// IsWhitespace reports whether the entry emits no visible text. An
// entry without actions counts as whitespace.
func (t *Translation) IsWhitespace() bool {
	for _, a := range t.Actions {
		if a.Text == "" {
			continue
		}
		if strings.TrimSpace(a.Text) != "" {
			return false
		}
	}
	return true
}

// Text renders the text emitted by a run of history entries, oldest
// first.
func Text(entries []Translation) string {
	var b strings.Builder
	for i := range entries {
		for _, a := range entries[i].Actions {
			b.WriteString(a.Text)
		}
	}
	return b.String()
}

var whitespaceEscaper = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)

// EscapeWhitespace rewrites newline, carriage return, and tab as the
// two-character escapes \n, \r, and \t so an entry's text stays on one
// tape line.
func EscapeWhitespace(s string) string {
	return whitespaceEscaper.Replace(s)
}
