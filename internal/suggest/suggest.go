// Package suggest derives shorter-outline hints from the output
// history.
//
// After every stroke the scanner walks the history backwards and asks a
// Source for alternate outlines of the text written since progressively
// older points. Fingerspelled letters do not get windows of their own;
// they are folded into the window of the first visible entry before
// them, which is what turns letter-by-letter "f o o" into a hint for
// "foo".
package suggest

import (
	"strings"

	"stenotape/internal/translation"
)

// Candidate is one alternate outline offered by a Source.
type Candidate struct {
	// Outline is the suggested chord sequence.
	Outline []string

	// Strokes is the number of chords in the outline.
	Strokes int
}

// String renders the candidate the way outlines are written, chords
// joined by slashes.
func (c Candidate) String() string {
	return strings.Join(c.Outline, "/")
}

// Source supplies alternate outlines for a piece of written text.
// Lookup receives the text as written, leading space included.
type Source interface {
	Lookup(text string) []Candidate
}

// Tier is the candidate set for one history window. A tier may be
// empty; its position still counts for hint depth.
type Tier []Candidate

// Scan walks the history newest to oldest and collects one tier per
// window. Windows are suffixes of the history: one ending after each
// run of fingerspelled letters and one starting at each visible entry.
// Each tier keeps only candidates with strictly fewer strokes than the
// window itself took. A whitespace-only newest entry, an empty history,
// or a nil source yields no tiers.
func Scan(history []translation.Translation, src Source) []Tier {
	n := len(history)
	if n == 0 || src == nil || history[n-1].IsWhitespace() {
		return nil
	}

	var tiers []Tier
	spelled := false
	for i := n - 1; i >= 0; i-- {
		entry := &history[i]
		if entry.IsFingerspelling() {
			spelled = true
			continue
		}
		if spelled {
			tiers = append(tiers, lookup(history[i+1:], src))
			spelled = false
		}
		if !entry.IsWhitespace() {
			tiers = append(tiers, lookup(history[i:], src))
		}
	}
	if spelled {
		tiers = append(tiers, lookup(history, src))
	}
	return tiers
}

// lookup builds the tier for one window: the window's text goes to the
// source, and only candidates shorter than the window's own stroke
// count survive.
func lookup(window []translation.Translation, src Source) Tier {
	text := translation.Text(window)
	limit := 0
	for i := range window {
		limit += window[i].Strokes()
	}

	var tier Tier
	for _, c := range src.Lookup(text) {
		if c.Strokes < limit {
			tier = append(tier, c)
		}
	}
	return tier
}

// Hint renders tiers on one line: each non-empty tier is prefixed with
// as many > as its position, candidates within a tier are separated by
// spaces, and tiers by a single space. All tiers empty renders as the
// empty string.
func Hint(tiers []Tier) string {
	var parts []string
	for i, tier := range tiers {
		if len(tier) == 0 {
			continue
		}
		outlines := make([]string, len(tier))
		for j, c := range tier {
			outlines[j] = c.String()
		}
		parts = append(parts, strings.Repeat(">", i+1)+strings.Join(outlines, " "))
	}
	return strings.Join(parts, " ")
}
