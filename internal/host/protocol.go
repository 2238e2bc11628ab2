// Package host receives stroke events from a steno engine and feeds
// them to the tape.
package host

import (
	"encoding/json"
	"fmt"

	"stenotape/internal/steno"
	"stenotape/internal/translation"
)

// Event is one line of the stroke feed: the chord that was pressed and
// the translation history snapshot taken right after it settled.
type Event struct {
	Keys         []string                  `json:"keys"`
	Correction   bool                      `json:"correction,omitempty"`
	Translations []translation.Translation `json:"translations"`
}

// Stroke returns the chord the event reports.
func (e *Event) Stroke() steno.Stroke {
	return steno.Stroke{Keys: e.Keys, IsCorrection: e.Correction}
}

// Snapshot returns the history snapshot, filling in stroke counts for
// producers that only send outlines.
func (e *Event) Snapshot() []translation.Translation {
	for i := range e.Translations {
		if e.Translations[i].StrokeCount == 0 {
			e.Translations[i].StrokeCount = len(e.Translations[i].Outline)
		}
	}
	return e.Translations
}

// DecodeEvent parses one feed line.
func DecodeEvent(line []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &ev, nil
}
