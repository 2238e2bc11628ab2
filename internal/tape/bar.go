package tape

import (
	"strings"
	"time"
)

// minBarUnit is the floor for the timing unit.
const minBarUnit = 10 * time.Millisecond

// Bar renders the pause before a stroke as a right-justified run of +
// in a field maxWidth wide. One + is drawn per whole timeUnit elapsed,
// capped at maxWidth. Units below the floor are raised to it.
func Bar(elapsed, timeUnit time.Duration, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if timeUnit < minBarUnit {
		timeUnit = minBarUnit
	}

	width := int(elapsed / timeUnit)
	switch {
	case width < 0:
		width = 0
	case width > maxWidth:
		width = maxWidth
	}
	return strings.Repeat(" ", maxWidth-width) + strings.Repeat("+", width)
}
