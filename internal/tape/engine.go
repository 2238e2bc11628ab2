package tape

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"stenotape/internal/steno"
	"stenotape/internal/suggest"
	"stenotape/internal/translation"
)

// ErrStopped is returned by OnStroke after the engine has been stopped.
var ErrStopped = errors.New("tape: engine is stopped")

// defaultFormat is the output template used when none is configured.
const defaultFormat = "%b |%s| %t  %h"

// Options configure an Engine.
type Options struct {
	// Layout renders chords; nil means the English stenotype layout.
	Layout *steno.Layout

	// Style selects definition or translation output for the text field.
	Style Style

	// Format is the line template; empty means "%b |%s| %t  %h".
	Format string

	// BarTimeUnit is the pause represented by one + of the timing bar.
	BarTimeUnit time.Duration

	// BarMaxWidth is the width of the timing bar field. Zero disables
	// the bar.
	BarMaxWidth int
}

// Engine turns stroke events into tape lines. Lines for fingerspelled
// strokes are written without their hint segment; the segment is held
// back and finished when the next event shows where the letter run
// went.
type Engine struct {
	mu   sync.Mutex
	w    *Writer
	src  suggest.Source
	tmpl Template
	opts Options

	// now is the clock; tests swap it.
	now func() time.Time

	// last is the arrival time of the previous event, zero before the
	// first one.
	last time.Time

	// deferred is the field map of the withheld right segment, nil when
	// nothing is pending.
	deferred Fields

	stopped bool
}

// NewEngine creates an engine writing to w, using src for hint lookups.
// A nil src disables hints. The engine owns w and closes it on Stop.
func NewEngine(w *Writer, src suggest.Source, opts Options) *Engine {
	if opts.Layout == nil {
		opts.Layout = steno.DefaultLayout()
	}
	if opts.Format == "" {
		opts.Format = defaultFormat
	}
	if opts.BarTimeUnit <= 0 {
		opts.BarTimeUnit = 200 * time.Millisecond
	}

	return &Engine{
		w:    w,
		src:  src,
		tmpl: ParseTemplate(opts.Format),
		opts: opts,
		now:  time.Now,
	}
}

// OnStroke renders one stroke event against the history snapshot taken
// right after it. The snapshot is only read during the call.
func (e *Engine) OnStroke(st steno.Stroke, history []translation.Translation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrStopped
	}

	// Resolve the withheld segment of the previous line first. Its hint
	// survives only when this event is the turning point where a letter
	// run merged into plain text: an undo stroke, a newest entry that is
	// still spelling, or one that replaced older entries is not that.
	if e.deferred != nil {
		newest := newestOf(history)
		if newest == nil || newest.IsFingerspelling() || st.IsCorrection || newest.Replaced {
			e.deferred['h'] = ""
		}
		if err := e.writeRight(e.deferred); err != nil {
			return err
		}
		e.deferred = nil
	}

	now := e.now()
	var elapsed time.Duration
	if !e.last.IsZero() {
		elapsed = now.Sub(e.last)
	}
	e.last = now

	fields := Fields{
		'b': Bar(elapsed, e.opts.BarTimeUnit, e.opts.BarMaxWidth),
		's': e.opts.Layout.Render(st.Keys),
		'%': "%",
	}

	fingerspelling := false
	if st.IsCorrection || len(history) == 0 {
		// An undo stroke is shown as a bare star; resurfacing the
		// restored translation next to it would read like new output.
		fields['t'] = "*"
		fields['h'] = ""
	} else {
		newest := &history[len(history)-1]

		star := ""
		if newest.Strokes() > 1 {
			star = "*"
		}
		var body string
		switch {
		case e.opts.Style == StyleTranslation:
			body = translation.Text(history[len(history)-1:])
		case newest.Definition != nil:
			body = *newest.Definition
		default:
			body = "/"
		}
		fields['t'] = star + translation.EscapeWhitespace(body)
		fields['h'] = suggest.Hint(suggest.Scan(history, e.src))

		fingerspelling = newest.IsFingerspelling()
	}

	if err := e.w.WriteString(e.tmpl.ExpandLeft(fields)); err != nil {
		return fmt.Errorf("write tape: %w", err)
	}
	if fingerspelling {
		e.deferred = fields
	} else if err := e.writeRight(fields); err != nil {
		return err
	}

	return e.w.Flush()
}

// Stop finishes any withheld segment, hint intact, and releases the
// tape. Stop is idempotent.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return nil
	}
	e.stopped = true

	if e.deferred != nil {
		if err := e.writeRight(e.deferred); err != nil {
			e.w.Close()
			return err
		}
		e.deferred = nil
	}
	return e.w.Close()
}

func (e *Engine) writeRight(fields Fields) error {
	if err := e.w.WriteString(e.tmpl.ExpandRight(fields) + "\n"); err != nil {
		return fmt.Errorf("write tape: %w", err)
	}
	return nil
}

func newestOf(history []translation.Translation) *translation.Translation {
	if len(history) == 0 {
		return nil
	}
	return &history[len(history)-1]
}
