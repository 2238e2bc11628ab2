package tape

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stenotape/internal/steno"
	"stenotape/internal/suggest"
	"stenotape/internal/translation"
)

// mapSource serves canned hint candidates keyed by output text.
type mapSource map[string][]suggest.Candidate

func (m mapSource) Lookup(text string) []suggest.Candidate { return m[text] }

func cand(outline ...string) suggest.Candidate {
	return suggest.Candidate{Outline: outline, Strokes: len(outline)}
}

func word(text, definition string, outline ...string) translation.Translation {
	return translation.Translation{
		Outline:    outline,
		Actions:    []translation.Action{{Text: text}},
		Definition: &definition,
	}
}

func letter(text, definition string) translation.Translation {
	return translation.Translation{
		Outline:    []string{"X*"},
		Actions:    []translation.Action{{Text: text, Glue: true}},
		Definition: &definition,
	}
}

// untranslate is a raw stroke with no dictionary entry behind it.
func untranslate(text string, outline ...string) translation.Translation {
	return translation.Translation{
		Outline: outline,
		Actions: []translation.Action{{Text: text}},
	}
}

func chord(keys ...string) steno.Stroke { return steno.Stroke{Keys: keys} }

func undo() steno.Stroke {
	return steno.Stroke{Keys: []string{"*"}, IsCorrection: true}
}

type tapeFixture struct {
	eng  *Engine
	path string
	at   time.Time
}

func newFixture(t *testing.T, src suggest.Source, opts Options) *tapeFixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tape.txt")
	w, err := OpenWriter(path)
	require.NoError(t, err)

	if opts.BarMaxWidth == 0 {
		opts.BarMaxWidth = 5
	}
	fx := &tapeFixture{
		eng:  NewEngine(w, src, opts),
		path: path,
		at:   time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	fx.eng.now = func() time.Time { return fx.at }
	t.Cleanup(func() { fx.eng.Stop() })
	return fx
}

// strokeAfter advances the clock by pause and feeds one event.
func (fx *tapeFixture) strokeAfter(t *testing.T, pause time.Duration, st steno.Stroke, history ...translation.Translation) {
	t.Helper()
	fx.at = fx.at.Add(pause)
	require.NoError(t, fx.eng.OnStroke(st, history))
}

func (fx *tapeFixture) contents(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(fx.path)
	require.NoError(t, err)
	return string(data)
}

func TestEngineWritesTapeLine(t *testing.T) {
	src := mapSource{" letter": {cand("HRERT")}}
	fx := newFixture(t, src, Options{})

	fx.strokeAfter(t, 0, chord("-E", "-R"), word(" letter", "letter", "HRET", "ER"))

	assert.Equal(t, "      |           E  R        | *letter  >HRERT\n", fx.contents(t))
}

func TestEngineTimingBar(t *testing.T) {
	fx := newFixture(t, nil, Options{})
	cat := word(" cat", "cat", "KAT")

	fx.strokeAfter(t, 0, chord("K-", "A-", "-T"), cat)
	fx.strokeAfter(t, 350*time.Millisecond, chord("K-", "A-", "-T"), cat)
	fx.strokeAfter(t, time.Second, chord("K-", "A-", "-T"), cat)

	want := "      |   K    A          T   | cat\n" +
		"    + |   K    A          T   | cat\n" +
		"+++++ |   K    A          T   | cat\n"
	assert.Equal(t, want, fx.contents(t))
}

func TestEngineBarOptions(t *testing.T) {
	fx := newFixture(t, nil, Options{BarTimeUnit: time.Second, BarMaxWidth: 2})
	cat := word(" cat", "cat", "KAT")

	fx.strokeAfter(t, 0, chord("K-", "A-", "-T"), cat)
	fx.strokeAfter(t, 3*time.Second, chord("K-", "A-", "-T"), cat)

	want := "   |   K    A          T   | cat\n" +
		"++ |   K    A          T   | cat\n"
	assert.Equal(t, want, fx.contents(t))
}

// A zero bar width turns the bar column off no matter how long the
// pauses get.
func TestEngineZeroBarWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tape.txt")
	w, err := OpenWriter(path)
	require.NoError(t, err)

	eng := NewEngine(w, nil, Options{})
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	eng.now = func() time.Time { return at }
	t.Cleanup(func() { eng.Stop() })

	cat := []translation.Translation{word(" cat", "cat", "KAT")}
	require.NoError(t, eng.OnStroke(chord("K-", "A-", "-T"), cat))
	at = at.Add(time.Second)
	require.NoError(t, eng.OnStroke(chord("K-", "A-", "-T"), cat))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := " |   K    A          T   | cat\n" +
		" |   K    A          T   | cat\n"
	assert.Equal(t, want, string(data))
}

func TestEngineCorrectionStroke(t *testing.T) {
	src := mapSource{" cat": {cand("K")}}
	fx := newFixture(t, src, Options{})
	cat := word(" cat", "cat", "KAT")

	fx.strokeAfter(t, 0, chord("K-", "A-", "-T"), cat)
	fx.strokeAfter(t, 0, undo(), cat)

	want := "      |   K    A          T   | cat\n" +
		"      |          *            | *\n"
	assert.Equal(t, want, fx.contents(t))
}

func TestEngineEmptyHistory(t *testing.T) {
	fx := newFixture(t, nil, Options{})

	fx.strokeAfter(t, 0, chord("S-"))

	assert.Equal(t, "      | S                     | *\n", fx.contents(t))
}

func TestEngineUntranslatedStroke(t *testing.T) {
	fx := newFixture(t, nil, Options{})

	fx.strokeAfter(t, 0, chord("S-", "T-"), untranslate(" STPH", "STPH"))

	assert.Equal(t, "      | ST                    | /\n", fx.contents(t))
}

func TestEngineTranslationStyle(t *testing.T) {
	fx := newFixture(t, nil, Options{Style: StyleTranslation})
	newline := word("\n", "{^\\n^}", "R-R")

	fx.strokeAfter(t, 0, chord("R-", "-R"), newline)
	fx.strokeAfter(t, 0, chord("K-", "A-", "-T"), newline, word(" cat", "cat", "KAT"))

	want := "      |       R      R        | \\n\n" +
		"      |   K    A          T   |  cat\n"
	assert.Equal(t, want, fx.contents(t))
}

func TestEngineWhitespaceNewestHasNoHint(t *testing.T) {
	src := mapSource{" cat ": {cand("K")}, " ": {cand("S")}}
	fx := newFixture(t, src, Options{})
	cat := word(" cat", "cat", "KAT")

	fx.strokeAfter(t, 0, chord("K-", "A-", "-T"), cat)
	fx.strokeAfter(t, 500*time.Millisecond, chord("S-", "*", "-P"), cat, word(" ", "{^ ^}", "S*P"))

	want := "      |   K    A          T   | cat\n" +
		"   ++ | S        *    P       | {^ ^}\n"
	assert.Equal(t, want, fx.contents(t))
}

// A fingerspelled stroke leaves its hint segment open until the next
// event shows whether the letters merged into a word.
func TestEngineFingerspellingRun(t *testing.T) {
	src := mapSource{" foo": {cand("TPAO")}}
	fx := newFixture(t, src, Options{})

	be := word(" be", "be", "PWE")
	f := letter(" f", "{&f}")
	o := letter("o", "{&o}")
	ya := word(" ya", "ya", "KWRA")

	fx.strokeAfter(t, time.Second, chord("T-", "K-", "*"), be, f)
	fx.strokeAfter(t, time.Second, chord("O-", "*"), be, f, o)
	fx.strokeAfter(t, time.Second, chord("O-", "*"), be, f, o, o)
	fx.strokeAfter(t, time.Second, chord("K-", "W-", "R-", "A-"), be, f, o, o, ya)

	want := "      |  TK      *            | {&f}\n" +
		"+++++ |         O*            | {&o}\n" +
		"+++++ |         O*            | {&o}  >TPAO\n" +
		"+++++ |   K W RA              | ya\n"
	assert.Equal(t, want, fx.contents(t))
}

func TestEngineCorrectionRedactsDeferredHint(t *testing.T) {
	src := mapSource{" be f": {cand("PWEF")}}
	fx := newFixture(t, src, Options{})
	be := word(" be", "be", "PWE")

	fx.strokeAfter(t, 0, chord("T-", "K-", "*"), be, letter(" f", "{&f}"))
	fx.strokeAfter(t, time.Second, undo(), be)

	got := fx.contents(t)
	want := "      |  TK      *            | {&f}\n" +
		"+++++ |          *            | *\n"
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "PWEF")
}

func TestEngineReplacedEntryRedactsDeferredHint(t *testing.T) {
	src := mapSource{" BAR": {cand("PWAR")}, " w b": {cand("WB")}}
	fx := newFixture(t, src, Options{})

	w := word(" w", "w", "W")
	merged := word(" BAR", "BAR", "PW*", "A*", "R*")
	merged.Replaced = true

	fx.strokeAfter(t, 0, chord("P-", "W-", "*"), w, letter(" b", "{&b}"))
	fx.strokeAfter(t, time.Second, chord("R-", "*"), w, merged)

	got := fx.contents(t)
	want := "      |    PW    *            | {&b}\n" +
		"+++++ |       R  *            | *BAR  >PWAR\n"
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "WB")
}

func TestEngineStopFlushesDeferredHint(t *testing.T) {
	src := mapSource{" be f": {cand("PWEF")}}
	fx := newFixture(t, src, Options{})

	fx.strokeAfter(t, 0, chord("T-", "K-", "*"), word(" be", "be", "PWE"), letter(" f", "{&f}"))
	require.NoError(t, fx.eng.Stop())

	assert.Equal(t, "      |  TK      *            | {&f}  >>PWEF\n", fx.contents(t))
	assert.ErrorIs(t, fx.eng.OnStroke(chord("S-"), nil), ErrStopped)
	assert.NoError(t, fx.eng.Stop())
}

func TestEngineCustomFormat(t *testing.T) {
	src := mapSource{" cat": {cand("K")}}
	fx := newFixture(t, src, Options{Format: "[%t] 100%%"})

	fx.strokeAfter(t, 0, chord("K-", "A-", "-T"), word(" cat", "cat", "KAT"))

	assert.Equal(t, "[cat] 100%\n", fx.contents(t))
}
