// stroke-gen generates synthetic steno stroke event streams for testing
// the tape renderer without a connected steno engine.
//
// Usage:
//
//	go run tools/stroke-gen.go -output events.ndjson -count 100
//	go run tools/stroke-gen.go -count 200 -profile learner
//	go run tools/stroke-gen.go -stream -profile dictation | stenotaped -stdin
//
// Events carry no timestamps; the tape daemon clocks them on arrival.
// A file replayed through -stdin therefore shows empty timing bars,
// while -stream paces events in real time so the bars fill naturally.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"time"
)

// event is one stroke event in the wire format stenotaped reads.
type event struct {
	Keys         []string      `json:"keys"`
	Correction   bool          `json:"correction,omitempty"`
	Translations []translation `json:"translations"`
}

// translation is one entry of the simulated output history.
type translation struct {
	Outline    []string `json:"outline"`
	Actions    []action `json:"actions"`
	Definition *string  `json:"definition,omitempty"`
	Strokes    int      `json:"strokes,omitempty"`
	Replaced   bool     `json:"replaced,omitempty"`
}

type action struct {
	Text string `json:"text"`
	Glue bool   `json:"glue,omitempty"`
}

// chord pairs the keys of one stroke with its steno spelling.
type chord struct {
	keys []string
	rtf  string
}

// wordDef is a word the generator can write, with the outline it uses.
type wordDef struct {
	text       string
	definition string
	strokes    []chord
}

var vocabulary = []wordDef{
	{" the", "the", []chord{{[]string{"T-", "H-", "-E"}, "THE"}}},
	{" and", "and", []chord{{[]string{"S-", "K-", "P-"}, "SKP"}}},
	{" is", "is", []chord{{[]string{"S-"}, "S"}}},
	{" you", "you", []chord{{[]string{"-U"}, "U"}}},
	{" are", "are", []chord{{[]string{"-R"}, "-R"}}},
	{" be", "be", []chord{{[]string{"P-", "W-", "-E"}, "PWE"}}},
	{" cat", "cat", []chord{{[]string{"K-", "A-", "-T"}, "KAT"}}},
	{" dog", "dog", []chord{{[]string{"T-", "K-", "O-", "-G"}, "TKOG"}}},
	{" test", "test", []chord{{[]string{"T-", "-E", "-F", "-T"}, "TEFT"}}},
	{" ya", "ya", []chord{{[]string{"K-", "W-", "R-", "A-"}, "KWRA"}}},
	{" letter", "letter", []chord{
		{[]string{"H-", "R-", "-E", "-T"}, "HRET"},
		{[]string{"-E", "-R"}, "ER"},
	}},
	{" together", "together", []chord{
		{[]string{"T-", "O-", "-G"}, "TOG"},
		{[]string{"-E", "-T"}, "ET"},
		{[]string{"-E", "-R"}, "ER"},
	}},
}

// letterDef is one fingerspelled letter with its starred outline.
type letterDef struct {
	text string
	rtf  string
	keys []string
}

var letters = []letterDef{
	{"a", "A*", []string{"A-", "*"}},
	{"b", "PW*", []string{"P-", "W-", "*"}},
	{"f", "TP*", []string{"T-", "P-", "*"}},
	{"o", "O*", []string{"O-", "*"}},
	{"s", "S*", []string{"S-", "*"}},
	{"x", "KP*", []string{"K-", "P-", "*"}},
}

// strokeProfile defines parameters for simulating different writers.
type strokeProfile struct {
	Name             string
	Description      string
	MedianIntervalMs float64 // Median time between strokes
	IntervalStdDevMs float64 // Standard deviation
	CorrectionRate   float64 // Probability of an undo stroke
	FingerspellRate  float64 // Probability of starting a letter run
	BurstProbability float64 // Probability of a fast burst
	BurstIntervalMs  float64 // Interval during bursts
	PauseProbability float64 // Probability of a thinking pause
	PauseMaxMs       float64 // Maximum pause duration
}

var profiles = map[string]strokeProfile{
	"steady": {
		Name:             "Steady Writer",
		Description:      "Experienced writer at a consistent realtime pace",
		MedianIntervalMs: 300,
		IntervalStdDevMs: 150,
		CorrectionRate:   0.02,
		FingerspellRate:  0.03,
		BurstProbability: 0.1,
		BurstIntervalMs:  150,
		PauseProbability: 0.03,
		PauseMaxMs:       8000,
	},
	"learner": {
		Name:             "Learner",
		Description:      "Slow strokes with frequent corrections",
		MedianIntervalMs: 2200,
		IntervalStdDevMs: 1500,
		CorrectionRate:   0.18,
		FingerspellRate:  0.08,
		BurstProbability: 0.02,
		BurstIntervalMs:  800,
		PauseProbability: 0.1,
		PauseMaxMs:       20000,
	},
	"dictation": {
		Name:             "Dictation",
		Description:      "Bursts following speech with pauses between phrases",
		MedianIntervalMs: 500,
		IntervalStdDevMs: 300,
		CorrectionRate:   0.05,
		FingerspellRate:  0.05,
		BurstProbability: 0.35,
		BurstIntervalMs:  120,
		PauseProbability: 0.12,
		PauseMaxMs:       15000,
	},
	"spelling": {
		Name:             "Name-Heavy Transcript",
		Description:      "Frequent fingerspelled runs between words",
		MedianIntervalMs: 700,
		IntervalStdDevMs: 400,
		CorrectionRate:   0.08,
		FingerspellRate:  0.35,
		BurstProbability: 0.05,
		BurstIntervalMs:  250,
		PauseProbability: 0.06,
		PauseMaxMs:       10000,
	},
}

func main() {
	var (
		outputPath   = flag.String("output", "events.ndjson", "Output file path")
		strokeCount  = flag.Int("count", 100, "Number of strokes to generate")
		profileName  = flag.String("profile", "steady", "Writer profile to use")
		seed         = flag.Int64("seed", 0, "Random seed; 0 = use current time")
		stream       = flag.Bool("stream", false, "Write to stdout, paced in real time")
		listProfiles = flag.Bool("list", false, "List available profiles")
	)
	flag.Parse()

	if *listProfiles {
		fmt.Println("Available profiles:")
		for name, p := range profiles {
			fmt.Printf("  %-12s %s\n", name, p.Description)
		}
		os.Exit(0)
	}

	profile, ok := profiles[*profileName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown profile: %s\n", *profileName)
		fmt.Fprintf(os.Stderr, "Use -list to see available profiles\n")
		os.Exit(1)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	// In stream mode stdout carries the events, so chatter goes to stderr
	info := io.Writer(os.Stdout)
	if *stream {
		info = os.Stderr
	}
	fmt.Fprintf(info, "Generating %d strokes with profile: %s\n", *strokeCount, profile.Name)
	fmt.Fprintf(info, "Random seed: %d\n", *seed)

	gen := &generator{
		rng:     rand.New(rand.NewSource(*seed)),
		profile: profile,
	}

	var out *bufio.Writer
	if *stream {
		out = bufio.NewWriter(os.Stdout)
	} else {
		f, err := os.Create(*outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = bufio.NewWriter(f)
	}

	intervals := make([]float64, 0, *strokeCount)
	for i := 0; i < *strokeCount; i++ {
		intervalMs := gen.interval()
		intervals = append(intervals, intervalMs)
		if *stream && i > 0 {
			out.Flush()
			time.Sleep(time.Duration(intervalMs * float64(time.Millisecond)))
		}

		ev := gen.next()
		line, err := json.Marshal(ev)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling event: %v\n", err)
			os.Exit(1)
		}
		out.Write(line)
		out.WriteByte('\n')
	}
	if err := out.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	if !*stream {
		fmt.Fprintf(info, "Generated %d strokes to %s\n", *strokeCount, *outputPath)
	}
	printStats(info, gen, intervals)
}

// generator produces a stroke event stream with a simulated output
// history, the way a host engine would report it.
type generator struct {
	rng     *rand.Rand
	profile strokeProfile

	history []translation

	// in-progress multi-stroke word
	word        *wordDef
	strokeIndex int

	// in-progress fingerspelled run
	lettersLeft int
	firstLetter bool

	burstLeft int

	words, letters, corrections int
}

func (g *generator) next() event {
	// A started word or letter run finishes before anything else
	if g.word != nil {
		return g.wordStroke()
	}
	if g.lettersLeft > 0 {
		return g.letterStroke()
	}

	r := g.rng.Float64()
	switch {
	case len(g.history) > 0 && r < g.profile.CorrectionRate:
		return g.correction()
	case r < g.profile.CorrectionRate+g.profile.FingerspellRate:
		g.lettersLeft = 2 + g.rng.Intn(3)
		g.firstLetter = true
		return g.letterStroke()
	default:
		g.word = &vocabulary[g.rng.Intn(len(vocabulary))]
		g.strokeIndex = 0
		return g.wordStroke()
	}
}

func (g *generator) wordStroke() event {
	w := g.word
	ch := w.strokes[g.strokeIndex]
	g.strokeIndex++

	if g.strokeIndex < len(w.strokes) {
		// Partial outline shows up untranslated until the word completes
		g.push(translation{
			Outline: []string{ch.rtf},
			Actions: []action{{Text: " " + ch.rtf}},
		})
		return g.event(ch.keys, false)
	}

	// Final stroke replaces the partials with the finished word
	g.history = g.history[:len(g.history)-(len(w.strokes)-1)]
	outline := make([]string, len(w.strokes))
	for i, c := range w.strokes {
		outline[i] = c.rtf
	}
	def := w.definition
	g.push(translation{
		Outline:    outline,
		Actions:    []action{{Text: w.text}},
		Definition: &def,
		Strokes:    len(w.strokes),
		Replaced:   len(w.strokes) > 1,
	})
	g.word = nil
	g.words++
	return g.event(ch.keys, false)
}

func (g *generator) letterStroke() event {
	l := letters[g.rng.Intn(len(letters))]
	text := l.text
	if g.firstLetter {
		text = " " + text
		g.firstLetter = false
	}
	def := "{&" + l.text + "}"
	g.push(translation{
		Outline:    []string{l.rtf},
		Actions:    []action{{Text: text, Glue: true}},
		Definition: &def,
	})
	g.lettersLeft--
	g.letters++
	return g.event(l.keys, false)
}

func (g *generator) correction() event {
	g.history = g.history[:len(g.history)-1]
	g.corrections++
	return g.event([]string{"*"}, true)
}

func (g *generator) push(t translation) {
	g.history = append(g.history, t)
	if len(g.history) > 32 {
		g.history = append([]translation(nil), g.history[len(g.history)-16:]...)
	}
}

// event snapshots the recent history into a wire event.
func (g *generator) event(keys []string, correction bool) event {
	window := g.history
	if len(window) > 10 {
		window = window[len(window)-10:]
	}
	snap := make([]translation, len(window))
	copy(snap, window)
	return event{Keys: keys, Correction: correction, Translations: snap}
}

func (g *generator) interval() float64 {
	p := g.profile
	if g.burstLeft > 0 {
		g.burstLeft--
		return p.BurstIntervalMs * (0.5 + g.rng.Float64())
	}
	if g.rng.Float64() < p.PauseProbability {
		return p.MedianIntervalMs + g.rng.Float64()*p.PauseMaxMs
	}
	if g.rng.Float64() < p.BurstProbability {
		g.burstLeft = 3 + g.rng.Intn(8)
		return p.BurstIntervalMs * (0.5 + g.rng.Float64())
	}
	return logNormalSample(g.rng, p.MedianIntervalMs, p.IntervalStdDevMs)
}

// logNormalSample generates a sample from a log-normal distribution.
func logNormalSample(rng *rand.Rand, median, stdDev float64) float64 {
	mu := math.Log(median)
	sigma := math.Log(1 + stdDev/median)
	if sigma < 0.1 {
		sigma = 0.1
	}

	// Box-Muller transform
	u1 := rng.Float64()
	u2 := rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

	return math.Exp(mu + sigma*z)
}

func printStats(w io.Writer, g *generator, intervals []float64) {
	if len(intervals) == 0 {
		return
	}

	var sum, sumSq float64
	min, max := intervals[0], intervals[0]
	for _, v := range intervals {
		sum += v
		sumSq += v * v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(len(intervals))
	variance := sumSq/float64(len(intervals)) - mean*mean
	stdDev := math.Sqrt(variance)

	fmt.Fprintln(w, "\nStatistics:")
	fmt.Fprintf(w, "  Total strokes:    %d\n", len(intervals))
	fmt.Fprintf(w, "  Words written:    %d\n", g.words)
	fmt.Fprintf(w, "  Letters spelled:  %d\n", g.letters)
	fmt.Fprintf(w, "  Corrections:      %d\n", g.corrections)
	fmt.Fprintf(w, "  Interval mean:    %.0f ms\n", mean)
	fmt.Fprintf(w, "  Interval stddev:  %.0f ms\n", stdDev)
	fmt.Fprintf(w, "  Interval min:     %.0f ms\n", min)
	fmt.Fprintf(w, "  Interval max:     %.0f ms\n", max)
}
