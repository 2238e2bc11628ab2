// Package internal provides integration tests for the stenotape pipeline.
//
// These tests verify the complete stroke-to-tape flow:
// 1. Load configuration from a file
// 2. Index dictionaries for hint lookups
// 3. Open the tape file and build the rendering engine
// 4. Feed stroke events through the host layer
// 5. Verify the rendered tape lines
package internal

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stenotape/internal/config"
	"stenotape/internal/dict"
	"stenotape/internal/host"
	"stenotape/internal/logging"
	"stenotape/internal/steno"
	"stenotape/internal/tape"
	"stenotape/internal/translation"
)

func quietLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.New(&logging.Config{Output: "discard"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return log
}

func waitForTape(t *testing.T, path, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && string(data) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	data, _ := os.ReadFile(path)
	t.Fatalf("Tape did not reach expected content.\ngot:\n%q\nwant:\n%q", data, want)
}

// =============================================================================
// INTEGRATION: Full Stroke-to-Tape Pipeline
// =============================================================================

// TestFullTapePipeline tests the complete flow from a configuration file
// through dictionary indexing, socket transport, and tape rendering.
func TestFullTapePipeline(t *testing.T) {
	tmpDir := t.TempDir()

	// Step 1: Write a dictionary with a briefer outline for "letter"
	dictPath := filepath.Join(tmpDir, "main.json")
	dictContent := `{"KAT": "cat", "HRERT": "letter", "HRET/ER": "letter"}`
	if err := os.WriteFile(dictPath, []byte(dictContent), 0644); err != nil {
		t.Fatalf("Failed to write dictionary: %v", err)
	}

	// Step 2: Write a configuration file pointing at it. The long bar
	// unit keeps the timing bar empty however slowly the test runs.
	tapePath := filepath.Join(tmpDir, "tape.txt")
	socketPath := filepath.Join(tmpDir, "stroke.sock")
	configPath := filepath.Join(tmpDir, "config.toml")
	configContent := fmt.Sprintf(`
bar_time_unit = 60.0

[tape]
path = %q

[dictionaries]
paths = [%q]
watch = false

[host]
socket = %q
`, tapePath, dictPath, socketPath)
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Step 3: Index the dictionary
	ix, err := dict.Open(cfg.Dictionaries.Paths)
	if err != nil {
		t.Fatalf("Failed to open dictionaries: %v", err)
	}
	if ix.Entries() != 3 {
		t.Fatalf("Indexed %d entries, want 3", ix.Entries())
	}
	t.Logf("Indexed %d dictionary entries", ix.Entries())

	// Step 4: Open the tape and build the engine from the configuration
	w, err := tape.OpenWriter(cfg.Tape.Path)
	if err != nil {
		t.Fatalf("Failed to open tape: %v", err)
	}

	eng := tape.NewEngine(w, ix, tape.Options{
		Layout:      cfg.StenoLayout(),
		Style:       tape.ParseStyle(cfg.OutputStyle),
		Format:      cfg.OutputFormat,
		BarTimeUnit: cfg.BarUnit(),
		BarMaxWidth: cfg.BarMaxWidth,
	})
	defer eng.Stop()

	// Step 5: Serve the socket and feed stroke events through it
	l := host.NewListener(cfg.Host.Socket, eng, quietLogger(t))
	if err := l.Start(); err != nil {
		t.Fatalf("Failed to start listener: %v", err)
	}
	defer l.Stop()

	conn, err := net.Dial("unix", cfg.Host.Socket)
	if err != nil {
		t.Fatalf("Failed to dial socket: %v", err)
	}

	events := strings.Join([]string{
		`{"keys":["K-","A-","-T"],"translations":[{"outline":["KAT"],"actions":[{"text":" cat"}],"definition":"cat"}]}`,
		`{"keys":["-E","-R"],"translations":[` +
			`{"outline":["KAT"],"actions":[{"text":" cat"}],"definition":"cat"},` +
			`{"outline":["HRET","ER"],"actions":[{"text":" letter"}],"definition":"letter"}]}`,
	}, "\n") + "\n"
	if _, err := conn.Write([]byte(events)); err != nil {
		t.Fatalf("Failed to write events: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Failed to close connection: %v", err)
	}

	// Step 6: The two-stroke "letter" gets a hint for the one-stroke
	// outline; the one-stroke "cat" does not.
	want := "      |   K    A          T   | cat\n" +
		"      |           E  R        | *letter  >HRERT\n"
	waitForTape(t, cfg.Tape.Path, want, 3*time.Second)
	t.Log("Tape rendered both strokes with the expected hint")

	// Step 7: Shutdown removes the socket but keeps the tape
	if err := l.Stop(); err != nil {
		t.Fatalf("Failed to stop listener: %v", err)
	}
	if _, err := os.Stat(cfg.Host.Socket); !os.IsNotExist(err) {
		t.Error("Socket file should be removed after shutdown")
	}
	if err := eng.Stop(); err != nil {
		t.Fatalf("Failed to stop engine: %v", err)
	}
	if _, err := os.Stat(cfg.Tape.Path); err != nil {
		t.Errorf("Tape file should survive shutdown: %v", err)
	}
}

// TestConfiguredStyleFlowsThrough tests that rendering options from the
// configuration file reach the tape output.
func TestConfiguredStyleFlowsThrough(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	tapePath := filepath.Join(tmpDir, "tape.txt")
	configContent := fmt.Sprintf(`
bar_time_unit: 60.0
output_style: translation
tape:
  path: %q
`, tapePath)
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	w, err := tape.OpenWriter(cfg.Tape.Path)
	if err != nil {
		t.Fatalf("Failed to open tape: %v", err)
	}

	eng := tape.NewEngine(w, nil, tape.Options{
		Style:       tape.ParseStyle(cfg.OutputStyle),
		Format:      cfg.OutputFormat,
		BarTimeUnit: cfg.BarUnit(),
		BarMaxWidth: cfg.BarMaxWidth,
	})
	defer eng.Stop()

	feed := `{"keys":["K-","A-","-T"],"translations":[{"outline":["KAT"],"actions":[{"text":" cat"}],"definition":"cat"}]}` + "\n"
	if _, err := host.ServeReader(strings.NewReader(feed), eng, quietLogger(t)); err != nil {
		t.Fatalf("Failed to serve events: %v", err)
	}
	if err := eng.Stop(); err != nil {
		t.Fatalf("Failed to stop engine: %v", err)
	}

	// Translation style shows the emitted text, leading space included
	data, err := os.ReadFile(cfg.Tape.Path)
	if err != nil {
		t.Fatalf("Failed to read tape: %v", err)
	}
	want := "      |   K    A          T   |  cat\n"
	if string(data) != want {
		t.Errorf("Tape = %q, want %q", data, want)
	}
}

// =============================================================================
// INTEGRATION: Dictionary Reloads
// =============================================================================

// TestReloadChangesHints tests that a dictionary reload is visible in the
// hints of subsequent tape lines.
func TestReloadChangesHints(t *testing.T) {
	tmpDir := t.TempDir()
	dictPath := filepath.Join(tmpDir, "main.json")

	if err := os.WriteFile(dictPath, []byte(`{"HRET/ER": "letter"}`), 0644); err != nil {
		t.Fatalf("Failed to write dictionary: %v", err)
	}

	ix, err := dict.Open([]string{dictPath})
	if err != nil {
		t.Fatalf("Failed to open dictionaries: %v", err)
	}

	w, err := tape.OpenWriter(filepath.Join(tmpDir, "tape.txt"))
	if err != nil {
		t.Fatalf("Failed to open tape: %v", err)
	}
	eng := tape.NewEngine(w, ix, tape.Options{BarTimeUnit: time.Minute, BarMaxWidth: 5})
	defer eng.Stop()

	event := `{"keys":["-E","-R"],"translations":[` +
		`{"outline":["HRET","ER"],"actions":[{"text":" letter"}],"definition":"letter"}]}` + "\n"

	// No shorter outline yet, so no hint
	if _, err := host.ServeReader(strings.NewReader(event), eng, quietLogger(t)); err != nil {
		t.Fatalf("Failed to serve events: %v", err)
	}

	// Add a brief and reload
	updated := `{"HRET/ER": "letter", "HRERT": "letter"}`
	if err := os.WriteFile(dictPath, []byte(updated), 0644); err != nil {
		t.Fatalf("Failed to update dictionary: %v", err)
	}
	if err := ix.Reload(); err != nil {
		t.Fatalf("Failed to reload dictionaries: %v", err)
	}
	if ix.Entries() != 2 {
		t.Fatalf("Indexed %d entries after reload, want 2", ix.Entries())
	}

	if _, err := host.ServeReader(strings.NewReader(event), eng, quietLogger(t)); err != nil {
		t.Fatalf("Failed to serve events: %v", err)
	}
	if err := eng.Stop(); err != nil {
		t.Fatalf("Failed to stop engine: %v", err)
	}

	data, err := os.ReadFile(w.Name())
	if err != nil {
		t.Fatalf("Failed to read tape: %v", err)
	}
	want := "      |           E  R        | *letter\n" +
		"      |           E  R        | *letter  >HRERT\n"
	if string(data) != want {
		t.Errorf("Tape = %q, want %q", data, want)
	}
	t.Log("Reloaded dictionary produced the new hint")
}

// =============================================================================
// BENCHMARKS
// =============================================================================

// BenchmarkStrokeToTape benchmarks the rendering path for a stroke with
// dictionary-backed hints.
func BenchmarkStrokeToTape(b *testing.B) {
	tmpDir := b.TempDir()
	dictPath := filepath.Join(tmpDir, "main.json")

	if err := os.WriteFile(dictPath, []byte(`{"KAT": "cat", "HRERT": "letter", "HRET/ER": "letter"}`), 0644); err != nil {
		b.Fatalf("Failed to write dictionary: %v", err)
	}
	ix, err := dict.Open([]string{dictPath})
	if err != nil {
		b.Fatalf("Failed to open dictionaries: %v", err)
	}

	w, err := tape.OpenWriter(filepath.Join(tmpDir, "tape.txt"))
	if err != nil {
		b.Fatalf("Failed to open tape: %v", err)
	}
	eng := tape.NewEngine(w, ix, tape.Options{BarMaxWidth: 5})
	defer eng.Stop()

	definition := "letter"
	history := []translation.Translation{{
		Outline:    []string{"HRET", "ER"},
		Actions:    []translation.Action{{Text: " letter"}},
		Definition: &definition,
	}}
	st := steno.Stroke{Keys: []string{"-E", "-R"}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := eng.OnStroke(st, history); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkHintLookup benchmarks reverse lookups against an indexed
// dictionary.
func BenchmarkHintLookup(b *testing.B) {
	tmpDir := b.TempDir()
	dictPath := filepath.Join(tmpDir, "main.json")

	entries := make([]string, 0, 1000)
	for i := 0; i < 1000; i++ {
		entries = append(entries, fmt.Sprintf("%q: %q", fmt.Sprintf("STROEBG/%d", i), fmt.Sprintf("word%d", i)))
	}
	content := "{" + strings.Join(entries, ", ") + "}"
	if err := os.WriteFile(dictPath, []byte(content), 0644); err != nil {
		b.Fatalf("Failed to write dictionary: %v", err)
	}

	ix, err := dict.Open([]string{dictPath})
	if err != nil {
		b.Fatalf("Failed to open dictionaries: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.Lookup(" word500")
	}
}
