package tape

import (
	"testing"
	"time"
)

func TestBar(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		unit     time.Duration
		maxWidth int
		want     string
	}{
		{"first stroke", 0, 200 * time.Millisecond, 5, "     "},
		{"below one unit", 199 * time.Millisecond, 200 * time.Millisecond, 5, "     "},
		{"one unit", 200 * time.Millisecond, 200 * time.Millisecond, 5, "    +"},
		{"partial units round down", 999 * time.Millisecond, 200 * time.Millisecond, 5, " ++++"},
		{"full bar", time.Second, 200 * time.Millisecond, 5, "+++++"},
		{"capped at max width", time.Minute, 200 * time.Millisecond, 5, "+++++"},
		{"narrow field", time.Second, 200 * time.Millisecond, 3, "+++"},
		{"zero width", time.Second, 200 * time.Millisecond, 0, ""},
		{"negative width", time.Second, 200 * time.Millisecond, -1, ""},
		{"clock went backwards", -time.Second, 200 * time.Millisecond, 5, "     "},
		{"tiny unit raised to floor", 50 * time.Millisecond, time.Nanosecond, 5, "+++++"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bar(tt.elapsed, tt.unit, tt.maxWidth); got != tt.want {
				t.Errorf("Bar(%v, %v, %d) = %q, want %q", tt.elapsed, tt.unit, tt.maxWidth, got, tt.want)
			}
		})
	}
}
