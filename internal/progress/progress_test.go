package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// fakeClock advances by step on every call
func fakeClock(step time.Duration) func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestNewIndicator(t *testing.T) {
	tests := []struct {
		name        string
		out         *bytes.Buffer
		enabled     bool
		wantEnabled bool
	}{
		{"enabled", &bytes.Buffer{}, true, true},
		{"disabled", &bytes.Buffer{}, false, false},
		{"nil writer", nil, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var indicator *Indicator
			if tt.out == nil {
				indicator = NewIndicator(nil, "Pricing", 10, tt.enabled)
			} else {
				indicator = NewIndicator(tt.out, "Pricing", 10, tt.enabled)
			}

			if indicator.enabled != tt.wantEnabled {
				t.Errorf("expected enabled %v, got %v", tt.wantEnabled, indicator.enabled)
			}
			if indicator.total != 10 {
				t.Errorf("expected total 10, got %d", indicator.total)
			}
		})
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percentage float64
		expected   string
	}{
		{0.0, "▓░░░░░░░░░░░░░░░░░░░░░░░░░░░░░"},
		{50.0, "███████████████▓░░░░░░░░░░░░░░"},
		{100.0, "██████████████████████████████"},
	}

	for _, tt := range tests {
		result := createProgressBar(tt.percentage)
		if result != tt.expected {
			t.Errorf("progress bar for %.1f%%: expected %q, got %q", tt.percentage, tt.expected, result)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1.5m"},
		{90 * time.Minute, "1.5h"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestIndicatorLifecycle(t *testing.T) {
	var buf bytes.Buffer
	indicator := NewIndicator(&buf, "Pricing", 4, true)
	indicator.now = fakeClock(time.Second)

	indicator.Start()
	indicator.Update(2, 0)
	indicator.Update(4, 1)
	indicator.Finish()

	output := buf.String()
	for _, want := range []string{"Pricing 4 cards", "2/4 (50.0%)", "ETA:", "4/4 (100.0%) 1 failed", "3 priced, 1 failed"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestIndicatorThrottle(t *testing.T) {
	var buf bytes.Buffer
	indicator := NewIndicator(&buf, "Pricing", 10, true)
	indicator.now = fakeClock(time.Millisecond)

	indicator.Start()
	indicator.Update(1, 0)
	indicator.Update(2, 0)

	if strings.Contains(buf.String(), "1/10") || strings.Contains(buf.String(), "2/10") {
		t.Errorf("updates within 100ms should not render:\n%s", buf.String())
	}

	indicator.Update(10, 0)
	if !strings.Contains(buf.String(), "10/10") {
		t.Errorf("final update should always render:\n%s", buf.String())
	}
}

func TestIndicatorDisabled(t *testing.T) {
	var buf bytes.Buffer
	indicator := NewIndicator(&buf, "Pricing", 3, false)

	indicator.Start()
	indicator.Update(3, 0)
	indicator.Finish()

	if buf.Len() != 0 {
		t.Errorf("disabled indicator should not write, got %q", buf.String())
	}
}
