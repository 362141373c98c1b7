package progress

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Indicator renders a single-line progress bar for batch pricing
type Indicator struct {
	out        io.Writer
	enabled    bool
	message    string
	total      int
	current    int
	failed     int
	startTime  time.Time
	lastRender time.Time
	now        func() time.Time
}

// NewIndicator creates an indicator writing to out. A nil out or a
// disabled indicator renders nothing.
func NewIndicator(out io.Writer, message string, total int, enabled bool) *Indicator {
	return &Indicator{
		out:     out,
		enabled: enabled && out != nil,
		message: message,
		total:   total,
		now:     time.Now,
	}
}

// Start begins the progress indication
func (p *Indicator) Start() {
	p.startTime = p.now()
	if !p.enabled {
		return
	}
	p.lastRender = p.startTime
	fmt.Fprintf(p.out, "%s %d cards...\n", p.message, p.total)
}

// Update records completed and failed counts and redraws at most every
// 100ms, always on the last item.
func (p *Indicator) Update(completed, failed int) {
	p.current = completed
	p.failed = failed
	if !p.enabled {
		return
	}

	now := p.now()
	if now.Sub(p.lastRender) < 100*time.Millisecond && completed < p.total {
		return
	}
	p.lastRender = now

	percentage := 100.0
	if p.total > 0 {
		percentage = float64(completed) / float64(p.total) * 100
	}

	var eta string
	if elapsed := now.Sub(p.startTime); completed > 0 && completed < p.total && elapsed > 0 {
		perItem := elapsed / time.Duration(completed)
		eta = " ETA: " + formatDuration(perItem*time.Duration(p.total-completed))
	}

	fmt.Fprintf(p.out, "\r%s [%s] %d/%d (%.1f%%) %d failed%s",
		p.message, createProgressBar(percentage), completed, p.total, percentage, failed, eta)
}

// Finish prints the summary line
func (p *Indicator) Finish() {
	if !p.enabled {
		return
	}
	fmt.Fprintf(p.out, "\r%s done: %d priced, %d failed in %s\n",
		p.message, p.current-p.failed, p.failed, formatDuration(p.now().Sub(p.startTime)))
}

// createProgressBar creates a visual progress bar
func createProgressBar(percentage float64) string {
	const width = 30
	filled := int(percentage / 100.0 * width)

	var bar strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && percentage < 100:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return bar.String()
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
