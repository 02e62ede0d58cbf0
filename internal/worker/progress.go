package worker

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const barWidth = 30

// Progress tracks and displays pool progress on a single terminal line.
type Progress struct {
	startTime time.Time
	output    io.Writer
	unit      string
	total     int
	completed int
	failed    int
	mu        sync.RWMutex
	enabled   bool
}

// NewProgress creates a progress tracker counting total units. When enabled
// is false it only records counts for Summary.
func NewProgress(total int, unit string, enabled bool) *Progress {
	if unit == "" {
		unit = "tasks"
	}
	return &Progress{
		total:     total,
		unit:      unit,
		startTime: time.Now(),
		output:    os.Stderr,
		enabled:   enabled,
	}
}

// SetOutput redirects the progress line, which goes to stderr by default.
func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	p.output = w
	p.mu.Unlock()
}

// Update records the completion of a task.
func (p *Progress) Update(completed, total, failed int) {
	p.mu.Lock()
	p.completed = completed
	p.total = total
	p.failed = failed
	p.mu.Unlock()

	if p.enabled {
		p.Print()
	}
}

// Callback returns a ProgressFunc suitable for use with Config.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

type snapshot struct {
	completed, total, failed int
	elapsed                  time.Duration
	unit                     string
	output                   io.Writer
}

func (p *Progress) snapshot() snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return snapshot{
		completed: p.completed,
		total:     p.total,
		failed:    p.failed,
		elapsed:   time.Since(p.startTime),
		unit:      p.unit,
		output:    p.output,
	}
}

// Print writes the current progress line.
func (p *Progress) Print() {
	s := p.snapshot()

	var rate float64
	var eta time.Duration
	if s.completed > 0 && s.elapsed > 0 {
		rate = float64(s.completed) / s.elapsed.Seconds()
		if rate > 0 {
			eta = time.Duration(float64(s.total-s.completed)/rate) * time.Second
		}
	}

	filled := 0
	if s.total > 0 {
		filled = min(barWidth, barWidth*s.completed/s.total)
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	var b strings.Builder
	fmt.Fprintf(&b, "\r[%s] %d/%d %s", bar, s.completed, s.total, s.unit)
	if s.failed > 0 {
		fmt.Fprintf(&b, " (%d failed)", s.failed)
	}
	fmt.Fprintf(&b, " - %.1f %s/sec", rate, s.unit)
	if eta > 0 && s.completed < s.total {
		fmt.Fprintf(&b, " - ETA: %s", formatDuration(eta))
	}
	if s.completed == s.total {
		fmt.Fprintf(&b, " - Done in %s", formatDuration(s.elapsed))
	}
	// Pad to clear what is left of a longer previous line.
	b.WriteString("          ")

	fmt.Fprint(s.output, b.String())
}

// Done prints the final progress and a newline.
func (p *Progress) Done() {
	if p.enabled {
		p.Print()
		fmt.Fprintln(p.snapshot().output)
	}
}

// Summary returns a one-line summary of the completed work.
func (p *Progress) Summary() string {
	s := p.snapshot()

	var rate float64
	if s.elapsed > 0 {
		rate = float64(s.completed) / s.elapsed.Seconds()
	}

	return fmt.Sprintf("Processed %d/%d %s (%d failed) in %s (%.1f %s/sec)",
		s.completed-s.failed, s.total, s.unit, s.failed, formatDuration(s.elapsed), rate, s.unit)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
