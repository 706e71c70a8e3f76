package app

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"time"
)

// profiler appends per-frame section timings to a CSV file. A nil
// profiler is valid and records nothing.
type profiler struct {
	file   *os.File
	w      *bufio.Writer
	logger *log.Logger
	frame  uint64
	start  time.Time
	last   time.Time
}

func newProfiler(path string, logger *log.Logger) *profiler {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		if logger != nil {
			logger.Printf("profiler disabled: %v", err)
		}
		return nil
	}
	p := &profiler{
		file:   f,
		w:      bufio.NewWriter(f),
		logger: logger,
	}
	if info, err := f.Stat(); err == nil && info.Size() == 0 {
		fmt.Fprintln(p.w, "timestamp,frame,section,delta_ms")
	}
	return p
}

func (p *profiler) beginFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	p.frame++
	p.start = now
	p.last = now
}

// markSection records the time since the previous mark.
func (p *profiler) markSection(name string) {
	if p == nil {
		return
	}
	now := time.Now()
	delta := now.Sub(p.last).Seconds() * 1000
	p.last = now
	p.write(now, name, delta)
}

func (p *profiler) endFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	p.write(now, "frame_total", now.Sub(p.start).Seconds()*1000)
}

func (p *profiler) Close() error {
	if p == nil {
		return nil
	}
	if err := p.w.Flush(); err != nil {
		p.file.Close()
		return fmt.Errorf("flush profile: %w", err)
	}
	return p.file.Close()
}

func (p *profiler) write(ts time.Time, section string, deltaMs float64) {
	fmt.Fprintf(p.w, "%s,%d,%s,%.3f\n", ts.Format(time.RFC3339Nano), p.frame, section, deltaMs)
}
