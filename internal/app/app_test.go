package app

import (
	"bytes"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/guidoenr/glitchbg/internal/params"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestStatusBarPadsAndTruncates(t *testing.T) {
	cases := map[string]struct {
		text  string
		width int
		want  string
	}{
		"pad":      {"abc", 6, "abc   "},
		"truncate": {"abcdef", 4, "abcd"},
		"no width": {"abc", 0, "abc"},
	}
	for name, tc := range cases {
		if got := statusBar(tc.text, tc.width); got != tc.want {
			t.Fatalf("%s: statusBar=%q want=%q", name, got, tc.want)
		}
	}
}

func TestPickRandomAvoidsCurrent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	options := []string{"a", "b", "c"}
	for i := 0; i < 50; i++ {
		got := pickRandom(options, "a", rng)
		if got == "" {
			t.Fatalf("empty choice")
		}
	}
	if got := pickRandom(nil, "x", rng); got != "x" {
		t.Fatalf("empty options should keep current, got %q", got)
	}
	if got := pickRandom([]string{"only"}, "x", rng); got != "only" {
		t.Fatalf("single option=%q", got)
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "opengl", Params: params.Defaults(), Log: quietLogger()})
	if err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestNewRejectsInvalidParams(t *testing.T) {
	p := params.Defaults()
	p.MaxStripes = 99
	_, err := New(Config{Params: p, Log: quietLogger()})
	if err == nil {
		t.Fatalf("expected invalid parameters to be rejected")
	}
}

func TestMissingImageFallsBackToBackdrop(t *testing.T) {
	a, err := New(Config{
		ImagePath: filepath.Join(t.TempDir(), "missing.png"),
		Width:     20,
		Height:    6,
		Params:    params.Defaults(),
		Log:       quietLogger(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	if a.renderer.HasImage() {
		t.Fatalf("renderer should not have an image")
	}
	st := a.Status()
	if st.Image != "" || st.Backdrop == "" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestStepRendersTerminalFrame(t *testing.T) {
	a, err := New(Config{
		Width:         16,
		Height:        6,
		TargetFPS:     30,
		Palette:       "ascii",
		ShowStatusBar: true,
		Params:        params.Defaults(),
		Log:           quietLogger(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	var out bytes.Buffer
	a.out = &out
	a.start = time.Now()
	a.last = a.start

	for i := 0; i < 3; i++ {
		if err := a.step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}

	if a.Status().Ticks != 3 {
		t.Fatalf("ticks=%d want=3", a.Status().Ticks)
	}
	frames := strings.Split(out.String(), "\x1b[H")
	if len(frames) != 4 {
		t.Fatalf("frames=%d want=3", len(frames)-1)
	}
	last := strings.Split(frames[3], "\n")
	// five render rows plus the status bar
	if len(last) != 6 {
		t.Fatalf("rows=%d want=6", len(last))
	}
	if !strings.HasPrefix(last[5], "IDLE") && !strings.HasPrefix(last[5], "JITTER") && !strings.HasPrefix(last[5], "GLITCH") {
		t.Fatalf("status bar=%q", last[5])
	}
}

func TestWebBackendHasNoRenderer(t *testing.T) {
	a, err := New(Config{
		Backend: BackendWeb,
		Width:   640,
		Height:  360,
		Params:  params.Defaults(),
		Log:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	if a.renderer != nil || a.web == nil {
		t.Fatalf("web backend should publish only")
	}
	if a.cfg.WebPort != 8080 {
		t.Fatalf("default web port=%d", a.cfg.WebPort)
	}

	a.start = time.Now()
	a.last = a.start
	if err := a.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if a.Snapshot().Resolution != [2]float64{640, 360} {
		t.Fatalf("resolution=%v", a.Snapshot().Resolution)
	}
}

func TestProfilerWritesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.csv")
	p := newProfiler(path, quietLogger())
	if p == nil {
		t.Fatalf("profiler not created")
	}
	p.beginFrame()
	p.markSection("effects")
	p.markSection("render")
	p.endFrame()
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines=%d want=4: %q", len(lines), data)
	}
	if lines[0] != "timestamp,frame,section,delta_ms" {
		t.Fatalf("header=%q", lines[0])
	}
	if !strings.Contains(lines[1], ",1,effects,") || !strings.Contains(lines[3], ",1,frame_total,") {
		t.Fatalf("unexpected rows %q", lines[1:])
	}
}

func TestNilProfilerIsInert(t *testing.T) {
	var p *profiler
	p.beginFrame()
	p.markSection("x")
	p.endFrame()
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
