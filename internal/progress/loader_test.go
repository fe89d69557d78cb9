package progress

import (
	"strings"
	"testing"
)

func leftOffset(frame string) int {
	return strings.Index(frame, "=") - 2
}

func TestLoaderFrameSequence(t *testing.T) {
	loader := NewLoader(20)
	want := []int{0, 0, 1, 2, 3, 5, 6, 8, 9, 10, 11, 11, 11, 10, 9, 8, 6, 5, 3, 2, 1, 0, 0, 0}

	for step, offset := range want {
		frame := loader.Frame(step)
		if len(frame) != 20 {
			t.Fatalf("step %d: expected frame width 20, got %d (%q)", step, len(frame), frame)
		}
		if got := leftOffset(frame); got != offset {
			t.Fatalf("step %d: expected left offset %d, got %d (%q)", step, offset, got, frame)
		}
	}
}

func TestLoaderFrameShape(t *testing.T) {
	loader := NewLoader(20)
	if got := loader.Frame(0); got != " [=====           ] " {
		t.Fatalf("unexpected first frame %q", got)
	}
	for step := 1; step < 10; step++ {
		loader.Frame(step)
	}
	if got := loader.Frame(10); got != " [           =====] " {
		t.Fatalf("unexpected turning frame %q", got)
	}
}

func TestLoaderReplayIsDeterministic(t *testing.T) {
	first := NewLoader(37)
	second := NewLoader(37)

	for step := 0; step < 200; step++ {
		a, b := first.Frame(step), second.Frame(step)
		if a != b {
			t.Fatalf("step %d: frames diverged: %q vs %q", step, a, b)
		}
	}

	first.Reset()
	replay := NewLoader(37)
	for step := 0; step < 50; step++ {
		if a, b := first.Frame(step), replay.Frame(step); a != b {
			t.Fatalf("step %d after reset: %q vs %q", step, a, b)
		}
	}
}

func TestLoaderClampsNarrowWidth(t *testing.T) {
	loader := NewLoader(3)
	if loader.Width() != minLoaderSize {
		t.Fatalf("expected width clamped to %d, got %d", minLoaderSize, loader.Width())
	}
	for step := 0; step < 5; step++ {
		if frame := loader.Frame(step); len(frame) != minLoaderSize {
			t.Fatalf("step %d: unexpected frame %q", step, frame)
		}
	}
}
