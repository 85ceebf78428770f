package core

import (
	"testing"
	"time"
)

func TestFrameTimerRollingAverage(t *testing.T) {
	ft := NewFrameTimer()
	for i := 0; i < AVG_COUNT; i++ {
		ft.Update(10 * time.Millisecond)
	}
	ft.Update(40 * time.Millisecond)

	want := (10.0*float64(AVG_COUNT-1) + 40) / float64(AVG_COUNT)
	if got := ft.FrameTime(); got < want-1e-9 || got > want+1e-9 {
		t.Errorf("average = %v, want %v", got, want)
	}
}

func TestFrameTimerFPS(t *testing.T) {
	ft := NewFrameTimer()
	for i := 0; i < 101; i++ {
		ft.Update(10 * time.Millisecond)
	}
	if ft.FPS() != 101 {
		t.Errorf("fps = %v, want 101", ft.FPS())
	}
}

func TestClockWithSource(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewClockWithSource(func() time.Time { return now })
	c.Start()
	now = now.Add(250 * time.Millisecond)
	c.Update()
	if c.Elapsed() != 250*time.Millisecond {
		t.Errorf("elapsed = %v", c.Elapsed())
	}
	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	if c.Elapsed() != 250*time.Millisecond {
		t.Errorf("stopped clock advanced to %v", c.Elapsed())
	}
}

func TestIsolateRecoversPanics(t *testing.T) {
	res := Isolate("layer:boom", func() error { panic("boom") })
	if res.Ok() {
		t.Fatalf("expected a failed result")
	}
	if res.Name != "layer:boom" {
		t.Errorf("unexpected name %q", res.Name)
	}
	if ok := Isolate("fine", func() error { return nil }); !ok.Ok() {
		t.Errorf("expected success, got %v", ok)
	}
}
