package systems

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spaghettifunk/terra/engine/core"
)

func TestInitTracingStdout(t *testing.T) {
	core.SetLogOutput(io.Discard)
	var buf bytes.Buffer
	tp, shutdown, err := InitTracing(context.Background(), TracingConfig{
		Enabled:     true,
		Exporter:    "stdout",
		SampleRatio: 1,
		Writer:      &buf,
	})
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	_, span := tp.Tracer("test").Start(context.Background(), "frame")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), `"Name": "frame"`) {
		t.Errorf("expected the span to be exported, got %q", buf.String())
	}
}

func TestInitTracingDisabledAndUnknown(t *testing.T) {
	core.SetLogOutput(io.Discard)
	tp, shutdown, err := InitTracing(context.Background(), TracingConfig{})
	if err != nil || tp == nil {
		t.Fatalf("InitTracing disabled: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown: %v", err)
	}
	if _, _, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "carrier-pigeon"}); !errors.Is(err, core.ErrUnknownComponent) {
		t.Errorf("expected ErrUnknownComponent, got %v", err)
	}
	ShutdownWithTimeout(context.Background(), nil)
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	fm, err := NewFrameMetrics(reg, nil)
	if err != nil {
		t.Fatalf("NewFrameMetrics: %v", err)
	}
	fm.Frames.Inc()

	rec := httptest.NewRecorder()
	MetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "terra_frames_total 1") {
		t.Errorf("expected the frame counter in the exposition, got %q", rec.Body.String())
	}
}
