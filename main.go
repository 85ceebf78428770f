/*
This is an example of application that will use the
engine package: it renders the testbed globe headless and
writes the last frame to an image file.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/image/bmp"

	"github.com/spaghettifunk/terra/engine"
	"github.com/spaghettifunk/terra/engine/assets"
	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/systems"
	"github.com/spaghettifunk/terra/testbed"
)

func main() {
	configPath := flag.String("config", "", "TOML configuration file; defaults are used when empty")
	frames := flag.Int("frames", 1, "number of frames to render, 0 renders until interrupted")
	out := flag.String("out", "terra.png", "where the last frame is written (.png or .bmp), empty to skip")
	watch := flag.Bool("watch", false, "reload the configuration file when it changes")
	logLevel := flag.String("log-level", "", "overrides the configured log level")
	flag.Parse()

	if err := run(*configPath, *frames, *out, *watch, *logLevel); err != nil {
		core.LogError("%v", err)
		os.Exit(1)
	}
}

func run(configPath string, frames int, out string, watch bool, logLevel string) error {
	cfg := assets.DefaultConfig()
	if configPath != "" {
		loaded, err := assets.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	tp, shutdownTracing, err := systems.InitTracing(ctx, cfg.TracingConfig())
	if err != nil {
		return err
	}
	defer systems.ShutdownWithTimeout(context.Background(), shutdownTracing)

	if addr := cfg.Telemetry.MetricsAddress; addr != "" {
		srv := serveMetrics(addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	tb := testbed.NewTestGame(&engine.ApplicationConfig{
		Name:           "Terra",
		ConfigPath:     configPath,
		WatchConfig:    watch,
		LogLevel:       logLevel,
		TracerProvider: tp,
	})

	e, err := engine.New(tb.Game)
	if err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		return err
	}

	// Run stops once the context is cancelled by a signal.
	runErr := e.Run(ctx, frames)
	if errors.Is(runErr, context.Canceled) {
		core.LogInfo("Interrupted, shutting down.")
		runErr = nil
	}
	if runErr == nil && out != "" && e.LastFrame() != nil {
		runErr = writeFrame(out, e.Rasterizer().Frame())
	}
	return errors.Join(runErr, e.Shutdown())
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", systems.MetricsHandler(nil))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			core.LogError("metrics server: %v", err)
		}
	}()
	core.LogInfo("Serving metrics on %s/metrics.", addr)
	return srv
}

func writeFrame(path string, frame image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		err = bmp.Encode(f, frame)
	case ".png", "":
		err = png.Encode(f, frame)
	default:
		return fmt.Errorf("unsupported image format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	core.LogInfo("Frame written to %s.", path)
	return nil
}
