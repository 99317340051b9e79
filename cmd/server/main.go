package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arjunvaidya/regbrain"
	"github.com/arjunvaidya/regbrain/watcher"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON)")
	addr := flag.String("addr", ":8080", "Listen address")
	watchDir := flag.String("watch", "", "Drop folder to auto-ingest new documents from")
	flag.Parse()

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := regbrain.LoadConfig(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	apiKey := os.Getenv("REGBRAIN_API_KEY")
	corsOrigins := os.Getenv("REGBRAIN_CORS_ORIGINS")

	engine, err := regbrain.New(cfg)
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}

	h := newHandler(engine)
	mux := http.NewServeMux()

	mux.HandleFunc("POST /documents", h.handleUploadDocument)
	mux.HandleFunc("GET /documents", h.handleListDocuments)
	mux.HandleFunc("POST /extract", h.handleExtract)
	mux.HandleFunc("GET /facts", h.handleFacts)
	mux.HandleFunc("POST /summary", h.handleSummary)
	mux.HandleFunc("POST /risk", h.handleRisk)
	mux.HandleFunc("GET /health", h.handleHealth)

	// Middleware chain: recovery -> cors -> auth -> logging -> mux
	var handler http.Handler = mux
	handler = logMiddleware(handler)
	handler = authMiddleware(apiKey, handler)
	handler = corsMiddleware(corsOrigins, handler)
	handler = recoveryMiddleware(handler)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // extraction responses can be long
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *watchDir != "" {
		if err := startWatcher(ctx, h, *watchDir); err != nil {
			slog.Error("starting watcher", "dir", *watchDir, "error", err)
			os.Exit(1)
		}
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}

// startWatcher feeds drop-folder documents through ingest and
// extraction as they appear.
func startWatcher(ctx context.Context, h *handler, dir string) error {
	w, err := watcher.New(nil)
	if err != nil {
		return err
	}

	events, err := w.Watch(ctx, dir)
	if err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		slog.Info("watching drop folder", "dir", dir)
		for ev := range events {
			if err := h.ingestAndExtract(ctx, ev.Path); err != nil {
				slog.Warn("drop folder ingest failed", "path", ev.Path, "error", err)
			}
		}
	}()
	return nil
}
