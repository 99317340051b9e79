package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/arjunvaidya/regbrain"
	"github.com/arjunvaidya/regbrain/export"
	"github.com/arjunvaidya/regbrain/extract"
	"github.com/arjunvaidya/regbrain/risk"
)

// handler holds the engine plus the current session's documents and
// facts. The server is a working surface over one extraction session,
// not a store; restarting it starts a fresh session.
type handler struct {
	engine regbrain.Engine

	mu    sync.Mutex
	docs  []extract.Document
	facts []extract.Fact
}

func newHandler(e regbrain.Engine) *handler {
	return &handler{engine: e}
}

// POST /documents
// Accepts a multipart file upload or JSON with a file path.
func (h *handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	// Try multipart upload first
	if err := r.ParseMultipartForm(100 << 20); err == nil { // 100MB max
		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()

			// Sanitise filename to prevent path traversal.
			safeName := filepath.Base(header.Filename)

			tmpPath := filepath.Join(os.TempDir(), safeName)
			dst, err := os.Create(tmpPath)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to process file")
				slog.Error("creating temp file", "error", err)
				return
			}
			if _, err := io.Copy(dst, file); err != nil {
				dst.Close()
				writeError(w, http.StatusInternalServerError, "failed to save file")
				slog.Error("saving uploaded file", "error", err)
				return
			}
			dst.Close()
			defer os.Remove(tmpPath)

			doc, err := h.engine.IngestFile(ctx, tmpPath)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}

			h.mu.Lock()
			h.docs = append(h.docs, doc)
			count := len(h.docs)
			h.mu.Unlock()

			writeJSON(w, http.StatusOK, map[string]any{
				"label":     doc.Label,
				"chars":     len(doc.Text),
				"documents": count,
			})
			return
		}
	}

	// Try JSON body with path
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "invalid request: expected multipart file or JSON with 'path'")
		return
	}

	absPath, err := filepath.Abs(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusBadRequest, "path must be an existing file")
		return
	}

	doc, err := h.engine.IngestFile(ctx, absPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	h.docs = append(h.docs, doc)
	count := len(h.docs)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"label":     doc.Label,
		"chars":     len(doc.Text),
		"documents": count,
	})
}

// GET /documents
func (h *handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	out := make([]map[string]any, len(h.docs))
	for i, d := range h.docs {
		out[i] = map[string]any{
			"label":   d.Label,
			"chars":   len(d.Text),
			"preview": regbrain.Shorten(d.Text, 200),
		}
	}
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

// POST /extract
// Runs extraction over the uploaded documents and stores the facts for
// the session.
func (h *handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
	defer cancel()

	var req struct {
		MaxChars    int  `json:"max_chars,omitempty"`
		SampleLimit *int `json:"sample_limit,omitempty"`
	}
	if r.Body != nil {
		// Body is optional; defaults come from config.
		json.NewDecoder(r.Body).Decode(&req)
	}

	h.mu.Lock()
	docs := make([]extract.Document, len(h.docs))
	copy(docs, h.docs)
	h.mu.Unlock()

	if len(docs) == 0 {
		writeError(w, http.StatusBadRequest, "no documents uploaded")
		return
	}

	var opts []regbrain.ExtractOption
	if req.MaxChars > 0 {
		opts = append(opts, regbrain.WithMaxChars(req.MaxChars))
	}
	if req.SampleLimit != nil {
		opts = append(opts, regbrain.WithSampleLimit(*req.SampleLimit))
	}

	facts, err := h.engine.Extract(ctx, docs, opts...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "extraction failed")
		slog.Error("extract error", "error", err)
		return
	}

	h.mu.Lock()
	h.facts = facts
	h.mu.Unlock()

	previews := make([]map[string]any, len(facts))
	for i, f := range facts {
		previews[i] = map[string]any{
			"source_label": f.SourceLabel,
			"change":       regbrain.Shorten(f.Change, 160),
			"affected":     f.Affected,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"facts":    len(facts),
		"previews": previews,
	})
}

// GET /facts
// Returns the full fact list as the JSON artifact.
func (h *handler) handleFacts(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	facts := make([]extract.Fact, len(h.facts))
	copy(facts, h.facts)
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteFactsJSON(w, facts); err != nil {
		slog.Error("writing facts", "error", err)
	}
}

// POST /summary
func (h *handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	h.mu.Lock()
	facts := make([]extract.Fact, len(h.facts))
	copy(facts, h.facts)
	h.mu.Unlock()

	summary, err := h.engine.Summarize(ctx, facts)
	if err != nil {
		if errors.Is(err, regbrain.ErrNoFacts) {
			writeError(w, http.StatusBadRequest, "no extracted facts; run /extract first")
			return
		}
		writeError(w, http.StatusInternalServerError, "summary failed")
		slog.Error("summary error", "error", err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	export.WriteSummary(w, summary)
}

// POST /risk
// Accepts a companies CSV upload (field "companies") or JSON profiles.
// ?format=csv downloads the scores as CSV; default is JSON.
func (h *handler) handleRisk(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
	defer cancel()

	profiles, err := h.readProfiles(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(profiles) == 0 {
		writeError(w, http.StatusBadRequest, "no company profiles provided")
		return
	}

	h.mu.Lock()
	facts := make([]extract.Fact, len(h.facts))
	copy(facts, h.facts)
	h.mu.Unlock()

	assessments, err := h.engine.ScoreRiskAll(ctx, profiles, facts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "risk scoring failed")
		slog.Error("risk error", "error", err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="risk_scores.csv"`)
		if err := export.WriteRiskCSV(w, assessments); err != nil {
			slog.Error("writing risk CSV", "error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"assessments": assessments})
}

// readProfiles pulls company profiles from a multipart CSV upload or a
// JSON body.
func (h *handler) readProfiles(r *http.Request) ([]risk.Profile, error) {
	if err := r.ParseMultipartForm(10 << 20); err == nil {
		file, _, err := r.FormFile("companies")
		if err == nil {
			defer file.Close()
			return risk.LoadCSV(file)
		}
	}

	var req struct {
		Profiles []risk.Profile `json:"profiles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	return req.Profiles, nil
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ingestAndExtract is the drop-folder path: ingest one file and fold
// its facts into the session.
func (h *handler) ingestAndExtract(ctx context.Context, path string) error {
	doc, err := h.engine.IngestFile(ctx, path)
	if err != nil {
		return err
	}

	facts, err := h.engine.Extract(ctx, []extract.Document{doc})
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.docs = append(h.docs, doc)
	h.facts = append(h.facts, facts...)
	h.mu.Unlock()

	slog.Info("drop folder document processed", "path", path, "facts", len(facts))
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
