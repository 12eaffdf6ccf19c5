package reportserver

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"essaylens/internal/report"
)

// NewHandler builds the HTTP handler serving the run index, rendered
// reports and raw result JSON.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.ResultsDir == "" {
		return nil, errors.New("reportserver: results dir is required")
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", serveIndex(cfg.ResultsDir))
	mux.HandleFunc("GET /runs/{id}", serveRun(cfg.ResultsDir))
	mux.HandleFunc("GET /runs/{id}/result.json", serveResultJSON(cfg.ResultsDir))
	return mux, nil
}

// serveIndex lists stored runs, newest first.
func serveIndex(resultsDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := report.ListRuns(resultsDir)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = report.Index(runs, "/runs/").Render(r.Context(), w)
	}
}

// serveRun renders the HTML report for a run from its result.json.
func serveRun(resultsDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paths, ok := runPaths(w, r, resultsDir)
		if !ok {
			return
		}
		result, err := report.LoadResult(paths.ResultPath())
		if err != nil {
			writeLoadError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = report.Page(result).Render(r.Context(), w)
	}
}

// serveResultJSON serves the stored result.json unchanged.
func serveResultJSON(resultsDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paths, ok := runPaths(w, r, resultsDir)
		if !ok {
			return
		}
		if _, err := os.Stat(paths.ResultPath()); err != nil {
			writeLoadError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, paths.ResultPath())
	}
}

func runPaths(w http.ResponseWriter, r *http.Request, resultsDir string) (report.OutputPaths, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id != filepath.Base(id) {
		http.NotFound(w, r)
		return report.OutputPaths{}, false
	}
	paths, err := report.NewOutputPaths(resultsDir, id)
	if err != nil {
		http.NotFound(w, r)
		return report.OutputPaths{}, false
	}
	return paths, true
}

func writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
