package web

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/impact-tracker/internal/core"
	"github.com/JonMunkholm/impact-tracker/internal/logging"
	"github.com/JonMunkholm/impact-tracker/internal/web/templates"
)

// maxHistoryLimit caps the limit query parameter of the history endpoint.
const maxHistoryLimit = 100

// handleStatusPage renders the sync state and overall totals.
// Missing data is shown as such rather than failing the page.
func (s *Server) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	src := r.URL.Query().Get("source")
	if src == "" {
		src = s.opts.DefaultSource
	}

	params := templates.StatusParams{
		Source:  src,
		Sources: s.service.Sources(),
		Now:     time.Now(),
	}

	if state, ok, err := s.service.SyncStatus(ctx, src); err != nil {
		logger.Warn("status page: sync state unavailable", "error", err)
	} else if ok {
		params.State = &state
	}

	if m, err := s.service.Metrics(ctx, core.FilterState{}); err != nil {
		logger.Warn("status page: metrics unavailable", "error", err)
	} else {
		params.Overall = &m.Overall
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.StatusPage(params).Render(ctx, w); err != nil {
		logger.Error("status page render failed", "error", err)
	}
}

// handleHealth reports liveness and, when configured, backend reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.opts.Health(ctx); err != nil {
			logging.FromContext(r.Context()).Error("health check failed", "error", err)
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics returns the dashboard aggregates for the query filters.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	filters := core.ParseFilters(r.URL.Query())

	m, err := s.service.Metrics(r.Context(), filters)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, DataResponse{Success: true, Data: m})
}

// handleAsset returns the asset of a sub-project, or null data if it has none.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	sub := r.URL.Query().Get("subProject")
	if sub == "" {
		respondError(w, r, errMissingSubProject, http.StatusBadRequest)
		return
	}

	asset, ok, err := s.service.Asset(r.Context(), sub)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	resp := DataResponse{Success: true}
	if ok {
		resp.Data = asset
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleSync runs an incremental sync of the source named in the path.
//
// The sync is detached from client cancellation so a dropped connection
// does not leave a half-applied run; the sync timeout still applies.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	src := chi.URLParam(r, "source")

	result, err := s.service.Sync(context.WithoutCancel(r.Context()), src, core.TriggerManual)
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, result)
	case !result.Timestamp.IsZero():
		// The run started and failed; its outcome is already recorded.
		logging.FromContext(r.Context()).Error("sync failed", "source", src, "error", err)
		writeJSON(w, r, http.StatusInternalServerError, result)
	default:
		respondError(w, r, err, statusFor(err))
	}
}

// handleSyncStatus returns the stored sync state of ?source=, or null data
// if it never synced.
func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	src, ok := s.sourceParam(w, r)
	if !ok {
		return
	}

	state, found, err := s.service.SyncStatus(r.Context(), src)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	resp := DataResponse{Success: true}
	if found {
		resp.Data = state
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleSyncHistory returns the latest runs of ?source=, newest first.
func (s *Server) handleSyncHistory(w http.ResponseWriter, r *http.Request) {
	src, ok := s.sourceParam(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxHistoryLimit {
			respondError(w, r, fmt.Errorf("%w: %q", errInvalidLimit, v), http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.service.SyncHistory(r.Context(), src, limit)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if runs == nil {
		runs = []core.SyncRun{}
	}
	writeJSON(w, r, http.StatusOK, DataResponse{Success: true, Data: runs})
}

// sourceParam reads ?source=, defaulting to the configured source. Unknown
// sources are answered with 404.
func (s *Server) sourceParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	src := r.URL.Query().Get("source")
	if src == "" {
		src = s.opts.DefaultSource
	}
	if !slices.Contains(s.service.Sources(), src) {
		err := fmt.Errorf("%w: %s", core.ErrUnknownSource, src)
		respondError(w, r, err, http.StatusNotFound)
		return "", false
	}
	return src, true
}
