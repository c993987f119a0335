package httpapp

import (
	"encoding/json"
	"net/http"

	"github.com/cesargomez89/gtstats/internal/logger"
	"github.com/cesargomez89/gtstats/internal/scheduler"
	"github.com/cesargomez89/gtstats/internal/storage"
	"github.com/cesargomez89/gtstats/internal/store"
)

type Handler struct {
	Scheduler *scheduler.Scheduler
	Runs      *store.DB
	Snapshots map[string]*storage.Snapshot
	Metrics   http.Handler
	Logger    *logger.Logger
}

func NewHandler(sched *scheduler.Scheduler, runs *store.DB, snapshots map[string]*storage.Snapshot, metricsHandler http.Handler, log *logger.Logger) *Handler {
	return &Handler{
		Scheduler: sched,
		Runs:      runs,
		Snapshots: snapshots,
		Metrics:   metricsHandler,
		Logger:    log.WithComponent("http"),
	}
}

// serveSnapshot serves the last-known-good contents of a watched output
// file verbatim. Before the first successful load the body is empty;
// pipeline errors never surface here.
func (h *Handler) serveSnapshot(name string) http.HandlerFunc {
	snap := h.Snapshots[name]
	return func(w http.ResponseWriter, r *http.Request) {
		data := snap.Bytes()
		if data == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("failed to encode response", "error", err)
	}
}
