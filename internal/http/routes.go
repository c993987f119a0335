// Package httpapp exposes the derived output tables and the scheduler
// control surface over HTTP.
package httpapp

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/gtstats/internal/constants"
)

func (h *Handler) RegisterRoutes(r chi.Router) {
	// One read route per derived output file, each serving the parsed file
	// verbatim.
	r.Get("/cars", h.serveSnapshot("cars"))
	r.Get("/categories", h.serveSnapshot("categories"))
	r.Get("/courses", h.serveSnapshot("courses"))
	r.Get("/courseranking", h.serveSnapshot("courseranking"))
	r.Get("/profiles", h.serveSnapshot("profiles"))
	r.Get("/dailyraces", h.serveSnapshot("dailyraces"))

	r.Route("/scheduler", func(r chi.Router) {
		r.Get("/", h.SchedulerJobs)
		r.Get("/runs", h.SchedulerRuns)
		r.HandleFunc("/reschedule/{name}", h.RescheduleJob)
		r.HandleFunc("/cancel/{name}", h.CancelJob)
		r.HandleFunc("/now/{name}", h.RunJobNow)
	})

	r.Get("/health", h.Health)
	if h.Metrics != nil {
		r.Get("/metrics", h.Metrics.ServeHTTP)
	}
}

func (h *Handler) SchedulerJobs(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"jobs": h.Scheduler.Jobs(),
	})
}

func (h *Handler) SchedulerRuns(w http.ResponseWriter, r *http.Request) {
	limit := constants.DefaultRunHistLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	var (
		runs any
		err  error
	)
	if name := r.URL.Query().Get("name"); name != "" {
		runs, err = h.Runs.ListRunsByName(name, limit)
	} else {
		runs, err = h.Runs.ListRuns(limit)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *Handler) RescheduleJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.Scheduler.Reschedule(name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "rescheduled", "job": name})
}

func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.Scheduler.Cancel(name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled", "job": name})
}

func (h *Handler) RunJobNow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.Scheduler.RunNow(name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "started", "job": name})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CORSMiddleware restricts cross-origin reads to the configured origin.
func CORSMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
