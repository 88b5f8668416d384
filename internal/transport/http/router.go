package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quiz-assessment-engine/internal/app"
	"quiz-assessment-engine/internal/domain"
)

// defaultResultsLimit applies when /results is called without a limit.
const defaultResultsLimit = 20

// NewRouter mounts the health check, the session websocket, the snapshot lookup
// and the recent results listing.
func NewRouter(service *app.AssessmentService) http.Handler {
	ws := NewWSHandler(service)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)
	r.Get("/sessions/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		snap, err := service.Snapshot(r.Context(), chi.URLParam(r, "sessionID"))
		if errors.Is(err, domain.ErrSessionNotFound) {
			respondJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
			return
		}
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, errorPayload{Message: err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, snap)
	})
	r.Get("/results/{topic}/{difficulty}", func(w http.ResponseWriter, r *http.Request) {
		limit := defaultResultsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				respondJSON(w, http.StatusBadRequest, errorPayload{Message: "limit must be a positive integer"})
				return
			}
			limit = n
		}
		results, err := service.RecentResults(r.Context(), chi.URLParam(r, "topic"), chi.URLParam(r, "difficulty"), limit)
		if err != nil {
			log.Printf("list results: %v", err)
			respondJSON(w, http.StatusInternalServerError, errorPayload{Message: "results unavailable"})
			return
		}
		if results == nil {
			results = []domain.SessionResult{}
		}
		respondJSON(w, http.StatusOK, results)
	})
	return r
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
