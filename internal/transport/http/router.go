package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"mathquiz/internal/app"
	"mathquiz/internal/domain"
)

// NewRouter wires the quiz endpoints:
//
//	GET /healthz          liveness
//	GET /ws               one quiz session per websocket
//	GET /leaderboard      shared board as JSON
//	GET /sessions/{id}    state of a live session
func NewRouter(service *app.QuizService) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", NewWSHandler(service).ServeWS)
	r.Get("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		lb, err := service.Leaderboard(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorPayload{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, lb)
	})
	r.Get("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		ctrl, err := service.Session(chi.URLParam(r, "id"))
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, ctrl.State())
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http request")
	})
}
