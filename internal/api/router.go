package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/edward93/project-joke-web/internal/middleware"
	"github.com/edward93/project-joke-web/internal/ws"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger     *slog.Logger
	Dispatcher *ws.Dispatcher
}

// NewRouter creates the HTTP router: the WebSocket endpoint that carries the
// whole event protocol, plus a health check
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler))
	r.Use(middleware.Logging(cfg.Logger))

	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(cfg.Dispatcher, cfg.Logger, w, req)
	}).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"sessions": cfg.Dispatcher.SessionCount(),
		})
	}).Methods(http.MethodGet)

	return r
}
