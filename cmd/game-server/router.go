package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"

	"github.com/rodzevich/tic-tac-toe/internal/logging"
	"github.com/rodzevich/tic-tac-toe/internal/store"
	"github.com/rodzevich/tic-tac-toe/internal/ws"
)

func newRouter(st *store.Store, wsServer *ws.Server) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	// The websocket route stays outside the request logger: its response
	// writer wrapper does not support hijacking the connection.
	r.Get("/v1/ws", wsServer.HandleWS)

	r.Group(func(r chi.Router) {
		r.Use(apiLogMiddleware())
		r.Get("/healthz", handleHealthz)
		r.Get("/v1/players/{name}", handleGetPlayer(st))
	})
	return r
}

func apiLogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("route", route),
				}
			},
		},
	)
}
