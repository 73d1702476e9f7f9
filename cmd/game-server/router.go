package main

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"market-rush/internal/coordinator"
	"market-rush/internal/ws"
)

// pinger is the slice of the store the health endpoint needs.
type pinger interface {
	Ping(ctx context.Context) error
}

func newRouter(db pinger, coord *coordinator.Coordinator, wsrv *ws.Server) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(db))

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLogMiddleware())
		r.Get("/public/games", publicGamesHandler(coord))
	})

	// The websocket upgrade skips the request logger; the connection is
	// long-lived and logged per event instead.
	r.Get("/ws", wsrv.HandleWS)
	return r
}

func logRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 8)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	for _, rt := range routes {
		b.WriteString(rt.Method)
		b.WriteString(" ")
		b.WriteString(rt.Path)
		b.WriteString("\n")
	}
	log.Info().Str("routes", b.String()).Msg("registered routes")
}
