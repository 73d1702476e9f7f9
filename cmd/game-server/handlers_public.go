package main

import (
	"encoding/json"
	"net/http"

	"market-rush/internal/coordinator"
)

func healthHandler(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

// publicGamesHandler mirrors the get-public-games socket event for plain HTTP
// clients such as lobby pages.
func publicGamesHandler(coord *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := coord.PublicGames(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}
}
