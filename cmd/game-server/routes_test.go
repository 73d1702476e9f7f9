package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"market-rush/internal/coordinator"
	"market-rush/internal/store"
	"market-rush/internal/ws"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubStore struct {
	public []store.GameRecord
}

func (s *stubStore) CreateGame(context.Context, store.GameRecord) error { return nil }
func (s *stubStore) GetGame(context.Context, string) (*store.GameRecord, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) UpdateGame(context.Context, store.GameRecord) error { return nil }
func (s *stubStore) DeleteGame(context.Context, string) error           { return nil }
func (s *stubStore) ListOpenPublicGames(context.Context) ([]store.GameRecord, error) {
	return s.public, nil
}
func (s *stubStore) DeleteStaleOpenGames(context.Context, time.Time) (int64, error) {
	return 0, nil
}
func (s *stubStore) DeleteAbandonedGames(context.Context, time.Time) (int64, error) {
	return 0, nil
}
func (s *stubStore) DeleteFinishedGames(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func newTestRouter(db pinger, st coordinator.GameStore) http.Handler {
	wsrv := ws.NewServer()
	coord := coordinator.New(st, wsrv)
	wsrv.SetCoordinator(coord)
	return newRouter(db, coord, wsrv)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(stubPinger{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected /healthz 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestHealthzDBDown(t *testing.T) {
	router := newTestRouter(stubPinger{err: errors.New("down")}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected /healthz 503, got %d", w.Code)
	}
}

func TestPublicGamesEndpoint(t *testing.T) {
	st := &stubStore{public: []store.GameRecord{{
		ID:             "AB23CD",
		Name:           "friday night",
		Status:         "waiting",
		Visibility:     "public",
		HostPlayerID:   "p1",
		CurrentPlayers: 2,
		MaxPlayers:     4,
		Players:        []byte(`[{"id":"p1","name":"ana"}]`),
	}}}
	router := newTestRouter(stubPinger{}, st)

	req := httptest.NewRequest(http.MethodGet, "/api/public/games", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(body.Items))
	}
	if body.Items[0]["id"] != "AB23CD" || body.Items[0]["hostName"] != "ana" {
		t.Fatalf("unexpected item %v", body.Items[0])
	}
	if body.Items[0]["status"] != "Open" {
		t.Fatalf("expected Open status, got %v", body.Items[0]["status"])
	}
}

func TestWSRouteRejectsPlainGET(t *testing.T) {
	router := newTestRouter(stubPinger{}, &stubStore{})

	// No upgrade headers, so the route must answer with a 4xx rather than
	// falling through to a 404.
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected /ws 400, got %d", w.Code)
	}
}
