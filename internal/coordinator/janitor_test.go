package coordinator

import (
	"context"
	"testing"
	"time"

	"market-rush/internal/store"
)

func seedRecord(st *fakeStore, id, status, visibility string, players int, created, updated time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.games[id] = store.GameRecord{
		ID: id, Name: id, Status: status, Visibility: visibility,
		CurrentPlayers: players, MaxPlayers: 4,
		Players: []byte("[]"), GameState: []byte("{}"),
		CreatedAt: created, UpdatedAt: updated,
	}
}

func hasRecord(st *fakeStore, id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.games[id]
	return ok
}

func TestSweepStaleOpenCutoff(t *testing.T) {
	c, st, _ := newTestCoordinator()
	now := time.Now()
	seedRecord(st, "old", "waiting", "public", 2, now, now.Add(-31*time.Minute))
	seedRecord(st, "fresh", "waiting", "public", 2, now, now.Add(-29*time.Minute))

	c.RunSweep(context.Background(), now)
	if hasRecord(st, "old") {
		t.Fatal("31-minute-old waiting public game must be evicted")
	}
	if !hasRecord(st, "fresh") {
		t.Fatal("29-minute-old waiting public game must survive")
	}
}

func TestSweepAbandonedAndFinished(t *testing.T) {
	c, st, _ := newTestCoordinator()
	now := time.Now()
	seedRecord(st, "abandoned", "waiting", "private", 1, now.Add(-3*time.Hour), now)
	seedRecord(st, "crowded", "waiting", "private", 2, now.Add(-3*time.Hour), now)
	seedRecord(st, "done-old", "finished", "public", 3, now, now.Add(-25*time.Hour))
	seedRecord(st, "done-new", "finished", "public", 3, now, now.Add(-1*time.Hour))

	c.RunSweep(context.Background(), now)
	if hasRecord(st, "abandoned") {
		t.Fatal("single-player 3h-old waiting game must be evicted")
	}
	if !hasRecord(st, "crowded") {
		t.Fatal("two-player waiting game must survive the abandoned sweep")
	}
	if hasRecord(st, "done-old") {
		t.Fatal("finished game older than 24h must be evicted")
	}
	if !hasRecord(st, "done-new") {
		t.Fatal("recently finished game must survive")
	}
}

func TestSweepReconcilesRegistryAgainstStore(t *testing.T) {
	c, st, rooms := newTestCoordinator()
	gameID, conns := createAndJoin(t, c, "alice", "bob")
	if err := c.StartGame(conns[0]); err != nil {
		t.Fatalf("StartGame error = %v", err)
	}

	// Let the async create/update writes land, then simulate an external
	// eviction of the persisted record.
	time.Sleep(50 * time.Millisecond)
	if err := st.DeleteGame(context.Background(), gameID); err != nil {
		t.Fatalf("DeleteGame error = %v", err)
	}
	c.RunSweep(context.Background(), time.Now())

	if c.SessionCount() != 0 {
		t.Fatal("in-memory session must not outlive its persisted record")
	}
	if len(rooms.closed) != 1 || rooms.closed[0] != gameID {
		t.Fatalf("closed rooms = %v, want [%s]", rooms.closed, gameID)
	}
	if _, ok := c.BindingFor(conns[0]); ok {
		t.Fatal("bindings must be evicted with the session")
	}
}

func TestSweepKeepsSessionsWithLiveRecords(t *testing.T) {
	c, _, _ := newTestCoordinator()
	_, conns := createAndJoin(t, c, "alice", "bob")
	if err := c.StartGame(conns[0]); err != nil {
		t.Fatalf("StartGame error = %v", err)
	}
	// The async create write needs to land before the sweep looks for it.
	time.Sleep(50 * time.Millisecond)

	c.RunSweep(context.Background(), time.Now())
	if c.SessionCount() != 1 {
		t.Fatalf("sessions = %d, want 1", c.SessionCount())
	}
}
