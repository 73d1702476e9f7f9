package store

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

func NewID() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

const gameCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NewGameCode returns the short externally visible game id players share.
func NewGameCode() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = gameCodeAlphabet[rand.Intn(len(gameCodeAlphabet))]
	}
	return string(b)
}
