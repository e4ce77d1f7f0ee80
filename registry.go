package main

import (
	"errors"
	"sync"
)

var (
	errBadBound   = errors.New("starting roll must be at least 1")
	errGameExists = errors.New("game id already registered")
)

// GameRegistry records the starting bound chosen for each game id before the
// first websocket connects. The HTTP boundary writes it, the coordinator
// reads it once when it sees an unknown room.
type GameRegistry struct {
	mu     sync.Mutex
	bounds map[string]int
}

func NewGameRegistry() *GameRegistry {
	return &GameRegistry{bounds: make(map[string]int)}
}

// Put records the starting bound for a game id.
func (r *GameRegistry) Put(gameID string, bound int) error {
	if bound < 1 {
		return errBadBound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bounds[gameID]; ok {
		return errGameExists
	}
	r.bounds[gameID] = bound
	return nil
}

// Lookup returns the recorded starting bound, or 0 if the id was never
// registered (the coordinator answers those connects with no_game_found).
func (r *GameRegistry) Lookup(gameID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bounds[gameID]
}
