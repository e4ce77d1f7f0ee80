package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// rollDie returns a uniform roll in [1, bound].
func rollDie(bound int) int {
	return rng.Intn(bound) + 1
}

// Player icons as shown in the feed and status lines.
const (
	iconP1     = "\U0001F9D9\u200D\u2642\uFE0F" // mage
	iconP2     = "\U0001F9DF"                    // zombie
	iconDie    = "\U0001F3B2"
	iconSkull  = "\U0001F480"
	iconTrophy = "\U0001F3C6"
	iconSwords = "\u2694\uFE0F"
)

// gameState is one room. It is owned by the GameServer loop and never
// touched from anywhere else.
type gameState struct {
	bound   int // upper bound of the next roll
	initial int // bound the room was created with, restored on reset

	p1 uuid.UUID
	p2 uuid.UUID // uuid.Nil until a second identity is seated

	turn    uuid.UUID // whose roll is awaited
	starter uuid.UUID // who opened the current round

	started bool
	over    bool

	scoreP1 int
	scoreP2 int

	feed []string
}

func newGameState(p1 uuid.UUID, bound int) *gameState {
	return &gameState{
		bound:   bound,
		initial: bound,
		p1:      p1,
		turn:    p1,
		starter: p1,
	}
}

func (g *gameState) isParticipant(p uuid.UUID) bool {
	return p == g.p1 || (g.p2 != uuid.Nil && p == g.p2)
}

// other returns the opponent of a seated participant.
func (g *gameState) other(p uuid.UUID) uuid.UUID {
	if p == g.p1 {
		return g.p2
	}
	return g.p1
}

func (g *gameState) icon(p uuid.UUID) string {
	if p == g.p1 {
		return iconP1
	}
	return iconP2
}

// applyRoll records a non-fatal roll: shrink the bound, log it, pass the turn.
func (g *gameState) applyRoll(roller uuid.UUID, roll int) {
	prev := g.bound
	g.bound = roll
	g.feed = append(g.feed, fmt.Sprintf("%s %d %s (1-%d)", g.icon(roller), roll, iconDie, prev))
	g.turn = g.other(roller)
}

// applyDeath records a roll of 1: the roller loses, the opponent scores.
func (g *gameState) applyDeath(roller uuid.UUID) {
	prev := g.bound
	if roller == g.p1 {
		g.scoreP2++
	} else {
		g.scoreP1++
	}
	g.bound = 1
	g.over = true
	g.feed = append(g.feed,
		fmt.Sprintf("%s 1 %s (1-%d)", g.icon(roller), iconSkull, prev),
		fmt.Sprintf("%s %s %d %s %s %d", iconP1, iconTrophy, g.scoreP1, iconP2, iconTrophy, g.scoreP2),
	)
}

// resetRound prepares the next round after a game over. The participant who
// did not open the previous round opens this one; scores and the starting
// bound survive, the transcript is replaced wholesale.
func (g *gameState) resetRound() {
	g.starter = g.other(g.starter)
	g.turn = g.starter
	g.bound = g.initial
	g.started = false
	g.over = false
	g.feed = []string{fmt.Sprintf("New Game %s %d", iconSwords, g.initial)}
}
