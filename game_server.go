package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const commandBuffer = 256

type command interface{ isCommand() }

type connectCmd struct {
	ch     chan GameMessage
	gameID string
	player uuid.UUID
}

type disconnectCmd struct {
	player uuid.UUID
}

type turnCmd struct {
	player uuid.UUID
	gameID string
}

func (connectCmd) isCommand()    {}
func (disconnectCmd) isCommand() {}
func (turnCmd) isCommand()       {}

// GameServer is the room coordinator. It owns the session registry, the
// room membership index and the room state store, and is the only goroutine
// that touches them; everything reaches it through the command channel.
type GameServer struct {
	commands chan command

	// player identity -> outbound channels, one per open tab/socket
	sessions map[uuid.UUID][]chan GameMessage
	// game id -> identities associated with the room (seats and spectators)
	members map[string]map[uuid.UUID]struct{}
	// game id -> room state
	rooms map[string]*gameState

	registry *GameRegistry

	// injectable for deterministic tests
	roll func(bound int) int
}

// GameServerHandle is the coordinator's only external surface. Enqueueing
// blocks rather than drops: a lost command would desync a room.
type GameServerHandle struct {
	commands chan<- command
}

func (h GameServerHandle) Connect(ch chan GameMessage, gameID string, player uuid.UUID) {
	h.commands <- connectCmd{ch: ch, gameID: gameID, player: player}
}

func (h GameServerHandle) Disconnect(player uuid.UUID) {
	h.commands <- disconnectCmd{player: player}
}

func (h GameServerHandle) Turn(player uuid.UUID, gameID string) {
	h.commands <- turnCmd{player: player, gameID: gameID}
}

func NewGameServer(registry *GameRegistry) *GameServer {
	return &GameServer{
		commands: make(chan command, commandBuffer),
		sessions: make(map[uuid.UUID][]chan GameMessage),
		members:  make(map[string]map[uuid.UUID]struct{}),
		rooms:    make(map[string]*gameState),
		registry: registry,
		roll:     rollDie,
	}
}

func (s *GameServer) Handle() GameServerHandle {
	return GameServerHandle{commands: s.commands}
}

// Run drains the command channel until the context is cancelled. Commands
// are processed one at a time in arrival order, which serializes every
// state transition of every room.
func (s *GameServer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.commands:
			switch c := cmd.(type) {
			case connectCmd:
				s.connect(c.ch, c.gameID, c.player)
			case disconnectCmd:
				s.disconnect(c.player)
			case turnCmd:
				s.turn(c.player, c.gameID)
			}
		}
	}
}

// sendTo delivers to every channel registered for the identity. Identities
// with no channel are skipped: deciding and delivering race against
// disconnects, and losing that race is normal.
func (s *GameServer) sendTo(player uuid.UUID, msg GameMessage) {
	for _, ch := range s.sessions[player] {
		select {
		case ch <- msg:
		default:
			// slow consumer: drop the oldest queued message instead of blocking
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- msg:
			default:
				log.Debug().Str("player", player.String()).Msg("[deathroll] dropped message")
			}
		}
	}
}

// broadcast sends to every identity associated with the room.
func (s *GameServer) broadcast(gameID string, msg GameMessage) {
	for player := range s.members[gameID] {
		s.sendTo(player, msg)
	}
}

func (s *GameServer) broadcastFeed(gameID string) {
	if g, ok := s.rooms[gameID]; ok {
		s.broadcast(gameID, gameScoreMsg(g.feed))
	}
}

func (s *GameServer) connect(ch chan GameMessage, gameID string, player uuid.UUID) {
	s.sessions[player] = append(s.sessions[player], ch)
	if s.members[gameID] == nil {
		s.members[gameID] = make(map[uuid.UUID]struct{})
	}
	s.members[gameID][player] = struct{}{}

	g, ok := s.rooms[gameID]
	if !ok {
		bound := s.registry.Lookup(gameID)
		if bound < 1 {
			// Nobody ever started this room; don't create state for it.
			s.sendTo(player, noGameFoundMsg())
			return
		}
		g = newGameState(player, bound)
		s.rooms[gameID] = g
		log.Info().Str("game", gameID).Str("player", player.String()).
			Int("bound", bound).Msg("[deathroll] room created")
		s.sendTo(player, p1JoinMsg())
		s.sendTo(player, startRollMsg(bound))
		return
	}

	switch {
	case g.isParticipant(player):
		// Reconnect: resync the client, mutate nothing.
		s.sendTo(player, reconnectMsg())
		s.sendTo(player, statusMsg(fmt.Sprintf("%s %s", g.icon(player), iconDie)))
		s.sendTo(player, gameScoreMsg(g.feed))
		s.sendTo(player, startRollMsg(g.initial))
	case !g.started && g.p2 == uuid.Nil:
		g.p2 = player
		log.Info().Str("game", gameID).Str("player", player.String()).Msg("[deathroll] second seat taken")
		s.sendTo(player, p2JoinMsg())
		s.sendTo(player, startRollMsg(g.initial))
	default:
		// Both seats taken (or mid-round): permanent spectator.
		s.sendTo(player, spectateMsg())
		s.sendTo(player, gameScoreMsg(g.feed))
	}
}

func (s *GameServer) disconnect(player uuid.UUID) {
	if _, ok := s.sessions[player]; !ok {
		return
	}
	delete(s.sessions, player)
	for _, members := range s.members {
		delete(members, player)
	}
	log.Debug().Str("player", player.String()).Msg("[deathroll] session closed")
}

func (s *GameServer) turn(player uuid.UUID, gameID string) {
	g, ok := s.rooms[gameID]
	if !ok {
		return
	}

	if !g.isParticipant(player) {
		s.sendTo(player, spectateMsg())
		return
	}

	if g.over {
		s.resetRound(gameID, g)
		return
	}

	if !g.started {
		if g.p2 == uuid.Nil {
			s.sendTo(player, startGameMsg(fmt.Sprintf("%s waiting for an opponent to join", iconDie)))
			return
		}
		if player != g.turn {
			s.sendTo(player, startGameMsg(fmt.Sprintf("%s %s waiting for %s to roll", g.icon(player), iconDie, g.icon(g.turn))))
			s.sendTo(g.turn, startGameMsg(fmt.Sprintf("%s %s roll to start", g.icon(g.turn), iconDie)))
			return
		}
		g.started = true
	}

	if player != g.turn {
		s.sendTo(player, statusMsg(fmt.Sprintf("%s %s it's not your roll", g.icon(player), iconDie)))
		return
	}

	roll := s.roll(g.bound)
	opponent := g.other(player)
	if roll != 1 {
		g.applyRoll(player, roll)
		s.sendTo(player, statusMsg(fmt.Sprintf("%s %s %d", g.icon(player), iconDie, roll)))
		s.sendTo(opponent, statusMsg(fmt.Sprintf("%s %s It's your roll!", g.icon(opponent), iconDie)))
		s.broadcastFeed(gameID)
		return
	}

	g.applyDeath(player)
	log.Info().Str("game", gameID).Str("loser", player.String()).
		Int("p1", g.scoreP1).Int("p2", g.scoreP2).Msg("[deathroll] game over")
	s.sendTo(player, gameOverMsg(fmt.Sprintf("%s %s", g.icon(player), iconSkull)))
	s.sendTo(opponent, gameOverMsg(fmt.Sprintf("%s %s", g.icon(opponent), iconTrophy)))
	s.broadcastFeed(gameID)
}

// resetRound starts the next round of a finished room: the participant who
// did not open the previous round opens this one.
func (s *GameServer) resetRound(gameID string, g *gameState) {
	g.resetRound()
	s.broadcastFeed(gameID)
	s.sendTo(g.turn, statusMsg(fmt.Sprintf("%s %s roll to start", g.icon(g.turn), iconDie)))
	waiting := g.other(g.turn)
	s.sendTo(waiting, statusMsg(fmt.Sprintf("%s %s waiting for %s to roll", g.icon(waiting), iconDie, g.icon(g.turn))))
}
