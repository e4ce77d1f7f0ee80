package main

// ClientMessage is the envelope received from websocket clients.
type ClientMessage struct {
	Type string `json:"type"`
}

// Inbound message types. Anything else tears the connection down.
const (
	MsgPing  = "ping"
	MsgRoll  = "roll"
	MsgClose = "close"
)

// GameMessage is pushed to clients by the coordinator (and, for pong,
// by the connection adapter itself). Body carries a human-readable status
// line, Feed a full replacement of the roll transcript, Bound the starting
// roll of the room.
type GameMessage struct {
	Type  string   `json:"type"`
	Body  string   `json:"body,omitempty"`
	Feed  []string `json:"feed,omitempty"`
	Bound int      `json:"bound,omitempty"`
}

// Outbound message types.
const (
	EventSpectate    = "spectate"      // recipient has no seat, observe only
	EventStartGame   = "start_game"    // pre-start waiting-screen status line
	EventStatus      = "status"        // transient status line
	EventReconnect   = "reconnect"     // recipient rejoined a room it has a role in
	EventNoGameFound = "no_game_found" // room id was never registered
	EventP1Join      = "p1_join"       // recipient holds the first seat
	EventP2Join      = "p2_join"       // recipient holds the second seat
	EventGameScore   = "game_score"    // full transcript replacement
	EventStartRoll   = "start_roll"    // the room's starting bound
	EventPong        = "pong"
	EventGameOver    = "game_over"     // terminal per-player victory/defeat line
)

func spectateMsg() GameMessage { return GameMessage{Type: EventSpectate} }
func startGameMsg(body string) GameMessage { return GameMessage{Type: EventStartGame, Body: body} }
func statusMsg(body string) GameMessage { return GameMessage{Type: EventStatus, Body: body} }
func reconnectMsg() GameMessage { return GameMessage{Type: EventReconnect} }
func noGameFoundMsg() GameMessage { return GameMessage{Type: EventNoGameFound} }
func p1JoinMsg() GameMessage { return GameMessage{Type: EventP1Join} }
func p2JoinMsg() GameMessage { return GameMessage{Type: EventP2Join} }
func pongMsg() GameMessage { return GameMessage{Type: EventPong} }
func gameOverMsg(body string) GameMessage { return GameMessage{Type: EventGameOver, Body: body} }

func startRollMsg(bound int) GameMessage {
	return GameMessage{Type: EventStartRoll, Bound: bound}
}

func gameScoreMsg(feed []string) GameMessage {
	// Snapshot: the room's feed keeps mutating after this message is queued.
	return GameMessage{Type: EventGameScore, Feed: append([]string(nil), feed...)}
}
