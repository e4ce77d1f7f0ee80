package main

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one websocket connection: a read loop feeding the coordinator
// and a write loop draining the outbound channel. Whichever loop exits first
// tears down the other and emits a single Disconnect.
type Client struct {
	conn   *websocket.Conn
	handle GameServerHandle

	playerID uuid.UUID
	gameID   string

	// Registered with the coordinator; never closed. The write loop exits
	// via done instead, so a late coordinator push cannot panic.
	send chan GameMessage
	done chan struct{}

	closed atomic.Bool
}

func NewClient(conn *websocket.Conn, handle GameServerHandle, playerID uuid.UUID, gameID string) *Client {
	return &Client{
		conn:     conn,
		handle:   handle,
		playerID: playerID,
		gameID:   gameID,
		send:     make(chan GameMessage, sendBufferSize),
		done:     make(chan struct{}),
	}
}

func (c *Client) readLoop() {
	defer c.close()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("player", c.playerID.String()).Msg("[deathroll] read message")
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			// Fail closed: a client sending garbage is dropped.
			log.Debug().Err(err).Str("player", c.playerID.String()).Msg("[deathroll] malformed frame")
			return
		}
		switch msg.Type {
		case MsgPing:
			// Answered here; the coordinator is not involved.
			c.push(pongMsg())
		case MsgRoll:
			c.handle.Turn(c.playerID, c.gameID)
		case MsgClose:
			return
		default:
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Str("player", c.playerID.String()).Msg("[deathroll] write json")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// push queues a message for the write loop without ever blocking the caller.
func (c *Client) push(msg GameMessage) {
	select {
	case c.send <- msg:
	default:
		select {
		case <-c.send:
		default:
		}
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (c *Client) close() {
	if c.closed.Swap(true) {
		return
	}
	c.handle.Disconnect(c.playerID)
	close(c.done)
	_ = c.conn.Close()
}
