package main

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	cookieName    = "deathroll"
	maxStartRoll  = 100000000
	maxCreateBody = 64
)

// HTTPServer wires the HTTP boundary to the coordinator: pages, the
// start-roll registration endpoint and the websocket upgrade.
type HTTPServer struct {
	registry *GameRegistry
	handle   GameServerHandle
	upgrader websocket.Upgrader
}

func NewHTTPServer(registry *GameRegistry, handle GameServerHandle) *HTTPServer {
	return &HTTPServer{
		registry: registry,
		handle:   handle,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}
}

// Router exposes the mux used for both Portal relay and local serve.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/", s.handleHome)
	r.Get("/game/{id}", s.handleGamePage)
	r.Post("/ws/{id}", s.handleCreateGame)
	r.Get("/ws/{id}", s.handleWebSocket)
	return r
}

// handleCreateGame records the starting bound for a game id. The client
// picks the id (it doubles as the invite token in the shareable URL) and
// POSTs the chosen number before opening the websocket.
func (s *HTTPServer) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	if !validGameID(gameID) {
		http.Error(w, "bad game id", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCreateBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	bound, err := strconv.Atoi(strings.TrimSpace(strings.Trim(string(body), `"`)))
	if err != nil || bound < 1 || bound > maxStartRoll {
		http.Error(w, "starting roll must be a number between 1 and 100000000", http.StatusBadRequest)
		return
	}
	if err := s.registry.Put(gameID, bound); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	log.Info().Str("game", gameID).Int("bound", bound).Msg("[deathroll] game registered")
	w.WriteHeader(http.StatusCreated)
}

func (s *HTTPServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	if !validGameID(gameID) {
		http.Error(w, "bad game id", http.StatusBadRequest)
		return
	}
	playerID, issued := s.playerIdentity(r)

	// gorilla writes its own handshake response, so a fresh cookie has to
	// travel in the upgrade headers rather than via http.SetCookie.
	var respHeader http.Header
	if issued != nil {
		respHeader = http.Header{"Set-Cookie": {issued.String()}}
	}
	conn, err := s.upgrader.Upgrade(w, r, respHeader)
	if err != nil {
		log.Error().Err(err).Msg("[deathroll] upgrade websocket")
		return
	}

	client := NewClient(conn, s.handle, playerID, gameID)
	s.handle.Connect(client.send, gameID, playerID)

	go client.writeLoop()
	client.readLoop()
}

// playerIdentity reads the identity cookie, minting a fresh UUID when the
// cookie is missing or unparseable. Same token, same identity; there is no
// authentication beyond that. The second return value is non-nil when a new
// cookie needs to be sent to the client.
func (s *HTTPServer) playerIdentity(r *http.Request) (uuid.UUID, *http.Cookie) {
	if c, err := r.Cookie(cookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id, nil
		}
	}
	id := uuid.New()
	return id, &http.Cookie{
		Name:     cookieName,
		Value:    id.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func validGameID(id string) bool {
	if len(id) == 0 || len(id) > 32 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
