package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestHTTPServer(t *testing.T) (*httptest.Server, *GameRegistry) {
	t.Helper()
	registry := NewGameRegistry()
	server := NewGameServer(registry)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go server.Run(ctx)

	ts := httptest.NewServer(NewHTTPServer(registry, server.Handle()).Router())
	t.Cleanup(ts.Close)
	return ts, registry
}

func TestCreateGame(t *testing.T) {
	ts, registry := newTestHTTPServer(t)

	res, err := http.Post(ts.URL+"/ws/abcd1234", "text/plain", strings.NewReader("100"))
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	if got := registry.Lookup("abcd1234"); got != 100 {
		t.Errorf("expected bound 100 recorded, got %d", got)
	}

	// Duplicate id.
	res, _ = http.Post(ts.URL+"/ws/abcd1234", "text/plain", strings.NewReader("50"))
	res.Body.Close()
	if res.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for a duplicate id, got %d", res.StatusCode)
	}

	// Bad bounds and ids.
	for _, body := range []string{"0", "-3", "abc", "100000001"} {
		res, _ = http.Post(ts.URL+"/ws/other", "text/plain", strings.NewReader(body))
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, res.StatusCode)
		}
	}
	res, _ = http.Post(ts.URL+"/ws/bad..id", "text/plain", strings.NewReader("10"))
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad id, got %d", res.StatusCode)
	}
}

func TestIdentityCookieIssued(t *testing.T) {
	ts, _ := newTestHTTPServer(t)

	res, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	var issued *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == cookieName {
			issued = c
		}
	}
	if issued == nil {
		t.Fatal("expected an identity cookie on first contact")
	}

	// Presenting the cookie back must not mint a new one.
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	req.AddCookie(issued)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	for _, c := range res.Cookies() {
		if c.Name == cookieName {
			t.Error("a valid cookie must be reused, not replaced")
		}
	}
}

func wsURL(ts *httptest.Server, gameID string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + gameID
}

func readMessage(t *testing.T, conn *websocket.Conn) GameMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg GameMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocketUnknownGame(t *testing.T) {
	ts, _ := newTestHTTPServer(t)

	conn, res, err := websocket.DefaultDialer.Dial(wsURL(ts, "missing0"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// A fresh identity gets its cookie on the upgrade response.
	found := false
	for _, c := range res.Cookies() {
		if c.Name == cookieName {
			found = true
		}
	}
	if !found {
		t.Error("expected the identity cookie on the handshake response")
	}

	if msg := readMessage(t, conn); msg.Type != EventNoGameFound {
		t.Errorf("expected no_game_found, got %q", msg.Type)
	}
}

func TestWebSocketJoinAndPing(t *testing.T) {
	ts, registry := newTestHTTPServer(t)
	_ = registry.Put("game0001", 100)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "game0001"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if msg := readMessage(t, conn); msg.Type != EventP1Join {
		t.Fatalf("expected p1_join, got %q", msg.Type)
	}
	if msg := readMessage(t, conn); msg.Type != EventStartRoll || msg.Bound != 100 {
		t.Fatalf("expected start_roll 100, got %+v", msg)
	}

	// Ping is answered by the adapter without the coordinator.
	if err := conn.WriteJSON(ClientMessage{Type: MsgPing}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != EventPong {
		t.Errorf("expected pong, got %q", msg.Type)
	}
}

func TestWebSocketMalformedFrameDisconnects(t *testing.T) {
	ts, registry := newTestHTTPServer(t)
	_ = registry.Put("game0002", 100)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "game0002"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	readMessage(t, conn) // p1_join
	readMessage(t, conn) // start_roll

	if err := conn.WriteMessage(websocket.TextMessage, []byte("garbage")); err != nil {
		t.Fatal(err)
	}

	// Fail-closed: the server drops the connection.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
