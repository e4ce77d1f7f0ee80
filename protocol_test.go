package main

import (
	"encoding/json"
	"testing"
)

func TestGameMessageWireShape(t *testing.T) {
	data, err := json.Marshal(startRollMsg(100))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"start_roll","bound":100}` {
		t.Errorf("unexpected wire form %s", data)
	}

	data, _ = json.Marshal(spectateMsg())
	if string(data) != `{"type":"spectate"}` {
		t.Errorf("unit messages must omit empty fields, got %s", data)
	}
}

func TestGameScoreSnapshotsFeed(t *testing.T) {
	feed := []string{"a", "b"}
	msg := gameScoreMsg(feed)
	feed[0] = "mutated"
	if msg.Feed[0] != "a" {
		t.Error("game_score must carry a snapshot, not the live feed")
	}
}

func TestClientMessageDecoding(t *testing.T) {
	var msg ClientMessage
	if err := json.Unmarshal([]byte(`{"type":"roll"}`), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != MsgRoll {
		t.Errorf("expected roll, got %q", msg.Type)
	}
	if err := json.Unmarshal([]byte(`not json`), &msg); err == nil {
		t.Error("garbage must not decode")
	}
}
