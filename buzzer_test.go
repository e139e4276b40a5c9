/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/buzzer/games/trivia"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, hub *Hub) *trivia.Engine {
	t.Helper()

	cfg := validConfig()
	cfg.quiz = filepath.Join(t.TempDir(), "missing.yml")

	engine, err := trivia.NewEngine(newQuizFile(cfg), hub, trivia.Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	return engine
}

func newTestClient(id string, buffer int) *Client {
	return &Client{id: trivia.ConnID(id), send: make(chan []byte, buffer)}
}

func drain(c *Client) []map[string]json.RawMessage {
	var frames []map[string]json.RawMessage

	for {
		select {
		case data := <-c.send:
			var frame map[string]json.RawMessage
			_ = json.Unmarshal(data, &frame)
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

func TestHubSendAndBroadcast(t *testing.T) {
	hub := newHub(quietLogger())
	a, b := newTestClient("a", 4), newTestClient("b", 4)
	hub.register(a)
	hub.register(b)

	hub.Send("a", trivia.Message{Type: "only-a"})
	hub.Send("nobody", trivia.Message{Type: "lost"})
	hub.Broadcast(trivia.Message{Type: "everyone"})

	if got := len(drain(a)); got != 2 {
		t.Fatalf("a got %d frames, want 2", got)
	}
	if got := len(drain(b)); got != 1 {
		t.Fatalf("b got %d frames, want 1", got)
	}
	if hub.count() != 2 {
		t.Fatalf("count = %d, want 2", hub.count())
	}
}

func TestHubSkipsFullBuffer(t *testing.T) {
	hub := newHub(quietLogger())
	slow, fast := newTestClient("slow", 1), newTestClient("fast", 8)
	hub.register(slow)
	hub.register(fast)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hub.Broadcast(trivia.Message{Type: "tick"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client")
	}

	if got := len(drain(slow)); got != 1 {
		t.Fatalf("slow got %d frames, want 1", got)
	}
	if got := len(drain(fast)); got != 5 {
		t.Fatalf("fast got %d frames, want 5", got)
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := newHub(quietLogger())
	c := newTestClient("a", 1)
	hub.register(c)
	hub.unregister(c)
	hub.unregister(c)

	if _, ok := <-c.send; ok {
		t.Fatal("expected send channel to be closed")
	}

	hub.Send("a", trivia.Message{Type: "late"})
	if hub.count() != 0 {
		t.Fatalf("count = %d, want 0", hub.count())
	}
}

func TestHubHandleAcks(t *testing.T) {
	hub := newHub(quietLogger())
	engine := newTestEngine(t, hub)

	c := newTestClient("p1", 32)
	hub.register(c)
	engine.Connect(c.id)
	drain(c)

	tests := []struct {
		name    string
		raw     string
		success bool
		errText string
	}{
		{"join", `{"type":"playerJoin","data":{"username":"alice"},"ack":1}`, true, ""},
		{"bad payload", `{"type":"playerJoin","data":42,"ack":2}`, false, "Invalid request"},
		{"unknown type", `{"type":"dance","ack":"x"}`, false, "Invalid request"},
		{"host only", `{"type":"hostUpdatePlayerName","data":{"id":"p1","newName":"bob"},"ack":3}`, false, "Only host can update names"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub.handle(engine, c, []byte(tt.raw))

			var ack *ackMessage
			for _, frame := range drain(c) {
				if string(frame["type"]) != `"ack"` {
					continue
				}
				ack = &ackMessage{ID: frame["id"]}
				if err := json.Unmarshal(frame["data"], &ack.Data); err != nil {
					t.Fatalf("decode ack: %v", err)
				}
			}

			if ack == nil {
				t.Fatal("no ack received")
			}
			if ack.Data.Success != tt.success || ack.Data.Error != tt.errText {
				t.Fatalf("ack = %+v, want success=%v error=%q", ack.Data, tt.success, tt.errText)
			}
		})
	}
}

func TestHubHandleWithoutAck(t *testing.T) {
	hub := newHub(quietLogger())
	engine := newTestEngine(t, hub)

	c := newTestClient("p1", 32)
	hub.register(c)
	engine.Connect(c.id)
	drain(c)

	hub.handle(engine, c, []byte(`not json`))
	hub.handle(engine, c, []byte(`{"type":"lockBuzzer"}`))
	hub.handle(engine, c, []byte(`{"type":"startGame","ack":4}`))

	for _, frame := range drain(c) {
		if string(frame["type"]) == `"ack"` {
			t.Fatalf("unexpected ack %s", frame["data"])
		}
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, kind string) map[string]json.RawMessage {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	for {
		var frame map[string]json.RawMessage
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("waiting for %s: %v", kind, err)
		}
		if string(frame["type"]) == `"`+kind+`"` {
			return frame
		}
	}
}

func TestServeWSRoundTrip(t *testing.T) {
	cfg := validConfig()
	hub := newHub(quietLogger())
	engine := newTestEngine(t, hub)

	mux := httprouter.New()
	errs := make(chan error, 1)
	registerBuzzerGame(cfg, mux, hub, engine, errs)

	server := httptest.NewServer(mux)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	host, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial host: %v", err)
	}
	defer host.Close()

	readUntil(t, host, "gameConfig")

	if err := host.WriteJSON(map[string]any{"type": "hostJoin"}); err != nil {
		t.Fatalf("write hostJoin: %v", err)
	}
	readUntil(t, host, "hostConfirmed")

	player, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial player: %v", err)
	}

	if err := player.WriteJSON(map[string]any{"type": "playerJoin", "data": map[string]string{"username": "Alice"}, "ack": 7}); err != nil {
		t.Fatalf("write playerJoin: %v", err)
	}

	ack := readUntil(t, player, "ack")
	if string(ack["id"]) != "7" || !strings.Contains(string(ack["data"]), `"success":true`) {
		t.Fatalf("unexpected ack %v", ack)
	}

	if n := len(engine.State().Players); n != 1 {
		t.Fatalf("players = %d, want 1", n)
	}

	_ = player.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		players := engine.State().Players
		if len(players) == 1 && !players[0].Connected {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected one disconnected player, got %+v", players)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if hub.count() != 1 {
		t.Fatalf("hub has %d clients, want 1", hub.count())
	}
}

func TestQRCode(t *testing.T) {
	cfg := validConfig()
	mux := httprouter.New()
	errs := make(chan error, 1)
	registerBuzzerGame(cfg, mux, newHub(quietLogger()), nil, errs)

	req := httptest.NewRequest("GET", "/qr?path=/host", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "\x89PNG") {
		t.Fatal("body is not a png")
	}
}

func TestJoinURL(t *testing.T) {
	cfg := validConfig()
	cfg.prefix = "/trivia"

	req := httptest.NewRequest("GET", "/", nil)
	req.Host = "quiz.example:8080"

	if got := joinURL(cfg, req); got != "http://quiz.example:8080/trivia/" {
		t.Fatalf("joinURL = %q", got)
	}

	req.Header.Set("X-Forwarded-Proto", "https")
	if got := joinURL(cfg, req); got != "https://quiz.example:8080/trivia/" {
		t.Fatalf("joinURL = %q", got)
	}
}
