package realtime_test

import (
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parksmart-iot/parksmart/server/internal/realtime"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *realtime.Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_DeliversEventsInOrder(t *testing.T) {
	hub := realtime.NewHub(log.New(io.Discard, "", 0))
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	hub.Publish("sensor_update", map[string]any{"free_slots": 3})
	hub.Publish("new_log", map[string]any{"plate": "51F12345"})

	var first, second realtime.Event
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read first event: %v", err)
	}
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read second event: %v", err)
	}

	if first.Event != "sensor_update" || second.Event != "new_log" {
		t.Errorf("events out of order: %q then %q", first.Event, second.Event)
	}
	data, ok := second.Data.(map[string]any)
	if !ok || data["plate"] != "51F12345" {
		t.Errorf("second payload = %#v", second.Data)
	}
}

func TestHub_FansOutToAllObservers(t *testing.T) {
	hub := realtime.NewHub(log.New(io.Discard, "", 0))
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	waitForClients(t, hub, 2)

	hub.Publish("sensor_update", map[string]any{"free_slots": 1})

	for _, conn := range []*websocket.Conn{a, b} {
		var ev realtime.Event
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read: %v", err)
		}
		if ev.Event != "sensor_update" {
			t.Errorf("event = %q", ev.Event)
		}
	}
}

func TestHub_RemovesDisconnectedObserver(t *testing.T) {
	hub := realtime.NewHub(log.New(io.Discard, "", 0))
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	_ = conn.Close()
	waitForClients(t, hub, 0)

	// Publishing to an empty hub is a no-op, not a panic.
	hub.Publish("new_log", map[string]any{"plate": "51F12345"})
}
