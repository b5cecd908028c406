package livetail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"
)

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("failed to open log: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
}

func collectLines(t *testing.T, f *Follower) (<-chan string, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	lines := make(chan string, 32)
	go f.Run(ctx, func(line string) { lines <- line })
	return lines, cancel
}

func waitForLine(t *testing.T, lines <-chan string, want string) {
	t.Helper()
	select {
	case got := <-lines:
		if got != want {
			t.Fatalf("line = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func TestFollower_EmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connection.log")
	appendLine(t, path, "old line")

	f := NewFollower(path, 10*time.Millisecond, zaptest.NewLogger(t).Sugar())
	lines, cancel := collectLines(t, f)
	defer cancel()

	// Give the follower a tick to record the starting offset.
	time.Sleep(50 * time.Millisecond)

	appendLine(t, path, "first new line")
	waitForLine(t, lines, "first new line")

	appendLine(t, path, "second new line")
	waitForLine(t, lines, "second new line")

	select {
	case got := <-lines:
		t.Fatalf("unexpected extra line %q", got)
	default:
	}
}

func TestFollower_SurvivesTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connection.log")
	appendLine(t, path, "old line")

	f := NewFollower(path, 10*time.Millisecond, zaptest.NewLogger(t).Sugar())
	lines, cancel := collectLines(t, f)
	defer cancel()
	time.Sleep(50 * time.Millisecond)

	if err := os.Truncate(path, 0); err != nil {
		t.Fatalf("failed to truncate: %v", err)
	}
	appendLine(t, path, "after clear")
	waitForLine(t, lines, "after clear")
}

func TestFollower_StartsAtEndOfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connection.log")
	appendLine(t, path, "history one")
	appendLine(t, path, "history two")

	f := NewFollower(path, 10*time.Millisecond, zaptest.NewLogger(t).Sugar())
	lines, cancel := collectLines(t, f)
	defer cancel()

	time.Sleep(100 * time.Millisecond)
	select {
	case got := <-lines:
		t.Fatalf("history must not be replayed, got %q", got)
	default:
	}
}

func TestHub_BroadcastToClient(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t).Sugar())
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	// Wait for the server side to register the client.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast("2024-03-01 12:00:00 (-) Alert: DNS resolution failure")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if string(msg) != "2024-03-01 12:00:00 (-) Alert: DNS resolution failure" {
		t.Errorf("message = %q", msg)
	}
}

func TestHub_DropsDisconnectedClients(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t).Sugar())
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never deregistered")
		}
		hub.Broadcast("poke")
		time.Sleep(5 * time.Millisecond)
	}
}
