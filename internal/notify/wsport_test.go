package notify

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/infrastructure/ws"
)

func startHub(t *testing.T) (*ws.Hub, string) {
	t.Helper()
	hub := ws.NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv.URL
}

func dialPort(t *testing.T, baseURL, group string) *WSPort {
	t.Helper()
	wsURL, err := WebsocketURL(baseURL, group)
	if err != nil {
		t.Fatalf("WebsocketURL: %v", err)
	}
	p, err := DialWS(context.Background(), wsURL, zerolog.Nop())
	if err != nil {
		t.Fatalf("DialWS: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func subscribe(p *WSPort) <-chan Message {
	ch := make(chan Message, 8)
	p.Subscribe(func(m Message) { ch <- m })
	return ch
}

// retryUntil repeats send until a message arrives on ch; the hub registers
// clients asynchronously.
func retryUntil(t *testing.T, ch <-chan Message, send func()) Message {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		send()
		select {
		case m := <-ch:
			return m
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatalf("no message received")
		}
	}
}

func TestWebsocketURL(t *testing.T) {
	got, err := WebsocketURL("https://board.example.com/", "tabs")
	if err != nil {
		t.Fatalf("WebsocketURL: %v", err)
	}
	if got != "wss://board.example.com/ws?group=tabs" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestWSPort_RelaysWithinGroup(t *testing.T) {
	_, base := startHub(t)
	a := dialPort(t, base, "alice")
	b := dialPort(t, base, "alice")
	inbox := subscribe(b)
	self := subscribe(a)

	msg := retryUntil(t, inbox, func() {
		if err := a.Publish(Message{Type: MessageCleared}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	})
	if msg.Type != MessageCleared {
		t.Fatalf("unexpected message %+v", msg)
	}
	select {
	case m := <-self:
		t.Fatalf("publisher received its own message: %+v", m)
	default:
	}
}

func TestWSPort_ReceivesFeedEvents(t *testing.T) {
	hub, base := startHub(t)
	p := dialPort(t, base, "feed")
	inbox := subscribe(p)

	msg := retryUntil(t, inbox, func() {
		_ = hub.Deliver(context.Background(), domain.FeedEvent{Kind: domain.EventUpvoted, PostID: 42})
	})
	if !msg.IsFeedChange() || msg.PostID != 42 || msg.Kind != string(domain.EventUpvoted) {
		t.Fatalf("unexpected message %+v", msg)
	}
}
