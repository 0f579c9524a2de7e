// Package ws hosts the websocket hub behind GET /ws. Clients join a group;
// messages a client sends are relayed to the other members of its group, and
// feed events are pushed to every client.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/scrumsquad/feedback-board/internal/api/metrics"
	"github.com/scrumsquad/feedback-board/internal/core/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32

	// DefaultGroup is used when the client does not name one.
	DefaultGroup = "default"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type envelope struct {
	from *client
	data []byte
}

// feedMessage is the wire form of a FeedEvent.
type feedMessage struct {
	Type   string               `json:"type"`
	Kind   domain.FeedEventKind `json:"kind"`
	PostID int64                `json:"postId"`
}

type Hub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	relay      chan envelope
	done       chan struct{}
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		relay:      make(chan envelope, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			metrics.WebsocketClients.Set(float64(len(h.clients)))
			h.log.Debug().Str("group", c.group).Msg("websocket client joined")
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case env := <-h.relay:
			for c := range h.clients {
				if c == env.from {
					continue
				}
				if env.from != nil && c.group != env.from.group {
					continue
				}
				select {
				case c.send <- env.data:
				default:
					// slow reader
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	metrics.WebsocketClients.Set(float64(len(h.clients)))
}

// Deliver pushes a feed event to every connected client.
func (h *Hub) Deliver(ctx context.Context, event domain.FeedEvent) error {
	data, err := json.Marshal(feedMessage{Type: domain.FeedChangedMessage, Kind: event.Kind, PostID: event.PostID})
	if err != nil {
		return err
	}
	select {
	case h.relay <- envelope{data: data}:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeWS upgrades the request and joins the client to ?group=.
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	group := c.QueryParam("group")
	if group == "" {
		group = DefaultGroup
	}
	cl := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), group: group}
	select {
	case h.register <- cl:
	case <-h.done:
		_ = conn.Close()
		return nil
	}

	go cl.writePump()
	go cl.readPump()
	return nil
}
