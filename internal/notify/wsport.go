package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const wsWriteWait = 10 * time.Second

// WSPort joins a group on the server hub. The hub relays published messages
// to the other members of the group and pushes feed events to every member.
type WSPort struct {
	conn *websocket.Conn
	subs subscribers
	log  zerolog.Logger

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// WebsocketURL turns an http(s) API root into the hub URL for group.
func WebsocketURL(baseURL, group string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/ws")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("group", group)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DialWS connects to the hub at wsURL and starts reading.
func DialWS(ctx context.Context, wsURL string, log zerolog.Logger) (*WSPort, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	p := &WSPort{conn: conn, log: log, done: make(chan struct{})}
	go p.readLoop()
	return p, nil
}

func (p *WSPort) Publish(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (p *WSPort) Subscribe(fn func(Message)) func() {
	return p.subs.add(fn)
}

// Done is closed once the connection is gone.
func (p *WSPort) Done() <-chan struct{} {
	return p.done
}

func (p *WSPort) Close() error {
	p.writeMu.Lock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	_ = p.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	p.writeMu.Unlock()
	return p.conn.Close()
}

func (p *WSPort) readLoop() {
	defer p.once.Do(func() { close(p.done) })
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.log.Debug().Err(err).Msg("websocket port closed")
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			p.log.Debug().Err(err).Msg("ignoring malformed broadcast")
			continue
		}
		p.subs.dispatch(msg)
	}
}
