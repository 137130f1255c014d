package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"
)

// wsChannels maps client-facing channel names onto NATS subjects.
var wsChannels = map[string]string{
	"tracks":   "gravel.track.>",
	"segments": "gravel.segment.>",
	"routes":   "gravel.route.>",
}

// wsCommand is a client subscribe/unsubscribe request.
type wsCommand struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// wsRelay fans NATS catalog events out to one websocket client. The write
// mutex covers both event payloads and keep-alive pings.
type wsRelay struct {
	conn *websocket.Conn
	nc   *nats.Conn

	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

func (r *wsRelay) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn.WriteMessage(websocket.TextMessage, data)
}

func (r *wsRelay) subscribe(subject string) error {
	if _, ok := r.subs[subject]; ok {
		return r.send(map[string]string{"status": "already subscribed", "subject": subject})
	}
	sub, err := r.nc.Subscribe(subject, func(msg *nats.Msg) {
		_ = r.send(json.RawMessage(msg.Data))
	})
	if err != nil {
		return r.send(map[string]string{"error": "subscribe failed: " + err.Error()})
	}
	r.subs[subject] = sub
	return r.send(map[string]string{"status": "subscribed", "subject": subject})
}

func (r *wsRelay) unsubscribe(subject string) error {
	sub, ok := r.subs[subject]
	if !ok {
		return r.send(map[string]string{"error": "not subscribed to " + subject})
	}
	_ = sub.Unsubscribe()
	delete(r.subs, subject)
	return r.send(map[string]string{"status": "unsubscribed", "subject": subject})
}

func (r *wsRelay) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			err := r.conn.WriteMessage(websocket.PingMessage, nil)
			r.mu.Unlock()
			if err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// WebSocketHandler relays catalog events from NATS to connected clients.
// Clients send {"action":"subscribe","channel":"segments"}; the default
// subscription is composed routes, which is what map views watch.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remote := c.RemoteAddr().String()
		relay := &wsRelay{conn: c, nc: nc, subs: make(map[string]*nats.Subscription)}
		slog.Info("ws client connected", "remote", remote)

		if err := relay.subscribe(wsChannels["routes"]); err != nil {
			slog.Warn("ws default subscribe failed", "error", err)
			return
		}

		done := make(chan struct{})
		go relay.keepAlive(done)

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var cmd wsCommand
			if err := json.Unmarshal(raw, &cmd); err != nil {
				_ = relay.send(map[string]string{"error": "invalid JSON"})
				continue
			}
			if cmd.Channel == "" {
				cmd.Channel = "routes"
			}
			subject, ok := wsChannels[cmd.Channel]
			if !ok {
				_ = relay.send(map[string]string{"error": "unknown channel: " + cmd.Channel})
				continue
			}

			switch cmd.Action {
			case "subscribe":
				_ = relay.subscribe(subject)
			case "unsubscribe":
				_ = relay.unsubscribe(subject)
			default:
				_ = relay.send(map[string]string{"error": "unknown action: " + cmd.Action})
			}
		}

		close(done)
		for _, s := range relay.subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remote)
	}
}
