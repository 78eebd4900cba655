package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/selene/internal/adapters/nats"
	"github.com/samirrijal/selene/internal/core/usecases"
	"github.com/samirrijal/selene/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to channels.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe" | "snapshot"
	Channel string `json:"channel"` // "all" | "selection" | "datasets"
}

// wsSubjects maps client channels onto NATS subjects.
var wsSubjects = map[string]string{
	"all":       natsadapter.SubjectAll,
	"selection": "selene.selection.>",
	"datasets":  "selene.dataset.>",
}

// WebSocketHandler returns a handler that sends the current state on connect
// and then relays selection and dataset events from NATS.
// Clients send JSON: {"action":"subscribe","channel":"datasets"}.
// Every client starts on the "all" channel.
func WebSocketHandler(nc *nats.Conn, svc *usecases.SelectionService) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		sendSnapshot := func() error {
			st := svc.Snapshot()
			return writeJSON(map[string]any{
				"type":        "snapshot",
				"selection":   st.Selection,
				"composition": st.Composition,
				"readout":     toReadoutResponse(st.Readout),
			})
		}

		subscribe := func(subject string) error {
			if nc == nil {
				return nats.ErrConnectionClosed
			}
			s, err := nc.Subscribe(subject, func(msg *nats.Msg) {
				_ = writeJSON(map[string]any{
					"type":    "event",
					"subject": msg.Subject,
					"data":    json.RawMessage(msg.Data),
				})
			})
			if err != nil {
				return err
			}
			subs[subject] = s
			return nil
		}

		if err := sendSnapshot(); err != nil {
			return
		}
		if nc != nil {
			if err := subscribe(natsadapter.SubjectAll); err != nil {
				slog.Warn("ws default subscribe", "error", err)
				return
			}
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			if m.Action == "snapshot" {
				_ = sendSnapshot()
				continue
			}

			channel := m.Channel
			if channel == "" {
				channel = "all"
			}
			subject, ok := wsSubjects[channel]
			if !ok {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				if err := subscribe(subject); err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
