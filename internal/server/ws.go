package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/ayusman/librasio/internal/app"
	"github.com/ayusman/librasio/internal/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	clientBuffer = 32
	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message is one websocket event. Label events carry the rendered stable
// label, overlay events the per-pass overlay.
type Message struct {
	Type      string       `json:"type"`
	Stream    app.StreamID `json:"stream"`
	Label     string       `json:"label,omitempty"`
	Overlay   *app.Overlay `json:"overlay,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// LabelHub fans label and overlay updates out to websocket clients. It is
// both an app.DisplaySink and an app.OverlaySink.
type LabelHub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	labels  map[app.StreamID]string
	dropped uint64
}

// NewLabelHub creates an empty hub.
func NewLabelHub(l *zap.Logger) *LabelHub {
	return &LabelHub{
		logger:  logger.OrNop(l),
		clients: make(map[*client]struct{}),
		labels:  make(map[app.StreamID]string),
	}
}

// SetLabel broadcasts text when it differs from the last label of stream.
func (h *LabelHub) SetLabel(stream app.StreamID, text string) {
	h.mu.Lock()
	if last, ok := h.labels[stream]; ok && last == text {
		h.mu.Unlock()
		return
	}
	h.labels[stream] = text
	h.mu.Unlock()

	h.broadcast(Message{Type: "label", Stream: stream, Label: text})
}

// DrawOverlay broadcasts the overlay of one pass.
func (h *LabelHub) DrawOverlay(stream app.StreamID, o app.Overlay) {
	h.broadcast(Message{Type: "overlay", Stream: stream, Overlay: &o})
}

// Labels returns the last label of every stream.
func (h *LabelHub) Labels() map[app.StreamID]string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[app.StreamID]string, len(h.labels))
	for k, v := range h.labels {
		out[k] = v
	}
	return out
}

// ClientCount returns the number of connected clients.
func (h *LabelHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many messages were discarded for slow clients.
func (h *LabelHub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

func (h *LabelHub) broadcast(m Message) {
	m.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(m)
	if err != nil {
		h.logger.Warn("failed to encode message", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped++
		}
	}
}

// ServeHTTP upgrades the connection and replays the current labels before
// streaming updates.
func (h *LabelHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade error", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	streams := make([]string, 0, len(h.labels))
	for id := range h.labels {
		streams = append(streams, string(id))
	}
	sort.Strings(streams)
	now := time.Now().UnixMilli()
	for _, id := range streams {
		data, err := json.Marshal(Message{
			Type:      "label",
			Stream:    app.StreamID(id),
			Label:     h.labels[app.StreamID(id)],
			Timestamp: now,
		})
		if err == nil {
			c.send <- data
		}
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go h.writeLoop(c, done)

	// Reads only detect the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	close(done)
	conn.Close()
}

func (h *LabelHub) writeLoop(c *client, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("websocket write error", zap.Error(err))
				c.conn.Close()
				return
			}
		}
	}
}
