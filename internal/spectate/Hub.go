package spectate

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/Mshel/termsnake/internal/game"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const clientBufferSize = 8

type pointMessage struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// FrameMessage is the JSON sent to watchers for every rendered frame.
type FrameMessage struct {
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Snake   []pointMessage `json:"snake"`
	Food    *pointMessage  `json:"food"`
	Heading string         `json:"heading"`
	Score   int            `json:"score"`
	Speed   int            `json:"speed"`
}

func NewFrameMessage(frame game.Frame) FrameMessage {
	msg := FrameMessage{
		Width:   frame.Width,
		Height:  frame.Height,
		Snake:   make([]pointMessage, 0, len(frame.Body)),
		Heading: frame.Heading.String(),
		Score:   frame.Score,
		Speed:   frame.Speed,
	}
	for _, p := range frame.Body {
		msg.Snake = append(msg.Snake, pointMessage{X: p.X, Y: p.Y})
	}
	if frame.HasFood {
		msg.Food = &pointMessage{X: frame.Food.X, Y: frame.Food.Y}
	}
	return msg
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub is a read-only websocket feed of the game. It is a game.Renderer:
// Render never blocks the game loop, a watcher that falls behind loses
// frames instead.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	closed  bool
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) Render(frame game.Frame) error {
	payload, err := json.Marshal(NewFrameMessage(frame))
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = payload
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Debug("Spectator lagging, frame dropped", "client", c.id)
		}
	}
	return nil
}

// ServeHTTP upgrades the request and streams frames until the watcher
// disconnects. A new watcher starts with the latest frame.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Spectator upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, clientBufferSize)}
	if !h.register(c) {
		conn.Close()
		return
	}
	h.logger.Info("Spectator joined", "client", c.id, "remote", r.RemoteAddr)

	go h.writeLoop(c)

	// reads only serve control frames and notice the disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.unregister(c)
	h.logger.Info("Spectator left", "client", c.id)
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Debug("Spectator write failed", "client", c.id, "error", err)
			return
		}
	}
	closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over")
	if err := c.conn.WriteMessage(websocket.CloseMessage, closing); err != nil {
		h.logger.Debug("Spectator close failed", "client", c.id, "error", err)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close says goodbye to every watcher and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
