package status

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	INFO = iota
	ERROR
	PROGRESS
	LEVEL
)

const (
	pingPeriod   = 30 * time.Second
	writeTimeout = 40 * time.Second
)

type Message struct {
	Message  string
	Time     time.Time
	Type     int
	Progress float32
	Level    *LevelInfo `json:",omitempty"`
}

type LevelInfo struct {
	Name            string
	Warnings        int
	UnresolvedTiles int
	SkippedPairs    int
	Error           string `json:",omitempty"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.unregister(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

// readPump drains control frames so pongs and the close handshake are
// processed; the status stream is one way.
func (c *client) readPump() {
	defer c.hub.unregister(c)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

// Hub fans status messages out to websocket clients. New clients get the
// last message first.
type Hub struct {
	lock        sync.Mutex
	clients     map[*client]bool
	lastMessage []byte
	closed      bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]bool)}
}

func (h *Hub) Attach(conn *websocket.Conn) {
	c := &client{hub: h, conn: conn, send: make(chan []byte, 32)}

	h.lock.Lock()
	if h.closed {
		h.lock.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = true
	if h.lastMessage != nil {
		c.send <- h.lastMessage
	}
	h.lock.Unlock()

	go c.writePump()
	go c.readPump()
}

func (h *Hub) unregister(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

func (h *Hub) Send(m *Message) {
	if math.IsNaN(float64(m.Progress)) || math.IsInf(float64(m.Progress), 0) {
		m.Progress = 0
	}
	if m.Time.IsZero() {
		m.Time = time.Now()
	}
	data, err := json.Marshal(m)
	if err != nil {
		log.Printf("[status] marshal error: %v", err)
		return
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	h.lastMessage = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// slow client, drop it instead of blocking every sender
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

var defaultHub = NewHub()

func Default() *Hub {
	return defaultHub
}

func Status(msg string, _type int, progress float32) {
	defaultHub.Send(&Message{Message: msg, Type: _type, Progress: progress})
}

func Info(format string, a ...interface{}) {
	Status(fmt.Sprintf(format, a...), INFO, 0.0)
}

func Error(format string, a ...interface{}) {
	Status(fmt.Sprintf(format, a...), ERROR, 0.0)
}

func Progress(progress float32, format string, a ...interface{}) {
	Status(fmt.Sprintf(format, a...), PROGRESS, progress)
}

// Level reports the outcome of (re)loading a level file.
func (h *Hub) Level(info LevelInfo) {
	msg := fmt.Sprintf("Level %q loaded, %d warnings", info.Name, info.Warnings)
	if info.Error != "" {
		msg = fmt.Sprintf("Level %q failed: %s", info.Name, info.Error)
	}
	h.Send(&Message{Message: msg, Type: LEVEL, Level: &info})
}

func Level(info LevelInfo) {
	defaultHub.Level(info)
}
