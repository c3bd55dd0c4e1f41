package ws

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Subscription binds a connection to a topic (a dashboard session id).
type Subscription struct {
	Topic string
	Conn  Conn
}

type Message struct {
	Topic   string
	Payload []byte
}

const broadcastBuffer = 256

type Hub struct {
	Clients    map[string]map[Conn]bool
	Register   chan Subscription
	Unregister chan Subscription
	Broadcast  chan Message
	quit       chan struct{}
	stopOnce   sync.Once
	mutex      sync.Mutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		Clients:    make(map[string]map[Conn]bool),
		Register:   make(chan Subscription),
		Unregister: make(chan Subscription),
		Broadcast:  make(chan Message, broadcastBuffer),
		quit:       make(chan struct{}),
		log:        log,
	}
}

// Publish queues payload for every connection subscribed to topic. It never
// blocks; when the queue is full the message is dropped.
func (h *Hub) Publish(topic string, payload []byte) {
	select {
	case h.Broadcast <- Message{Topic: topic, Payload: payload}:
	default:
		h.log.Warn("ws broadcast queue full, dropping message", zap.String("topic", topic))
	}
}

// Count returns the number of connections subscribed to topic.
func (h *Hub) Count(topic string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients[topic])
}

// CloseTopic disconnects every subscriber of topic.
func (h *Hub) CloseTopic(topic string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.Clients[topic] {
		conn.Close()
	}
	delete(h.Clients, topic)
}

// Subscribe hands sub to the run loop. It returns false without blocking
// once the hub has been stopped.
func (h *Hub) Subscribe(sub Subscription) bool {
	select {
	case h.Register <- sub:
		return true
	case <-h.quit:
		return false
	}
}

// Unsubscribe removes sub. After Stop it returns immediately; Run has
// already closed every connection.
func (h *Hub) Unsubscribe(sub Subscription) {
	select {
	case h.Unregister <- sub:
	case <-h.quit:
	}
}

// Stop ends Run. Calling it more than once is safe.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.mutex.Lock()
			for topic, conns := range h.Clients {
				for conn := range conns {
					conn.Close()
				}
				delete(h.Clients, topic)
			}
			h.mutex.Unlock()
			return

		case sub := <-h.Register:
			h.mutex.Lock()
			if h.Clients[sub.Topic] == nil {
				h.Clients[sub.Topic] = make(map[Conn]bool)
			}
			h.Clients[sub.Topic][sub.Conn] = true
			h.mutex.Unlock()
			h.log.Debug("ws client connected", zap.String("topic", sub.Topic))

		case sub := <-h.Unregister:
			h.mutex.Lock()
			if conns, ok := h.Clients[sub.Topic]; ok {
				if _, ok := conns[sub.Conn]; ok {
					delete(conns, sub.Conn)
					sub.Conn.Close()
				}
				if len(conns) == 0 {
					delete(h.Clients, sub.Topic)
				}
			}
			h.mutex.Unlock()

		case msg := <-h.Broadcast:
			h.mutex.Lock()
			conns := h.Clients[msg.Topic]
			for conn := range conns {
				if err := conn.WriteMessage(websocket.TextMessage, msg.Payload); err != nil {
					h.log.Debug("ws write failed, dropping client", zap.String("topic", msg.Topic), zap.Error(err))
					conn.Close()
					delete(conns, conn)
				}
			}
			if conns != nil && len(conns) == 0 {
				delete(h.Clients, msg.Topic)
			}
			h.mutex.Unlock()
		}
	}
}
