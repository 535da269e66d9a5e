package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

// DefaultChannel is the redis channel shared by every instance's hub.
const DefaultChannel = "floor:events"

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many messages a client may lag behind before it is
	// dropped.
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// client is one websocket connection with its own outbound queue, drained by
// a dedicated writer goroutine.
type client struct {
	conn *websocket.Conn
	role string
	send chan []byte
}

// Hub holds the live floor clients (staff and admin screens) and fans
// events out to them. With a redis client, events travel through a pub/sub
// channel so every instance behind a load balancer delivers them.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex

	redis   *redis.Client
	channel string
}

func New(redisClient *redis.Client) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
		redis:   redisClient,
		channel: DefaultChannel,
	}
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	c := &client{conn: conn, role: role, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()

	go h.writePump(c)
	utils.InfoLogger.WithField("role", role).Debug("floor client connected")
}

// Unregister stops the client's writer, which then closes the connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if c, ok := h.clients[conn]; ok {
		h.remove(c)
	}
}

// remove must be called with the mutex held.
func (h *Hub) remove(c *client) {
	delete(h.clients, c.conn)
	close(c.send)
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Serve keeps conn registered until the client goes away. Clients only
// listen; anything they send is discarded.
func (h *Hub) Serve(conn *websocket.Conn, role string) {
	h.Register(conn, role)
	defer h.Unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish satisfies the services' publisher interface.
func (h *Hub) Publish(event string, data interface{}) {
	h.Broadcast(Message{Event: event, Data: data})
}

func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).WithField("event", msg.Event).Error("error marshaling floor message")
		return
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		err := h.redis.Publish(ctx, h.channel, data).Err()
		if err == nil {
			return
		}
		utils.ErrorLogger.WithError(err).Warn("redis publish failed, delivering locally")
	}
	h.deliver(data)
}

// Run relays messages from the redis channel to local clients until ctx is
// done. Without redis it just waits.
func (h *Hub) Run(ctx context.Context) error {
	if h.redis == nil {
		<-ctx.Done()
		return nil
	}

	pubsub := h.redis.Subscribe(ctx, h.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	utils.InfoLogger.WithField("channel", h.channel).Info("floor hub subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			h.deliver([]byte(msg.Payload))
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, c := range h.clients {
		h.remove(c)
	}
}

// deliver queues data for every client without blocking. A client whose
// queue is full is dropped.
func (h *Hub) deliver(data []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			utils.ErrorLogger.WithField("role", c.role).Warn("floor client too slow, dropping")
			h.remove(c)
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{"role": c.role}).WithError(err).Warn("dropping floor client")
			h.Unregister(c.conn)
			return
		}
	}
}
