// Package hub fans real-time events out to WebSocket clients speaking STOMP.
package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/startup-platform/metrics"
	"github.com/yeremiapane/startup-platform/utils"
)

// Destinations the server publishes to.
const (
	TopicMessages     = "/topic/messages"
	UserNotifications = "/user/queue/notifications"
)

// ConversationTopic is where new messages in a conversation are broadcast.
func ConversationTopic(conversationID string) string {
	return "/topic/conversation/" + conversationID
}

func TypingTopic(conversationID string) string {
	return ConversationTopic(conversationID) + "/typing"
}

func ReadReceiptTopic(conversationID string) string {
	return ConversationTopic(conversationID) + "/read"
}

// SendHandler handles a client SEND to an application destination. param is
// the trailing path segment when the route was registered with "/{id}".
type SendHandler func(ctx context.Context, userID, param string, body []byte) error

// Authorizer decides whether userID may subscribe to destination.
type Authorizer func(ctx context.Context, userID, destination string) bool

type route struct {
	prefix   string
	hasParam bool
	handler  SendHandler
}

// Hub tracks connected clients and their subscriptions.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]struct{}
	routes    []route
	authorize Authorizer
	upgrader  websocket.Upgrader
}

func New() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    []string{"v12.stomp", "v11.stomp", "v10.stomp"},
			CheckOrigin: func(r *http.Request) bool {
				return true // the endpoint is already behind token auth
			},
		},
	}
}

// Handle registers a SEND route such as "/app/chat.send" or "/app/chat.send/{id}".
func (h *Hub) Handle(pattern string, handler SendHandler) {
	r := route{prefix: pattern, handler: handler}
	if strings.HasSuffix(pattern, "/{id}") {
		r.prefix = strings.TrimSuffix(pattern, "{id}")
		r.hasParam = true
	}
	h.mu.Lock()
	h.routes = append(h.routes, r)
	h.mu.Unlock()
}

// SetAuthorizer installs the subscription check. Without one every
// subscription is allowed.
func (h *Hub) SetAuthorizer(a Authorizer) {
	h.mu.Lock()
	h.authorize = a
	h.mu.Unlock()
}

// ServeWS upgrades the request and serves the connection for userID until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := newClient(h, conn, userID)
	h.register(client)
	go client.writePump()
	client.readPump(r.Context())
	return nil
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketClients.Inc()
	utils.InfoLogger.WithFields(logrus.Fields{"user_id": c.userID, "clients": total}).Debug("websocket client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		metrics.WebSocketClients.Dec()
		utils.InfoLogger.WithField("user_id", c.userID).Debug("websocket client disconnected")
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish delivers payload to every subscription on destination. Delivery
// is at-most-once: slow or disconnected clients miss the message.
func (h *Hub) Publish(destination string, payload interface{}) {
	h.deliver(destination, payload, func(*Client) bool { return true })
}

// SendToUser delivers payload to userID's subscriptions on a user
// destination such as UserNotifications.
func (h *Hub) SendToUser(userID, destination string, payload interface{}) {
	h.deliver(destination, payload, func(c *Client) bool { return c.userID == userID })
}

func (h *Hub) deliver(destination string, payload interface{}, match func(*Client) bool) {
	body, err := json.Marshal(payload)
	if err != nil {
		utils.ErrorLogger.WithError(err).WithField("destination", destination).Error("marshal websocket payload")
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if match(c) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.deliver(destination, body)
	}
}

func (h *Hub) lookup(destination string) (SendHandler, string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.routes {
		if !r.hasParam {
			if destination == r.prefix {
				return r.handler, "", true
			}
			continue
		}
		if param, ok := strings.CutPrefix(destination, r.prefix); ok && param != "" && !strings.Contains(param, "/") {
			return r.handler, param, true
		}
	}
	return nil, "", false
}

func (h *Hub) allowed(ctx context.Context, userID, destination string) bool {
	if !strings.HasPrefix(destination, "/topic/") && !strings.HasPrefix(destination, "/user/queue/") {
		return false
	}
	h.mu.RLock()
	authorize := h.authorize
	h.mu.RUnlock()
	return authorize == nil || authorize(ctx, userID, destination)
}
