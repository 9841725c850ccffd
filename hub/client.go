package hub

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/startup-platform/metrics"
	"github.com/yeremiapane/startup-platform/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// STOMP header names.
const (
	hdrDestination   = "destination"
	hdrID            = "id"
	hdrSubscription  = "subscription"
	hdrMessageID     = "message-id"
	hdrContentType   = "content-type"
	hdrContentLength = "content-length"
	hdrReceipt       = "receipt"
	hdrReceiptID     = "receipt-id"
	hdrVersion       = "version"
	hdrHeartBeat     = "heart-beat"
	hdrMessage       = "message"
	hdrServer        = "server"
	hdrUserName      = "user-name"
)

var messageSeq atomic.Uint64

// Client is one WebSocket connection bound to an authenticated user.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte

	mu   sync.Mutex
	subs map[string]string // subscription id -> destination

	closeOnce sync.Once
	done      chan struct{}

	drainOnce sync.Once
	draining  chan struct{} // closed on DISCONNECT; writePump flushes then closes
}

func newClient(h *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:      h,
		conn:     conn,
		userID:   userID,
		send:     make(chan []byte, sendBuffer),
		subs:     make(map[string]string),
		done:     make(chan struct{}),
		draining: make(chan struct{}),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.hub.unregister(c)
		c.conn.Close()
	})
}

// drain asks writePump to flush queued frames and then close the connection.
func (c *Client) drain() {
	c.drainOnce.Do(func() { close(c.draining) })
}

// readPump parses inbound STOMP frames until the connection fails or the
// client sends DISCONNECT.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case <-c.draining:
			<-c.done
		default:
			c.close()
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.ErrorLogger.WithError(err).WithField("user_id", c.userID).Error("websocket read")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		reader := frame.NewReader(bytes.NewReader(data))
		for {
			f, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				c.sendError("malformed frame", err.Error())
				break
			}
			if f == nil {
				continue // heart-beat
			}
			if !c.handle(ctx, f) {
				return
			}
		}
	}
}

// handle processes one frame; it returns false when the session must end.
func (c *Client) handle(ctx context.Context, f *frame.Frame) bool {
	metrics.WebSocketFrames.WithLabelValues("in", f.Command).Inc()

	switch f.Command {
	case frame.CONNECT, frame.STOMP:
		c.enqueue(frame.New(frame.CONNECTED,
			hdrVersion, "1.2",
			hdrHeartBeat, "0,0",
			hdrServer, "startup-platform",
			hdrUserName, c.userID,
		))
		return true

	case frame.SUBSCRIBE:
		id, dest := f.Header.Get(hdrID), f.Header.Get(hdrDestination)
		if id == "" || dest == "" {
			c.sendError("SUBSCRIBE requires id and destination", "")
			return true
		}
		if !c.hub.allowed(ctx, c.userID, dest) {
			c.sendError("subscription denied", dest)
			return true
		}
		c.mu.Lock()
		c.subs[id] = dest
		c.mu.Unlock()

	case frame.UNSUBSCRIBE:
		c.mu.Lock()
		delete(c.subs, f.Header.Get(hdrID))
		c.mu.Unlock()

	case frame.SEND:
		dest := f.Header.Get(hdrDestination)
		handler, param, ok := c.hub.lookup(dest)
		if !ok {
			c.sendError("unknown destination", dest)
			return true
		}
		if err := handler(ctx, c.userID, param, f.Body); err != nil {
			msg := err.Error()
			if utils.HTTPStatus(err) >= 500 {
				utils.ErrorLogger.WithError(err).WithFields(logrus.Fields{
					"user_id":     c.userID,
					"destination": dest,
				}).Error("websocket send handler failed")
				msg = "internal server error"
			}
			c.sendError(msg, dest)
			return true
		}

	case frame.DISCONNECT:
		c.receipt(f)
		c.drain()
		return false

	default:
		c.sendError("unsupported command", f.Command)
		return true
	}

	c.receipt(f)
	return true
}

func (c *Client) receipt(f *frame.Frame) {
	if id := f.Header.Get(hdrReceipt); id != "" {
		c.enqueue(frame.New(frame.RECEIPT, hdrReceiptID, id))
	}
}

func (c *Client) sendError(message, detail string) {
	f := frame.New(frame.ERROR, hdrMessage, message, hdrContentType, "text/plain")
	f.Body = []byte(detail)
	c.enqueue(f)
}

// deliver sends body as MESSAGE frames to every subscription on destination.
func (c *Client) deliver(destination string, body []byte) {
	c.mu.Lock()
	var ids []string
	for id, dest := range c.subs {
		if dest == destination {
			ids = append(ids, id)
		}
	}
	c.mu.Unlock()

	for _, id := range ids {
		f := frame.New(frame.MESSAGE,
			hdrDestination, destination,
			hdrSubscription, id,
			hdrMessageID, strconv.FormatUint(messageSeq.Add(1), 10),
			hdrContentType, "application/json",
			hdrContentLength, strconv.Itoa(len(body)),
		)
		f.Body = body
		c.enqueue(f)
	}
}

// enqueue never blocks; frames for a full buffer are dropped.
func (c *Client) enqueue(f *frame.Frame) {
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		utils.ErrorLogger.WithError(err).Error("encode stomp frame")
		return
	}
	select {
	case <-c.done:
	case c.send <- buf.Bytes():
		metrics.WebSocketFrames.WithLabelValues("out", f.Command).Inc()
	default:
		utils.InfoLogger.WithFields(logrus.Fields{
			"user_id": c.userID,
			"command": f.Command,
		}).Warn("websocket send buffer full, dropping frame")
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case <-c.draining:
			c.flush()
			return
		case data := <-c.send:
			if err := c.write(data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// flush writes whatever is still queued and ends with a normal close frame.
func (c *Client) flush() {
	for {
		select {
		case data := <-c.send:
			if err := c.write(data); err != nil {
				return
			}
		default:
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
