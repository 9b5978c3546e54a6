package chat

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/minchat/minchat/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one live websocket session. The write pump serializes
// ServerEvents queued on send; the read pump parses ClientEvents and
// routes sends through the fan-out engine.
type Client struct {
	conn         *websocket.Conn
	gateway      *Gateway
	log          *log.Logger
	user         types.User
	connectionId string
	send         chan *ServerEvent
	stop         chan struct{}
	stopOnce     sync.Once
}

func newClient(user types.User, connectionId string, conn *websocket.Conn, g *Gateway, l *log.Logger) *Client {
	return &Client{
		conn:         conn,
		gateway:      g,
		log:          l,
		user:         user,
		connectionId: connectionId,
		send:         make(chan *ServerEvent, 256),
		stop:         make(chan struct{}),
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev := <-c.send:
			bytes, err := json.Marshal(ev)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
				continue
			}

			if !c.writeMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.writeMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		c.cleanup()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var ev ClientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.log.Println("error parsing event:", err)
			c.queueError(NewValidationError("invalid event format"))
			continue
		}

		switch ev.Event {
		case EventSendMessage:
			c.handleSend(&ev)
		default:
			c.queueError(NewValidationError("unknown event"))
		}
	}
}

// handleSend routes a client-initiated send to the engine. Targets of
// the form "group:<id>" are group sends; anything else is a receiver
// identity.
func (c *Client) handleSend(ev *ClientEvent) {
	engine := c.gateway.engine
	if engine == nil {
		c.queueError(NewValidationError("sending is not available"))
		return
	}

	var (
		report *DeliveryReport
		err    error
	)

	if rest, isGroup := strings.CutPrefix(ev.To, groupTargetPrefix); isGroup {
		groupId, convErr := strconv.Atoi(rest)
		if convErr != nil {
			c.queueError(NewValidationError("malformed group target"))
			return
		}
		report, err = engine.SendGroup(context.Background(), c.user.EmailAddress, c.user.Id, groupId, ev.Content, nil, nil)
	} else {
		report, err = engine.SendDirect(context.Background(), c.user.EmailAddress, c.user.Id, ev.To, ev.Content)
	}

	if err != nil {
		c.queueError(err)
		return
	}

	c.queueEvent(&ServerEvent{
		Event: EventAck,
		Data: AckPayload{
			MessageId: report.Message.Id,
			Delivered: report.Delivered,
			Offline:   report.Offline,
		},
		Timestamp: Now(),
	})
}

func (c *Client) queueEvent(ev *ServerEvent) bool {
	select {
	case c.send <- ev:
		return true
	default:
		c.log.Printf("send channel full for session %q", c.connectionId)
		return false
	}
}

func (c *Client) queueError(err error) {
	payload := ErrorPayload{Kind: KindOf(err).String(), Message: err.Error()}
	c.queueEvent(&ServerEvent{Event: EventError, Data: payload, Timestamp: Now()})
}

func (c *Client) writeMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanup tears the session down using the identity resolved at
// connect time. The unbind is scoped to this connection id, so a
// newer session from the same user keeps its binding.
func (c *Client) cleanup() {
	c.gateway.removeClient(c)
	c.gateway.sessions.OnDisconnect(c.user.EmailAddress, c.connectionId)
	c.stopClient()
}
