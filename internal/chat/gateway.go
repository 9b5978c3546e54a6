package chat

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/teris-io/shortid"

	"github.com/minchat/minchat/internal/types"
)

// Gateway owns the live websocket clients, keyed by connection id, and
// implements SessionPusher on top of them. It is the transport edge:
// everything below it speaks identities and connection ids only.
type Gateway struct {
	log         *log.Logger
	sessions    *SessionManager
	engine      *Engine
	clients     map[string]*Client
	clientsLock sync.RWMutex
	reporter    ErrorReporter
}

func NewGateway(logger *log.Logger, sessions *SessionManager, reporter ErrorReporter) *Gateway {
	return &Gateway{
		log:      logger,
		sessions: sessions,
		reporter: reporter,
		clients:  make(map[string]*Client),
	}
}

// AttachEngine wires the fan-out engine used for client-initiated
// sends. The gateway and engine reference each other, so the engine is
// attached after both are constructed.
func (g *Gateway) AttachEngine(e *Engine) {
	g.engine = e
}

// HandleConnection registers an upgraded websocket connection for an
// authenticated user and starts its read and write pumps. Any failure
// here aborts the connection rather than leaving it half-initialized.
func (g *Gateway) HandleConnection(user types.User, conn *websocket.Conn) error {
	connectionId, err := shortid.Generate()
	if err != nil {
		g.reporter.Report(fmt.Errorf("generate connection id: %w", err))
		conn.Close()
		return err
	}

	evicted, err := g.sessions.OnConnect(user.EmailAddress, connectionId)
	if err != nil {
		conn.Close()
		return err
	}

	if evicted != "" {
		g.clientsLock.RLock()
		prev, ok := g.clients[evicted]
		g.clientsLock.RUnlock()
		if ok {
			prev.stopClient()
		}
	}

	client := newClient(user, connectionId, conn, g, g.log)
	g.addClient(client)

	go client.writePump()
	go client.readPump()

	return nil
}

// PushToSession queues an event on the session's send channel. A
// missing session or a full channel within the context deadline is a
// push failure, which callers treat as a delivery skip.
func (g *Gateway) PushToSession(ctx context.Context, connectionId, event string, payload any) error {
	g.clientsLock.RLock()
	client, ok := g.clients[connectionId]
	g.clientsLock.RUnlock()

	if !ok {
		return fmt.Errorf("no live session %q", connectionId)
	}

	ev := &ServerEvent{
		Event:     event,
		Data:      payload,
		Timestamp: Now(),
	}

	select {
	case client.send <- ev:
		return nil
	case <-client.stop:
		return fmt.Errorf("session %q is closing", connectionId)
	case <-ctx.Done():
		return fmt.Errorf("push to session %q: %w", connectionId, ctx.Err())
	}
}

// Shutdown stops all live clients.
func (g *Gateway) Shutdown() {
	g.clientsLock.Lock()
	defer g.clientsLock.Unlock()

	for _, client := range g.clients {
		client.stopClient()
	}
}

func (g *Gateway) addClient(c *Client) {
	g.clientsLock.Lock()
	defer g.clientsLock.Unlock()
	g.clients[c.connectionId] = c
}

func (g *Gateway) removeClient(c *Client) {
	g.clientsLock.Lock()
	defer g.clientsLock.Unlock()
	delete(g.clients, c.connectionId)
}
