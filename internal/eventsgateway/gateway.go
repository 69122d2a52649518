// Package eventsgateway fans the in-process event bus out to WebSocket
// clients over HTTP, so an external dashboard can watch a turn's events
// live instead of polling the persistence port.
//
// Grounded on pkg/events/manager.go's ConnectionManager: connections are
// tracked in a map under a mutex, broadcast snapshots the connection set
// before sending so a slow write never blocks registration, and each
// connection's send loop owns its own goroutine. Adapted from Postgres
// LISTEN/NOTIFY channel subscriptions down to a single events.Bus
// subscription per connection, since there is one in-process bus here
// rather than a fan-out keyed by database channel name.
package eventsgateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agentcore/orchestrator/internal/events"
)

// defaultWriteTimeout bounds a single WebSocket send so one stalled client
// never stalls the goroutine driving it past this window.
const defaultWriteTimeout = 5 * time.Second

// Gateway serves a WebSocket endpoint that streams every event published
// on a Bus, optionally filtered to one session.
type Gateway struct {
	bus          *events.Bus
	writeTimeout time.Duration

	mu          sync.RWMutex
	connections map[string]*connection
}

type connection struct {
	id        string
	conn      *websocket.Conn
	sessionID string
	cancel    context.CancelFunc
}

// New builds a Gateway over bus. writeTimeout <= 0 uses defaultWriteTimeout.
func New(bus *events.Bus, writeTimeout time.Duration) *Gateway {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &Gateway{bus: bus, writeTimeout: writeTimeout, connections: make(map[string]*connection)}
}

// RegisterRoutes mounts the gateway's WebSocket endpoint on r at
// "/events/stream". A "session_id" query parameter restricts delivery to
// events carrying that session id; omitted, every event is delivered.
func (g *Gateway) RegisterRoutes(r gin.IRouter) {
	r.GET("/events/stream", g.handleStream)
}

// ActiveConnections returns the number of live WebSocket connections.
func (g *Gateway) ActiveConnections() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}

func (g *Gateway) handleStream(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("eventsgateway: accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	cn := &connection{id: uuid.NewString(), conn: conn, sessionID: c.Query("session_id"), cancel: cancel}
	g.register(cn)
	defer g.unregister(cn)

	sub := g.bus.Subscribe()
	defer sub.Close()

	// The client sends nothing but close/ping frames; a dedicated read
	// loop is still needed to observe those and cancel ctx promptly.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if cn.sessionID != "" && sessionIDOf(ev) != cn.sessionID {
				continue
			}
			if err := g.send(ctx, conn, ev); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (g *Gateway) send(ctx context.Context, conn *websocket.Conn, ev events.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("eventsgateway: marshal event", "event_type", ev.Type, "error", err)
		return nil
	}
	writeCtx, cancel := context.WithTimeout(ctx, g.writeTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

func (g *Gateway) register(cn *connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connections[cn.id] = cn
}

func (g *Gateway) unregister(cn *connection) {
	g.mu.Lock()
	delete(g.connections, cn.id)
	g.mu.Unlock()
	cn.cancel()
	_ = cn.conn.Close(websocket.StatusNormalClosure, "")
}

// sessionIDOf extracts the session id common to every payload struct via a
// type switch, since Event.Payload is typed any.
func sessionIDOf(ev events.Event) string {
	switch p := ev.Payload.(type) {
	case events.PhaseChangedPayload:
		return p.SessionID
	case events.TriageCompletedPayload:
		return p.SessionID
	case events.PlanPayload:
		return p.SessionID
	case events.StepProposedPayload:
		return p.SessionID
	case events.StepApprovedPayload:
		return p.SessionID
	case events.StepStartedPayload:
		return p.SessionID
	case events.StepCompletedPayload:
		return p.SessionID
	case events.ReflectionCompletedPayload:
		return p.SessionID
	case events.NeedsHumanInputPayload:
		return p.SessionID
	case events.CompletedPayload:
		return p.SessionID
	case events.ToolExecutionStartedPayload:
		return p.SessionID
	case events.ToolExecutionCompletedPayload:
		return p.SessionID
	default:
		return ""
	}
}

// NewServer wraps a Gateway in a minimal gin.Engine for standalone use
// (cmd/agentcore does this when --listen is set).
func NewServer(gw *Gateway) *http.Server {
	r := gin.New()
	r.Use(gin.Recovery())
	gw.RegisterRoutes(r)
	return &http.Server{Handler: r}
}
