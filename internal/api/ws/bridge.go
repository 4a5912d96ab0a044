package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/browser"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/guard"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/id"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

const (
	writeWait             = 5 * time.Second
	maxFrameSize          = 1 << 20
	defaultCommandTimeout = 5 * time.Second
)

// Handler serves frames coming from the extension.
type Handler interface {
	HandleMessage(ctx context.Context, data []byte) guard.Response
	HandleNavigation(ctx context.Context, ev types.NavigationEvent) (types.Decision, error)
}

type connection struct {
	id      id.ConnectionID
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (c *connection) send(f outFrame) error {
	data, err := sonic.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", f.Type, err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

type pendingCommand struct {
	conn id.ConnectionID
	ch   chan Ack
}

// Bridge is the browser.Host backed by the extension's WebSocket. The
// most recently attached connection receives commands.
type Bridge struct {
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	ids      *id.Generator
	timeout  time.Duration
	upgrader websocket.Upgrader

	mu      sync.Mutex
	handler Handler
	conn    *connection
	pending map[string]pendingCommand
}

var _ browser.Host = (*Bridge)(nil)

// NewBridge creates a bridge whose commands time out after timeout.
func NewBridge(timeout time.Duration, logger *logging.Logger) *Bridge {
	if logger == nil {
		logger = logging.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return &Bridge{
		logger:  logger.Named("bridge"),
		ids:     id.Default(),
		timeout: timeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: allowExtensionOrigin,
		},
		pending: make(map[string]pendingCommand),
	}
}

// WithMetrics adds metrics collection.
func (b *Bridge) WithMetrics(m *monitoring.Metrics) *Bridge {
	b.metrics = m
	return b
}

// WithTracer starts a span for every message and navigation frame.
func (b *Bridge) WithTracer(t *tracing.Tracer) *Bridge {
	b.tracer = t
	return b
}

// SetHandler installs the frame handler. It must be set before the first
// connection is accepted.
func (b *Bridge) SetHandler(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = h
}

// Connected reports whether an extension is attached.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// Only the extension (or a non-browser client) may attach.
func allowExtensionOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" ||
		strings.HasPrefix(origin, "chrome-extension://") ||
		strings.HasPrefix(origin, "moz-extension://")
}

// Handle upgrades the request and serves the connection until it closes.
func (b *Bridge) Handle(c *gin.Context) {
	wsConn, err := b.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		b.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	wsConn.SetReadLimit(maxFrameSize)

	conn := &connection{id: id.NewConnectionID(), ws: wsConn}
	b.attach(conn)
	defer b.detach(conn)

	ctx := c.Request.Context()
	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.logger.Warn("Bridge read failed", zap.String("conn_id", conn.id.String()), zap.Error(err))
			}
			return
		}
		b.dispatch(ctx, conn, data)
	}
}

func (b *Bridge) attach(conn *connection) {
	b.mu.Lock()
	prev := b.conn
	b.conn = conn
	b.mu.Unlock()

	if prev != nil {
		b.logger.Info("Replacing bridge connection", zap.String("old", prev.id.String()))
		_ = prev.ws.Close()
	}
	if b.metrics != nil {
		b.metrics.IncBridgeConnections()
	}
	b.logger.Info("Extension connected", zap.String("conn_id", conn.id.String()))
}

// detach drops conn and fails the commands still waiting on it.
func (b *Bridge) detach(conn *connection) {
	b.mu.Lock()
	if b.conn == conn {
		b.conn = nil
	}
	for cmdID, p := range b.pending {
		if p.conn == conn.id {
			p.ch <- Ack{Error: browser.ErrNotConnected.Error(), Code: "disconnected"}
			delete(b.pending, cmdID)
		}
	}
	b.mu.Unlock()

	_ = conn.ws.Close()
	if b.metrics != nil {
		b.metrics.DecBridgeConnections()
	}
	b.logger.Info("Extension disconnected", zap.String("conn_id", conn.id.String()))
}

func (b *Bridge) dispatch(ctx context.Context, conn *connection, data []byte) {
	frame, ok := parseFrame(data)
	if !ok {
		b.logger.Warn("Malformed bridge frame", zap.Int("bytes", len(data)))
		_ = conn.send(outFrame{Type: FrameError, Payload: map[string]string{"error": "malformed frame"}})
		return
	}
	b.recordFrame("in", frame.Type)

	switch frame.Type {
	case FrameAck:
		b.resolve(frame)
	case FramePing:
		b.reply(conn, outFrame{Type: FramePong, ID: frame.ID})
	case FrameMessage, FrameNavigation:
		// Handlers may issue commands whose acks arrive on this same
		// read loop, so they must not block it.
		go b.serve(ctx, conn, frame)
	default:
		b.logger.Warn("Unknown bridge frame", zap.String("type", string(frame.Type)))
		b.reply(conn, outFrame{Type: FrameError, ID: frame.ID,
			Payload: map[string]string{"error": "unknown frame type " + string(frame.Type)}})
	}
}

func (b *Bridge) serve(ctx context.Context, conn *connection, frame inFrame) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Bridge handler panicked",
				zap.String("type", string(frame.Type)),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()

	b.mu.Lock()
	h := b.handler
	b.mu.Unlock()
	if h == nil {
		b.reply(conn, outFrame{Type: FrameError, ID: frame.ID, Payload: map[string]string{"error": "not ready"}})
		return
	}

	if b.tracer != nil {
		var span *tracing.Span
		span, ctx = b.tracer.StartSpan(ctx, "bridge "+string(frame.Type))
		defer func() {
			span.Finish()
			b.tracer.Submit(span)
		}()
	}

	switch frame.Type {
	case FrameMessage:
		resp := h.HandleMessage(ctx, frame.Payload)
		b.reply(conn, outFrame{Type: FrameReply, ID: frame.ID, Payload: resp})
	case FrameNavigation:
		var ev types.NavigationEvent
		if err := sonic.Unmarshal(frame.Payload, &ev); err != nil {
			b.reply(conn, outFrame{Type: FrameReply, ID: frame.ID,
				Payload: NavigationReply{Decision: types.DecisionAllow, Error: err.Error()}})
			return
		}
		decision, err := h.HandleNavigation(ctx, ev)
		out := NavigationReply{Decision: decision}
		if err != nil {
			out.Error = err.Error()
		}
		b.reply(conn, outFrame{Type: FrameReply, ID: frame.ID, Payload: out})
	}
}

func (b *Bridge) reply(conn *connection, f outFrame) {
	if err := conn.send(f); err != nil {
		b.logger.Warn("Bridge write failed", zap.String("type", string(f.Type)), zap.Error(err))
		return
	}
	b.recordFrame("out", f.Type)
}

func (b *Bridge) resolve(frame inFrame) {
	var ack Ack
	if err := sonic.Unmarshal(frame.Payload, &ack); err != nil {
		b.logger.Warn("Malformed ack", zap.String("id", frame.ID), zap.Error(err))
		return
	}

	b.mu.Lock()
	p, ok := b.pending[frame.ID]
	delete(b.pending, frame.ID)
	b.mu.Unlock()

	if !ok {
		b.logger.Debug("Ack for unknown command", zap.String("id", frame.ID))
		return
	}
	p.ch <- ack
}

func (b *Bridge) recordFrame(direction string, t FrameType) {
	if b.metrics != nil {
		b.metrics.RecordBridgeFrame(direction, string(t))
	}
}

// command sends cmd to the extension and waits for its ack.
func (b *Bridge) command(ctx context.Context, cmd Command) (Ack, error) {
	cmdID := b.ids.NewCommandID().String()
	ch := make(chan Ack, 1)

	b.mu.Lock()
	conn := b.conn
	if conn == nil {
		b.mu.Unlock()
		return Ack{}, browser.ErrNotConnected
	}
	b.pending[cmdID] = pendingCommand{conn: conn.id, ch: ch}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, cmdID)
		b.mu.Unlock()
	}()

	if err := conn.send(outFrame{Type: FrameCommand, ID: cmdID, Payload: cmd}); err != nil {
		return Ack{}, fmt.Errorf("%s: %w", cmd.Command, err)
	}
	b.recordFrame("out", FrameCommand)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	select {
	case ack := <-ch:
		switch {
		case ack.OK:
			return ack, nil
		case ack.Code == AckCodeTabGone:
			return ack, fmt.Errorf("%s tab %d: %w", cmd.Command, cmd.TabID, browser.ErrTabGone)
		case ack.Code == "disconnected":
			return ack, fmt.Errorf("%s: %w", cmd.Command, browser.ErrNotConnected)
		default:
			return ack, fmt.Errorf("%s: %s", cmd.Command, ack.Error)
		}
	case <-ctx.Done():
		return Ack{}, fmt.Errorf("%s: no ack: %w", cmd.Command, ctx.Err())
	}
}

// UpdateTab implements browser.Host.
func (b *Bridge) UpdateTab(ctx context.Context, tabID int, url string) error {
	_, err := b.command(ctx, Command{Command: CommandUpdateTab, TabID: tabID, URL: url})
	return err
}

// CreateTab implements browser.Host.
func (b *Bridge) CreateTab(ctx context.Context, url string) (int, error) {
	ack, err := b.command(ctx, Command{Command: CommandCreateTab, URL: url})
	if err != nil {
		return 0, err
	}
	if ack.TabID == 0 {
		return 0, errors.New("createTab: ack without tab id")
	}
	return ack.TabID, nil
}

// ShowInterstitial implements browser.Host.
func (b *Bridge) ShowInterstitial(ctx context.Context, tabID int, popup browser.Popup) error {
	_, err := b.command(ctx, Command{Command: CommandShowInterstitial, TabID: tabID, Popup: &popup})
	return err
}

// ShowConfirm implements browser.Host.
func (b *Bridge) ShowConfirm(ctx context.Context, tabID int, popup browser.Popup) error {
	_, err := b.command(ctx, Command{Command: CommandShowConfirm, TabID: tabID, Popup: &popup})
	return err
}
