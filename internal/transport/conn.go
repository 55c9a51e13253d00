package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/nfrund/relay/internal/graph"
	"github.com/nfrund/relay/internal/relay"
)

// operation is one running subscribe/start request of a connection.
type operation struct {
	cancel  context.CancelFunc
	stopped bool
}

// conn is a single websocket client. It owns one relay.Session; every
// subscription started on the connection is released when the read loop ends.
type conn struct {
	ws      *websocket.Conn
	exec    Executor
	cfg     Config
	dialect dialect
	session *relay.Session
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	send   chan []byte

	mu     sync.Mutex
	inited bool
	acked  bool
	ops    map[string]*operation
}

func newConn(parent context.Context, ws *websocket.Conn, exec Executor, cfg Config, logger *slog.Logger) *conn {
	session := relay.NewSession()
	ctx, cancel := context.WithCancel(parent)
	d := dialectFor(ws.Subprotocol())

	return &conn{
		ws:      ws,
		exec:    exec,
		cfg:     cfg,
		dialect: d,
		session: session,
		logger:  logger.With("session_id", session.ID(), "subprotocol", d.name),
		ctx:     ctx,
		cancel:  cancel,
		send:    make(chan []byte, cfg.SendBuffer),
		ops:     make(map[string]*operation),
	}
}

// serve runs the connection until the client leaves or the transport fails.
func (c *conn) serve() {
	c.logger.Info("WebSocket client connected")

	go c.writePump()
	go c.awaitInit()

	c.readPump()
}

// readPump reads frames until the connection ends, then tears the session down.
func (c *conn) readPump() {
	defer func() {
		released := c.session.Subscriptions()
		c.session.Close()
		c.cancel()
		c.ws.Close(websocket.StatusNormalClosure, "")
		c.logger.Info("WebSocket client disconnected", "released_subscriptions", released)
	}()

	for {
		_, data, err := c.ws.Read(c.ctx)
		if err != nil {
			if isNormalClose(err) {
				c.logger.Debug("WebSocket closed", "status", websocket.CloseStatus(err))
			} else if !errors.Is(err, io.EOF) {
				c.logger.Warn("WebSocket read error", "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Type == "" {
			c.closeWith(StatusBadRequest, "Invalid message received")
			return
		}
		if !c.handle(frame) {
			return
		}
	}
}

// handle processes one client frame. It returns false once the connection
// has been closed.
func (c *conn) handle(frame Frame) bool {
	switch frame.Type {
	case typeConnectionInit:
		return c.handleInit()

	case c.dialect.start:
		return c.handleStart(frame)

	case c.dialect.stop:
		c.stopOperation(frame.ID)
		return true

	case typePing:
		if c.dialect.legacy() {
			break
		}
		c.enqueue(Frame{Type: typePong, Payload: frame.Payload})
		return true

	case typePong:
		if c.dialect.legacy() {
			break
		}
		return true

	case typeConnectionTerminate:
		if !c.dialect.legacy() {
			break
		}
		c.closeWith(websocket.StatusNormalClosure, "")
		return false
	}

	c.closeWith(StatusBadRequest, "Unknown message type: "+frame.Type)
	return false
}

func (c *conn) handleInit() bool {
	c.mu.Lock()
	if c.inited {
		c.mu.Unlock()
		c.closeWith(StatusTooManyInitialise, "Too many initialisation requests")
		return false
	}
	c.inited = true
	c.acked = true
	c.mu.Unlock()

	c.enqueue(Frame{Type: typeConnectionAck})
	if c.dialect.keepAlive != "" {
		c.enqueue(Frame{Type: c.dialect.keepAlive})
	}
	return true
}

func (c *conn) handleStart(frame Frame) bool {
	if frame.ID == "" {
		c.closeWith(StatusBadRequest, "Operation id required")
		return false
	}

	var req graph.Request
	if err := json.Unmarshal(frame.Payload, &req); err != nil {
		c.closeWith(StatusBadRequest, "Invalid subscribe payload")
		return false
	}

	c.mu.Lock()
	if !c.acked {
		c.mu.Unlock()
		c.closeWith(StatusUnauthorized, "Unauthorized")
		return false
	}
	if _, exists := c.ops[frame.ID]; exists {
		c.mu.Unlock()
		c.closeWith(StatusSubscriberExists, "Subscriber for "+frame.ID+" already exists")
		return false
	}
	opCtx, cancel := context.WithCancel(relay.WithSession(c.ctx, c.session, frame.ID))
	op := &operation{cancel: cancel}
	c.ops[frame.ID] = op
	c.mu.Unlock()

	go c.run(opCtx, frame.ID, op, req)
	return true
}

// run executes one operation and forwards its results until it ends.
func (c *conn) run(ctx context.Context, id string, op *operation, req graph.Request) {
	defer c.finish(id, op)

	results, err := c.exec.Execute(ctx, req)
	if err != nil {
		c.logger.Debug("Operation rejected", "operation_id", id, "error", err)
		c.sendErrors(id, []ErrorPayload{{Message: err.Error()}})
		c.markStopped(op)
		return
	}

	for resp := range results {
		if len(resp.Errors) > 0 && isNullData(resp.Data) && !c.dialect.legacy() {
			errs := make([]ErrorPayload, len(resp.Errors))
			for i, e := range resp.Errors {
				errs[i] = ErrorPayload{Message: e.Message}
			}
			c.sendErrors(id, errs)
			c.markStopped(op)
			op.cancel()
			for range results {
			}
			return
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			c.logger.Error("Failed to encode result", "operation_id", id, "error", err)
			continue
		}
		if !c.enqueue(Frame{ID: id, Type: c.dialect.result, Payload: payload}) {
			op.cancel()
			for range results {
			}
			return
		}
	}
}

// finish releases the operation and tells the client it is complete. A
// graphql-transport-ws client that completed the operation itself gets no
// echo.
func (c *conn) finish(id string, op *operation) {
	op.cancel()
	c.session.Stop(id)

	c.mu.Lock()
	if c.ops[id] == op {
		delete(c.ops, id)
	}
	stopped := op.stopped
	c.mu.Unlock()

	if stopped && !c.dialect.legacy() {
		return
	}
	c.enqueue(Frame{ID: id, Type: typeComplete})
}

// stopOperation handles a client complete/stop. The subscription is released
// before the frame after it is read.
func (c *conn) stopOperation(id string) {
	c.mu.Lock()
	op, ok := c.ops[id]
	if ok {
		op.stopped = true
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	c.session.Stop(id)
	op.cancel()
}

func (c *conn) markStopped(op *operation) {
	c.mu.Lock()
	op.stopped = true
	c.mu.Unlock()
}

func (c *conn) sendErrors(id string, errs []ErrorPayload) {
	c.enqueue(Frame{ID: id, Type: typeError, Payload: c.dialect.errorPayload(errs)})
}

// enqueue hands a frame to the write pump. It returns false once the
// connection is shutting down.
func (c *conn) enqueue(f Frame) bool {
	data, err := encodeFrame(f)
	if err != nil {
		c.logger.Error("Failed to encode frame", "type", f.Type, "error", err)
		return false
	}

	select {
	case c.send <- data:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// awaitInit closes connections that never send connection_init.
func (c *conn) awaitInit() {
	timer := time.NewTimer(c.cfg.InitTimeout)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-c.ctx.Done():
		return
	}

	c.mu.Lock()
	inited := c.inited
	c.mu.Unlock()
	if !inited {
		c.closeWith(StatusInitTimeout, "Connection initialisation timeout")
	}
}

// writePump writes queued frames and keepalives to the connection.
func (c *conn) writePump() {
	var tick <-chan time.Time
	if c.cfg.KeepAlive > 0 {
		ticker := time.NewTicker(c.cfg.KeepAlive)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case data := <-c.send:
			if err := c.write(data); err != nil {
				c.logger.Warn("WebSocket write error", "error", err)
				c.cancel()
				return
			}

		case <-tick:
			if err := c.keepAlive(); err != nil {
				c.logger.Warn("WebSocket keepalive failed", "error", err)
				c.cancel()
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *conn) write(data []byte) error {
	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.WriteWait)
	defer cancel()
	return c.ws.Write(ctx, websocket.MessageText, data)
}

func (c *conn) keepAlive() error {
	if c.dialect.keepAlive != "" {
		c.mu.Lock()
		acked := c.acked
		c.mu.Unlock()
		if !acked {
			return nil
		}
		data, err := encodeFrame(Frame{Type: c.dialect.keepAlive})
		if err != nil {
			return err
		}
		return c.write(data)
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.WriteWait)
	defer cancel()
	return c.ws.Ping(ctx)
}

// closeWith ends the connection with a protocol close code.
func (c *conn) closeWith(code websocket.StatusCode, reason string) {
	c.logger.Info("Closing WebSocket", "code", int(code), "reason", reason)
	c.ws.Close(code, reason)
	c.cancel()
}

func isNullData(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}
