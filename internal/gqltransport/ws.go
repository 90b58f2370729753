// Package gqltransport implements the two subscription transports
// described in spec.md §4.6: a graphql-transport-ws state machine over
// an abstract Socket, and an SSE handler. Both sit above
// internal/gqlexec and below the HTTP framework binding.
package gqltransport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrhoseah/gqlrt/internal/gqlexec"
	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

// Connection runs one graphql-transport-ws session: INIT, await
// ConnectionInit, CONNECTING, ack, READY; from READY it opens and
// tears down per-operation fibers keyed by client-chosen id (§4.6).
type Connection struct {
	socket      Socket
	engine      *gqlexec.Engine
	subs        map[string]gqlschema.SubscriptionFieldReg
	initTimeout time.Duration
	logger      *zap.Logger

	mu  sync.Mutex
	ops map[string]context.CancelFunc
}

// NewConnection wires a Socket to an Engine and its subscription
// registrations. initTimeout defaults to 15s per spec.md §4.6 if zero.
func NewConnection(socket Socket, engine *gqlexec.Engine, subs map[string]gqlschema.SubscriptionFieldReg, initTimeout time.Duration, logger *zap.Logger) *Connection {
	if initTimeout <= 0 {
		initTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connection{
		socket:      socket,
		engine:      engine,
		subs:        subs,
		initTimeout: initTimeout,
		logger:      logger,
		ops:         map[string]context.CancelFunc{},
	}
}

// Serve blocks until the connection closes: by ConnectionInit timeout,
// protocol violation, client Complete of all ops plus a network close,
// or ctx cancellation. It never returns an error for a graceful close.
func (c *Connection) Serve(ctx context.Context) error {
	defer c.cancelAll()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.awaitInit(ctx); err != nil {
		return err
	}

	ack, _ := encode("", ConnectionAck, nil)
	if err := c.socket.SendText(ack); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.socket.Closed():
			return nil
		case raw, ok := <-c.socket.Incoming():
			if !ok {
				return nil
			}
			if err := c.handleReady(ctx, raw); err != nil {
				return err
			}
		}
	}
}

func (c *Connection) awaitInit(ctx context.Context) error {
	timer := time.NewTimer(c.initTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		c.socket.Close(CloseInitTimeout, "connection initialisation timeout")
		return fmt.Errorf("gqltransport: connection initialisation timeout")
	case <-c.socket.Closed():
		return fmt.Errorf("gqltransport: socket closed before init")
	case raw, ok := <-c.socket.Incoming():
		if !ok {
			return fmt.Errorf("gqltransport: socket closed before init")
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != ConnectionInit {
			c.socket.Close(CloseBadRequest, "expected connection_init")
			return fmt.Errorf("gqltransport: expected connection_init, got malformed or wrong-type message")
		}
		return nil
	}
}

func (c *Connection) handleReady(ctx context.Context, raw []byte) error {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.socket.Close(CloseBadRequest, "invalid message")
		return fmt.Errorf("gqltransport: invalid message: %w", err)
	}

	switch msg.Type {
	case ConnectionInit:
		c.socket.Close(CloseTooManyInitRequests, "too many initialisation requests")
		return fmt.Errorf("gqltransport: duplicate connection_init")
	case Ping:
		pong, _ := encode("", Pong, nil)
		return c.socket.SendText(pong)
	case Pong:
		return nil
	case Subscribe:
		return c.handleSubscribe(ctx, msg)
	case Complete:
		c.cancelOp(msg.ID)
		return nil
	default:
		c.logger.Warn("gqltransport: unknown message type", zap.String("type", string(msg.Type)))
		return nil
	}
}

func (c *Connection) handleSubscribe(ctx context.Context, msg Message) error {
	c.mu.Lock()
	if _, exists := c.ops[msg.ID]; exists {
		c.mu.Unlock()
		c.socket.Close(CloseSubscriberAlreadyExists, fmt.Sprintf("subscriber already exists: %s", msg.ID))
		return fmt.Errorf("gqltransport: duplicate subscribe id %q", msg.ID)
	}
	opCtx, cancel := context.WithCancel(ctx)
	c.ops[msg.ID] = cancel
	c.mu.Unlock()

	var payload SubscribePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.cancelOp(msg.ID)
		return c.sendError(msg.ID, fmt.Errorf("gqltransport: invalid subscribe payload: %w", err))
	}

	go c.runOperation(opCtx, msg.ID, payload)
	return nil
}

func (c *Connection) runOperation(ctx context.Context, id string, payload SubscribePayload) {
	defer c.cancelOp(id)

	req := gqlexec.Request{
		Query:         payload.Query,
		OperationName: payload.OperationName,
		Variables:     payload.Variables,
	}

	opType, err := gqlexec.OperationType(payload.Query, payload.OperationName)
	if err != nil {
		c.sendError(id, err)
		return
	}

	if opType != "subscription" {
		result := c.engine.Execute(ctx, req)
		c.sendNext(id, result)
		c.sendComplete(id)
		return
	}

	stream, err := c.engine.ExecuteSubscription(ctx, c.subs, req)
	if err != nil {
		c.sendError(id, err)
		return
	}
	for result := range stream {
		if !c.sendNext(id, result) {
			return
		}
	}
	c.sendComplete(id)
}

func (c *Connection) sendNext(id string, result any) bool {
	data, err := encode(id, Next, result)
	if err != nil {
		c.logger.Error("gqltransport: encoding next payload", zap.Error(err))
		return false
	}
	if err := c.socket.SendText(data); err != nil {
		return false
	}
	return true
}

func (c *Connection) sendComplete(id string) {
	data, _ := encode(id, Complete, nil)
	c.socket.SendText(data)
}

func (c *Connection) sendError(id string, err error) error {
	data, _ := encode(id, Error, []map[string]string{{"message": err.Error()}})
	return c.socket.SendText(data)
}

func (c *Connection) cancelOp(id string) {
	c.mu.Lock()
	cancel, ok := c.ops[id]
	delete(c.ops, id)
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

func (c *Connection) cancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, cancel := range c.ops {
		cancel()
		delete(c.ops, id)
	}
}
