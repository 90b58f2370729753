package gqltransport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mrhoseah/gqlrt/internal/gqlexec"
	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

// SSEHandler serves a subscription over Server-Sent Events: a single
// POST body carries the GraphQL request, the response stays open and
// streams one `next` event per published value (§4.6 "SSE").
type SSEHandler struct {
	Engine        *gqlexec.Engine
	Subscriptions map[string]gqlschema.SubscriptionFieldReg
	KeepAlive     time.Duration
	Logger        *zap.Logger
}

func (h *SSEHandler) keepAlive() time.Duration {
	if h.KeepAlive <= 0 {
		return 15 * time.Second
	}
	return h.KeepAlive
}

func (h *SSEHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload SubscribePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	req := gqlexec.Request{Query: payload.Query, OperationName: payload.OperationName, Variables: payload.Variables}

	stream, err := h.Engine.ExecuteSubscription(ctx, h.Subscriptions, req)
	if err != nil {
		h.writeEvent(w, "error", map[string]string{"message": err.Error()})
		flusher.Flush()
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// client disconnected; the subscription's own context
			// cancellation (derived from ctx upstream) tears down the
			// stream, so nothing further to do here (§4.6 "whichever
			// completes first wins and both are torn down").
			return
		case result, ok := <-stream:
			if !ok {
				h.writeEvent(w, "complete", nil)
				flusher.Flush()
				return
			}
			if len(result.Errors) > 0 {
				h.writeEvent(w, "error", result.Errors)
			} else {
				h.writeEvent(w, "next", result)
			}
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) writeEvent(w http.ResponseWriter, event string, payload any) {
	if payload == nil {
		fmt.Fprintf(w, "event: %s\n\n", event)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger().Error("gqltransport: marshaling SSE payload", zap.Error(err))
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
