// internal/api/handler/stream.go
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"betslip-wallet/internal/domain"
	"betslip-wallet/internal/events"
)

const streamKeepAlive = 25 * time.Second

// StreamHandler relays the caller's ledger events as server-sent events.
type StreamHandler struct {
	responder
	accounts   AccountResolver
	subscriber events.Subscriber // nil when no realtime feed is configured

	done      chan struct{}
	closeOnce sync.Once
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(accounts AccountResolver, subscriber events.Subscriber, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		responder:  newResponder(logger),
		accounts:   accounts,
		subscriber: subscriber,
		done:       make(chan struct{}),
	}
}

// Close ends every open stream. http.Server.Shutdown does not cancel request
// contexts, so the server calls this from RegisterOnShutdown.
func (h *StreamHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Stream sends the current balance, then every committed change until the client leaves.
// GET /api/account/stream
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.subscriber == nil {
		h.respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Realtime feed is not configured"})
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "Streaming unsupported"})
		return
	}

	account, err := callerAccount(r, h.accounts)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	ctx := r.Context()
	feed, err := h.subscriber.Subscribe(ctx, account.ID)
	if err != nil {
		h.logger.Error("failed to subscribe to account feed", zap.Int64("account_id", account.ID), zap.Error(err))
		h.respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Realtime feed unavailable"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snapshot := domain.NewLedgerEvent(domain.EventSnapshot, account)
	if err := writeEvent(w, snapshot); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, ok := <-feed:
			if !ok {
				return
			}
			if err := writeEvent(w, event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event domain.LedgerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
	return err
}
