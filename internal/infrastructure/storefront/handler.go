package storefront

import (
	"context"
	"encoding/json"
	"fmt"

	"kardex/internal/infrastructure/storage/postgres"
	"kardex/pkg/logger"
)

// OutboxHandler routes outbox messages to the storefront client.
type OutboxHandler struct {
	client Client
}

// Compile-time check against the relay contract.
var _ postgres.OutboxHandler = (*OutboxHandler)(nil)

// NewOutboxHandler creates an outbox handler.
func NewOutboxHandler(client Client) *OutboxHandler {
	return &OutboxHandler{client: client}
}

// Handle implements postgres.OutboxHandler.
func (h *OutboxHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	if msg.EventType != postgres.EventStorefrontSync {
		// Unknown events are acknowledged, not retried forever.
		logger.Warn(ctx, "skipping unknown outbox event", "event_type", msg.EventType, "message_id", msg.ID)
		return nil
	}

	var payload postgres.SyncPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("decode sync payload: %w", err)
	}

	return h.client.SyncDocument(ctx, payload.DocumentID, payload.DocumentNumber)
}
