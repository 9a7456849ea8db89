// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs broadcast to connected clients.
package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jaektomo/SweepstakeManager/internal/domain"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypePoolUpdate MsgType = "pool_update"
)

// ──────────────────────────────────────────────────────────────────────────────
// PoolUpdateMessage — broadcast after every successful pool write.
// ──────────────────────────────────────────────────────────────────────────────

// PoolUpdateMessage tells clients which pool changed and carries its new state
// so dashboards can redraw without a follow-up GET.
type PoolUpdateMessage struct {
	Type      MsgType           `json:"type"`
	Event     domain.PoolEvent  `json:"event"`
	PoolID    uuid.UUID         `json:"pool_id"`
	Status    domain.PoolStatus `json:"status"`
	TotalPool decimal.Decimal   `json:"total_pool"`
	Pool      *domain.Pool      `json:"pool,omitempty"` // nil for deletions
	Timestamp time.Time         `json:"timestamp"`
}

// NewPoolUpdateMessage builds the message for event on p.
func NewPoolUpdateMessage(event domain.PoolEvent, p *domain.Pool) PoolUpdateMessage {
	msg := PoolUpdateMessage{
		Type:      MsgTypePoolUpdate,
		Event:     event,
		PoolID:    p.ID,
		Status:    p.Status,
		TotalPool: p.TotalPool(),
		Timestamp: time.Now().UTC(),
	}
	if event != domain.EventPoolDeleted {
		msg.Pool = p
	}
	return msg
}
