package repository

import "github.com/google/uuid"

// Notifier доставляет события пользователю в реальном времени. Ошибки доставки не влияют на операцию.
type Notifier interface {
	Notify(userID uuid.UUID, event string, payload any)
}

const (
	EventGigStatusChanged      = "gig.status_changed"
	EventBidPlaced             = "bid.placed"
	EventBidStatusChanged      = "bid.status_changed"
	EventGigReverseAssigned    = "gig.reverse_assigned"
	EventPayoutTransferCreated = "payout.transfer_created"
)
