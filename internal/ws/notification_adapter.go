package ws

import (
	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/sirupsen/logrus"
)

var _ repository.Notifier = (*HubNotifier)(nil)

// HubNotifier адаптирует Hub к порту Notifier use case'ов.
// Ошибки доставки только логируются: уведомление не влияет на исход операции.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier создаёт новый адаптер.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// Notify реализует repository.Notifier.
func (n *HubNotifier) Notify(userID uuid.UUID, event string, payload any) {
	if err := n.hub.BroadcastToUser(userID, event, payload); err != nil {
		logger.WithFields(logrus.Fields{
			"user_id": userID,
			"event":   event,
		}).WithError(err).Warn("ws: уведомление не доставлено")
	}
}
