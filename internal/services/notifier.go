package services

import (
	"context"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quantumgenie/ElearningApplication/internal/logging"
	"github.com/quantumgenie/ElearningApplication/internal/models"
	"github.com/quantumgenie/ElearningApplication/internal/realtime"
)

// UnreadCounter отдает актуальное число непрочитанных уведомлений
type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// Broadcaster рассылает сообщение группе сессий, не дожидаясь доставки
type Broadcaster interface {
	Broadcast(groupKey string, payload []byte)
}

// NotificationPayload — формат исходящего push-сообщения
type NotificationPayload struct {
	Message     string `json:"message"`
	UnreadCount int64  `json:"unread_count"`
}

// Notifier — мост между записью уведомления и realtime-доставкой.
// Уведомление к этому моменту уже сохранено; push — вспомогательный
// сигнал, его потеря допустима. Любая ошибка здесь логируется и
// глотается, вызывающий код о ней не узнает.
type Notifier struct {
	store UnreadCounter
	hub   Broadcaster
}

func NewNotifier(store UnreadCounter, hub Broadcaster) *Notifier {
	return &Notifier{
		store: store,
		hub:   hub,
	}
}

func (n *Notifier) Notify(ctx context.Context, notification *models.Notification) {
	// Счетчик пересчитывается из базы: локальный инкремент разошелся бы
	// с истиной при параллельном создании и пометке прочитанного
	unreadCount, err := n.store.UnreadCount(ctx, notification.UserID)
	if err != nil {
		logging.Logger.Errorf("Failed to compute unread count for user %s: %v", notification.UserID.Hex(), err)
		return
	}

	payload, err := json.Marshal(NotificationPayload{
		Message:     notification.Message,
		UnreadCount: unreadCount,
	})
	if err != nil {
		logging.Logger.Errorf("Failed to marshal notification payload: %v", err)
		return
	}

	n.hub.Broadcast(realtime.NotificationGroup(notification.UserID.Hex()), payload)
}
