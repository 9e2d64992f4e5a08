// internal/handlers/websocket.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/quantumgenie/ElearningApplication/internal/logging"
	"github.com/quantumgenie/ElearningApplication/internal/models"
	"github.com/quantumgenie/ElearningApplication/internal/realtime"
	"github.com/quantumgenie/ElearningApplication/internal/storage"
	"github.com/quantumgenie/ElearningApplication/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка origin
		return true
	},
}

// WireMessage — формат сообщения обоих каналов: {"message": "..."}
type WireMessage struct {
	Message string `json:"message"`
}

type WebSocketHandler struct {
	hub        *realtime.Hub
	jwtManager *auth.JWTManager
	chats      *storage.ChatStore
}

func NewWebSocketHandler(hub *realtime.Hub, jwtManager *auth.JWTManager, chats *storage.ChatStore) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        hub,
		jwtManager: jwtManager,
		chats:      chats,
	}
}

// authenticate достает JWT из query-параметра (браузерный WebSocket
// не умеет ставить заголовки) и проверяет его
func (h *WebSocketHandler) authenticate(c *gin.Context) (*auth.Claims, bool) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Token is required",
		})
		return nil, false
	}

	claims, err := h.jwtManager.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return nil, false
	}

	return claims, true
}

// HandleNotifications обслуживает персональный канал уведомлений.
// Исходящие push-сообщения приходят от моста доставки через hub,
// входящие только эхо-подтверждаются и на хранилище не влияют.
func (h *WebSocketHandler) HandleNotifications(c *gin.Context) {
	claims, ok := h.authenticate(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	groupKey := realtime.NotificationGroup(claims.UserID.Hex())
	client := realtime.NewClient(h.hub, conn, groupKey, claims.UserID)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleNotificationMessage)
}

func (h *WebSocketHandler) handleNotificationMessage(client *realtime.Client, data []byte) {
	var msg WireMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Message == "" {
		// Некорректное сообщение отбрасываем, сессию не закрываем
		logging.Logger.Debugf("Dropping malformed notification message from user %s", client.UserID().Hex())
		return
	}

	// Эхо для проверки живости канала
	payload, err := json.Marshal(WireMessage{Message: msg.Message})
	if err != nil {
		return
	}
	client.Send(payload)
}

// HandleChat обслуживает канал комнаты живого чата: каждое входящее
// сообщение ретранслируется всем участникам комнаты
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	claims, ok := h.authenticate(c)
	if !ok {
		return
	}

	room := c.Param("room")
	if room == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Room name is required",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	client := realtime.NewClient(h.hub, conn, realtime.ChatGroup(room), claims.UserID)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(func(sender *realtime.Client, data []byte) {
		h.handleChatMessage(room, sender, data)
	})
}

func (h *WebSocketHandler) handleChatMessage(room string, sender *realtime.Client, data []byte) {
	var msg WireMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Message == "" {
		logging.Logger.Debugf("Dropping malformed chat message in room %s", room)
		return
	}

	// Сохраняем историю чата. Ошибка записи не мешает рассылке.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chatMessage := models.ChatMessage{
		Room:    room,
		UserID:  sender.UserID(),
		Message: msg.Message,
	}
	if err := h.chats.Create(ctx, &chatMessage); err != nil {
		logging.Logger.Errorf("Error saving chat message: %v", err)
	}

	payload, err := json.Marshal(WireMessage{Message: msg.Message})
	if err != nil {
		return
	}

	h.hub.Broadcast(realtime.ChatGroup(room), payload)
}

// GetChatHistory возвращает последние сообщения комнаты
func (h *WebSocketHandler) GetChatHistory(c *gin.Context) {
	room := c.Param("room")
	if room == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Room name is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	messages, err := h.chats.ListByRoom(ctx, room, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching chat history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
	})
}
