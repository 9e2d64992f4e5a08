package realtime

import (
	"sync"

	"github.com/quantumgenie/ElearningApplication/internal/logging"
)

// Ключи групп. Группа уведомлений персональная, группа чата общая на комнату.
func NotificationGroup(userID string) string {
	return "notifications_" + userID
}

func ChatGroup(room string) string {
	return "live_chat_" + room
}

type broadcastMessage struct {
	groupKey string
	payload  []byte
}

// Hub — реестр активных websocket-сессий по группам. Единственная общая
// изменяемая структура realtime-слоя; join/leave/broadcast безопасны из
// любых горутин. Broadcast работает по принципу fire-and-forget: вызов
// возвращается сразу после постановки сообщения в очередь.
type Hub struct {
	// Зарегистрированные клиенты по ключам групп
	groups map[string]map[*Client]bool

	// Канал для регистрации клиентов
	register chan *Client

	// Канал для отмены регистрации клиентов
	unregister chan *Client

	// Очередь сообщений на рассылку
	broadcast chan broadcastMessage

	done chan struct{}

	mutex sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		groups:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMessage, 256),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if h.groups[client.groupKey] == nil {
				h.groups[client.groupKey] = make(map[*Client]bool)
			}
			h.groups[client.groupKey][client] = true
			h.mutex.Unlock()
			logging.Logger.Debugf("Client registered for group %s", client.groupKey)

		case client := <-h.unregister:
			h.mutex.Lock()
			if clients, ok := h.groups[client.groupKey]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					client.closeSend()
					if len(clients) == 0 {
						delete(h.groups, client.groupKey)
					}
				}
			}
			h.mutex.Unlock()
			logging.Logger.Debugf("Client unregistered from group %s", client.groupKey)

		case message := <-h.broadcast:
			h.deliver(message)

		case <-h.done:
			return
		}
	}
}

// deliver отправляет сообщение всем участникам группы. Отставший клиент
// отключается, не прерывая доставку остальным. Пустая группа — не ошибка.
func (h *Hub) deliver(message broadcastMessage) {
	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.groups[message.groupKey]))
	for client := range h.groups[message.groupKey] {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		if client.Send(message.payload) {
			continue
		}

		// Буфер клиента переполнен — убираем его из группы
		h.mutex.Lock()
		if group, ok := h.groups[message.groupKey]; ok {
			if _, ok := group[client]; ok {
				delete(group, client)
				client.closeSend()
				if len(group) == 0 {
					delete(h.groups, message.groupKey)
				}
			}
		}
		h.mutex.Unlock()
		logging.Logger.Warnf("Dropped stale client from group %s", message.groupKey)
	}
}

// Broadcast ставит сообщение в очередь рассылки и сразу возвращается.
// Доставка не гарантируется, подтверждения от клиентов не ожидаются.
func (h *Hub) Broadcast(groupKey string, payload []byte) {
	select {
	case h.broadcast <- broadcastMessage{groupKey: groupKey, payload: payload}:
	case <-h.done:
	default:
		logging.Logger.Warnf("Broadcast queue full, message for group %s lost", groupKey)
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) GetConnectionsCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for _, clients := range h.groups {
		count += len(clients)
	}
	return count
}

func (h *Hub) GetActiveGroupsCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.groups)
}

// Shutdown останавливает цикл обработки и закрывает все активные соединения.
// Каналы send закрывает только цикл Run, здесь их не трогаем.
func (h *Hub) Shutdown() {
	close(h.done)

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for key, clients := range h.groups {
		for client := range clients {
			if client.conn != nil {
				client.conn.Close()
			}
		}
		delete(h.groups, key)
	}
}
