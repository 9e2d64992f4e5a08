package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quantumgenie/ElearningApplication/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client — одна активная websocket-сессия. Живет от подключения до
// разрыва; при завершении ReadPump членство в группе снимается
// безусловно, даже если закрытие вызвано ошибкой транспорта.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	groupKey string
	userID   primitive.ObjectID

	// Защищает send от записи после закрытия: Send вызывается из
	// горутин сессии, закрытие приходит из цикла хаба
	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, groupKey string, userID primitive.ObjectID) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		groupKey: groupKey,
		userID:   userID,
	}
}

func (c *Client) UserID() primitive.ObjectID {
	return c.userID
}

func (c *Client) GroupKey() string {
	return c.groupKey
}

// Send ставит сообщение в буфер отправки клиента. Возвращает false,
// если буфер переполнен или сессия уже закрыта — сообщение при этом
// теряется.
func (c *Client) Send(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// closeSend закрывает буфер отправки ровно один раз. После закрытия
// Send возвращает false вместо паники записи в закрытый канал.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump читает входящие сообщения и передает их обработчику.
// Некорректные сообщения отбрасываются обработчиком, сессия при этом
// не закрывается — закрытие происходит только при ошибке транспорта.
func (c *Client) ReadPump(onMessage func(client *Client, data []byte)) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Logger.Debugf("WebSocket read error: %v", err)
			}
			break
		}

		if onMessage != nil {
			onMessage(c, data)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Добавляем все ожидающие сообщения в текущий кадр
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
