package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"neuroteach/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время, разрешенное для записи сообщения клиенту.
	writeWait = 10 * time.Second
	// Время, разрешенное для чтения следующего pong сообщения от клиента.
	pongWait = 60 * time.Second
	// Отправлять пинги клиенту с этим периодом. Должно быть меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Максимальный размер сообщения, разрешенный от клиента.
	maxMessageSize = 512
	// Размер очереди снимков; при переполнении старые снимки не нужны, новый их заменит.
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin пускает запросы без Origin и с Origin того же хоста.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// lessonSnapshot - то, что страница получает при каждом изменении Lesson Store.
type lessonSnapshot struct {
	IsGenerating bool   `json:"isGenerating"`
	IsLoading    bool   `json:"isLoading"`
	LessonCount  int    `json:"lessonCount"`
	Theme        string `json:"theme"`
	FetchError   string `json:"fetchError,omitempty"`
}

func snapshotOf(s store.LessonState) lessonSnapshot {
	return lessonSnapshot{
		IsGenerating: s.IsGenerating,
		IsLoading:    s.IsLoading,
		LessonCount:  len(s.Lessons),
		Theme:        string(s.Theme),
		FetchError:   s.FetchError,
	}
}

type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger
}

// enqueue не блокирует: вызывается из подписчика под мьютексом стора.
func (c *wsClient) enqueue(s store.LessonState) {
	msg, err := json.Marshal(snapshotOf(s))
	if err != nil {
		c.logger.Error("Failed to marshal lesson snapshot", zap.Error(err))
		return
	}
	select {
	case c.send <- msg:
	default:
		c.logger.Debug("Send buffer full, snapshot dropped")
	}
}

// serveWS подписывает соединение на Lesson Store сессии.
func (h *Handler) serveWS(c *gin.Context) {
	ws := workspace(c)
	if !ws.Auth.State().IsAuthenticated {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrader уже ответил клиенту
		h.logger.Warn("Failed to upgrade connection", zap.String("sessionID", ws.ID), zap.Error(err))
		return
	}

	client := &wsClient{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: h.logger.With(zap.String("sessionID", ws.ID)),
	}
	client.enqueue(ws.Lessons.State())
	unsubscribe := ws.Lessons.Subscribe(client.enqueue)
	client.logger.Debug("WebSocket connection established")

	go client.writePump()
	go client.readPump(unsubscribe)
}

// readPump читает (и игнорирует) сообщения клиента до закрытия соединения.
func (c *wsClient) readPump(unsubscribe func()) {
	defer func() {
		// после unsubscribe подписчик больше не вызывается, канал можно закрыть
		unsubscribe()
		close(c.send)
		_ = c.conn.Close()
		c.logger.Debug("readPump finished")
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump отправляет снимки из канала send и пингует клиента.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		c.logger.Debug("writePump finished")
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("Failed to write message", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
