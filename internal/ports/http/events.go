package http

import (
	"dao-dashboard/internal/notify"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// any origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

type eventJSON struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// eventClient writes the events of one view to one WebSocket connection.
type eventClient struct {
	viewID string
	conn   *websocket.Conn
	mu     sync.Mutex
	done   chan struct{}
	once   sync.Once
}

func (c *eventClient) write(event notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(eventJSON{Type: event.Type, Payload: toViewJSON(c.viewID, event.Payload)})
}

func (c *eventClient) close() (err error) {
	c.once.Do(func() {
		close(c.done)

		c.mu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "view closed"))
		c.mu.Unlock()

		err = c.conn.Close()
	})
	return
}

func (c *eventClient) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// viewEvents streams the state changes and notifications of a mounted view.
// The current state is sent first.
func (ser *server) viewEvents(w http.ResponseWriter, r *http.Request) {
	viewID := mux.Vars(r)["viewID"]

	session, err := ser.session(r)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	view, err := ser.app.View(viewID, session)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied
		ser.logger.Warn("websocket upgrade failed: "+err.Error(), zap.String("viewID", viewID))
		return
	}

	client := &eventClient{viewID: viewID, conn: conn, done: make(chan struct{})}
	unsubscribe, err := ser.opts.Events.Subscribe(viewID, client.write, client.close)
	if err != nil {
		ser.logger.Warn("failed to subscribe to the view events: "+err.Error(), zap.String("viewID", viewID))
		_ = client.close()
		return
	}
	defer unsubscribe()

	if err := client.write(notify.Event{Type: notify.EventState, Topic: viewID, Payload: view.Snapshot()}); err != nil {
		ser.logger.Debug("failed to send the initial state: "+err.Error(), zap.String("viewID", viewID))
		return
	}
	go client.pingLoop()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// clients only listen, reading detects the disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ser.logger.Debug("websocket read error: "+err.Error(), zap.String("viewID", viewID))
			}
			return
		}
	}
}
