package echoapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/durusapp/durus/core"
	"github.com/durusapp/durus/core/checkin"
	"github.com/durusapp/durus/core/user"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPingPeriod   = 30 * time.Second
	wsSendBacklog  = 16
	wsReadDeadline = 60 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // auth is JWT-based
}

type wsClient struct {
	conn *websocket.Conn
	send chan checkin.Event
}

// Hub fans check-in events out to connected websocket clients.
type Hub struct {
	logger core.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func NewHub(logger core.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// Broadcast delivers evt to every connected client. Slow clients are
// disconnected rather than allowed to stall the feed.
func (h *Hub) Broadcast(evt checkin.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- evt:
		default:
			go h.unregister(c)
		}
	}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		_ = c.conn.Close()
	}
	h.mu.Unlock()
}

func (h *Hub) serve(ctx echo.Context) error {
	conn, err := wsUpgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return err
	}

	c := &wsClient{conn: conn, send: make(chan checkin.Event, wsSendBacklog)}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
	return nil
}

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains incoming frames so pongs and close frames are processed.
func (h *Hub) readPump(c *wsClient) {
	defer h.unregister(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

type checkinRequest struct {
	UID string `json:"uid" validate:"required"`
}

func registerCheckinAPI(g *echo.Group, deps *Deps) {
	wsJWT := middleware.JWTWithConfig(wsJWTConfig)
	cg := g.Group("/checkins")

	cg.GET("/live", deps.Hub.serve, wsJWT, rolesRequired(user.RoleSecretary, user.RoleTeacher))

	jwt := middleware.JWTWithConfig(appJWTConfig)
	cg.POST("", manualCheckin(deps), jwt, rolesRequired(user.RoleSecretary))
}

// manualCheckin processes a card swipe submitted over HTTP, for setups
// without a serial reader attached to the server.
func manualCheckin(deps *Deps) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(checkinRequest)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := core.Validate.Struct(data); err != nil {
			return err
		}

		evt, err := deps.CheckinSvc.Process(ctx.Request().Context(), data.UID, time.Now())
		if err != nil {
			return err
		}
		deps.Hub.Broadcast(evt)
		return ctx.JSON(http.StatusOK, evt)
	}
}
