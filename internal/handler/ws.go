package handler

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-seat-booking/internal/logger"
	"github.com/iliyamo/live-seat-booking/internal/realtime"
)

var (
	errConnClosed     = errors.New("connection closed")
	errSendBufferFull = errors.New("send buffer full")
)

const (
	wsWriteTimeout = 10 * time.Second
	wsSendBuffer   = 32
)

// WSHandler upgrades HTTP requests to WebSocket connections and bridges
// them into the realtime hub.  Any origin is accepted; the seat map is
// public data and the booking endpoints carry their own validation.
type WSHandler struct {
	hub      *realtime.Hub
	dispatch *realtime.Dispatcher
	log      logger.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler constructs a WSHandler.
func NewWSHandler(hub *realtime.Hub, dispatch *realtime.Dispatcher, log logger.Logger) *WSHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &WSHandler{
		hub:      hub,
		dispatch: dispatch,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws.  An optional ?showing= query parameter joins the
// connection to that showing's group immediately; clients can also join
// (or switch) later with a join_movie message.  The connection receives a
// greeting event, then the read loop feeds inbound commands to the
// dispatcher until the peer goes away.
func (h *WSHandler) Serve(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}

	conn := newWSConn(ws, h.log)
	defer func() {
		h.hub.Leave(conn)
		conn.Close()
	}()

	showing := c.QueryParam("showing")
	if showing != "" {
		h.hub.Join(conn, showing)
	}
	if err := conn.Send(realtime.ConnectedEvent(showing)); err != nil {
		h.log.Warnf("ws: greeting failed: %v", err)
	}

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("ws: read failed: %v", err)
			}
			return nil
		}
		h.dispatch.Dispatch(conn, raw)
	}
}

// wsConn adapts a gorilla connection to realtime.Conn.  Writes go through
// a buffered channel drained by a dedicated goroutine, so one slow or dead
// peer cannot stall broadcasts to the rest of a group.  A peer that lets
// the buffer fill has missed events already, so the connection is closed
// rather than left silently behind; the client reconnects or falls back to
// polling the seat status endpoint.
type wsConn struct {
	ws   *websocket.Conn
	out  chan realtime.Event
	quit chan struct{}
	once sync.Once
	log  logger.Logger
}

func newWSConn(ws *websocket.Conn, log logger.Logger) *wsConn {
	c := &wsConn{
		ws:   ws,
		out:  make(chan realtime.Event, wsSendBuffer),
		quit: make(chan struct{}),
		log:  log,
	}
	go c.writeLoop()
	return c
}

func (c *wsConn) Send(ev realtime.Event) error {
	select {
	case <-c.quit:
		return errConnClosed
	default:
	}
	select {
	case c.out <- ev:
		return nil
	case <-c.quit:
		return errConnClosed
	default:
		c.log.Warnf("ws: send buffer full, closing connection")
		c.Close()
		return errSendBufferFull
	}
}

func (c *wsConn) IsOpen() bool {
	select {
	case <-c.quit:
		return false
	default:
		return true
	}
}

// Close tears the connection down.  Safe to call multiple times and from
// any goroutine.
func (c *wsConn) Close() {
	c.once.Do(func() {
		close(c.quit)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

func (c *wsConn) writeLoop() {
	for {
		select {
		case <-c.quit:
			return
		case ev := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.ws.WriteJSON(ev); err != nil {
				c.log.Warnf("ws: write failed, closing connection: %v", err)
				c.Close()
				return
			}
		}
	}
}
