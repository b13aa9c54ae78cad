package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/live-seat-booking/internal/ledger"
	"github.com/iliyamo/live-seat-booking/internal/logger"
	"github.com/iliyamo/live-seat-booking/internal/realtime"
)

// wsFixture runs a real server so the full path is exercised: upgrade,
// greeting, hub membership, ledger-driven broadcasts and the inbound
// command protocol.
type wsFixture struct {
	srv    *httptest.Server
	ledger *ledger.Ledger
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	hub := realtime.NewHub(nil)
	l := ledger.New(ledger.Options{Notifier: hub})
	t.Cleanup(l.Close)

	h := NewWSHandler(hub, realtime.NewDispatcher(hub, l, nil), nil)
	e := echo.New()
	e.GET("/ws", h.Serve)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &wsFixture{srv: srv, ledger: l}
}

func (f *wsFixture) dial(t *testing.T, showing string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	if showing != "" {
		url += "?showing=" + showing
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) realtime.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev realtime.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWS_GreetingOnConnect(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "7")

	ev := readEvent(t, conn)
	assert.Equal(t, realtime.TypeConnection, ev.Type)
	assert.Equal(t, "connected", ev.Status)
	assert.Equal(t, "7", ev.Showing)
}

func TestWS_BroadcastReachesJoinedClientsOnly(t *testing.T) {
	f := newWSFixture(t)
	first := f.dial(t, "7")
	second := f.dial(t, "7")
	other := f.dial(t, "3")
	readEvent(t, first)
	readEvent(t, second)
	readEvent(t, other)

	f.ledger.Block("7", []string{"B2"})

	for _, conn := range []*websocket.Conn{first, second} {
		ev := readEvent(t, conn)
		assert.Equal(t, realtime.TypeSeatBlocked, ev.Type)
		assert.Equal(t, "7", ev.Showing)
		assert.Equal(t, []string{"B2"}, ev.Seats)
	}

	// the showing-3 watcher must not see showing-7 traffic
	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var ev realtime.Event
	assert.Error(t, other.ReadJSON(&ev))
}

func TestWS_BlockSeatsCommand(t *testing.T) {
	f := newWSFixture(t)
	actor := f.dial(t, "7")
	watcher := f.dial(t, "7")
	readEvent(t, actor)
	readEvent(t, watcher)

	require.NoError(t, actor.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"block_seats","showing":"7","seats":["C1"]}`)))

	ev := readEvent(t, watcher)
	assert.Equal(t, realtime.TypeSeatBlocked, ev.Type)
	assert.Equal(t, []string{"C1"}, ev.Seats)
	assert.False(t, f.ledger.CheckAvailability("7", []string{"C1"}))
}

func TestWS_JoinMovieCommandSwitchesGroup(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "7")
	readEvent(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"join_movie","showing":"3"}`)))

	// give the server a beat to process the join, then emit on both showings
	time.Sleep(100 * time.Millisecond)
	f.ledger.Block("7", []string{"A1"})
	f.ledger.Block("3", []string{"Z9"})

	ev := readEvent(t, conn)
	assert.Equal(t, "3", ev.Showing)
	assert.Equal(t, []string{"Z9"}, ev.Seats)
}

func TestWSConn_SendBufferOverflowClosesConn(t *testing.T) {
	// Build the conn without its writer goroutine so nothing drains the
	// buffer, standing in for a peer that stopped reading.
	conn := &wsConn{
		out:  make(chan realtime.Event, wsSendBuffer),
		quit: make(chan struct{}),
		log:  logger.NewNop(),
	}

	for i := 0; i < wsSendBuffer; i++ {
		assert.NoError(t, conn.Send(realtime.Event{Type: realtime.TypeSeatUpdate, Showing: "7"}))
	}
	assert.True(t, conn.IsOpen())

	// The overflowing send fails and takes the connection down so the
	// disconnect path can remove it from its group.
	err := conn.Send(realtime.Event{Type: realtime.TypeSeatUpdate, Showing: "7"})
	assert.ErrorIs(t, err, errSendBufferFull)
	assert.False(t, conn.IsOpen())

	// Subsequent sends report the closed connection.
	err = conn.Send(realtime.Event{Type: realtime.TypeSeatUpdate, Showing: "7"})
	assert.ErrorIs(t, err, errConnClosed)
}

func TestWS_MalformedMessageKeepsConnectionOpen(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "7")
	readEvent(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{{{`)))

	f.ledger.Confirm("7", []string{"D4"})
	ev := readEvent(t, conn)
	assert.Equal(t, realtime.TypeSeatBooked, ev.Type)
}
