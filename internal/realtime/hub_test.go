package realtime

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeConn records delivered events and can simulate a closed or failing
// transport.
type fakeConn struct {
	mu     sync.Mutex
	events []Event
	closed bool
	fail   bool
}

func (f *fakeConn) Send(ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeConn) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

func (f *fakeConn) received() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

func TestBroadcastReachesOnlyJoinedGroup(t *testing.T) {
	h := NewHub(nil)
	a, b, other := &fakeConn{}, &fakeConn{}, &fakeConn{}
	h.Join(a, "7")
	h.Join(b, "7")
	h.Join(other, "3")

	h.SeatsBlocked("7", []string{"B2"})

	assert.Len(t, a.received(), 1)
	assert.Len(t, b.received(), 1)
	assert.Empty(t, other.received())

	ev := a.received()[0]
	assert.Equal(t, TypeSeatBlocked, ev.Type)
	assert.Equal(t, "7", ev.Showing)
	assert.Equal(t, []string{"B2"}, ev.Seats)
}

func TestJoinMovesConnectionBetweenGroups(t *testing.T) {
	h := NewHub(nil)
	c := &fakeConn{}
	h.Join(c, "1")
	h.Join(c, "2")

	assert.Equal(t, 0, h.Watchers("1"))
	assert.Equal(t, 1, h.Watchers("2"))

	h.Broadcast("1", Event{Type: TypeSeatUpdate, Showing: "1"})
	assert.Empty(t, c.received())

	h.Broadcast("2", Event{Type: TypeSeatUpdate, Showing: "2"})
	assert.Len(t, c.received(), 1)
}

func TestLeaveDeletesEmptyGroup(t *testing.T) {
	h := NewHub(nil)
	c := &fakeConn{}
	h.Join(c, "5")
	h.Leave(c)

	assert.Equal(t, 0, h.Watchers("5"))
	// leaving twice is harmless
	h.Leave(c)
}

func TestBroadcastSkipsClosedAndFailingConns(t *testing.T) {
	h := NewHub(nil)
	open, closed, failing := &fakeConn{}, &fakeConn{closed: true}, &fakeConn{fail: true}
	h.Join(open, "7")
	h.Join(closed, "7")
	h.Join(failing, "7")

	h.SeatsBooked("7", []string{"A1"})

	assert.Len(t, open.received(), 1)
	assert.Empty(t, closed.received())
	// a failed send leaves the connection in the group for the disconnect
	// path to clean up
	assert.Equal(t, 3, h.Watchers("7"))
}

func TestSeatsUpdatedEventShape(t *testing.T) {
	h := NewHub(nil)
	c := &fakeConn{}
	h.Join(c, "4")

	h.SeatsUpdated("4", []string{"A1"}, []string{"B2"})

	ev := c.received()[0]
	assert.Equal(t, TypeSeatUpdate, ev.Type)
	assert.Equal(t, []string{"A1"}, ev.Occupied)
	assert.Equal(t, []string{"B2"}, ev.Blocked)
}
