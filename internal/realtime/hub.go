package realtime

import (
	"sync"

	"github.com/iliyamo/live-seat-booking/internal/logger"
)

// Conn is the minimal capability the hub needs from a live connection.
// The websocket handler provides the production implementation; tests use
// in-memory fakes.
type Conn interface {
	Send(ev Event) error
	IsOpen() bool
}

// Hub owns the subscription groups: one group of connections per showing.
// A connection belongs to at most one group at a time, for exactly as long
// as it stays open.  Like the seat ledger, hub state is process-local and
// rebuilt empty on restart.
type Hub struct {
	mu     sync.Mutex
	groups map[string]map[Conn]struct{} // showing -> subscribers
	member map[Conn]string              // reverse index: conn -> showing
	log    logger.Logger
}

// NewHub returns an empty hub.  A nil logger selects the no-op logger.
func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		groups: make(map[string]map[Conn]struct{}),
		member: make(map[Conn]string),
		log:    log,
	}
}

// Join subscribes the connection to a showing's group, first evicting it
// from whatever group it was in.  The group is created on demand.
func (h *Hub) Join(c Conn, showing string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c)
	grp := h.groups[showing]
	if grp == nil {
		grp = make(map[Conn]struct{})
		h.groups[showing] = grp
	}
	grp[c] = struct{}{}
	h.member[c] = showing
	h.log.Debugf("realtime: connection joined showing %s (%d watching)", showing, len(grp))
}

// Leave removes the connection from its group.  Called on disconnect;
// calling it for an unknown connection is a no-op.
func (h *Hub) Leave(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c)
}

func (h *Hub) leaveLocked(c Conn) {
	showing, ok := h.member[c]
	if !ok {
		return
	}
	delete(h.member, c)
	if grp := h.groups[showing]; grp != nil {
		delete(grp, c)
		if len(grp) == 0 {
			delete(h.groups, showing)
		}
	}
}

// Watchers reports how many connections are subscribed to a showing.
func (h *Hub) Watchers(showing string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[showing])
}

// Broadcast delivers the event to every open connection in the showing's
// group.  Failed sends are logged and skipped; a broken connection is
// never removed here, only via its own disconnect path.
func (h *Hub) Broadcast(showing string, ev Event) {
	h.mu.Lock()
	conns := make([]Conn, 0, len(h.groups[showing]))
	for c := range h.groups[showing] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if !c.IsOpen() {
			continue
		}
		if err := c.Send(ev); err != nil {
			h.log.Warnf("realtime: send to subscriber of showing %s failed: %v", showing, err)
		}
	}
}

// SeatsBlocked, SeatsBooked and SeatsUpdated make the hub a ledger
// notifier: each seat-state change becomes a broadcast to the showing's
// group.

func (h *Hub) SeatsBlocked(showing string, seats []string) {
	h.Broadcast(showing, Event{Type: TypeSeatBlocked, Showing: showing, Seats: seats})
}

func (h *Hub) SeatsBooked(showing string, seats []string) {
	h.Broadcast(showing, Event{Type: TypeSeatBooked, Showing: showing, Seats: seats})
}

func (h *Hub) SeatsUpdated(showing string, occupied, blocked []string) {
	h.Broadcast(showing, Event{Type: TypeSeatUpdate, Showing: showing, Occupied: occupied, Blocked: blocked})
}
