// Package realtime fans seat-state change events out to every live
// connection watching a showing, and handles the small inbound command
// protocol those connections speak.  It is transport-agnostic: anything
// implementing Conn can subscribe.
package realtime

// Event types delivered to subscribers.
const (
	TypeConnection  = "connection"
	TypeSeatBlocked = "seat_blocked"
	TypeSeatBooked  = "seat_booked"
	TypeSeatUpdate  = "seat_update"
)

// Event is one message on the realtime channel.  Only the fields relevant
// to the event type are populated.
type Event struct {
	Type     string   `json:"type"`
	Status   string   `json:"status,omitempty"`
	Showing  string   `json:"showing"`
	Seats    []string `json:"seats,omitempty"`
	Occupied []string `json:"occupied,omitempty"`
	Blocked  []string `json:"blocked,omitempty"`
}

// ConnectedEvent greets a client right after its connection is accepted.
func ConnectedEvent(showing string) Event {
	return Event{Type: TypeConnection, Status: "connected", Showing: showing}
}
