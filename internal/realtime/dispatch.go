package realtime

import (
	"encoding/json"

	"github.com/iliyamo/live-seat-booking/internal/logger"
)

// Inbound command types clients may send over an open connection.
const (
	cmdJoinMovie  = "join_movie"
	cmdBlockSeats = "block_seats"
	cmdBookSeats  = "book_seats"
)

// SeatController is the slice of the seat ledger the command protocol
// drives.  Blocking and confirming through the ledger also produces the
// outbound broadcasts, so the dispatcher never broadcasts directly.
type SeatController interface {
	Block(showing string, seats []string)
	Confirm(showing string, seats []string)
}

// command is the parsed shape of an inbound client message.
type command struct {
	Type    string   `json:"type"`
	Showing string   `json:"showing"`
	Seats   []string `json:"seats"`
}

// Dispatcher routes inbound messages from live connections to the hub and
// the seat ledger.
type Dispatcher struct {
	hub   *Hub
	seats SeatController
	log   logger.Logger
}

// NewDispatcher wires a dispatcher to the hub and seat controller.
func NewDispatcher(hub *Hub, seats SeatController, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{hub: hub, seats: seats, log: log}
}

// Dispatch handles one raw message from a connection.  Malformed payloads
// and unknown command types are logged and dropped; the connection stays
// open either way.
func (d *Dispatcher) Dispatch(c Conn, raw []byte) {
	var cmd command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		d.log.Warnf("realtime: dropping unparseable message: %v", err)
		return
	}
	switch cmd.Type {
	case cmdJoinMovie:
		if cmd.Showing == "" {
			d.log.Warnf("realtime: join_movie without showing ignored")
			return
		}
		d.hub.Join(c, cmd.Showing)
	case cmdBlockSeats:
		if cmd.Showing == "" || len(cmd.Seats) == 0 {
			d.log.Warnf("realtime: block_seats with missing showing or seats ignored")
			return
		}
		d.seats.Block(cmd.Showing, cmd.Seats)
	case cmdBookSeats:
		if cmd.Showing == "" || len(cmd.Seats) == 0 {
			d.log.Warnf("realtime: book_seats with missing showing or seats ignored")
			return
		}
		d.seats.Confirm(cmd.Showing, cmd.Seats)
	default:
		d.log.Warnf("realtime: unknown message type %q ignored", cmd.Type)
	}
}
