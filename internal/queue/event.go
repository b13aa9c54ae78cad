// Package queue defines message payloads exchanged over the message broker
// and the background consumer that archives confirmed bookings.
package queue

// BookingConfirmedEvent is published when a booking is confirmed and the
// simulated payment has gone through.  It carries enough information for
// downstream consumers to log, notify, or feed analytics without calling
// back into the service; the seat ledger itself keeps no booking history.
type BookingConfirmedEvent struct {
	Reference   string   `json:"reference"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Showing     string   `json:"showing"`
	MovieTitle  string   `json:"movie_title"`
	Seats       []string `json:"seats"`
	ShowDate    string   `json:"show_date"`
	AmountCents uint32   `json:"amount_cents"`
	ConfirmedAt string   `json:"confirmed_at"`
}
