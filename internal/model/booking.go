package model

import "time"

// Booking is the finalized record produced once seats are confirmed and
// the (simulated) payment went through.  The seat ledger does not retain
// it; it is handed to downstream consumers via the message queue.
//
// Fields:
//  Reference   – opaque booking reference returned to the customer.
//  Name        – customer name as entered on the booking form.
//  Email       – address the (external) ticket delivery targets.
//  Showing     – showing key the seats belong to.
//  Seats       – confirmed seat labels.
//  ShowDate    – date of the screening as submitted by the customer.
//  AmountCents – total charged, price per seat times seat count.
//  CreatedAt   – when the booking was confirmed.
type Booking struct {
	Reference   string    `json:"reference"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Showing     string    `json:"showing"`
	Seats       []string  `json:"seats"`
	ShowDate    string    `json:"show_date"`
	AmountCents uint32    `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}
