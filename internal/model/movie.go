package model

// Movie is a catalog entry customers browse before picking a showing.
// Seat availability is not part of the catalog; it lives in the seat
// ledger, keyed by showing.
//
// Fields:
//  ID         – primary key identifier.
//  Title      – display title.
//  PriceCents – ticket price per seat in cents.
type Movie struct {
	ID         uint64 `json:"id"`          // movies.id
	Title      string `json:"title"`       // movies.title
	PriceCents uint32 `json:"price_cents"` // movies.price_cents
}
