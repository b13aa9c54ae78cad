package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-seat-booking/internal/ledger"
	"github.com/iliyamo/live-seat-booking/internal/model"
	"github.com/iliyamo/live-seat-booking/internal/queue"
	"github.com/iliyamo/live-seat-booking/internal/repository"
)

// BookingHandler drives the final step of the booking flow: confirming the
// selected seats on the ledger and handing the finalized record to the
// message queue.  Payment is simulated; a booking that reaches this
// handler with valid input always succeeds.
type BookingHandler struct {
	Ledger  *ledger.Ledger
	Catalog Catalog
	// Publish sends the finalized booking downstream.  A nil Publish
	// skips the broker entirely (tests, broker-less deployments); a
	// publish error is logged but never fails the booking.
	Publish func(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// NewBookingHandler constructs a BookingHandler.  Ledger and catalog must
// be non-nil; publish may be nil.
func NewBookingHandler(l *ledger.Ledger, catalog Catalog, publish func(ctx context.Context, ev queue.BookingConfirmedEvent) error) *BookingHandler {
	if l == nil || catalog == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Ledger: l, Catalog: catalog, Publish: publish}
}

// bookingRequest is the JSON body of POST /v1/bookings.
type bookingRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	MovieID uint64   `json:"movie_id"`
	Showing string   `json:"showing"`
	Seats   []string `json:"seats"`
	Date    string   `json:"date"`
}

// CreateBooking handles POST /v1/bookings.  It validates the form,
// resolves the ticket price, confirms the seats (which also pushes the
// seat_booked event to everyone watching the showing) and publishes the
// booking record.  Confirmation is unconditional by ledger contract: it
// does not require a live block, so a hold that expired while the customer
// was paying still completes.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body bookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.TrimSpace(body.Email)
	body.Showing = strings.TrimSpace(body.Showing)
	seats := normalizeSeats(body.Seats)
	if body.Name == "" || body.Email == "" || body.Showing == "" || body.Date == "" || len(seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "please fill all fields"})
	}
	if !strings.Contains(body.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
	}

	ctx := c.Request().Context()
	movie, err := h.Catalog.GetByID(ctx, body.MovieID)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie selection"})
		}
		c.Logger().Errorf("booking: movie lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	reference, err := bookingReference()
	if err != nil {
		c.Logger().Errorf("booking: reference generation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	now := time.Now().UTC()
	booking := model.Booking{
		Reference:   reference,
		Name:        body.Name,
		Email:       body.Email,
		Showing:     body.Showing,
		Seats:       seats,
		ShowDate:    body.Date,
		AmountCents: movie.PriceCents * uint32(len(seats)),
		CreatedAt:   now,
	}

	// Simulated payment always succeeds; confirm makes the seats
	// permanent and broadcasts seat_booked to the showing's watchers.
	h.Ledger.Confirm(body.Showing, seats)

	if h.Publish != nil {
		ev := queue.BookingConfirmedEvent{
			Reference:   booking.Reference,
			Name:        booking.Name,
			Email:       booking.Email,
			Showing:     booking.Showing,
			MovieTitle:  movie.Title,
			Seats:       booking.Seats,
			ShowDate:    booking.ShowDate,
			AmountCents: booking.AmountCents,
			ConfirmedAt: now.Format(time.RFC3339),
		}
		if err := h.Publish(ctx, ev); err != nil {
			// The booking already succeeded; the archive is best effort.
			c.Logger().Warnf("booking: publish failed for %s: %v", booking.Reference, err)
		}
	}

	return c.JSON(http.StatusCreated, booking)
}

// bookingReference generates the opaque reference returned to customers.
func bookingReference() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
