package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-seat-booking/internal/ledger"
)

// SeatHandler exposes the seat ledger over HTTP: status polling as the
// fallback for clients without a live connection, plus the availability
// check, block, and release steps of the booking flow.  Confirmation goes
// through the booking handler.
type SeatHandler struct {
	Ledger *ledger.Ledger
}

// NewSeatHandler constructs a SeatHandler.  The ledger must be non-nil.
func NewSeatHandler(l *ledger.Ledger) *SeatHandler {
	if l == nil {
		panic("nil ledger passed to NewSeatHandler")
	}
	return &SeatHandler{Ledger: l}
}

// seatRequest is the JSON body shared by the seat mutation endpoints.
type seatRequest struct {
	Seats []string `json:"seats"`
}

// GetStatus handles GET /v1/showings/:id/seats.  It returns the occupied
// and currently blocked seats verbatim; unknown showings simply report
// empty lists.
func (h *SeatHandler) GetStatus(c echo.Context) error {
	showing := c.Param("id")
	if showing == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	occupied, blocked := h.Ledger.Status(showing)
	return c.JSON(http.StatusOK, echo.Map{
		"occupiedSeats": occupied,
		"blockedSeats":  blocked,
	})
}

// CheckSeats handles POST /v1/showings/:id/seats/check and reports whether
// every requested seat is currently free.
func (h *SeatHandler) CheckSeats(c echo.Context) error {
	showing, seats, errResp := bindSeatRequest(c)
	if errResp != nil {
		return errResp
	}
	available := h.Ledger.CheckAvailability(showing, seats)
	return c.JSON(http.StatusOK, echo.Map{"available": available})
}

// BlockSeats handles POST /v1/showings/:id/seats/block.  It pre-checks
// availability and rejects with 409 when any seat is taken, then places
// the block.  The check and the block are two steps, so a concurrent
// request may still win the same seats in between; the ledger accepts
// that window by contract and the realtime events let clients converge.
func (h *SeatHandler) BlockSeats(c echo.Context) error {
	showing, seats, errResp := bindSeatRequest(c)
	if errResp != nil {
		return errResp
	}
	occupied, blocked := h.Ledger.Status(showing)
	taken := make(map[string]struct{}, len(occupied)+len(blocked))
	for _, seat := range occupied {
		taken[seat] = struct{}{}
	}
	for _, seat := range blocked {
		taken[seat] = struct{}{}
	}
	unavailable := make([]string, 0, len(seats))
	for _, seat := range seats {
		if _, ok := taken[seat]; ok {
			unavailable = append(unavailable, seat)
		}
	}
	if len(unavailable) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "some seats are unavailable",
			"unavailable": unavailable,
		})
	}
	h.Ledger.Block(showing, seats)
	return c.JSON(http.StatusOK, echo.Map{
		"blocked":    seats,
		"expires_at": time.Now().UTC().Add(h.Ledger.BlockTTL()),
	})
}

// ReleaseSeats handles POST /v1/showings/:id/seats/release.  Releasing
// seats that are not blocked is a no-op, so the endpoint always succeeds
// for valid input.
func (h *SeatHandler) ReleaseSeats(c echo.Context) error {
	showing, seats, errResp := bindSeatRequest(c)
	if errResp != nil {
		return errResp
	}
	h.Ledger.Release(showing, seats)
	return c.NoContent(http.StatusNoContent)
}

// bindSeatRequest validates the showing path parameter and the seat list
// body before any ledger state is touched.  Seat labels are trimmed and
// deduplicated; blank labels are dropped.
func bindSeatRequest(c echo.Context) (showing string, seats []string, errResp error) {
	showing = c.Param("id")
	if showing == "" {
		return "", nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	var body seatRequest
	if err := c.Bind(&body); err != nil {
		return "", nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	seats = normalizeSeats(body.Seats)
	if len(seats) == 0 {
		return "", nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "seats is required"})
	}
	return showing, seats, nil
}

// normalizeSeats trims, drops blanks and deduplicates while preserving
// order.
func normalizeSeats(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, seat := range in {
		seat = strings.TrimSpace(seat)
		if seat == "" {
			continue
		}
		if _, dup := seen[seat]; dup {
			continue
		}
		seen[seat] = struct{}{}
		out = append(out, seat)
	}
	return out
}
