package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/live-seat-booking/internal/ledger"
)

func seatContext(t *testing.T, method, body, showing string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(showing)
	return c, rec
}

func TestGetStatus_EmptyShowing(t *testing.T) {
	l := ledger.New(ledger.Options{})
	defer l.Close()
	h := NewSeatHandler(l)

	c, rec := seatContext(t, http.MethodGet, "", "42")
	assert.NoError(t, h.GetStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Occupied []string `json:"occupiedSeats"`
		Blocked  []string `json:"blockedSeats"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Occupied)
	assert.Empty(t, resp.Blocked)
}

func TestBlockSeats_Success(t *testing.T) {
	l := ledger.New(ledger.Options{})
	defer l.Close()
	h := NewSeatHandler(l)

	c, rec := seatContext(t, http.MethodPost, `{"seats":["A1","A2","A1"]}`, "1")
	assert.NoError(t, h.BlockSeats(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// duplicate labels collapse, both seats are now held
	assert.False(t, l.CheckAvailability("1", []string{"A1"}))
	assert.False(t, l.CheckAvailability("1", []string{"A2"}))
}

func TestBlockSeats_ConflictOnTakenSeat(t *testing.T) {
	l := ledger.New(ledger.Options{})
	defer l.Close()
	l.Confirm("1", []string{"A1"})
	h := NewSeatHandler(l)

	c, rec := seatContext(t, http.MethodPost, `{"seats":["A1","B1"]}`, "1")
	assert.NoError(t, h.BlockSeats(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Unavailable []string `json:"unavailable"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"A1"}, resp.Unavailable)

	// the free seat was not blocked either: the request is all-or-nothing
	assert.True(t, l.CheckAvailability("1", []string{"B1"}))
}

func TestBlockSeats_ConflictListsOccupiedAndBlocked(t *testing.T) {
	l := ledger.New(ledger.Options{})
	defer l.Close()
	l.Confirm("1", []string{"A1"})
	l.Block("1", []string{"C1"})
	h := NewSeatHandler(l)

	c, rec := seatContext(t, http.MethodPost, `{"seats":["A1","B1","C1"]}`, "1")
	assert.NoError(t, h.BlockSeats(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Unavailable []string `json:"unavailable"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// request order is preserved; both the booked and the held seat show up
	assert.Equal(t, []string{"A1", "C1"}, resp.Unavailable)
}

func TestCheckSeats_ReportsAvailability(t *testing.T) {
	l := ledger.New(ledger.Options{})
	defer l.Close()
	l.Block("1", []string{"C3"})
	h := NewSeatHandler(l)

	c, rec := seatContext(t, http.MethodPost, `{"seats":["C3"]}`, "1")
	assert.NoError(t, h.CheckSeats(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available": false}`, rec.Body.String())

	c, rec = seatContext(t, http.MethodPost, `{"seats":["D4"]}`, "1")
	assert.NoError(t, h.CheckSeats(c))
	assert.JSONEq(t, `{"available": true}`, rec.Body.String())
}

func TestReleaseSeats_NoContent(t *testing.T) {
	l := ledger.New(ledger.Options{})
	defer l.Close()
	l.Block("1", []string{"A1"})
	h := NewSeatHandler(l)

	c, rec := seatContext(t, http.MethodPost, `{"seats":["A1"]}`, "1")
	assert.NoError(t, h.ReleaseSeats(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, l.CheckAvailability("1", []string{"A1"}))
}

func TestSeatEndpoints_RejectBadInput(t *testing.T) {
	l := ledger.New(ledger.Options{})
	defer l.Close()
	h := NewSeatHandler(l)

	// missing seats list
	c, rec := seatContext(t, http.MethodPost, `{}`, "1")
	assert.NoError(t, h.BlockSeats(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// blank labels only
	c, rec = seatContext(t, http.MethodPost, `{"seats":["  ",""]}`, "1")
	assert.NoError(t, h.BlockSeats(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// missing showing id
	c, rec = seatContext(t, http.MethodPost, `{"seats":["A1"]}`, "")
	assert.NoError(t, h.BlockSeats(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// nothing leaked into the ledger
	occ, blk := l.Status("1")
	assert.Empty(t, occ)
	assert.Empty(t, blk)
}
