package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestListMovies_SeededCatalog(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/movies", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewMovieHandler(NewSeededCatalog())
	assert.NoError(t, h.ListMovies(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Inception")
}

func TestGetMovie_NotFound(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/movies/99", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	h := NewMovieHandler(NewSeededCatalog())
	assert.NoError(t, h.GetMovie(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMovie_InvalidID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/movies/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	h := NewMovieHandler(NewSeededCatalog())
	assert.NoError(t, h.GetMovie(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
