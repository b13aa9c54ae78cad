package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-seat-booking/internal/model"
	"github.com/iliyamo/live-seat-booking/internal/repository"
)

// Catalog abstracts movie lookups so handlers work against the MySQL
// repository in production and the seeded list when no database is
// configured (or in tests).
type Catalog interface {
	List(ctx context.Context) ([]model.Movie, error)
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
}

// SeededCatalog is the in-memory fallback catalog used when MySQL is not
// available.  The titles mirror the original demo lineup.
type SeededCatalog struct {
	Movies []model.Movie
}

// NewSeededCatalog returns the default demo catalog.
func NewSeededCatalog() *SeededCatalog {
	return &SeededCatalog{Movies: []model.Movie{
		{ID: 1, Title: "Inception", PriceCents: 1200},
		{ID: 2, Title: "The Dark Knight", PriceCents: 1000},
		{ID: 3, Title: "Interstellar", PriceCents: 1500},
		{ID: 4, Title: "Avengers: Endgame", PriceCents: 1300},
	}}
}

func (s *SeededCatalog) List(ctx context.Context) ([]model.Movie, error) {
	out := make([]model.Movie, len(s.Movies))
	copy(out, s.Movies)
	return out, nil
}

func (s *SeededCatalog) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	for _, m := range s.Movies {
		if m.ID == id {
			movie := m
			return &movie, nil
		}
	}
	return nil, repository.ErrMovieNotFound
}

// MovieHandler serves the public movie catalog.
type MovieHandler struct {
	Catalog Catalog
}

// NewMovieHandler constructs a MovieHandler.  The catalog must be non-nil.
func NewMovieHandler(catalog Catalog) *MovieHandler {
	if catalog == nil {
		panic("nil catalog passed to NewMovieHandler")
	}
	return &MovieHandler{Catalog: catalog}
}

// ListMovies handles GET /v1/movies.
func (h *MovieHandler) ListMovies(c echo.Context) error {
	movies, err := h.Catalog.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list movies: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if movies == nil {
		movies = []model.Movie{}
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": movies})
}

// GetMovie handles GET /v1/movies/:id.
func (h *MovieHandler) GetMovie(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	movie, err := h.Catalog.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		c.Logger().Errorf("get movie: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, movie)
}
