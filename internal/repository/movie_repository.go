package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/live-seat-booking/internal/model"
)

// ErrMovieNotFound is returned when a movie id does not exist. Handlers
// should translate this into an HTTP 404 response.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo provides read access to the movie catalog.  The catalog is the
// only state this service keeps in MySQL; seat availability is owned by
// the in-memory ledger and never written here.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a MovieRepo bound to the provided database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// List returns all movies ordered by id.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, price_cents FROM movies ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var movies []model.Movie
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.PriceCents); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// GetByID fetches a single movie or ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	var m model.Movie
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, price_cents FROM movies WHERE id = ?`, id,
	).Scan(&m.ID, &m.Title, &m.PriceCents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
