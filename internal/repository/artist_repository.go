package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/venue-directory/internal/model"
)

// ArtistRepo manages persistence for artists and their genres.
type ArtistRepo struct {
	db *sql.DB
}

// NewArtistRepo constructs an ArtistRepo with the given DB handle.
func NewArtistRepo(db *sql.DB) *ArtistRepo {
	return &ArtistRepo{db: db}
}

const artistColumns = `id, name, city, state, phone, seeking_venue, seeking_description, image_link, facebook_link`

func scanArtist(row interface{ Scan(...any) error }, a *model.Artist) error {
	return row.Scan(&a.ID, &a.Name, &a.City, &a.State, &a.Phone,
		&a.SeekingVenue, &a.SeekingDescription, &a.ImageLink, &a.FacebookLink)
}

// Create inserts a new artist and its genre rows in one transaction and
// assigns the generated ID back to a.
func (r *ArtistRepo) Create(ctx context.Context, a *model.Artist) error {
	if a.ImageLink == "" {
		a.ImageLink = model.DefaultImageLink
	}
	a.Genres = CleanGenres(a.Genres)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `INSERT INTO artists (name, city, state, phone, seeking_venue, seeking_description, image_link, facebook_link)
		           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, q, a.Name, a.City, a.State, a.Phone,
			a.SeekingVenue, a.SeekingDescription, a.ImageLink, a.FacebookLink)
		if err != nil {
			return fault("insert artist", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fault("artist id", err)
		}
		a.ID = uint64(id)
		return artistGenres.insert(ctx, tx, a.ID, a.Genres)
	})
}

// GetByID retrieves an artist and its genres.  It returns
// ErrArtistNotFound if there is no matching row.
func (r *ArtistRepo) GetByID(ctx context.Context, id uint64) (*model.Artist, error) {
	q := `SELECT ` + artistColumns + ` FROM artists WHERE id = ?`
	var a model.Artist
	if err := scanArtist(r.db.QueryRowContext(ctx, q, id), &a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArtistNotFound
		}
		return nil, fault("get artist", err)
	}
	genres, err := artistGenres.list(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	a.Genres = genres
	return &a, nil
}

// ListAll returns the id and name of every artist ordered by id.
func (r *ArtistRepo) ListAll(ctx context.Context) ([]model.ArtistSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM artists ORDER BY id`)
	if err != nil {
		return nil, fault("list artists", err)
	}
	defer rows.Close()
	out := []model.ArtistSummary{}
	for rows.Next() {
		var a model.ArtistSummary
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fault("scan artist", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("iterate artists", err)
	}
	return out, nil
}

// SearchByName returns id and name of every artist whose name contains
// term, ignoring case, ordered by id.
func (r *ArtistRepo) SearchByName(ctx context.Context, term string) ([]model.SearchHit, error) {
	const q = `SELECT id, name FROM artists ORDER BY id`
	return searchHits(ctx, r.db, q, term)
}

// Update overwrites the scalar fields of the artist with a.ID and replaces
// its genres, in one transaction.  It returns ErrArtistNotFound when the
// artist does not exist.
func (r *ArtistRepo) Update(ctx context.Context, a *model.Artist) error {
	if a.ImageLink == "" {
		a.ImageLink = model.DefaultImageLink
	}
	a.Genres = CleanGenres(a.Genres)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := rowExists(ctx, tx, "artists", a.ID, ErrArtistNotFound); err != nil {
			return err
		}
		const q = `UPDATE artists
		           SET name = ?, city = ?, state = ?, phone = ?, seeking_venue = ?,
		               seeking_description = ?, image_link = ?, facebook_link = ?
		           WHERE id = ?`
		if _, err := tx.ExecContext(ctx, q, a.Name, a.City, a.State, a.Phone, a.SeekingVenue,
			a.SeekingDescription, a.ImageLink, a.FacebookLink, a.ID); err != nil {
			return fault("update artist", err)
		}
		return artistGenres.replace(ctx, tx, a.ID, a.Genres)
	})
}
