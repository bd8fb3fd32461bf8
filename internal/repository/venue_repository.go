// Package repository contains data access logic separated from HTTP handlers.
// This file holds the repository methods for venues.  A venue owns its genre
// rows and its shows; deleting a venue removes both in the same transaction.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to detect sql.ErrNoRows

	"github.com/iliyamo/venue-directory/internal/model"
)

// VenueRepo encapsulates all database queries related to venues.  It
// depends on a sql.DB connection which should be configured elsewhere.
type VenueRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewVenueRepo constructs a VenueRepo with the provided DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

const venueColumns = `id, name, city, state, address, phone, seeking_talent, seeking_description, image_link, facebook_link, website`

func scanVenue(row interface{ Scan(...any) error }, v *model.Venue) error {
	return row.Scan(&v.ID, &v.Name, &v.City, &v.State, &v.Address, &v.Phone,
		&v.SeekingTalent, &v.SeekingDescription, &v.ImageLink, &v.FacebookLink, &v.Website)
}

// Create inserts a new venue and one genre row per entry of v.Genres in a
// single transaction.  The venue row is inserted first so its generated id
// is visible to the genre inserts.  On success v.ID is populated; on
// failure nothing is committed.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	if v.ImageLink == "" {
		v.ImageLink = model.DefaultImageLink
	}
	v.Genres = CleanGenres(v.Genres)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `INSERT INTO venues (name, city, state, address, phone, seeking_talent, seeking_description, image_link, facebook_link, website)
		           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, q, v.Name, v.City, v.State, v.Address, v.Phone,
			v.SeekingTalent, v.SeekingDescription, v.ImageLink, v.FacebookLink, v.Website)
		if err != nil {
			return fault("insert venue", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fault("venue id", err)
		}
		v.ID = uint64(id)
		return venueGenres.insert(ctx, tx, v.ID, v.Genres)
	})
}

// GetByID fetches a venue and its genres.  It returns ErrVenueNotFound if
// no row is found.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	q := `SELECT ` + venueColumns + ` FROM venues WHERE id = ?`
	var v model.Venue
	if err := scanVenue(r.db.QueryRowContext(ctx, q, id), &v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, fault("get venue", err)
	}
	genres, err := venueGenres.list(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	v.Genres = genres
	return &v, nil
}

// ListAll returns every venue without genres, ordered by city, state and
// id so that area groups come out in a stable order.
func (r *VenueRepo) ListAll(ctx context.Context) ([]model.Venue, error) {
	q := `SELECT ` + venueColumns + ` FROM venues ORDER BY city, state, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fault("list venues", err)
	}
	defer rows.Close()
	var out []model.Venue
	for rows.Next() {
		var v model.Venue
		if err := scanVenue(rows, &v); err != nil {
			return nil, fault("scan venue", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("iterate venues", err)
	}
	return out, nil
}

// SearchByName returns id and name of every venue whose name contains term,
// ignoring case, ordered by id.  An empty term matches all venues.
func (r *VenueRepo) SearchByName(ctx context.Context, term string) ([]model.SearchHit, error) {
	const q = `SELECT id, name FROM venues ORDER BY id`
	return searchHits(ctx, r.db, q, term)
}

// Update overwrites the scalar fields of the venue with v.ID and replaces
// its genres with v.Genres, all in one transaction.  It returns
// ErrVenueNotFound when the venue does not exist.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	if v.ImageLink == "" {
		v.ImageLink = model.DefaultImageLink
	}
	v.Genres = CleanGenres(v.Genres)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := rowExists(ctx, tx, "venues", v.ID, ErrVenueNotFound); err != nil {
			return err
		}
		const q = `UPDATE venues
		           SET name = ?, city = ?, state = ?, address = ?, phone = ?, seeking_talent = ?,
		               seeking_description = ?, image_link = ?, facebook_link = ?, website = ?
		           WHERE id = ?`
		if _, err := tx.ExecContext(ctx, q, v.Name, v.City, v.State, v.Address, v.Phone, v.SeekingTalent,
			v.SeekingDescription, v.ImageLink, v.FacebookLink, v.Website, v.ID); err != nil {
			return fault("update venue", err)
		}
		return venueGenres.replace(ctx, tx, v.ID, v.Genres)
	})
}

// Delete removes a venue together with its genre rows and shows.  The
// dependent rows are deleted explicitly inside the transaction so the
// cascade holds even where the store does not enforce foreign keys.  It
// returns ErrVenueNotFound when the venue does not exist.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := rowExists(ctx, tx, "venues", id, ErrVenueNotFound); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM shows WHERE venue_id = ?`, id); err != nil {
			return fault("delete venue shows", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM venue_genres WHERE venue_id = ?`, id); err != nil {
			return fault("delete venue genres", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id); err != nil {
			return fault("delete venue", err)
		}
		return nil
	})
}
