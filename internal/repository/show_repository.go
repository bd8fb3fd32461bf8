// Package repository contains data access logic for show operations.  A
// show links one artist to one venue at a start time.  Start times are
// stored in DB format "2006-01-02 15:04:05" (UTC) so both drivers compare
// and order them the same way.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/venue-directory/internal/database"
	"github.com/iliyamo/venue-directory/internal/model"
)

// dbTimeLayout is the format start times are written in.
const dbTimeLayout = "2006-01-02 15:04:05"

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// Create inserts a new show after checking, inside the same transaction,
// that both the artist and the venue exist.  The artist is checked first,
// so ErrArtistNotFound wins when both ids are invalid.  A second show for
// the same artist, venue and start time returns ErrConflict.  On success
// s.ID is populated and s.StartTime is normalised to UTC seconds.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	s.StartTime = s.StartTime.UTC().Truncate(time.Second)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := rowExists(ctx, tx, "artists", s.ArtistID, ErrArtistNotFound); err != nil {
			return err
		}
		if err := rowExists(ctx, tx, "venues", s.VenueID, ErrVenueNotFound); err != nil {
			return err
		}
		const q = `INSERT INTO shows (artist_id, venue_id, start_time) VALUES (?, ?, ?)`
		res, err := tx.ExecContext(ctx, q, s.ArtistID, s.VenueID, s.StartTime.Format(dbTimeLayout))
		if err != nil {
			if database.IsDuplicate(err) {
				return ErrConflict
			}
			return fault("insert show", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fault("show id", err)
		}
		s.ID = uint64(id)
		return nil
	})
}

// ListSlots returns every show without joins, ordered by id.  It feeds the
// upcoming-show counters of list and search pages.
func (r *ShowRepo) ListSlots(ctx context.Context) ([]model.Show, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, artist_id, venue_id, start_time FROM shows ORDER BY id`)
	if err != nil {
		return nil, fault("list shows", err)
	}
	defer rows.Close()
	out := []model.Show{}
	for rows.Next() {
		var s model.Show
		var st dbTime
		if err := rows.Scan(&s.ID, &s.ArtistID, &s.VenueID, &st); err != nil {
			return nil, fault("scan show", err)
		}
		s.StartTime = st.Time
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("iterate shows", err)
	}
	return out, nil
}

const listingQuery = `
SELECT s.id, s.artist_id, a.name, a.image_link, s.venue_id, v.name, v.image_link, s.start_time
FROM shows s
LEFT JOIN artists a ON a.id = s.artist_id
LEFT JOIN venues  v ON v.id = s.venue_id`

// ListAll returns every show joined with its artist and venue, ordered by
// start time and id.  Shows whose artist or venue row is missing are
// returned with Dangling set.
func (r *ShowRepo) ListAll(ctx context.Context) ([]model.ShowListing, error) {
	return r.listings(ctx, listingQuery+` ORDER BY s.start_time, s.id`)
}

// ListByVenue returns the shows hosted by venueID ordered by start time.
func (r *ShowRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.ShowListing, error) {
	return r.listings(ctx, listingQuery+` WHERE s.venue_id = ? ORDER BY s.start_time, s.id`, venueID)
}

// ListByArtist returns the shows played by artistID ordered by start time.
func (r *ShowRepo) ListByArtist(ctx context.Context, artistID uint64) ([]model.ShowListing, error) {
	return r.listings(ctx, listingQuery+` WHERE s.artist_id = ? ORDER BY s.start_time, s.id`, artistID)
}

func (r *ShowRepo) listings(ctx context.Context, q string, args ...any) ([]model.ShowListing, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fault("list show listings", err)
	}
	defer rows.Close()
	out := []model.ShowListing{}
	for rows.Next() {
		var (
			l                   model.ShowListing
			artistName, artImg  sql.NullString
			venueName, venueImg sql.NullString
			st                  dbTime
		)
		if err := rows.Scan(&l.ShowID, &l.ArtistID, &artistName, &artImg,
			&l.VenueID, &venueName, &venueImg, &st); err != nil {
			return nil, fault("scan show listing", err)
		}
		l.ArtistName, l.ArtistImageLink = artistName.String, artImg.String
		l.VenueName, l.VenueImageLink = venueName.String, venueImg.String
		l.Dangling = !artistName.Valid || !venueName.Valid
		l.StartTime = st.Time
		l.StartTimeText = st.Time.Format(model.StartTimeLayout)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("iterate show listings", err)
	}
	return out, nil
}

// rowExists returns notFound unless table has a row with id.  table is
// always a constant supplied by this package.
func rowExists(ctx context.Context, q querier, table string, id uint64, notFound error) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if err != nil {
		return fault("check "+table, err)
	}
	return nil
}

// dbTime scans a DATETIME column.  MySQL with parseTime returns a
// time.Time; SQLite may return either a time.Time or the stored text.
type dbTime struct {
	Time time.Time
}

// Scan implements sql.Scanner.
func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("dbTime: unsupported type %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range []string{dbTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v.UTC()
			return nil
		}
	}
	return fmt.Errorf("dbTime: cannot parse %q", s)
}
