package repository

import (
	"context"
	"fmt"
	"strings"
)

// genreTable names the tag table and owner column of one entity kind.
// Both values are compile-time constants, never user input.
type genreTable struct {
	table    string
	ownerCol string
}

var (
	venueGenres  = genreTable{table: "venue_genres", ownerCol: "venue_id"}
	artistGenres = genreTable{table: "artist_genres", ownerCol: "artist_id"}
)

// CleanGenres trims each label and drops blanks.  Duplicates are kept.
func CleanGenres(in []string) []string {
	out := make([]string, 0, len(in))
	for _, g := range in {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// insert adds one row per genre for ownerID.
func (g genreTable) insert(ctx context.Context, q querier, ownerID uint64, genres []string) error {
	stmt := fmt.Sprintf("INSERT INTO %s (%s, genre) VALUES (?, ?)", g.table, g.ownerCol)
	for _, genre := range genres {
		if _, err := q.ExecContext(ctx, stmt, ownerID, genre); err != nil {
			return fault("insert "+g.table, err)
		}
	}
	return nil
}

// replace removes every genre row of ownerID and inserts genres.
func (g genreTable) replace(ctx context.Context, q querier, ownerID uint64, genres []string) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", g.table, g.ownerCol)
	if _, err := q.ExecContext(ctx, stmt, ownerID); err != nil {
		return fault("clear "+g.table, err)
	}
	return g.insert(ctx, q, ownerID, genres)
}

// list returns the genre labels of ownerID in insertion order.
func (g genreTable) list(ctx context.Context, q querier, ownerID uint64) ([]string, error) {
	stmt := fmt.Sprintf("SELECT genre FROM %s WHERE %s = ? ORDER BY id", g.table, g.ownerCol)
	rows, err := q.QueryContext(ctx, stmt, ownerID)
	if err != nil {
		return nil, fault("list "+g.table, err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var genre string
		if err := rows.Scan(&genre); err != nil {
			return nil, fault("scan "+g.table, err)
		}
		out = append(out, genre)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("iterate "+g.table, err)
	}
	return out, nil
}
