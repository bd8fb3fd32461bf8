package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/venue-directory/internal/model"
)

// nameContains reports whether name contains term, ignoring case.  Both
// sides are folded in Go so the match does not depend on the driver's
// LOWER(), which only folds ASCII on SQLite.  An empty term matches
// everything.
func nameContains(name, term string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// searchHits runs query, which must select id and name ordered by id, and
// keeps the rows whose name contains term.
func searchHits(ctx context.Context, q querier, query, term string) ([]model.SearchHit, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fault("search", err)
	}
	defer rows.Close()
	out := []model.SearchHit{}
	for rows.Next() {
		var h model.SearchHit
		if err := rows.Scan(&h.ID, &h.Name); err != nil {
			return nil, fault("scan search hit", err)
		}
		if nameContains(h.Name, term) {
			out = append(out, h)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fault("iterate search hits", err)
	}
	return out, nil
}
