// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "context"
    "time"
)

// Activity kinds published by the directory.
const (
    KindVenueCreated  = "venue.created"
    KindVenueUpdated  = "venue.updated"
    KindVenueDeleted  = "venue.deleted"
    KindArtistCreated = "artist.created"
    KindArtistUpdated = "artist.updated"
    KindShowCreated   = "show.scheduled"
)

// ActivityEvent is published after a directory write is committed.  It
// carries enough information for downstream consumers to keep an audit
// trail without querying the primary database.
type ActivityEvent struct {
    Kind       string `json:"kind"`
    EntityID   uint64 `json:"entity_id"`
    Name       string `json:"name"`
    ArtistID   uint64 `json:"artist_id,omitempty"`
    VenueID    uint64 `json:"venue_id,omitempty"`
    StartTime  string `json:"start_time,omitempty"`
    RequestID  string `json:"request_id,omitempty"`
    OccurredAt string `json:"occurred_at"`
}

// NewActivityEvent stamps an event of kind with the given time in RFC 3339.
func NewActivityEvent(kind string, id uint64, name string, at time.Time) ActivityEvent {
    return ActivityEvent{
        Kind:       kind,
        EntityID:   id,
        Name:       name,
        OccurredAt: at.UTC().Format(time.RFC3339),
    }
}

type requestIDKey struct{}

// ContextWithRequestID attaches the id of the HTTP request that caused a
// write, so events published from it can be correlated with access logs.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
    return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by ContextWithRequestID or "".
func RequestIDFromContext(ctx context.Context) string {
    id, _ := ctx.Value(requestIDKey{}).(string)
    return id
}
