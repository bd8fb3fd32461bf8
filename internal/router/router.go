package router // package router defines how HTTP routes are registered for the app

import (
	"database/sql"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/venue-directory/internal/config"
	"github.com/iliyamo/venue-directory/internal/handler"
	"github.com/iliyamo/venue-directory/internal/middleware"
)

// RegisterRoutes registers operational routes on the provided Echo
// instance.  At the moment it only exposes a health check endpoint.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	// Load balancers and monitoring systems probe this to verify that the
	// service and its database are up.
	e.GET("/healthz", handler.Health(db))
}

// Middleware bundles the Redis backed middlewares.  A nil Redis client
// turns each of them into a pass-through.
type Middleware struct {
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
}

// RegisterDirectory registers the venue, artist and show pages.  Plain
// list pages go through the response cache; pages that split shows into
// past and upcoming are always rendered fresh, since that split moves with
// the clock and no write would purge it.  Form submissions go through the
// rate limiter and purge the cache when they succeed.
func RegisterDirectory(e *echo.Echo, h *handler.DirectoryHandler, m Middleware) {
	cached := middleware.NewRedisCache(m.Cache, m.Redis, handler.HasFlash)
	limited := middleware.NewTokenBucket(m.RateLimit, m.Redis)
	purge := middleware.PurgeOnWrite(m.Cache, m.Redis)

	e.GET("/", h.Home)

	// Venues
	e.GET("/venues", h.Venues)
	e.POST("/venues/search", h.SearchVenues, limited)
	e.GET("/venues/create", h.NewVenueForm)
	e.POST("/venues/create", h.CreateVenue, limited, purge)
	e.GET("/venues/:id", h.ShowVenue)
	e.GET("/venues/:id/edit", h.EditVenueForm)
	e.POST("/venues/:id/edit", h.UpdateVenue, limited, purge)
	// Browsers can only POST from a form; scripts may use DELETE.
	e.POST("/venues/:id/delete", h.DeleteVenue, limited, purge)
	e.DELETE("/venues/:id/delete", h.DeleteVenue, limited, purge)

	// Artists
	e.GET("/artists", h.Artists, cached)
	e.POST("/artists/search", h.SearchArtists, limited)
	e.GET("/artists/create", h.NewArtistForm)
	e.POST("/artists/create", h.CreateArtist, limited, purge)
	e.GET("/artists/:id", h.ShowArtist)
	e.GET("/artists/:id/edit", h.EditArtistForm)
	e.POST("/artists/:id/edit", h.UpdateArtist, limited, purge)

	// Shows
	e.GET("/shows", h.Shows, cached)
	e.GET("/shows/create", h.NewShowForm)
	e.POST("/shows/create", h.CreateShow, limited, purge)
}
