package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                      // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"    // Echo's bundled middlewares
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/venue-directory/internal/config"   // Internal config loader
	"github.com/iliyamo/venue-directory/internal/database" // Connection and schema
	"github.com/iliyamo/venue-directory/internal/handler"
	"github.com/iliyamo/venue-directory/internal/middleware"
	"github.com/iliyamo/venue-directory/internal/queue"
	"github.com/iliyamo/venue-directory/internal/repository"
	"github.com/iliyamo/venue-directory/internal/router" // Internal router setup
	"github.com/iliyamo/venue-directory/internal/service"
	"github.com/iliyamo/venue-directory/internal/view"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	logger := newLogger(cfg)
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("opening database")
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.Migrate(migrateCtx, db, cfg.DBDriver)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("applying schema")
	}

	cacheCfg := config.LoadCacheConfig()
	limitCfg := config.LoadRateLimitConfig()
	var rdb *redis.Client
	if cacheCfg.Enabled || limitCfg.Enabled {
		rdb = config.NewRedisClient(config.LoadRedisConfig())
	}
	if rdb != nil {
		defer rdb.Close()
	}

	dir := service.NewDirectory(
		repository.NewVenueRepo(db),
		repository.NewArtistRepo(db),
		repository.NewShowRepo(db),
		newPublisher(config.LoadEventsConfig()),
	)

	pages, err := view.New()
	if err != nil {
		log.Fatal().Err(err).Msg("parsing templates")
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HidePort = true
	handler.Configure(e, pages)
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	router.RegisterRoutes(e, db) // Register application routes
	router.RegisterDirectory(e, handler.NewDirectoryHandler(dir), router.Middleware{
		Cache:     cacheCfg,
		RateLimit: limitCfg,
		Redis:     rdb,
	})

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("driver", cfg.DBDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Str("service", "venue-directory").Logger()
}

// newPublisher returns the activity publisher selected by cfg.
func newPublisher(cfg config.EventsConfig) queue.Publisher {
	if !cfg.Enabled {
		return queue.NopPublisher{}
	}
	log.Info().Str("queue", cfg.Queue).Msg("publishing activity events")
	return queue.NewAMQPPublisher(cfg.URL, cfg.Queue)
}
