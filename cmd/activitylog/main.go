// Command activitylog consumes directory activity events from RabbitMQ and
// appends them to ACTIVITY_LOG_PATH.  It runs separately from the server.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/venue-directory/internal/config"
	"github.com/iliyamo/venue-directory/internal/queue"
)

func main() {
	_ = godotenv.Load()
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", "activitylog").Logger()

	cfg := config.LoadEventsConfig()
	c := &queue.Consumer{URL: cfg.URL, Queue: cfg.Queue, LogPath: cfg.LogPath}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("queue", cfg.Queue).Str("path", cfg.LogPath).Msg("consuming activity events")
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
	log.Info().Msg("consumer stopped")
}
