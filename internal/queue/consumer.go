// Package queue also contains the background consumer that listens to the
// activity queue and appends one line per event to a log file.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog/log"
)

// Consumer reads activity events from Queue and writes them to LogPath.
type Consumer struct {
    URL     string
    Queue   string
    LogPath string
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes
// messages until ctx is cancelled.  Dial and channel failures are retried
// with exponential backoff capped at 30s.  Messages that cannot be handled
// are rejected without requeue so a bad payload cannot spin the loop.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            log.Warn().Err(err).Dur("retry_in", backoff).Msg("activity-consumer: failed to dial broker")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn().Err(err).Msg("activity-consumer: consume loop ended; reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn().Err(err).Msg("activity-consumer: set QoS failed")
    }
    if err := declare(ch, c.Queue); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handleMessage(d.Body); err != nil {
                log.Error().Err(err).Msg("activity-consumer: handle message failed")
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handleMessage(body []byte) error {
    var ev ActivityEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Kind == "" {
        return errors.New("event without kind")
    }
    if dir := filepath.Dir(c.LogPath); dir != "" {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return fmt.Errorf("mkdir %s: %w", dir, err)
        }
    }
    f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as one newline-terminated audit line.
func FormatLine(ev ActivityEvent) string {
    var b strings.Builder
    fmt.Fprintf(&b, "[%s] %s | id=%d | name=%q", ev.OccurredAt, ev.Kind, ev.EntityID, ev.Name)
    if ev.ArtistID != 0 {
        fmt.Fprintf(&b, " | artist_id=%d", ev.ArtistID)
    }
    if ev.VenueID != 0 {
        fmt.Fprintf(&b, " | venue_id=%d", ev.VenueID)
    }
    if ev.StartTime != "" {
        fmt.Fprintf(&b, " | start_time=%q", ev.StartTime)
    }
    if ev.RequestID != "" {
        fmt.Fprintf(&b, " | request_id=%s", ev.RequestID)
    }
    b.WriteByte('\n')
    return b.String()
}

// sleep waits for d or until ctx is done and reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
