package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog/log"
)

// Publisher sends activity events to the broker.  Errors are returned so
// the caller can log them; publishing never affects the outcome of the
// write that produced the event.
type Publisher interface {
    Publish(ctx context.Context, ev ActivityEvent) error
}

// NopPublisher discards every event.  It is used when events are disabled.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, ActivityEvent) error { return nil }

// AMQPPublisher publishes events to a durable RabbitMQ queue.  A connection
// is dialled per publish; directory writes are rare enough that a pooled
// channel would only add reconnect handling.
type AMQPPublisher struct {
    URL         string
    Queue       string
    DialTimeout time.Duration
}

// NewAMQPPublisher returns a publisher for queue on the broker at url.
func NewAMQPPublisher(url, queue string) *AMQPPublisher {
    return &AMQPPublisher{URL: url, Queue: queue, DialTimeout: 2 * time.Second}
}

// Publish marshals ev and sends it as a persistent message routed to the
// configured queue through the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ActivityEvent) error {
    conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
    if err != nil {
        log.Warn().Err(err).Msg("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Warn().Err(err).Msg("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if err := declare(ch, p.Queue); err != nil {
        log.Warn().Err(err).Str("queue", p.Queue).Msg("rabbitmq: queue declare failed")
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         ev.Kind,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",      // default exchange
        p.Queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        pub,
    ); err != nil {
        log.Warn().Err(err).Msg("rabbitmq: publish failed")
        return err
    }
    return nil
}

func declare(ch *amqp.Channel, queue string) error {
    _, err := ch.QueueDeclare(
        queue, // name
        true,  // durable
        false, // autoDelete
        false, // exclusive
        false, // noWait
        nil,   // args
    )
    return err
}
