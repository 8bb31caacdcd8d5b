package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends JSON events to a named durable queue on the default
// exchange.  Each call opens its own connection, so a broker outage only
// fails the publish at hand.
type Publisher struct {
    URL string
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// Publish marshals event and delivers it to queue as a persistent message.
func (p *Publisher) Publish(ctx context.Context, queue string, event any) error {
    body, err := json.Marshal(event)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    conn, err := amqp.Dial(p.URL)
    if err != nil {
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    // Idempotent; durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("declare %s: %w", queue, err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         queue,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
        return fmt.Errorf("publish %s: %w", queue, err)
    }
    return nil
}

// Discard drops every event.  It is used when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, string, any) error { return nil }
