package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// ActivityLog appends one human-readable line per consumed event to a file.
type ActivityLog struct {
    Path string
}

// Append formats the event delivered on queue and writes it to the log.
func (a ActivityLog) Append(queue string, body []byte) error {
    line, err := FormatEvent(queue, body)
    if err != nil {
        return err
    }
    if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(a.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatEvent renders a single log line, newline included.
func FormatEvent(queue string, body []byte) (string, error) {
    switch queue {
    case UserRegisteredQueue:
        var ev UserRegisteredEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal %s: %w", queue, err)
        }
        return fmt.Sprintf("[%s] User registered | user_id=%d | name=%q | email=%q | role=%s\n",
            ev.RegisteredAt, ev.UserID, ev.Name, ev.Email, ev.Role), nil
    case ProductCreatedQueue:
        var ev ProductCreatedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal %s: %w", queue, err)
        }
        return fmt.Sprintf("[%s] Product created | product_id=%d | code=%q | name=%q | price=%.2f | created_by=%d\n",
            ev.CreatedAt, ev.ProductID, ev.Code, ev.Name, ev.Price, ev.CreatedBy), nil
    }
    return "", fmt.Errorf("unknown queue %q", queue)
}

// Consumer drains the event queues into an ActivityLog.
type Consumer struct {
    URL    string
    Log    ActivityLog
    Logger *slog.Logger
}

// Run connects, consumes both event queues and reconnects with backoff
// until ctx is cancelled.  It returns ctx.Err() on shutdown.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Logger.Warn("event consumer: dial failed", "err", err, "retry_in", backoff)
            if err := sleep(ctx, backoff); err != nil {
                return err
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Logger.Warn("event consumer: consume loop ended; reconnecting", "err", err)
        if err := sleep(ctx, 2*time.Second); err != nil {
            return err
        }
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ctx, cancel := context.WithCancel(ctx)
    defer cancel()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Logger.Warn("event consumer: set QoS failed", "err", err)
    }

    type delivery struct {
        queue string
        d     amqp.Delivery
    }
    merged := make(chan delivery)
    done := make(chan error, 2)
    for _, q := range []string{UserRegisteredQueue, ProductCreatedQueue} {
        if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", q, err)
        }
        msgs, err := ch.ConsumeWithContext(ctx, q, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", q, err)
        }
        go func(q string, msgs <-chan amqp.Delivery) {
            for d := range msgs {
                select {
                case merged <- delivery{queue: q, d: d}:
                case <-ctx.Done():
                    done <- ctx.Err()
                    return
                }
            }
            done <- errors.New("deliveries channel closed: " + q)
        }(q, msgs)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case err := <-done:
            return err
        case m := <-merged:
            if err := c.Log.Append(m.queue, m.d.Body); err != nil {
                c.Logger.Error("event consumer: handle message failed", "queue", m.queue, "err", err)
                _ = m.d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = m.d.Ack(false)
        }
    }
}

func sleep(ctx context.Context, d time.Duration) error {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-t.C:
        return nil
    }
}
