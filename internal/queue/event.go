// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  Each event type has its own durable queue.
const (
    UserRegisteredQueue = "user.registered"
    ProductCreatedQueue = "product.created"
)

// UserRegisteredEvent is published after a new account is stored.  It
// never carries the password or its hash.
type UserRegisteredEvent struct {
    UserID       uint64 `json:"user_id"`
    Name         string `json:"name"`
    Email        string `json:"email"`
    Role         string `json:"role"`
    RegisteredAt string `json:"registered_at"`
}

// ProductCreatedEvent is published after an admin adds a product.
type ProductCreatedEvent struct {
    ProductID uint64  `json:"product_id"`
    Code      string  `json:"code"`
    Name      string  `json:"name"`
    Price     float64 `json:"price"`
    CreatedBy uint64  `json:"created_by"`
    CreatedAt string  `json:"created_at"`
}
