// Package service implements the business rules behind the HTTP API:
// account registration and login, and the admin product catalog.  Services
// validate input, delegate persistence to repositories and report failures
// with the common error taxonomy.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/shopcart/internal/model"
)

// UserStore persists users.  Create must report a taken email as
// repository.ErrDuplicate; GetByEmail reports a miss as repository.ErrNotFound.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// ProductStore persists products.
type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	List(ctx context.Context) ([]model.Product, error)
	FirstByCodeFragment(ctx context.Context, fragment string) (model.Product, error)
	SearchByCodeFragment(ctx context.Context, fragment string) ([]model.Product, error)
}

// EventPublisher delivers domain events.  Publishing is best-effort: a
// failure is logged and never fails the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, queue string, event any) error
}

// storeTimeout bounds each call into the credential store.
const storeTimeout = 5 * time.Second

func publish(ctx context.Context, log *slog.Logger, events EventPublisher, queue string, event any) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, queue, event); err != nil {
		log.WarnContext(ctx, "event publish failed", "queue", queue, "err", err)
	}
}
