package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/shopcart/internal/common"
	"github.com/iliyamo/shopcart/internal/model"
	"github.com/iliyamo/shopcart/internal/queue"
	"github.com/iliyamo/shopcart/internal/repository"
)

// Column limits of the products table.
const (
	MaxCodeLen        = 64
	MaxProductNameLen = 255
	// MaxPriceCents is the largest DECIMAL(12,2) value.
	MaxPriceCents = 999_999_999_999
)

// ProductInput is the payload of a create-product request.  Price is nil
// when the client omitted it.
type ProductInput struct {
	Code        string
	Name        string
	Price       *float64
	Description string
}

// CatalogService manages products.  Callers are expected to have checked
// the admin role before invoking it.
type CatalogService struct {
	products ProductStore
	events   EventPublisher
	log      *slog.Logger
}

func NewCatalogService(products ProductStore, events EventPublisher, log *slog.Logger) *CatalogService {
	return &CatalogService{products: products, events: events, log: log}
}

// CreateProduct validates in and stores it on behalf of creatorID.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput, creatorID uint64) (model.Product, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" || in.Price == nil {
		return model.Product{}, common.Validation("code, name and price are required")
	}
	price := *in.Price
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return model.Product{}, common.Validation("price must be a positive number")
	}
	if utf8.RuneCountInString(code) > MaxCodeLen {
		return model.Product{}, common.Validation("code must be at most %d characters", MaxCodeLen)
	}
	if utf8.RuneCountInString(name) > MaxProductNameLen {
		return model.Product{}, common.Validation("name must be at most %d characters", MaxProductNameLen)
	}
	if math.Round(price*100) > MaxPriceCents {
		return model.Product{}, common.Validation("price must be below 10000000000")
	}

	p := model.Product{Code: code, Name: name, Price: price, CreatedBy: creatorID}
	if d := strings.TrimSpace(in.Description); d != "" {
		p.Description = &d
	}

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.products.Create(dbCtx, &p); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return model.Product{}, common.ErrDuplicateCode
		case errors.Is(err, repository.ErrCheckViolation):
			return model.Product{}, common.Validation("price must be a positive number")
		case errors.Is(err, repository.ErrOutOfRange):
			return model.Product{}, common.Validation("a field exceeds its maximum size")
		}
		s.log.ErrorContext(ctx, "create product failed", "code", code, "err", err)
		return model.Product{}, common.Storage("insert product", err)
	}

	s.log.InfoContext(ctx, "product created", "product_id", p.ID, "code", p.Code, "created_by", creatorID)
	publish(ctx, s.log, s.events, queue.ProductCreatedQueue, queue.ProductCreatedEvent{
		ProductID: p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Price:     p.Price,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	})
	return p, nil
}

// ListProducts returns every product, newest first.
func (s *CatalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	items, err := s.products.List(dbCtx)
	if err != nil {
		s.log.ErrorContext(ctx, "list products failed", "err", err)
		return nil, common.Storage("list products", err)
	}
	return items, nil
}

// SearchProducts returns the first product whose code contains fragment,
// ignoring case, or common.ErrNotFound.
func (s *CatalogService) SearchProducts(ctx context.Context, fragment string) (model.Product, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return model.Product{}, common.Validation("a code to search for is required")
	}
	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	p, err := s.products.FirstByCodeFragment(dbCtx, fragment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, common.ErrNotFound
		}
		s.log.ErrorContext(ctx, "search products failed", "fragment", fragment, "err", err)
		return model.Product{}, common.Storage("search products", err)
	}
	return p, nil
}

// SearchAll returns every product whose code contains fragment.  An empty
// result is not an error.
func (s *CatalogService) SearchAll(ctx context.Context, fragment string) ([]model.Product, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, common.Validation("a code to search for is required")
	}
	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	items, err := s.products.SearchByCodeFragment(dbCtx, fragment)
	if err != nil {
		s.log.ErrorContext(ctx, "search products failed", "fragment", fragment, "err", err)
		return nil, common.Storage("search products", err)
	}
	return items, nil
}
