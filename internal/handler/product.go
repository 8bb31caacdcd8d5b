package handler

import (
    "bytes"
    "context"
    "encoding/json"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shopcart/internal/common"
    "github.com/iliyamo/shopcart/internal/middleware"
    "github.com/iliyamo/shopcart/internal/model"
    "github.com/iliyamo/shopcart/internal/service"
)

// CatalogService is the part of service.CatalogService used by the handlers.
type CatalogService interface {
    CreateProduct(ctx context.Context, in service.ProductInput, creatorID uint64) (model.Product, error)
    ListProducts(ctx context.Context) ([]model.Product, error)
    SearchProducts(ctx context.Context, fragment string) (model.Product, error)
    SearchAll(ctx context.Context, fragment string) ([]model.Product, error)
}

// ProductHandler serves the admin product endpoints.  Every route is
// expected to sit behind JWTAuth and AdminOnly.
type ProductHandler struct {
    Catalog CatalogService
}

func NewProductHandler(cat CatalogService) *ProductHandler {
    return &ProductHandler{Catalog: cat}
}

type createProductReq struct {
    Code        string          `json:"code"`
    Name        string          `json:"name"`
    Price       json.RawMessage `json:"price"` // number or numeric string
    Description string          `json:"description"`
}

func (h *ProductHandler) Create(c echo.Context) error {
    cl, ok := middleware.ClaimsFrom(c)
    if !ok {
        return RespondError(c, common.ErrMissingToken)
    }
    var req createProductReq
    if err := c.Bind(&req); err != nil {
        return RespondError(c, common.Validation("invalid request body"))
    }
    price, err := parsePrice(req.Price)
    if err != nil {
        return RespondError(c, err)
    }

    p, err := h.Catalog.CreateProduct(c.Request().Context(), service.ProductInput{
        Code:        req.Code,
        Name:        req.Name,
        Price:       price,
        Description: req.Description,
    }, cl.UserID)
    if err != nil {
        return RespondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"message": "product created successfully", "product": p})
}

func (h *ProductHandler) List(c echo.Context) error {
    items, err := h.Catalog.ListProducts(c.Request().Context())
    if err != nil {
        return RespondError(c, err)
    }
    return c.JSON(http.StatusOK, items)
}

// Search returns the first product whose code contains ?code, or every
// match when ?all=true.
func (h *ProductHandler) Search(c echo.Context) error {
    code := c.QueryParam("code")
    if all, _ := strconv.ParseBool(c.QueryParam("all")); all {
        items, err := h.Catalog.SearchAll(c.Request().Context(), code)
        if err != nil {
            return RespondError(c, err)
        }
        return c.JSON(http.StatusOK, items)
    }
    p, err := h.Catalog.SearchProducts(c.Request().Context(), code)
    if err != nil {
        return RespondError(c, err)
    }
    return c.JSON(http.StatusOK, p)
}

// parsePrice accepts a JSON number or a string holding one.  An absent or
// null price yields nil, which the service reports as missing.
func parsePrice(raw json.RawMessage) (*float64, error) {
    raw = bytes.TrimSpace(raw)
    if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
        return nil, nil
    }
    var num float64
    if err := json.Unmarshal(raw, &num); err == nil {
        return &num, nil
    }
    var s string
    if err := json.Unmarshal(raw, &s); err == nil {
        s = strings.TrimSpace(s)
        if s == "" {
            return nil, nil
        }
        if v, err := strconv.ParseFloat(s, 64); err == nil {
            return &v, nil
        }
    }
    return nil, common.Validation("price must be a positive number")
}
