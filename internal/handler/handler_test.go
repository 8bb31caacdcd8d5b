package handler

import (
    "context"
    "encoding/json"
    "errors"
    "io"
    "log/slog"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/shopcart/internal/common"
    "github.com/iliyamo/shopcart/internal/middleware"
    "github.com/iliyamo/shopcart/internal/model"
    "github.com/iliyamo/shopcart/internal/service"
    "github.com/iliyamo/shopcart/internal/utils"
)

type stubAuth struct {
    registered service.RegisterInput
    regErr     error
    login      service.LoginResult
    loginErr   error
}

func (s *stubAuth) Register(_ context.Context, in service.RegisterInput) error {
    s.registered = in
    return s.regErr
}

func (s *stubAuth) Login(context.Context, string, string) (service.LoginResult, error) {
    return s.login, s.loginErr
}

type stubCatalog struct {
    created   service.ProductInput
    creator   uint64
    createErr error
    items     []model.Product
    found     model.Product
    searchErr error
    allCalled bool
}

func (s *stubCatalog) CreateProduct(_ context.Context, in service.ProductInput, creatorID uint64) (model.Product, error) {
    s.created, s.creator = in, creatorID
    if s.createErr != nil {
        return model.Product{}, s.createErr
    }
    return model.Product{ID: 1, Code: in.Code, Name: in.Name, Price: *in.Price, CreatedBy: creatorID}, nil
}

func (s *stubCatalog) ListProducts(context.Context) ([]model.Product, error) { return s.items, nil }

func (s *stubCatalog) SearchProducts(context.Context, string) (model.Product, error) {
    return s.found, s.searchErr
}

func (s *stubCatalog) SearchAll(context.Context, string) ([]model.Product, error) {
    s.allCalled = true
    return s.items, nil
}

func call(h echo.HandlerFunc, method, target, body string, claims *utils.SessionClaims) *httptest.ResponseRecorder {
    e := echo.New()
    req := httptest.NewRequest(method, target, strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if claims != nil {
        c.Set(middleware.ClaimsKey, claims)
    }
    _ = h(c)
    return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
    t.Helper()
    var m map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
    return m
}

var admin = &utils.SessionClaims{UserID: 5, Email: "a@b.co", Role: model.RoleAdmin}

func TestRegister(t *testing.T) {
    auth := &stubAuth{}
    rec := call(NewAuthHandler(auth).Register, http.MethodPost, "/api/register",
        `{"name":"Ana","email":"ana@example.com","password":"secret1","role":"admin"}`, nil)

    assert.Equal(t, http.StatusCreated, rec.Code)
    assert.Equal(t, "user registered successfully", decode(t, rec)["message"])
    assert.Equal(t, "ana@example.com", auth.registered.Email)
}

func TestRegister_Errors(t *testing.T) {
    auth := &stubAuth{regErr: common.ErrDuplicateEmail}
    rec := call(NewAuthHandler(auth).Register, http.MethodPost, "/api/register", `{"email":"x"}`, nil)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "email is already registered", decode(t, rec)["error"])

    rec = call(NewAuthHandler(&stubAuth{}).Register, http.MethodPost, "/api/register", `{"email":`, nil)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    auth = &stubAuth{regErr: common.Storage("insert user", errors.New("Error 2013: lost connection"))}
    rec = call(NewAuthHandler(auth).Register, http.MethodPost, "/api/register", `{}`, nil)
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.NotContains(t, rec.Body.String(), "2013")
}

func TestLogin(t *testing.T) {
    exp := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
    auth := &stubAuth{login: service.LoginResult{
        Token:     "tok",
        ExpiresAt: exp,
        User:      model.Profile{ID: 1, Name: "Ana", Email: "ana@example.com", Role: "admin"},
    }}
    rec := call(NewAuthHandler(auth).Login, http.MethodPost, "/api/login", `{"email":"ana@example.com","password":"secret1"}`, nil)

    require.Equal(t, http.StatusOK, rec.Code)
    body := decode(t, rec)
    assert.Equal(t, "login successful", body["message"])
    assert.Equal(t, "tok", body["token"])
    assert.Equal(t, map[string]any{"id": float64(1), "name": "Ana", "email": "ana@example.com", "role": "admin"}, body["user"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
    rec := call(NewAuthHandler(&stubAuth{loginErr: common.ErrInvalidCredentials}).Login, http.MethodPost, "/api/login", `{}`, nil)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Equal(t, "invalid credentials", decode(t, rec)["error"])
}

func TestMe(t *testing.T) {
    claims := &utils.SessionClaims{UserID: 3, Email: "u@b.co", Role: "user",
        RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Unix(1700000000, 0))}}
    rec := call(NewAuthHandler(&stubAuth{}).Me, http.MethodGet, "/api/me", "", claims)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"id":3,"email":"u@b.co","role":"user","exp":1700000000}`, rec.Body.String())

    rec = call(NewAuthHandler(&stubAuth{}).Me, http.MethodGet, "/api/me", "", nil)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProduct_PriceForms(t *testing.T) {
    for _, body := range []string{
        `{"code":"W-1","name":"Widget","price":9.99}`,
        `{"code":"W-1","name":"Widget","price":"9.99"}`,
        `{"code":"W-1","name":"Widget","price":" 9.99 "}`,
    } {
        cat := &stubCatalog{}
        rec := call(NewProductHandler(cat).Create, http.MethodPost, "/api/products", body, admin)
        require.Equal(t, http.StatusCreated, rec.Code, body)
        assert.Equal(t, 9.99, *cat.created.Price)
        assert.Equal(t, uint64(5), cat.creator)
        assert.Equal(t, "product created successfully", decode(t, rec)["message"])
    }
}

func TestCreateProduct_BadPrice(t *testing.T) {
    cat := &stubCatalog{}
    rec := call(NewProductHandler(cat).Create, http.MethodPost, "/api/products", `{"code":"A","name":"A","price":"cheap"}`, admin)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "price must be a positive number", decode(t, rec)["error"])
    assert.Empty(t, cat.created.Code)
}

func TestParsePrice(t *testing.T) {
    p, err := parsePrice(nil)
    assert.NoError(t, err)
    assert.Nil(t, p)

    p, err = parsePrice(json.RawMessage("null"))
    assert.NoError(t, err)
    assert.Nil(t, p)

    p, err = parsePrice(json.RawMessage(`""`))
    assert.NoError(t, err)
    assert.Nil(t, p)

    p, err = parsePrice(json.RawMessage(`12`))
    require.NoError(t, err)
    assert.Equal(t, 12.0, *p)

    _, err = parsePrice(json.RawMessage(`true`))
    assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCreateProduct_Duplicate(t *testing.T) {
    cat := &stubCatalog{createErr: common.ErrDuplicateCode}
    rec := call(NewProductHandler(cat).Create, http.MethodPost, "/api/products", `{"code":"A","name":"A","price":1}`, admin)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "a product with that code already exists", decode(t, rec)["error"])
}

func TestListProducts_EmptyIsArray(t *testing.T) {
    rec := call(NewProductHandler(&stubCatalog{items: []model.Product{}}).List, http.MethodGet, "/api/products", "", admin)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSearch(t *testing.T) {
    cat := &stubCatalog{found: model.Product{ID: 2, Code: "SHOE-1"}}
    rec := call(NewProductHandler(cat).Search, http.MethodGet, "/api/products/search?code=shoe", "", admin)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "SHOE-1", decode(t, rec)["code"])
    assert.False(t, cat.allCalled)

    cat = &stubCatalog{items: []model.Product{{Code: "SHOE-1"}, {Code: "SHOE-2"}}}
    rec = call(NewProductHandler(cat).Search, http.MethodGet, "/api/products/search?code=shoe&all=true", "", admin)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.True(t, cat.allCalled)

    cat = &stubCatalog{searchErr: common.ErrNotFound}
    rec = call(NewProductHandler(cat).Search, http.MethodGet, "/api/products/search?code=x", "", admin)
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Equal(t, "product not found", decode(t, rec)["error"])
}

func TestHTTPErrorHandler(t *testing.T) {
    e := echo.New()
    e.HTTPErrorHandler = HTTPErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
    e.GET("/boom", func(echo.Context) error { return errors.New("driver exploded") })

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())

    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
