package middleware

import (
    "encoding/json"
    "io"
    "log/slog"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/shopcart/internal/config"
    "github.com/iliyamo/shopcart/internal/model"
    "github.com/iliyamo/shopcart/internal/utils"
)

const testSecret = "middleware-secret"

func protected(t *testing.T, issuer *utils.TokenIssuer, mws ...echo.MiddlewareFunc) *echo.Echo {
    t.Helper()
    e := echo.New()
    chain := append([]echo.MiddlewareFunc{JWTAuth(issuer)}, mws...)
    e.GET("/p", func(c echo.Context) error {
        cl, ok := ClaimsFrom(c)
        require.True(t, ok)
        return c.JSON(http.StatusOK, map[string]any{"id": cl.UserID, "role": c.Get(RoleKey)})
    }, chain...)
    return e
}

func do(e *echo.Echo, auth string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, "/p", nil)
    if auth != "" {
        req.Header.Set(echo.HeaderAuthorization, auth)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
    t.Helper()
    var body map[string]string
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    return body["error"]
}

func TestJWTAuth_MissingToken(t *testing.T) {
    e := protected(t, utils.NewTokenIssuer(testSecret, time.Hour))
    for _, h := range []string{"", "Basic abc", "Bearer ", "Bearer"} {
        rec := do(e, h)
        assert.Equal(t, http.StatusUnauthorized, rec.Code, h)
        assert.Equal(t, "missing bearer token", errorOf(t, rec))
    }
}

func TestJWTAuth_InvalidToken(t *testing.T) {
    e := protected(t, utils.NewTokenIssuer(testSecret, time.Hour))
    other, err := utils.NewTokenIssuer("other", time.Hour).Issue(1, "a@b.co", model.RoleAdmin)
    require.NoError(t, err)

    for _, raw := range []string{"garbage", other.Token} {
        rec := do(e, "Bearer "+raw)
        assert.Equal(t, http.StatusUnauthorized, rec.Code)
        assert.Equal(t, "invalid or expired token", errorOf(t, rec))
    }
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
    t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
    issuer := utils.NewTokenIssuer(testSecret, 2*time.Hour)
    tok, err := issuer.WithClock(func() time.Time { return t0 }).Issue(4, "a@b.co", model.RoleAdmin)
    require.NoError(t, err)

    later := issuer.WithClock(func() time.Time { return t0.Add(3 * time.Hour) })
    rec := do(protected(t, later), "Bearer "+tok.Token)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "expired")
}

func TestJWTAuth_ValidTokenStoresClaims(t *testing.T) {
    issuer := utils.NewTokenIssuer(testSecret, time.Hour)
    tok, err := issuer.Issue(9, "a@b.co", model.RoleUser)
    require.NoError(t, err)

    rec := do(protected(t, issuer), "bearer "+tok.Token)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"id":9,"role":"user"}`, rec.Body.String())
}

func TestAdminOnly(t *testing.T) {
    issuer := utils.NewTokenIssuer(testSecret, time.Hour)
    e := protected(t, issuer, AdminOnly())

    user, err := issuer.Issue(2, "u@b.co", model.RoleUser)
    require.NoError(t, err)
    rec := do(e, "Bearer "+user.Token)
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.Equal(t, "access denied: admin role required", errorOf(t, rec))

    admin, err := issuer.Issue(1, "a@b.co", model.RoleAdmin)
    require.NoError(t, err)
    assert.Equal(t, http.StatusOK, do(e, "Bearer "+admin.Token).Code)

    // No token still means 401, not 403.
    assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
}

func TestRequireRole_WithoutAuthMiddleware(t *testing.T) {
    e := echo.New()
    e.GET("/p", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, AdminOnly())
    assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
}

func TestBearerToken(t *testing.T) {
    raw, ok := bearerToken("  Bearer   abc.def  ")
    assert.True(t, ok)
    assert.Equal(t, "abc.def", raw)

    _, ok = bearerToken("Token abc")
    assert.False(t, ok)
}

func TestBuildRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
    req.RemoteAddr = "10.0.0.1:5555"
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/api/auth/login")

    cfg := config.RateLimitConfig{Prefix: "shop:rl", KeyStrategy: "ip_route"}
    assert.Equal(t, "shop:rl:ip:10.0.0.1:route:POST /api/auth/login", buildRateKey(cfg, c))

    cfg.KeyStrategy = "user"
    assert.Equal(t, "shop:rl:user:guest", buildRateKey(cfg, c))

    c.Set(ClaimsKey, &utils.SessionClaims{UserID: 12, Role: model.RoleUser})
    assert.Equal(t, "shop:rl:user:12", buildRateKey(cfg, c))
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
    log := slog.New(slog.NewTextHandler(io.Discard, nil))
    e := echo.New()
    e.GET("/p", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
        NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, log),
        NewRedisCache(config.CacheConfig{Enabled: false}, nil, log),
    )
    rec := do(e, "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestCacheKeyFrom(t *testing.T) {
    e := echo.New()
    ctxFor := func(query string) echo.Context {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/products/search?"+query, nil), httptest.NewRecorder())
        c.SetPath("/api/products/search")
        return c
    }
    cfg := config.CacheConfig{Prefix: "shop:cache", KeyStrategy: "route_query"}
    a := cacheKeyFrom(cfg, ctxFor("code=a"))
    assert.Equal(t, a, cacheKeyFrom(cfg, ctxFor("code=a")))
    assert.NotEqual(t, a, cacheKeyFrom(cfg, ctxFor("code=b")))
    assert.Regexp(t, `^shop:cache:[0-9a-f]{40}$`, a)

    cfg.KeyStrategy = "route"
    assert.Equal(t, cacheKeyFrom(cfg, ctxFor("code=a")), cacheKeyFrom(cfg, ctxFor("code=b")))
}

func TestReplayHeaders_KeepsCurrentRequestID(t *testing.T) {
    stored := http.Header{
        "Content-Type":        {"application/json"},
        "Content-Length":      {"42"},
        echo.HeaderXRequestID: {"first-request"},
        "X-Cache":             {"MISS"},
    }
    dst := http.Header{}
    dst.Set(echo.HeaderXRequestID, "second-request")

    replayHeaders(dst, stored)
    assert.Equal(t, []string{"second-request"}, dst.Values(echo.HeaderXRequestID))
    assert.Equal(t, "application/json", dst.Get("Content-Type"))
    assert.Empty(t, dst.Get("Content-Length"))
    assert.Empty(t, dst.Get("X-Cache"))
}

func TestPayloadEncoding(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`[]`))
    require.NoError(t, err)

    status, gotHdr, body, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
    assert.Equal(t, "[]", string(body))

    _, _, _, ok = decodePayload([]byte{0, 0, 0})
    assert.False(t, ok)
    _, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
    assert.False(t, ok)
}
