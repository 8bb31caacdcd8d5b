package middleware // middleware provides shared request processing for handlers

import (
    "errors"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shopcart/internal/common"
    "github.com/iliyamo/shopcart/internal/utils"
)

// Context keys populated by JWTAuth.
const (
    ClaimsKey = "claims"
    UserIDKey = "user_id"
    RoleKey   = "role"
)

// TokenVerifier checks a raw session token and returns its claims.
type TokenVerifier interface {
    Verify(raw string) (*utils.SessionClaims, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer session token
// and stores its claims in the request context.  A missing header and a
// bad token are both answered with 401; nothing downstream runs.
func JWTAuth(tokens TokenVerifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
            if !ok {
                return deny(c, common.ErrMissingToken)
            }

            claims, err := tokens.Verify(raw)
            if err != nil {
                if errors.Is(err, utils.ErrTokenExpired) {
                    c.Response().Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="token expired"`)
                }
                return deny(c, common.ErrInvalidToken)
            }

            c.Set(ClaimsKey, claims)
            c.Set(UserIDKey, claims.UserID)
            c.Set(RoleKey, claims.Role)
            return next(c)
        }
    }
}

// bearerToken extracts the token from an Authorization header value.  The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
    scheme, raw, found := strings.Cut(strings.TrimSpace(header), " ")
    if !found || !strings.EqualFold(scheme, "Bearer") {
        return "", false
    }
    raw = strings.TrimSpace(raw)
    return raw, raw != ""
}

// ClaimsFrom returns the claims stored by JWTAuth, if any.
func ClaimsFrom(c echo.Context) (*utils.SessionClaims, bool) {
    cl, ok := c.Get(ClaimsKey).(*utils.SessionClaims)
    return cl, ok && cl != nil
}

func deny(c echo.Context, err error) error {
    return c.JSON(common.HTTPStatus(err), map[string]string{"error": common.PublicMessage(err)})
}

