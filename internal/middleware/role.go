package middleware

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shopcart/internal/common"
    "github.com/iliyamo/shopcart/internal/model"
)

// RequireRole returns a middleware that lets the request through only when
// the role stored by JWTAuth is one of roles.  It must run after JWTAuth;
// an authenticated caller with the wrong role gets 403, never 401.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get(RoleKey).(string)
            if !ok {
                // JWTAuth did not run.
                return deny(c, common.ErrMissingToken)
            }
            if !allowed[role] {
                return deny(c, common.ErrForbidden)
            }
            return next(c)
        }
    }
}

// AdminOnly is RequireRole(model.RoleAdmin).
func AdminOnly() echo.MiddlewareFunc { return RequireRole(model.RoleAdmin) }
