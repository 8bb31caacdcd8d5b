package middleware

// identity.go holds the helpers used to key per-caller state such as rate
// limit buckets.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userID returns the authenticated user's id as a string, or "guest" when
// JWTAuth has not stored any claims.
func userID(c echo.Context) string {
    if cl, ok := ClaimsFrom(c); ok {
        return strconv.FormatUint(cl.UserID, 10)
    }
    return "guest"
}
