package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shopcart/internal/common"
    "github.com/iliyamo/shopcart/internal/middleware"
    "github.com/iliyamo/shopcart/internal/service"
)

// AuthService is the part of service.AuthService used by the handlers.
type AuthService interface {
    Register(ctx context.Context, in service.RegisterInput) error
    Login(ctx context.Context, email, password string) (service.LoginResult, error)
}

type AuthHandler struct {
    Auth AuthService
}

func NewAuthHandler(a AuthService) *AuthHandler {
    return &AuthHandler{Auth: a}
}

type registerReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
    Role     string `json:"role"` // admin | user
}

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return RespondError(c, common.Validation("invalid request body"))
    }
    err := h.Auth.Register(c.Request().Context(), service.RegisterInput{
        Name:     req.Name,
        Email:    req.Email,
        Password: req.Password,
        Role:     req.Role,
    })
    if err != nil {
        return RespondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"message": "user registered successfully"})
}

func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return RespondError(c, common.Validation("invalid request body"))
    }
    res, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
    if err != nil {
        return RespondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message":    "login successful",
        "token":      res.Token,
        "expires_at": res.ExpiresAt,
        "user":       res.User,
    })
}

// Me echoes the claims of the caller's session token.
func (h *AuthHandler) Me(c echo.Context) error {
    cl, ok := middleware.ClaimsFrom(c)
    if !ok {
        return RespondError(c, common.ErrMissingToken)
    }
    var exp int64
    if cl.ExpiresAt != nil {
        exp = cl.ExpiresAt.Unix()
    }
    return c.JSON(http.StatusOK, echo.Map{
        "id":    cl.UserID,
        "email": cl.Email,
        "role":  cl.Role,
        "exp":   exp,
    })
}
