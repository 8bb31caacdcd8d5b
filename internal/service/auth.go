package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/shopcart/internal/common"
	"github.com/iliyamo/shopcart/internal/model"
	"github.com/iliyamo/shopcart/internal/queue"
	"github.com/iliyamo/shopcart/internal/repository"
	"github.com/iliyamo/shopcart/internal/utils"
)

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 6

// Column limits of the users table.
const (
	MaxUserNameLen = 255
	MaxEmailLen    = 255
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      model.Profile
}

// AuthService registers users and exchanges credentials for session tokens.
type AuthService struct {
	users     UserStore
	tokens    *utils.TokenIssuer
	cost      int
	events    EventPublisher
	log       *slog.Logger
	dummyHash string
}

// NewAuthService wires the service.  cost is the bcrypt work factor.
func NewAuthService(users UserStore, tokens *utils.TokenIssuer, cost int, events EventPublisher, log *slog.Logger) (*AuthService, error) {
	// Compared against when the email is unknown so that both login
	// failures take the same time.
	dummy, err := utils.HashPassword("not-a-real-password", cost)
	if err != nil {
		return nil, err
	}
	return &AuthService{users: users, tokens: tokens, cost: cost, events: events, log: log, dummyHash: dummy}, nil
}

// Register validates in, hashes the password and stores a new user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.TrimSpace(in.Role)

	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return common.Validation("all fields are required")
	}
	if utf8.RuneCountInString(in.Name) > MaxUserNameLen {
		return common.Validation("name must be at most %d characters", MaxUserNameLen)
	}
	if utf8.RuneCountInString(in.Email) > MaxEmailLen {
		return common.Validation("email must be at most %d characters", MaxEmailLen)
	}
	if !emailPattern.MatchString(in.Email) {
		return common.Validation("invalid email")
	}
	if len(in.Password) < MinPasswordLen {
		return common.Validation("password must be at least %d characters", MinPasswordLen)
	}
	if len(in.Password) > utils.MaxPasswordBytes {
		return common.Validation("password must be at most %d bytes", utils.MaxPasswordBytes)
	}
	if !model.ValidRole(in.Role) {
		return common.Validation("invalid role")
	}

	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		return common.Storage("hash password", err)
	}

	u := &model.User{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: in.Role}
	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.users.Create(dbCtx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return common.ErrDuplicateEmail
		}
		if errors.Is(err, repository.ErrOutOfRange) {
			return common.Validation("a field exceeds its maximum size")
		}
		s.log.ErrorContext(ctx, "create user failed", "err", err)
		return common.Storage("insert user", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID, "role", u.Role)
	publish(ctx, s.log, s.events, queue.UserRegisteredQueue, queue.UserRegisteredEvent{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		RegisteredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// Login checks the credentials and issues a session token.  An unknown
// email and a wrong password both yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, common.Validation("email and password are required")
	}

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	u, err := s.users.GetByEmail(dbCtx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.VerifyPassword(s.dummyHash, password)
			return LoginResult{}, common.ErrInvalidCredentials
		}
		s.log.ErrorContext(ctx, "load user failed", "err", err)
		return LoginResult{}, common.Storage("select user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, common.ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return LoginResult{}, common.Storage("sign token", err)
	}
	return LoginResult{Token: tok.Token, ExpiresAt: tok.Exp, User: u.Profile()}, nil
}
