package utils // package utils provides helpers for password hashing and session tokens

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a session token: {id, email, role, exp}.
// Validity depends only on the HS256 signature and the expiry; nothing is
// stored server-side.
type SessionClaims struct {
    UserID uint64 `json:"id"`
    Email  string `json:"email"`
    Role   string `json:"role"`
    jwt.RegisteredClaims
}

// SessionToken is a signed token together with its expiry.
type SessionToken struct {
    Token string
    Exp   time.Time
}

// TokenIssuer signs and verifies session tokens with a shared secret.
type TokenIssuer struct {
    secret []byte
    ttl    time.Duration
    now    func() time.Time
}

// NewTokenIssuer returns an issuer whose tokens expire ttl after issuance.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
    return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for issuing and verifying.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
    cp := *t
    cp.now = now
    return &cp
}

// TTL reports the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue builds and signs an HS256 token for a user.
func (t *TokenIssuer) Issue(userID uint64, email, role string) (SessionToken, error) {
    iat := t.now().UTC()
    exp := iat.Add(t.ttl)
    claims := SessionClaims{
        UserID: userID,
        Email:  email,
        Role:   role,
        RegisteredClaims: jwt.RegisteredClaims{
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(iat),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

// ErrTokenExpired is returned by Verify for a well-signed token past its
// expiry.  Every other verification failure returns ErrTokenInvalid.
var (
    ErrTokenExpired = errors.New("token expired")
    ErrTokenInvalid = errors.New("token invalid")
)

// Verify checks the signature, algorithm and expiry of raw and returns its
// claims.
func (t *TokenIssuer) Verify(raw string) (*SessionClaims, error) {
    claims := &SessionClaims{}
    tok, err := jwt.ParseWithClaims(raw, claims,
        func(*jwt.Token) (interface{}, error) { return t.secret, nil },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithTimeFunc(t.now),
    )
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return nil, ErrTokenExpired
        }
        return nil, ErrTokenInvalid
    }
    if !tok.Valid || claims.UserID == 0 || claims.Role == "" {
        return nil, ErrTokenInvalid
    }
    return claims, nil
}
