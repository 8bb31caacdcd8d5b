package model

import "time"

// Roles accepted by registration.  A user's role never changes after the
// row is created.
const (
    RoleAdmin = "admin"
    RoleUser  = "user"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool { return r == RoleAdmin || r == RoleUser }

// User represents an application user record as stored in the `users`
// table.  PasswordHash holds the bcrypt digest; the plaintext password is
// never stored.
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name
    Email        string    // users.email (unique, case-sensitive)
    PasswordHash string    // users.password_hash
    Role         string    // users.role (admin | user)
    CreatedAt    time.Time // users.created_at
}

// Profile is the minimal user view returned to clients after login.
type Profile struct {
    ID    uint64 `json:"id"`
    Name  string `json:"name"`
    Email string `json:"email"`
    Role  string `json:"role"`
}

// Profile projects a user onto its public fields.
func (u User) Profile() Profile {
    return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
