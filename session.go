package classtop

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserRole is the user's role on the management server
type UserRole = string

const (
	// RoleUser is a regular account (view, manage own data)
	RoleUser UserRole = "user"
	// RoleAdmin is an administrator account (full client management)
	RoleAdmin UserRole = "admin"
)

// UserInfo is the authenticated principal as returned by the management
// server. It is persisted in lockstep with the token.
type UserInfo struct {
	ID       int      `json:"id"`
	UUID     string   `json:"uuid"`
	Username string   `json:"username"`
	Email    *string  `json:"email,omitempty"`
	Role     UserRole `json:"role"`
}

func (u *UserInfo) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(u.UUID)
}

// HasRole checks if the user has a specific role
func (u *UserInfo) HasRole(role string) bool {
	return u != nil && u.Role == role
}

// IsAdmin reports whether the profile carries the admin role
func (u *UserInfo) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

func (u UserInfo) String() string {
	email := "<nil>"
	if u.Email != nil {
		email = *u.Email
	}
	return fmt.Sprintf(
		"user=%s id=%d uuid=%s email=%s role=%s",
		u.Username,
		u.ID,
		u.UUID,
		email,
		u.Role,
	)
}

// TokenClaims is the locally readable subset of the token the server issues.
// Claims are decoded without signature verification and are display-only:
// token validity stays the server's call.
type TokenClaims struct {
	Subject   string
	Username  string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token carries an exp claim in the past.
func (c *TokenClaims) Expired() bool {
	return c != nil && c.ExpiresAt != nil && c.ExpiresAt.Before(time.Now())
}

func parseTokenClaims(raw string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, err
	}

	out := &TokenClaims{}

	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}

	if username, ok := claims["username"].(string); ok {
		out.Username = username
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = &iat.Time
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = &exp.Time
	}

	return out, nil
}
