package auth

import "time"

// User represents an account in the system. Only the id and email are ever
// serialized outward; the credential hash and the session token list stay
// server-side.
type User struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Password  string      `json:"-"` // bcrypt hash, never the plaintext
	Tokens    []UserToken `json:"-"`
	CreatedAt time.Time   `json:"-"`
}

// UserToken is one entry in a user's session token list. A user may hold
// several concurrently valid tokens, one per login.
type UserToken struct {
	Access string // scope tag, currently always ScopeAuth
	Token  string
}
