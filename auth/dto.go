// Package auth handles accounts and sessions: password hashing, token
// issuing and verification, the user store, the authentication middleware,
// and the HTTP handlers for signup, login, logout and identity lookup.
package auth

// SignupRequest is the request body for creating an account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public representation of a user. It is the only shape
// a user ever takes on the wire.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// NewUserResponse builds the public representation of u.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email}
}
