package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/tasklist-go/apperror"
	"github.com/user/tasklist-go/ids"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// Store is the set of user operations the handlers and middleware depend
// on. *Service is the database-backed implementation.
type Store interface {
	CreateUser(ctx context.Context, email, password string) (*User, error)
	FindByCredentials(ctx context.Context, email, password string) (*User, error)
	FindByToken(ctx context.Context, token string) (*User, error)
	GenerateAuthToken(ctx context.Context, user *User) (string, error)
	RemoveToken(ctx context.Context, user *User, token string) error
}

// Service implements Store on top of a pgx pool. Token strings live in the
// user_tokens table; a token the issuer still accepts but that is absent
// from the table has been logged out and no longer authenticates.
type Service struct {
	db       *pgxpool.Pool
	issuer   *TokenIssuer
	validate *validator.Validate
}

// NewService creates a Service.
func NewService(db *pgxpool.Pool, issuer *TokenIssuer) *Service {
	return &Service{
		db:       db,
		issuer:   issuer,
		validate: validator.New(),
	}
}

// CreateUser validates the credentials, hashes the password, and inserts
// the user. The email is stored lowercased; a duplicate reports a
// ValidationError, same as any other rejected input.
func (s *Service) CreateUser(ctx context.Context, email, password string) (*User, error) {
	req := SignupRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("email must be valid and password at least 6 characters", err)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	id, err := ids.New()
	if err != nil {
		return nil, apperror.NewInternalError("failed to generate user id", err)
	}

	user := &User{
		ID:       id,
		Email:    strings.ToLower(email),
		Password: hashed,
	}

	query := `INSERT INTO users (id, email, password) VALUES ($1, $2, $3) RETURNING created_at`
	err = s.db.QueryRow(ctx, query, user.ID, user.Email, user.Password).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewValidationError("email already in use", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return user, nil
}

// FindByCredentials looks a user up by email and checks the password. A
// missing email and a wrong password fail with the same AuthError.
func (s *Service) FindByCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := s.getUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("invalid credentials", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	if !CheckPassword(password, user.Password) {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}
	return user, nil
}

// FindByToken resolves the user a token authenticates as. The signature
// must verify, the scope must be auth, and the exact token string must
// still be present in the user's token list; failing any of those reports
// the same AuthError.
func (s *Service) FindByToken(ctx context.Context, token string) (*User, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, apperror.NewAuthError("invalid token", err)
	}
	if claims.Access != ScopeAuth {
		return nil, apperror.NewAuthError("invalid token", nil)
	}

	var user User
	query := `SELECT u.id, u.email, u.password, u.created_at
	          FROM users u
	          JOIN user_tokens t ON t.user_id = u.id
	          WHERE u.id = $1 AND t.token = $2 AND t.access = $3`
	err = s.db.QueryRow(ctx, query, claims.UserID, token, ScopeAuth).
		Scan(&user.ID, &user.Email, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("invalid token", nil)
		}
		return nil, apperror.NewDatabaseError("failed to resolve token", err)
	}
	return &user, nil
}

// GenerateAuthToken issues a fresh token for user and appends it to the
// token list, starting a new session alongside any existing ones.
func (s *Service) GenerateAuthToken(ctx context.Context, user *User) (string, error) {
	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return "", apperror.NewInternalError("failed to issue token", err)
	}
	if err := s.AddToken(ctx, user, token); err != nil {
		return "", err
	}
	return token, nil
}

// AddToken appends token to the user's token list.
func (s *Service) AddToken(ctx context.Context, user *User, token string) error {
	query := `INSERT INTO user_tokens (user_id, access, token) VALUES ($1, $2, $3)`
	if _, err := s.db.Exec(ctx, query, user.ID, ScopeAuth, token); err != nil {
		return apperror.NewDatabaseError("failed to store token", err)
	}
	user.Tokens = append(user.Tokens, UserToken{Access: ScopeAuth, Token: token})
	return nil
}

// RemoveToken deletes the matching entry from the user's token list,
// ending that session. Removing a token that is already gone is a no-op.
func (s *Service) RemoveToken(ctx context.Context, user *User, token string) error {
	query := `DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`
	if _, err := s.db.Exec(ctx, query, user.ID, token); err != nil {
		return apperror.NewDatabaseError("failed to remove token", err)
	}
	kept := user.Tokens[:0]
	for _, t := range user.Tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	user.Tokens = kept
	return nil
}

func (s *Service) getUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT id, email, password, created_at FROM users WHERE email = $1`
	err := s.db.QueryRow(ctx, query, email).Scan(&user.ID, &user.Email, &user.Password, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
