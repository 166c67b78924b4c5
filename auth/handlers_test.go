package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/tasklist-go/apperror"
	"github.com/user/tasklist-go/auth"
	"github.com/user/tasklist-go/ids"
)

// memStore implements auth.Store in memory so the handlers and middleware
// can run against the real token issuer without a database.
type memStore struct {
	issuer *auth.TokenIssuer
	byID   map[string]*auth.User
}

func newMemStore(issuer *auth.TokenIssuer) *memStore {
	return &memStore{issuer: issuer, byID: map[string]*auth.User{}}
}

func (m *memStore) findByEmail(email string) *auth.User {
	for _, u := range m.byID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (m *memStore) CreateUser(_ context.Context, email, password string) (*auth.User, error) {
	email = strings.ToLower(email)
	if !strings.Contains(email, "@") || len(password) < 6 {
		return nil, apperror.NewValidationError("email must be valid and password at least 6 characters", nil)
	}
	if m.findByEmail(email) != nil {
		return nil, apperror.NewValidationError("email already in use", nil)
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	id, err := ids.New()
	if err != nil {
		return nil, err
	}
	user := &auth.User{ID: id, Email: email, Password: hashed}
	m.byID[id] = user
	return user, nil
}

func (m *memStore) FindByCredentials(_ context.Context, email, password string) (*auth.User, error) {
	user := m.findByEmail(strings.ToLower(email))
	if user == nil || !auth.CheckPassword(password, user.Password) {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}
	return user, nil
}

func (m *memStore) FindByToken(_ context.Context, token string) (*auth.User, error) {
	claims, err := m.issuer.Verify(token)
	if err != nil || claims.Access != auth.ScopeAuth {
		return nil, apperror.NewAuthError("invalid token", err)
	}
	user, ok := m.byID[claims.UserID]
	if !ok {
		return nil, apperror.NewAuthError("invalid token", nil)
	}
	for _, t := range user.Tokens {
		if t.Token == token && t.Access == auth.ScopeAuth {
			return user, nil
		}
	}
	return nil, apperror.NewAuthError("invalid token", nil)
}

func (m *memStore) GenerateAuthToken(_ context.Context, user *auth.User) (string, error) {
	token, err := m.issuer.Issue(user.ID)
	if err != nil {
		return "", err
	}
	user.Tokens = append(user.Tokens, auth.UserToken{Access: auth.ScopeAuth, Token: token})
	return token, nil
}

func (m *memStore) RemoveToken(_ context.Context, user *auth.User, token string) error {
	kept := user.Tokens[:0]
	for _, t := range user.Tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	user.Tokens = kept
	return nil
}

// newTestRouter wires the user routes exactly as main does.
func newTestRouter(store auth.Store) chi.Router {
	handlers := auth.NewHandlers(store)
	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		r.Post("/", handlers.HandleSignup())
		r.Post("/login", handlers.HandleLogin())
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(store))
			r.Get("/me", handlers.HandleMe())
			r.Delete("/me/token", handlers.HandleLogout())
		})
	})
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSignup(t *testing.T) {
	store := newMemStore(newIssuer("abc123"))
	router := newTestRouter(store)

	t.Run("creates user and opens session", func(t *testing.T) {
		rec := postJSON(t, router, "/users", map[string]string{
			"email":    "a@x.com",
			"password": "password1",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		token := rec.Header().Get(auth.TokenHeader)
		require.NotEmpty(t, token)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "a@x.com", body["email"])
		assert.NotEmpty(t, body["id"])

		// Only id and email go out on the wire.
		assert.NotContains(t, rec.Body.String(), "password")
		assert.NotContains(t, rec.Body.String(), "tokens")
		assert.Len(t, body, 2)

		// The issued token resolves back to the same user.
		user, err := store.FindByToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, body["id"], user.ID)
	})

	t.Run("malformed email", func(t *testing.T) {
		rec := postJSON(t, router, "/users", map[string]string{
			"email":    "not-an-email",
			"password": "password1",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("short password", func(t *testing.T) {
		rec := postJSON(t, router, "/users", map[string]string{
			"email":    "b@x.com",
			"password": "12345",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := postJSON(t, router, "/users", map[string]string{
			"email":    "a@x.com",
			"password": "password2",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	store := newMemStore(newIssuer("abc123"))
	router := newTestRouter(store)

	_, err := store.CreateUser(context.Background(), "a@x.com", "password1")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		rec := postJSON(t, router, "/users/login", map[string]string{
			"email":    "a@x.com",
			"password": "password1",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(auth.TokenHeader))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "a@x.com", body["email"])
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := postJSON(t, router, "/users/login", map[string]string{
			"email":    "a@x.com",
			"password": "wrongpass",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := postJSON(t, router, "/users/login", map[string]string{
			"email":    "nobody@x.com",
			"password": "password1",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestMe(t *testing.T) {
	store := newMemStore(newIssuer("abc123"))
	router := newTestRouter(store)

	user, err := store.CreateUser(context.Background(), "a@x.com", "password1")
	require.NoError(t, err)
	token, err := store.GenerateAuthToken(context.Background(), user)
	require.NoError(t, err)

	t.Run("with valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set(auth.TokenHeader, token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, user.ID, body["id"])
		assert.Equal(t, "a@x.com", body["email"])
	})

	t.Run("without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("with garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set(auth.TokenHeader, "not-a-token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("with token signed by a different secret", func(t *testing.T) {
		foreign, err := newIssuer("other-secret").Issue(user.ID)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set(auth.TokenHeader, foreign)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	store := newMemStore(newIssuer("abc123"))
	router := newTestRouter(store)

	user, err := store.CreateUser(context.Background(), "a@x.com", "password1")
	require.NoError(t, err)
	token, err := store.GenerateAuthToken(context.Background(), user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/users/me/token", nil)
	req.Header.Set(auth.TokenHeader, token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	// The token no longer authenticates even though its signature is
	// still valid.
	req = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set(auth.TokenHeader, token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRemoveTokenIdempotent(t *testing.T) {
	store := newMemStore(newIssuer("abc123"))

	user, err := store.CreateUser(context.Background(), "a@x.com", "password1")
	require.NoError(t, err)
	token, err := store.GenerateAuthToken(context.Background(), user)
	require.NoError(t, err)

	require.NoError(t, store.RemoveToken(context.Background(), user, token))
	require.NoError(t, store.RemoveToken(context.Background(), user, token))
	assert.Empty(t, user.Tokens)
}

func TestEachLoginAppendsToken(t *testing.T) {
	store := newMemStore(newIssuer("abc123"))

	user, err := store.CreateUser(context.Background(), "a@x.com", "password1")
	require.NoError(t, err)

	_, err = store.GenerateAuthToken(context.Background(), user)
	require.NoError(t, err)
	_, err = store.GenerateAuthToken(context.Background(), user)
	require.NoError(t, err)

	// Each login is its own list entry; nothing is replaced.
	assert.Len(t, user.Tokens, 2)
	for _, tok := range user.Tokens {
		assert.Equal(t, auth.ScopeAuth, tok.Access)
	}
}
