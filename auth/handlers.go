package auth

import (
	"encoding/json"
	"net/http"

	"github.com/user/tasklist-go/apperror"
)

// Handlers exposes the account and session endpoints over a Store.
type Handlers struct {
	store Store
}

// NewHandlers creates a Handlers.
func NewHandlers(store Store) *Handlers {
	return &Handlers{store: store}
}

// HandleSignup godoc
// @Summary Create an account
// @Description Creates a user and opens a first session; the token is returned in the x-auth header.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} auth.UserResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Router /users [post]
func (h *Handlers) HandleSignup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		user, err := h.store.CreateUser(r.Context(), req.Email, req.Password)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		token, err := h.store.GenerateAuthToken(r.Context(), user)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		w.Header().Set(TokenHeader, token)
		WriteJSON(w, http.StatusOK, NewUserResponse(user))
	}
}

// HandleLogin godoc
// @Summary Log in
// @Description Authenticates credentials and opens a new session; the token is returned in the x-auth header.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} auth.UserResponse
// @Failure 400 "credentials rejected"
// @Router /users/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		user, err := h.store.FindByCredentials(r.Context(), req.Email, req.Password)
		if err != nil {
			// Rejected credentials are a 400 on this route, and the body
			// stays empty either way.
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		token, err := h.store.GenerateAuthToken(r.Context(), user)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		w.Header().Set(TokenHeader, token)
		WriteJSON(w, http.StatusOK, NewUserResponse(user))
	}
}

// HandleMe godoc
// @Summary Current user
// @Description Returns the user the presented token authenticates as.
// @Tags auth
// @Produce json
// @Security TokenHeader
// @Success 200 {object} auth.UserResponse
// @Failure 401 "missing or invalid token"
// @Router /users/me [get]
func (h *Handlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		WriteJSON(w, http.StatusOK, NewUserResponse(user))
	}
}

// HandleLogout godoc
// @Summary Log out
// @Description Removes the presented token from the user's session list.
// @Tags auth
// @Security TokenHeader
// @Success 200 "session ended"
// @Failure 400 "removal failed"
// @Router /users/me/token [delete]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, okUser := UserFromContext(r.Context())
		token, okToken := TokenFromContext(r.Context())
		if !okUser || !okToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if err := h.store.RemoveToken(r.Context(), user, token); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// WriteJSON serializes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError translates err through the apperror taxonomy into a status
// code and a minimal JSON payload. Errors that are not AppErrors become a
// generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
