package todos

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/tasklist-go/apperror"
	"github.com/user/tasklist-go/auth"
)

// Handlers exposes the todo CRUD endpoints over a Store. All routes are
// mounted behind the authentication middleware, so the acting user is
// always present in the request context.
type Handlers struct {
	store Store
}

// NewHandlers creates a Handlers.
func NewHandlers(store Store) *Handlers {
	return &Handlers{store: store}
}

// RegisterRoutes mounts the todo endpoints on router.
func (h *Handlers) RegisterRoutes(router chi.Router) {
	router.Post("/", h.createTodo)
	router.Get("/", h.listTodos)
	router.Get("/{id}", h.getTodo)
	router.Patch("/{id}", h.updateTodo)
	router.Delete("/{id}", h.deleteTodo)
}

// createTodo godoc
// @Summary Create a todo
// @Tags todos
// @Accept json
// @Produce json
// @Security TokenHeader
// @Success 200 {object} todos.Todo
// @Failure 400 {object} apperror.ErrorResponse
// @Router /todos [post]
func (h *Handlers) createTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
		return
	}
	defer r.Body.Close()

	todo, err := h.store.Create(r.Context(), req.Text, user.ID)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, todo)
}

// listTodos godoc
// @Summary List the caller's todos
// @Tags todos
// @Produce json
// @Security TokenHeader
// @Success 200 {object} todos.listResponse
// @Router /todos [get]
func (h *Handlers) listTodos(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	list, err := h.store.ListByCreator(r.Context(), user.ID)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, listResponse{Todos: list})
}

// getTodo godoc
// @Summary Get one todo
// @Tags todos
// @Produce json
// @Security TokenHeader
// @Success 200 {object} todos.itemResponse
// @Failure 404 "absent, malformed id, or owned by another user"
// @Router /todos/{id} [get]
func (h *Handlers) getTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	todo, err := h.store.FindOneOwned(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, itemResponse{Todo: todo})
}

// updateTodo godoc
// @Summary Patch one todo
// @Tags todos
// @Accept json
// @Produce json
// @Security TokenHeader
// @Success 200 {object} todos.itemResponse
// @Failure 404 "absent, malformed id, or owned by another user"
// @Router /todos/{id} [patch]
func (h *Handlers) updateTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var patch UpdatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
		return
	}
	defer r.Body.Close()

	todo, err := h.store.UpdateOwned(r.Context(), chi.URLParam(r, "id"), user.ID, patch)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, itemResponse{Todo: todo})
}

// deleteTodo godoc
// @Summary Delete one todo
// @Tags todos
// @Produce json
// @Security TokenHeader
// @Success 200 {object} todos.itemResponse
// @Failure 404 "absent, malformed id, or owned by another user"
// @Router /todos/{id} [delete]
func (h *Handlers) deleteTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	todo, err := h.store.DeleteOwned(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, itemResponse{Todo: todo})
}
