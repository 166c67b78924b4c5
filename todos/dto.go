// Package todos implements the todo resource: its store and the CRUD
// endpoints, every one of them scoped to the authenticated creator. A todo
// owned by someone else is answered exactly like a todo that does not
// exist.
package todos

// CreateRequest is the request body for creating a todo. Any other fields
// in the body are discarded by the schema.
type CreateRequest struct {
	Text string `json:"text"`
}

// UpdatePatch is the request body for patching a todo. Only text and
// completed are accepted. Completed is re-derived on every patch: unless
// it is explicitly true, the todo reverts to not completed and its
// completion timestamp is cleared, even when the patch only changes text.
type UpdatePatch struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// listResponse wraps the collection endpoint payload.
type listResponse struct {
	Todos []Todo `json:"todos"`
}

// itemResponse wraps single-todo payloads.
type itemResponse struct {
	Todo *Todo `json:"todo"`
}
