package todos

// Todo is a task owned by the user that created it. CompletedAt is epoch
// milliseconds and is non-nil exactly when Completed is true.
type Todo struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt"`
	CreatorID   string `json:"creator"`
}
