package domain

// Change kinds carried on the change queue.
const (
	ChangeTaskSaved    = "task-saved"
	ChangeTaskDeleted  = "task-deleted"
	ChangeBoardSaved   = "board-saved"
	ChangeBoardDeleted = "board-deleted"
)

// Change is the notice enqueued after every successful write. The feed updater
// consumes it to refresh the read model and wake live subscribers.
type Change struct {
	UserID     string `json:"userId"`
	EntityID   string `json:"entityId"`
	EntityType string `json:"entityType"`
	Kind       string `json:"kind"`
	Timestamp  int64  `json:"timestamp"`
}
