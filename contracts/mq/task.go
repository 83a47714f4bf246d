package mq

import "time"

// Routing keys for task lifecycle events on the events exchange.
const (
	RoutingTaskCreated = "task.created"
	RoutingTaskUpdated = "task.updated"
	RoutingTaskDeleted = "task.deleted"
)

type TaskCreatedPayload struct {
	TaskID   string    `json:"task_id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Priority string    `json:"priority"`
	Category string    `json:"category,omitempty"`
}

type TaskUpdatedPayload struct {
	TaskID string `json:"task_id"`
	// Fields lists the field names written by the update.
	Fields    []string `json:"fields"`
	Completed *bool    `json:"completed,omitempty"`
}

type TaskDeletedPayload struct {
	TaskID string `json:"task_id"`
}
