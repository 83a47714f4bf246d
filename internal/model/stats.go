package model

// Stats is computed on demand from the whole task collection.
type Stats struct {
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	TodayTasks     int     `json:"todayTasks"`
	CompletionRate float64 `json:"completionRate"`
}
