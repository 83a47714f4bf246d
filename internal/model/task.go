package model

import (
	"fmt"
	"strings"
	"time"
)

// Collection holds every task document.
const Collection = "tasks"

// Task document field names.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDate        = "date"
	FieldPriority    = "priority"
	FieldCategory    = "category"
	FieldCompleted   = "completed"
	FieldCreatedAt   = "createdAt"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskInput is the body of create and update requests. Nil fields were not sent.
type TaskInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Date        *string   `json:"date"`
	Priority    *Priority `json:"priority"`
	Category    *string   `json:"category"`
	Completed   *bool     `json:"completed"`
}

// Empty reports whether no field was sent.
func (in TaskInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Date == nil &&
		in.Priority == nil && in.Category == nil && in.Completed == nil
}

// Validate checks the fields that were sent. forCreate additionally
// demands title and date.
func (in TaskInput) Validate(forCreate bool) error {
	if forCreate {
		if in.Title == nil {
			return fmt.Errorf("%w: title is required", ErrInvalidTask)
		}
		if in.Date == nil {
			return fmt.Errorf("%w: date is required", ErrInvalidTask)
		}
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidTask)
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return fmt.Errorf("%w: priority must be one of low, medium, high", ErrInvalidTask)
	}
	if in.Date != nil {
		if _, err := ParseDate(*in.Date); err != nil {
			return err
		}
	}
	return nil
}

// Fields returns the sent fields keyed by document field name, with date
// coerced to a timestamp.
func (in TaskInput) Fields() (map[string]any, error) {
	fields := make(map[string]any, 6)
	if in.Title != nil {
		fields[FieldTitle] = *in.Title
	}
	if in.Description != nil {
		fields[FieldDescription] = *in.Description
	}
	if in.Date != nil {
		d, err := ParseDate(*in.Date)
		if err != nil {
			return nil, err
		}
		fields[FieldDate] = d
	}
	if in.Priority != nil {
		fields[FieldPriority] = string(*in.Priority)
	}
	if in.Category != nil {
		fields[FieldCategory] = *in.Category
	}
	if in.Completed != nil {
		fields[FieldCompleted] = *in.Completed
	}
	return fields, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDate accepts RFC 3339 timestamps and bare calendar dates. A bare date
// is midnight UTC, as is a timestamp without an offset.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: date must not be empty", ErrInvalidTask)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: malformed date %q", ErrInvalidTask, s)
}
