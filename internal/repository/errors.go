package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound means the task id does not resolve to a stored task.
var ErrNotFound = errors.New("task not found")

// StoreError wraps a persistence failure. Write is set for the create and
// update paths, where the usual cause is input the store refused.
type StoreError struct {
	Op    string
	Write bool
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s task: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
