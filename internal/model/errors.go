package model

import "errors"

// ErrInvalidTask marks client input that fails task validation.
var ErrInvalidTask = errors.New("invalid task")
