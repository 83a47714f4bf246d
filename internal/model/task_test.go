package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15T08:30:00Z", time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC)},
		{"2024-03-15T08:30:00+02:00", time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC)},
		{"2024-03-15T08:30", time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	for _, bad := range []string{"", "  ", "15/03/2024", "tomorrow"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidTask, bad)
	}
}

func TestTaskInput_ValidateCreate(t *testing.T) {
	assert.ErrorIs(t, TaskInput{Date: strPtr("2024-03-15")}.Validate(true), ErrInvalidTask)
	assert.ErrorIs(t, TaskInput{Title: strPtr("x")}.Validate(true), ErrInvalidTask)
	assert.ErrorIs(t, TaskInput{Title: strPtr("  "), Date: strPtr("2024-03-15")}.Validate(true), ErrInvalidTask)
	assert.NoError(t, TaskInput{Title: strPtr("x"), Date: strPtr("2024-03-15")}.Validate(true))

	// update does not require title/date
	assert.NoError(t, TaskInput{Category: strPtr("home")}.Validate(false))
}

func TestTaskInput_ValidatePriority(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		assert.NoError(t, TaskInput{Priority: &p}.Validate(false))
	}
	urgent := Priority("urgent")
	assert.ErrorIs(t, TaskInput{Priority: &urgent}.Validate(false), ErrInvalidTask)
}

func TestTaskInput_Fields(t *testing.T) {
	done := true
	high := PriorityHigh
	in := TaskInput{
		Title:     strPtr("x"),
		Date:      strPtr("2024-03-15"),
		Priority:  &high,
		Completed: &done,
	}

	fields, err := in.Fields()
	require.NoError(t, err)
	assert.Equal(t, "x", fields[FieldTitle])
	assert.Equal(t, "high", fields[FieldPriority])
	assert.Equal(t, true, fields[FieldCompleted])
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), fields[FieldDate])
	assert.NotContains(t, fields, FieldDescription)
	assert.NotContains(t, fields, FieldCategory)
}

func TestTaskInput_Empty(t *testing.T) {
	assert.True(t, TaskInput{}.Empty())
	assert.False(t, TaskInput{Description: strPtr("")}.Empty())
}
