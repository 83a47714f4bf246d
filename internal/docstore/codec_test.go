package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTripsTimestamps(t *testing.T) {
	when := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	fields := map[string]any{
		"title":    "t",
		"date":     when,
		"nested":   map[string]any{"at": when.Add(time.Nanosecond)},
		"priority": "high",
		"count":    float64(3),
	}

	data, err := encodeFields(fields)
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"$ts":"2024-03-15T00:00:00.000000000Z"}`)

	decoded, err := decodeFields(data)
	require.NoError(t, err)
	assert.True(t, when.Equal(decoded["date"].(time.Time)))
	assert.True(t, when.Add(time.Nanosecond).Equal(decoded["nested"].(map[string]any)["at"].(time.Time)))
	assert.Equal(t, "high", decoded["priority"])
	assert.Equal(t, float64(3), decoded["count"])
}

func TestCodec_TimestampTextSortsChronologically(t *testing.T) {
	early := time.Date(2024, 3, 15, 9, 0, 0, 5, time.UTC).Format(tsLayout)
	late := time.Date(2024, 3, 15, 9, 0, 0, 40000000, time.UTC).Format(tsLayout)
	assert.Len(t, early, len(late))
	assert.Less(t, early, late)
}

func TestCodec_BadTimestamp(t *testing.T) {
	_, err := decodeFields([]byte(`{"date":{"$ts":"yesterday"}}`))
	assert.Error(t, err)
}
