package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// tsKey marks an encoded timestamp inside JSONB: {"$ts": "..."}.
const tsKey = "$ts"

// tsLayout is fixed width so text ordering equals chronological ordering.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

func encodeFields(fields map[string]any) ([]byte, error) {
	return json.Marshal(encodeValue(fields))
}

func encodeValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return map[string]any{tsKey: val.UTC().Format(tsLayout)}
	case *time.Time:
		if val == nil {
			return nil
		}
		return map[string]any{tsKey: val.UTC().Format(tsLayout)}
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = encodeValue(inner)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = encodeValue(inner)
		}
		return s
	default:
		return v
	}
}

func decodeFields(data []byte) (map[string]any, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	decoded, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}
	m, _ := decoded.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func decodeValue(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if s, ok := val[tsKey].(string); ok && len(val) == 1 {
			t, err := time.Parse(tsLayout, s)
			if err != nil {
				return nil, fmt.Errorf("decode timestamp %q: %w", s, err)
			}
			return t, nil
		}
		m := make(map[string]any, len(val))
		for k, inner := range val {
			d, err := decodeValue(inner)
			if err != nil {
				return nil, err
			}
			m[k] = d
		}
		return m, nil
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			d, err := decodeValue(inner)
			if err != nil {
				return nil, err
			}
			s[i] = d
		}
		return s, nil
	default:
		return v, nil
	}
}
