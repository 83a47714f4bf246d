package docstore

import "time"

// ISOLayout is the textual form timestamps take in shaped documents.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// Shape returns the caller-facing view of doc: every time.Time, at any depth,
// becomes ISOLayout text in UTC and the document id is set under "id".
// doc is not modified.
func Shape(doc Document) map[string]any {
	out := make(map[string]any, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		out[k] = shapeValue(v)
	}
	out["id"] = doc.ID
	return out
}

func shapeValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(ISOLayout)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.UTC().Format(ISOLayout)
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = shapeValue(inner)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = shapeValue(inner)
		}
		return s
	default:
		return v
	}
}
