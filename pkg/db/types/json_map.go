package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap stores a free-form JSON object in a jsonb column. Values are the
// decoded JSON forms: string, []any, bool, float64.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("JSONMap: marshal: %w", err)
	}
	return string(raw), nil
}

func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("JSONMap: unsupported Scan type %T", src)
	}

	if len(raw) == 0 {
		*m = JSONMap{}
		return nil
	}

	decoded := map[string]any{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("JSONMap: unmarshal: %w", err)
	}
	*m = decoded
	return nil
}

// String returns the value under key when it is a plain string, or the first
// element when it is an array of strings. Missing or non-string values yield "".
func (m JSONMap) String(key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
