package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is an open string-keyed map persisted as a JSONB column.
// It carries spreadsheet columns of unknown shape (custom_fields, raw_data)
// without fixing a schema for them.
type JSONMap map[string]interface{}

// Scan implements sql.Scanner for reading JSONB columns.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan JSONMap: expected []byte or string, got %T", value)
	}

	if len(bytes) == 0 {
		*m = JSONMap{}
		return nil
	}

	decoded := make(map[string]interface{})
	if err := json.Unmarshal(bytes, &decoded); err != nil {
		return fmt.Errorf("failed to unmarshal JSONMap: %w", err)
	}

	*m = decoded
	return nil
}

// Value implements driver.Valuer for writing JSONB columns.
// A nil map is written as an empty object so the column never holds NULL.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}

	data, err := json.Marshal(map[string]interface{}(m))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONMap: %w", err)
	}

	return string(data), nil
}

// String returns the value stored under key as a string.
// Non-string values are formatted with %v; missing keys yield "".
func (m JSONMap) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Clone returns a shallow copy of the map.
func (m JSONMap) Clone() JSONMap {
	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
