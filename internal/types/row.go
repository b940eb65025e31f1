// Package types provides type definitions shared between the report extractor and the sheet synchronizer.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is a flat, ordered mapping from column name to a scalar value (bool, float64 or string).
// Field order is insertion order; it decides the order in which new columns are appended to a header.
type Row struct {
	names  []string
	values map[string]any
}

// NewRow creates an empty Row
func NewRow() *Row {
	return &Row{values: make(map[string]any)}
}

// Set stores a value under name. Setting an existing name replaces the value but keeps its position.
// Values that are not scalars are rejected.
func (r *Row) Set(name string, value any) error {
	if name == "" {
		return fmt.Errorf("row field name is empty")
	}
	scalar, err := toScalar(value)
	if err != nil {
		return fmt.Errorf("row field %q: %w", name, err)
	}
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = scalar
	return nil
}

// Has reports whether name is a field of the row
func (r *Row) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Get returns the value stored under name
func (r *Row) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Fields returns the field names in insertion order
func (r *Row) Fields() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of fields
func (r *Row) Len() int {
	return len(r.names)
}

// MarshalJSON encodes the row as a JSON object with fields in insertion order
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// toScalar normalizes numeric kinds to float64 and rejects composite values
func toScalar(value any) (any, error) {
	switch v := value.(type) {
	case bool, string, float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", v.String(), err)
		}
		return f, nil
	case nil:
		return "", nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}
