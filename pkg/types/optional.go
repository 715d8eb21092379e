package types

import (
	"bytes"
	"encoding/json"
)

// Optional is a patch field with three states: absent, explicit null and a value.
// Absent fields are skipped when building an update, null clears the column.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// OptionalField is implemented by every Optional instantiation.
type OptionalField interface {
	IsSet() bool
	IsNull() bool
	SQLValue() any
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o Optional[T]) IsSet() bool  { return o.Set }
func (o Optional[T]) IsNull() bool { return o.Set && o.Null }

// SQLValue is the value bound to the statement, nil for an explicit null.
func (o Optional[T]) SQLValue() any {
	if o.Null {
		return nil
	}
	return o.Value
}

// ValidatorValue exposes the value to struct validation as a pointer. Absent and
// null fields yield a nil pointer so "omitnil" skips them, while a present zero
// value still runs the remaining rules.
func (o Optional[T]) ValidatorValue() any {
	if !o.Set || o.Null {
		return (*T)(nil)
	}
	v := o.Value
	return &v
}

// UnmarshalJSON only runs when the key is present, which is what marks Set.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Null = true
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Change is a single column assignment of an update statement.
type Change struct {
	Column string
	Value  any
}

// Changes keeps assignment order; placeholders are numbered in this order.
type Changes []Change

func (c Changes) Columns() []string {
	out := make([]string, len(c))
	for i, ch := range c {
		out[i] = ch.Column
	}
	return out
}

func (c Changes) With(column string, value any) Changes {
	return append(c, Change{Column: column, Value: value})
}
