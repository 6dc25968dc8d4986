package models

import (
	"bytes"
	"encoding/json"
)

type fieldOp uint8

const (
	opKeep fieldOp = iota
	opSet
	opClear
)

// Field is a tagged update value: Keep, Set(v) or Clear.
//
// Decoded from JSON, an absent key stays Keep, an explicit null becomes Clear
// and any other value becomes Set.
type Field[T any] struct {
	op    fieldOp
	value T
}

func Keep[T any]() Field[T] { return Field[T]{} }

func Set[T any](v T) Field[T] { return Field[T]{op: opSet, value: v} }

func Clear[T any]() Field[T] { return Field[T]{op: opClear} }

func (f Field[T]) IsKeep() bool  { return f.op == opKeep }
func (f Field[T]) IsSet() bool   { return f.op == opSet }
func (f Field[T]) IsClear() bool { return f.op == opClear }

// Value returns the set value, or the zero value for Keep and Clear.
func (f Field[T]) Value() T { return f.value }

// Apply writes the update into dst. Clear resets dst to its zero value.
func (f Field[T]) Apply(dst *T) {
	switch f.op {
	case opSet:
		*dst = f.value
	case opClear:
		var zero T
		*dst = zero
	}
}

// ApplyPtr is Apply for optional fields stored as pointers.
func (f Field[T]) ApplyPtr(dst **T) {
	switch f.op {
	case opSet:
		v := f.value
		*dst = &v
	case opClear:
		*dst = nil
	}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Clear[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Set(v)
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.op != opSet {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
