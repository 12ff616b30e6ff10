/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package provider

import "fmt"

// Error wraps a failure returned by a provider adapter.
type Error struct {
	// Type is the provider type.
	Type string
	// Op is the failed operation (list, capacity, scale, read-tag, write-tag, delete-tag).
	Op string
	// ID is the resource ID, empty for list failures.
	ID string
	// Err is the underlying cloud API error.
	Err error
}

func (e *Error) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %v", e.Type, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Type, e.Op, e.ID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Operation names used in Error.Op.
const (
	OpList      = "list"
	OpCapacity  = "capacity"
	OpScale     = "scale"
	OpReadTag   = "read-tag"
	OpWriteTag  = "write-tag"
	OpDeleteTag = "delete-tag"
)

// Wrap returns nil when err is nil, else an *Error.
func Wrap(providerType, op, id string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Type: providerType, Op: op, ID: id, Err: err}
}
