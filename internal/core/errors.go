package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnreadableInput = errors.New("unreadable input")
	ErrSchemaMismatch  = errors.New("schema mismatch")
	ErrParse           = errors.New("parse error")

	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidAreaFlag  = errors.New("invalid urban/rural flag")
	ErrDuplicateID      = errors.New("duplicate id")
)

// LoadError reports an input that could not be opened or read.
type LoadError struct {
	Entity Entity
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s from %s: %v", e.Entity, e.Source, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrUnreadableInput, e.Err}
}

// SchemaError reports required columns missing from an input header.
type SchemaError struct {
	Entity  Entity
	Source  string
	Missing []string
	Header  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s (%s): missing column(s) %s; got header=%v",
		e.Entity, e.Source, strings.Join(e.Missing, ","), e.Header)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaMismatch
}

// ParseError reports a cell that could not be parsed. Line is 1-based and
// counts the header as line 1.
type ParseError struct {
	Entity Entity
	Source string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (%s) line %d column %s: %q: %v", e.Entity, e.Source, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
