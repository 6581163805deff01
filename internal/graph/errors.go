package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid task set")
	ErrCycleFound   = errors.New("cycle detected")
)

// UnresolvedReference records one dependency key that matched no task.
type UnresolvedReference struct {
	From    string // symbolic key of the referencing task
	Missing string // the key that failed to resolve
}

// BuildError reports every local data defect found while resolving a task
// set. Defects are collected in batch so the caller sees all of them at once
// rather than fixing them one failure at a time.
type BuildError struct {
	Duplicates []string // symbolic keys used by more than one record
	Unresolved []UnresolvedReference
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	var parts []string
	if len(e.Duplicates) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate keys: %s", strings.Join(e.Duplicates, ", ")))
	}
	for _, ref := range e.Unresolved {
		parts = append(parts, fmt.Sprintf("%s references unknown task %q", ref.From, ref.Missing))
	}
	if len(parts) == 0 {
		return ErrInvalidInput.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput.Error(), strings.Join(parts, "; "))
}

// Unwrap lets callers test the error with errors.Is(err, ErrInvalidInput).
func (e *BuildError) Unwrap() error { return ErrInvalidInput }

// CycleError is the structural defect returned when blocking edges form a
// cycle. Path is a closed walk of symbolic keys: the first and last entries
// are the same task and every consecutive pair is a blocking edge present in
// the snapshot.
type CycleError struct {
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycleFound.Error(), strings.Join(e.Path, " -> "))
}

// Unwrap lets callers test the error with errors.Is(err, ErrCycleFound).
func (e *CycleError) Unwrap() error { return ErrCycleFound }
