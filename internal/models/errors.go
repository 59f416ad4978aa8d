package models

import (
	"errors"
	"fmt"
)

// Validation failures abort a cycle before any model is invoked.
var (
	ErrEmptyPrompt      = errors.New("prompt cannot be empty")
	ErrNoModelsSelected = errors.New("at least one model must be selected")
	ErrNothingToSave    = errors.New("no responses to save")
)

// Auth failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUnauthorized       = errors.New("authentication required")
)

// GenerationError wraps a single model's invocation failure. It is absorbed
// into that model's response slot and never surfaces past the orchestrator.
type GenerationError struct {
	ModelID string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("model %s failed: %v", e.ModelID, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a history store failure. Unlike per-model errors
// these escalate to the caller as a user-visible notice.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
