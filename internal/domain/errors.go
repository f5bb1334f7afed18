package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// AlreadyExistsError is returned on duplicate registration.
type AlreadyExistsError struct {
	Resource string
	Msg      string
	Err      error
}

func (e AlreadyExistsError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s already exists", e.Resource)
	default:
		return "already exists"
	}
}

func (e AlreadyExistsError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// PersistenceError wraps a Data Store failure. Msg is safe to show to clients;
// Err is not.
type PersistenceError struct {
	Msg string
	Err error
}

func (e PersistenceError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "persistence failure"
}

func (e PersistenceError) Unwrap() error { return e.Err }

type CredentialError struct{}

func (CredentialError) Error() string { return "Invalid credentials" }

// NotApprovedError blocks driver login until an administrator approves the application.
type NotApprovedError struct {
	Status string
}

func (e NotApprovedError) Error() string { return "Application not approved yet" }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsAlreadyExists(err error) bool {
	var target AlreadyExistsError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target PersistenceError
	return errors.As(err, &target)
}

func IsCredential(err error) bool {
	var target CredentialError
	return errors.As(err, &target)
}

func IsNotApproved(err error) bool {
	var target NotApprovedError
	return errors.As(err, &target)
}
