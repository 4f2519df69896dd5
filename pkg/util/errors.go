// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the collection error taxonomy
var (
	ErrAuthFailed       = errors.New("login failed")
	ErrRequestFailed    = errors.New("request failed")
	ErrIndexBuild       = errors.New("AP index build failed")
	ErrJoinMiss         = errors.New("AP not found in inventory")
	ErrLogoutFailed     = errors.New("logout failed")
	ErrSessionClosed    = errors.New("session already closed")
	ErrValidationFailed = errors.New("validation failed")
)

// AuthError represents a failed credential exchange with a device.
type AuthError struct {
	Host    string
	Status  int
	Details string
	Err     error
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("login to %s failed", e.Host)
	if e.Status != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.Status)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrAuthFailed, e.Err}
	}
	return []error{ErrAuthFailed}
}

// NewAuthError creates an auth error for a non-transport failure
func NewAuthError(host string, status int, details string) *AuthError {
	return &AuthError{Host: host, Status: status, Details: details}
}

// RequestError represents a transport failure, non-200 status or an
// undecodable body on an authenticated call.
type RequestError struct {
	Host    string
	Command string
	Status  int
	Err     error
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s on %s", e.Command, e.Host)
	switch {
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	case e.Status != 0:
		msg += fmt.Sprintf(": HTTP %d", e.Status)
	}
	return msg
}

func (e *RequestError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRequestFailed, e.Err}
	}
	return []error{ErrRequestFailed}
}

// NewRequestError creates a request error
func NewRequestError(host, command string, status int, err error) *RequestError {
	return &RequestError{Host: host, Command: command, Status: status, Err: err}
}

// IndexBuildError means the AP inventory response lacked its root collection.
type IndexBuildError struct {
	Collection string
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("AP index build failed: response has no %q collection", e.Collection)
}

func (e *IndexBuildError) Unwrap() error {
	return ErrIndexBuild
}

// JoinError is a BSS entry whose AP name has no inventory record.
type JoinError struct {
	Controller string
	BSS        string
	APName     string
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("bss %s on %s references unknown AP %q", e.BSS, e.Controller, e.APName)
}

func (e *JoinError) Unwrap() error {
	return ErrJoinMiss
}

// LogoutError is a failed logout; the token may remain live on the device.
type LogoutError struct {
	Host   string
	Status int
	Err    error
}

func (e *LogoutError) Error() string {
	msg := fmt.Sprintf("logout from %s failed", e.Host)
	switch {
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	case e.Status != 0:
		msg += fmt.Sprintf(": HTTP %d", e.Status)
	}
	return msg + " (session token may remain live)"
}

func (e *LogoutError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrLogoutFailed, e.Err}
	}
	return []error{ErrLogoutFailed}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
