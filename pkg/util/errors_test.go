package util

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestAuthError(t *testing.T) {
	err := NewAuthError("10.0.0.1", 401, "no UIDARUBA in response")

	msg := err.Error()
	if !strings.Contains(msg, "10.0.0.1") {
		t.Errorf("Error message should contain host: %s", msg)
	}
	if !strings.Contains(msg, "HTTP 401") {
		t.Errorf("Error message should contain status: %s", msg)
	}
	if !strings.Contains(msg, "no UIDARUBA") {
		t.Errorf("Error message should contain details: %s", msg)
	}
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("AuthError should unwrap to ErrAuthFailed")
	}
}

func TestAuthErrorWrapsCause(t *testing.T) {
	err := &AuthError{Host: "md1", Err: context.DeadlineExceeded}
	if !errors.Is(err, ErrAuthFailed) {
		t.Error("AuthError should unwrap to ErrAuthFailed")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("AuthError should unwrap to its cause")
	}
	if strings.Contains(err.Error(), "HTTP") {
		t.Errorf("Error message should not mention HTTP status when none was received: %s", err)
	}
}

func TestRequestError(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		err := NewRequestError("md1", "show switches", 500, nil)
		if !strings.Contains(err.Error(), "HTTP 500") {
			t.Errorf("Error message should contain status: %s", err)
		}
		if !errors.Is(err, ErrRequestFailed) {
			t.Errorf("RequestError should unwrap to ErrRequestFailed")
		}
	})

	t.Run("cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewRequestError("md1", "show switches", 0, cause)
		if !errors.Is(err, cause) {
			t.Errorf("RequestError should unwrap to its cause")
		}
		if !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("Error message should contain cause: %s", err)
		}
	})
}

func TestJoinError(t *testing.T) {
	err := &JoinError{Controller: "md1", BSS: "aa:bb:cc:dd:ee:f0", APName: "ap-missing"}
	if !strings.Contains(err.Error(), "ap-missing") {
		t.Errorf("Error message should contain AP name: %s", err)
	}
	if !errors.Is(err, ErrJoinMiss) {
		t.Errorf("JoinError should unwrap to ErrJoinMiss")
	}
}

func TestLogoutError(t *testing.T) {
	err := &LogoutError{Host: "md1", Status: 503}
	if !strings.Contains(err.Error(), "may remain live") {
		t.Errorf("Error message should warn about live token: %s", err)
	}
	if !errors.Is(err, ErrLogoutFailed) {
		t.Errorf("LogoutError should unwrap to ErrLogoutFailed")
	}
}

func TestIndexBuildError(t *testing.T) {
	err := &IndexBuildError{Collection: "AP Database"}
	if !strings.Contains(err.Error(), "AP Database") {
		t.Errorf("Error message should name the collection: %s", err)
	}
	if !errors.Is(err, ErrIndexBuild) {
		t.Errorf("IndexBuildError should unwrap to ErrIndexBuild")
	}
}

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := &ValidationError{Errors: []string{"field is required"}}
		msg := err.Error()
		if !strings.Contains(msg, "field is required") {
			t.Errorf("Error message should contain the error: %s", msg)
		}
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("ValidationError should unwrap to ErrValidationFailed")
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := &ValidationError{Errors: []string{"field1 is required", "field2 is invalid", "field3 out of range"}}
		msg := err.Error()
		if !strings.Contains(msg, "field1") || !strings.Contains(msg, "field2") || !strings.Contains(msg, "field3") {
			t.Errorf("Error message should contain all errors: %s", msg)
		}
	})
}

func TestValidationBuilder(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		v := &ValidationBuilder{}
		v.Add(true, "this should not appear")
		v.Add(true, "neither should this")

		if err := v.Build(); err != nil {
			t.Errorf("Build() should return nil when no errors: %v", err)
		}
	})

	t.Run("with errors", func(t *testing.T) {
		v := &ValidationBuilder{}
		v.Add(false, "first error")
		v.Add(true, "this passes")
		v.Add(false, "second error")
		v.AddErrorf("formatted error: %d", 42)

		err := v.Build()
		if err == nil {
			t.Fatal("Build() should return error")
		}

		validationErr, ok := err.(*ValidationError)
		if !ok {
			t.Fatalf("Expected *ValidationError, got %T", err)
		}
		if len(validationErr.Errors) != 3 {
			t.Errorf("Expected 3 errors, got %d", len(validationErr.Errors))
		}
		if validationErr.Errors[2] != "formatted error: 42" {
			t.Errorf("AddErrorf message = %q", validationErr.Errors[2])
		}
	})
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrAuthFailed,
		ErrRequestFailed,
		ErrIndexBuild,
		ErrJoinMiss,
		ErrLogoutFailed,
		ErrSessionClosed,
		ErrValidationFailed,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v == %v", err1, err2)
			}
		}
	}
}
