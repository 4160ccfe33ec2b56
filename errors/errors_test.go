package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			if result := test.class.String(); result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection timeout", ErrConnectionTimeout, true},
		{"rate limited", ErrRateLimited, true},
		{"matcher timeout", ErrMatcherTimeout, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"coercion failure", ErrDatatypeCoercion, false},
		{"ontology load", ErrOntologyLoad, false},
		{"timeout in message", fmt.Errorf("embedding request timeout"), true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if result := IsTransient(test.err); result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"ontology load", ErrOntologyLoad, true},
		{"config validation", ErrConfigValidation, true},
		{"run aborted", ErrRunAborted, true},
		{"missing template field", ErrMissingTemplateField, false},
		{"wrapped ontology load", fmt.Errorf("load: %w", ErrOntologyLoad), true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("x")}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if result := IsFatal(test.err); result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"missing template field", ErrMissingTemplateField, true},
		{"datatype coercion", ErrDatatypeCoercion, true},
		{"required value", ErrRequiredValueMissing, true},
		{"unknown transform", ErrUnknownTransform, true},
		{"rate limited", ErrRateLimited, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if result := IsInvalid(test.err); result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"fatal sentinel", ErrConfigValidation, ErrorFatal},
		{"invalid sentinel", ErrDatatypeCoercion, ErrorInvalid},
		{"unknown defaults to transient", errors.New("something odd"), ErrorTransient},
		{"wrapped invalid keeps class", WrapInvalid(errors.New("bad date"), "Engine", "convertRow", "coerce value"), ErrorInvalid},
		{"wrapped fatal keeps class", WrapFatal(errors.New("eof"), "Loader", "Load", "parse ontology"), ErrorFatal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if result := Classify(test.err); result != test.expected {
				t.Errorf("expected %v, got %v", test.expected, result)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "A", "B", "c") != nil {
		t.Fatal("wrapping nil must return nil")
	}

	base := ErrMissingTemplateField
	err := Wrap(base, "Template", "Expand", "substitute placeholder")
	want := "Template.Expand: substitute placeholder failed: missing template field"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error must match its sentinel")
	}
}

func TestWrapClassified(t *testing.T) {
	err := WrapFatal(ErrOntologyLoad, "Loader", "LoadFile", "open file")

	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatal("expected ClassifiedError")
	}
	if ce.Component != "Loader" || ce.Operation != "LoadFile" {
		t.Errorf("unexpected component/operation: %s/%s", ce.Component, ce.Operation)
	}
	if !strings.HasPrefix(ce.Error(), "Loader.LoadFile: open file failed") {
		t.Errorf("unexpected message: %s", ce.Error())
	}
	if !errors.Is(err, ErrOntologyLoad) {
		t.Error("classified error must unwrap to sentinel")
	}
	if WrapTransient(nil, "a", "b", "c") != nil || WrapInvalid(nil, "a", "b", "c") != nil {
		t.Error("wrapping nil must return nil")
	}
}

func TestRetryConfig_ShouldRetry(t *testing.T) {
	rc := DefaultRetryConfig()

	if !rc.ShouldRetry(ErrRateLimited, 0) {
		t.Error("rate limiting should be retried")
	}
	if rc.ShouldRetry(ErrRateLimited, rc.MaxRetries) {
		t.Error("should not retry past MaxRetries")
	}
	if rc.ShouldRetry(ErrConfigValidation, 0) {
		t.Error("fatal errors must not be retried")
	}

	rc.RetryableErrors = []error{ErrConnectionTimeout}
	if rc.ShouldRetry(ErrRateLimited, 0) {
		t.Error("only configured errors should be retried")
	}
}

func TestRetryConfig_ToRetryConfig(t *testing.T) {
	rc := RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Second, BackoffFactor: 3}
	cfg := rc.ToRetryConfig()

	if cfg.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.Multiplier != 3 || !cfg.AddJitter {
		t.Errorf("unexpected conversion: %+v", cfg)
	}
	if cfg.Retryable == nil || cfg.Retryable(ErrOntologyLoad) {
		t.Error("retry predicate must reject fatal errors")
	}
}
