package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeMaterialization, cause, "failed to materialize")

	if err.Code != ErrCodeMaterialization {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMaterialization)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestSuppress(t *testing.T) {
	primary := Wrap(ErrCodeMaterialization, errors.New("boom"), "materialize")
	closeErr := errors.New("close failed")
	primary.Suppress(nil, closeErr)

	if len(primary.Suppressed) != 1 || primary.Suppressed[0] != closeErr {
		t.Fatalf("Suppressed = %v, want [%v]", primary.Suppressed, closeErr)
	}
	if !strings.HasSuffix(primary.Error(), "(1 suppressed)") {
		t.Errorf("Error() = %q, want suppressed count suffix", primary.Error())
	}
	if errors.Is(primary, closeErr) {
		t.Error("suppressed errors must not be part of the unwrap chain")
	}
	if got := SuppressedOf(primary); len(got) != 1 {
		t.Errorf("SuppressedOf() = %v, want 1 error", got)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "wrapped error outer code",
			err:      Wrap(ErrCodeMaterialization, New(ErrCodeUnresolvedSource, "inner"), "outer"),
			code:     ErrCodeMaterialization,
			expected: true,
		},
		{
			name:     "wrapped error inner code",
			err:      Wrap(ErrCodeMaterialization, New(ErrCodeUnresolvedSource, "inner"), "outer"),
			code:     ErrCodeUnresolvedSource,
			expected: true,
		},
		{
			name:     "typed cycle error",
			err:      &CycleError{Cycle: []string{"a", "b"}},
			code:     ErrCodeCycleDetected,
			expected: true,
		},
		{
			name:     "typed error under Error outer code",
			err:      Wrap(ErrCodeMaterialization, &UnresolvedSourceError{Node: "n", Spec: "x"}, "outer"),
			code:     ErrCodeMaterialization,
			expected: true,
		},
		{
			name:     "typed error under Error inner code",
			err:      Wrap(ErrCodeMaterialization, &UnresolvedSourceError{Node: "n", Spec: "x"}, "outer"),
			code:     ErrCodeUnresolvedSource,
			expected: true,
		},
		{
			name:     "typed error under fmt wrap",
			err:      fmt.Errorf("context: %w", &InvalidPatternError{Pattern: "a*b", Reason: "bad"}),
			code:     ErrCodeInvalidPattern,
			expected: true,
		},
		{
			name:     "close error",
			err:      &CloseError{Errs: []error{errors.New("boom")}},
			code:     ErrCodeCloseFailed,
			expected: true,
		},
		{
			name:     "code inside close error",
			err:      &CloseError{Errs: []error{errors.New("boom"), New(ErrCodeNetwork, "down")}},
			code:     ErrCodeNetwork,
			expected: true,
		},
		{
			name:     "code inside joined errors",
			err:      errors.Join(errors.New("first"), &CycleError{}),
			code:     ErrCodeCycleDetected,
			expected: true,
		},
		{
			name:     "suppressed errors are not in the chain",
			err:      New(ErrCodeMaterialization, "outer").Suppress(&CloseError{}),
			code:     ErrCodeCloseFailed,
			expected: false,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeGraphStructure, "test"),
			expected: ErrCodeGraphStructure,
		},
		{
			name:     "outermost of wrapped",
			err:      Wrap(ErrCodeMaterialization, &CycleError{}, "outer"),
			expected: ErrCodeMaterialization,
		},
		{
			name:     "typed cycle error",
			err:      &CycleError{Cycle: []string{"a"}},
			expected: ErrCodeCycleDetected,
		},
		{
			name:     "typed error under fmt wrap",
			err:      fmt.Errorf("context: %w", &UnresolvedSourceError{Spec: "x"}),
			expected: ErrCodeUnresolvedSource,
		},
		{
			name:     "close error",
			err:      &CloseError{Errs: []error{errors.New("boom")}},
			expected: ErrCodeCloseFailed,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "wrapped Error type",
			err:      Wrap(ErrCodeMaterialization, New(ErrCodeInvalidInput, "inner"), "outer"),
			expected: "outer: inner",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCycleError(t *testing.T) {
	err := &CycleError{Cycle: []string{"a", "b", "c"}}
	expected := "parent cycle detected: a -> b -> c -> a"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
	if err.Code() != ErrCodeCycleDetected {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeCycleDetected)
	}

	wrapped := Wrap(ErrCodeMaterialization, err, "can't materialize graph with cycles")
	var ce *CycleError
	if !errors.As(wrapped, &ce) {
		t.Fatal("errors.As should find CycleError through Wrap")
	}
	if len(ce.Cycle) != 3 {
		t.Errorf("Cycle = %v, want 3 nodes", ce.Cycle)
	}
}

func TestUnresolvedSourceError(t *testing.T) {
	t.Run("with node", func(t *testing.T) {
		err := &UnresolvedSourceError{Node: "app", Spec: "nowhere:x"}
		if !strings.Contains(err.Error(), "nowhere:x") || !strings.Contains(err.Error(), `"app"`) {
			t.Errorf("Error() = %v, want spec and node", err.Error())
		}
	})

	t.Run("without node", func(t *testing.T) {
		err := &UnresolvedSourceError{Spec: "nowhere:x"}
		if err.Error() != "can't resolve source [nowhere:x]" {
			t.Errorf("Error() = %v", err.Error())
		}
	})
}

func TestCloseError(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	err := &CloseError{Errs: []error{first, second}}

	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Error("CloseError should expose every aggregated failure")
	}
	if !strings.Contains(err.Error(), "and 1 more") {
		t.Errorf("Error() = %v, want count of remaining failures", err.Error())
	}
}
