package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{New(ErrCodeInvalidCurveType, "unknown curve type %q", "spline"), `INVALID_CURVE_TYPE: unknown curve type "spline"`},
		{Wrap(ErrCodeInvalidConfig, errors.New("bad toml"), "load %s", "bundle.toml"), "INVALID_CONFIG: load bundle.toml: bad toml"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("no such file")
	err := Wrap(ErrCodeFileNotFound, cause, "open graph.json")
	if !errors.Is(err, cause) || errors.Unwrap(err) != cause {
		t.Errorf("cause not reachable from %v", err)
	}
}

func TestCodeLookup(t *testing.T) {
	mismatch := New(ErrCodeLengthMismatch, "3 styles for 4 edges")
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"direct", mismatch, ErrCodeLengthMismatch, "3 styles for 4 edges"},
		{"fmt wrapped", fmt.Errorf("bundle: %w", mismatch), ErrCodeLengthMismatch, "3 styles for 4 edges"},
		{"outer code wins", Wrap(ErrCodeCompatibility, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeCompatibility, "outer"},
		{"plain", errors.New("plain error"), "", "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%v, %s) = false", tt.err, tt.code)
			}
			if Is(tt.err, ErrCodeCanceled) {
				t.Errorf("Is(%v, CANCELED) = true", tt.err)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}

	if Is(nil, ErrCodeInvalidInput) || GetCode(nil) != "" {
		t.Error("nil error has a code")
	}
}
