package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ValidationError lists every problem found with a request payload.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Add(format string, args ...any) {
	e.Details = append(e.Details, fmt.Sprintf(format, args...))
}

// Err returns nil when no problems were added.
func (e *ValidationError) Err() error {
	if len(e.Details) == 0 {
		return nil
	}
	return e
}

func NewValidationError(details ...string) *ValidationError {
	return &ValidationError{Details: details}
}

// DecodeStrict decodes a single JSON object into v, rejecting unknown fields,
// type mismatches and trailing data. Decoding failures are returned as *ValidationError.
func DecodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return NewValidationError(describeDecodeError(err))
	}
	if dec.More() {
		return NewValidationError("body must contain a single JSON object")
	}
	return nil
}

// DecodeStrictBytes is DecodeStrict over a byte slice.
func DecodeStrictBytes(b []byte, v any) error {
	return DecodeStrict(bytes.NewReader(b), v)
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Sprintf("%s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)
	case errors.As(err, &syntaxErr):
		return "malformed JSON: " + syntaxErr.Error()
	case errors.Is(err, io.EOF):
		return "body must not be empty"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed JSON"
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return "unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field ")
	default:
		return err.Error()
	}
}

// CheckName validates a required name of 1..100 characters.
func CheckName(v *ValidationError, field, name string) {
	n := len([]rune(strings.TrimSpace(name)))
	if n == 0 {
		v.Add("%s: must not be empty", field)
	} else if len([]rune(name)) > 100 {
		v.Add("%s: must be at most 100 characters", field)
	}
}

// ValidationDetails returns the details of a *ValidationError in err's chain,
// or err's message as a single detail.
func ValidationDetails(err error) []string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Details
	}
	return []string{err.Error()}
}
