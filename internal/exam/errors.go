package exam

import (
	"errors"
	"fmt"
)

// Start request validation errors.
var (
	ErrEmptyTopic   = errors.New("topic must not be empty")
	ErrUnknownGrade = errors.New("unknown grade level")
)

// ProviderError wraps a failed question fetch.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("question provider failed: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedError reports a question set that does not fit the expected
// shape. Index is -1 when the problem is not tied to one question.
type MalformedError struct {
	Index  int
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("malformed response: question %d: %s", e.Index+1, e.Reason)
	}
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// IsFetchFailure reports whether err is a provider or malformed-response
// failure. Both are handled the same way.
func IsFetchFailure(err error) bool {
	var pe *ProviderError
	var me *MalformedError
	return errors.As(err, &pe) || errors.As(err, &me)
}
