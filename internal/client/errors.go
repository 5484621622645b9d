package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork covers transport failures and non-2xx responses
	ErrNetwork = errors.New("backend unreachable")
	// ErrParse covers response bodies that do not have the expected shape
	ErrParse = errors.New("malformed backend response")
)

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

// Is makes every StatusError match ErrNetwork
func (e *StatusError) Is(target error) bool {
	return target == ErrNetwork
}
