package api

import "fmt"

// RequestError is returned when the backend answers with a non-2xx status.
type RequestError struct {
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Status)
}

// FormatError is returned when a JSON body is malformed or lacks the expected field.
type FormatError struct {
	Endpoint string
	Field    string
	Err      error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid response format: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: invalid response format: missing %q", e.Endpoint, e.Field)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
