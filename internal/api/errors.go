package api

import "fmt"

// ValidationError is raised before any network call when a record violates
// the server-mirrored constraints.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Message
}

// NetworkError wraps a transport-level failure; the record should fall back
// to the offline queue.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response from the backend.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server: status %d: %s", e.Status, e.Message)
}
