package zoom

import "fmt"

// AuthenticationError is returned when the OAuth token endpoint rejects the credentials.
type AuthenticationError struct {
	// StatusCode is the HTTP status of the token response (0 if none was received)
	StatusCode int

	// Body is the raw response body returned by the token endpoint
	Body string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("zoom authentication failed (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("zoom authentication failed: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// EnumerationError is returned when listing recordings does not succeed.
type EnumerationError struct {
	UserID     string
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *EnumerationError) Error() string {
	return fmt.Sprintf("zoom list recordings for user %s failed (status %d): %s", e.UserID, e.StatusCode, e.Body)
}

// RequestError is returned by any other Zoom call answering with an unexpected status.
type RequestError struct {
	// Op is the operation that failed (e.g., "download", "delete")
	Op string

	// Target names what the request was about (file path, recording id)
	Target string

	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *RequestError) Error() string {
	return fmt.Sprintf("zoom %s %s failed (status %d): %s", e.Op, e.Target, e.StatusCode, e.Body)
}
