package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrParentRequired is returned when a comment is created without a post.
var ErrParentRequired = errors.New("comment requires a parent post id")

// StatusError reports a response the server rejected with a 4xx or 5xx code.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Code)
}

// IsNotFound reports whether err wraps a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// IsRejected reports whether err wraps a 4xx StatusError, i.e. the server
// refused the request rather than failing to process it.
func IsRejected(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 400 && se.Code < 500
}
