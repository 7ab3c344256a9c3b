package news

import (
	"errors"
	"fmt"
)

// ErrInvalidCategory is returned when a query names a category outside Categories.
var ErrInvalidCategory = errors.New("invalid category")

// UpstreamError reports a failed call to the upstream provider: a transport
// failure, a timeout or a non-success response.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Message != "" && e.StatusCode != 0:
		return fmt.Sprintf("upstream %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	case e.Message != "":
		return fmt.Sprintf("upstream %s: %s", e.Endpoint, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("upstream %s: %v", e.Endpoint, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("upstream %s: status %d", e.Endpoint, e.StatusCode)
	default:
		return fmt.Sprintf("upstream %s: request failed", e.Endpoint)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
