package partnercenter

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dynamic360/partnercenter-bridge/internal/identity"
)

// ErrRemoteCall matches every failed endpoint call.
var ErrRemoteCall = errors.New("partner center call failed")

// RemoteCallError reports a failed call to a single endpoint. StatusCode is
// zero when no response was received.
type RemoteCallError struct {
	Endpoint   string
	StatusCode int
	Cause      error
}

func (e *RemoteCallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("partner center %s failed with status %d: %v", e.Endpoint, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("partner center %s failed: %v", e.Endpoint, e.Cause)
}

func (e *RemoteCallError) Unwrap() []error {
	return []error{ErrRemoteCall, e.Cause}
}

// Status maps the failure to the response a proxying HTTP handler should give.
func (e *RemoteCallError) Status() (int, string) {
	if errors.Is(e.Cause, identity.ErrAuthentication) {
		return http.StatusServiceUnavailable, "upstream authentication failed"
	}
	return http.StatusBadGateway, fmt.Sprintf("upstream %s call failed", e.Endpoint)
}

// StatusError carries a non-success upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("unexpected status %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}
