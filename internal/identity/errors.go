package identity

import (
	"errors"
	"fmt"
)

// ErrAuthentication matches every failure to obtain a credential.
var ErrAuthentication = errors.New("authentication failed")

// AuthenticationError reports a failed token acquisition for a scope. It
// matches ErrAuthentication and unwraps to the underlying cause.
type AuthenticationError struct {
	Scope string
	Cause error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("unable to authenticate for scope %s: %v", e.Scope, e.Cause)
}

func (e *AuthenticationError) Unwrap() []error {
	return []error{ErrAuthentication, e.Cause}
}
