package casino

import "fmt"

// AuthError indicates the session credential was rejected (HTTP 401).
// The caller must treat the session as invalid and route to
// re-authentication; local game state is discarded.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("casino: authentication failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// APIError is a wager the backend refused (validation, business rule,
// insufficient funds). Detail carries the server's reason verbatim when the
// response body had one, else a generic fallback.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("casino: HTTP %d: %s", e.StatusCode, e.Detail)
}

// IsValidation reports whether the server rejected the request as malformed
// or against a business rule (4xx other than 401).
func (e *APIError) IsValidation() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsServerError reports a backend-side failure (5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// genericFailureDetail is shown when the server gives no usable reason.
const genericFailureDetail = "something went wrong, please try again"
