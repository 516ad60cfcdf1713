// Package api provides the authenticated HTTP client used by every backend
// call.
//
// The Client attaches the bearer token from a TokenStore on the way out,
// persists rotated tokens on the way back, and intercepts the distinguished
// session-invalid status centrally: the stored token is cleared and ErrAuth
// returned so callers never handle expiry themselves. Failures are tagged
// with sentinel markers (ErrValidation, ErrAuth, ErrForbidden, ErrNotFound,
// ErrTransient) for classification at the call site.
//
// There is no automatic retry; callers own whatever retry policy they want.
package api
