// Package session persists the authenticated identity and drives the email
// OTP login flow.
//
// The Store is the durable client storage behind everything that survives a
// restart: the bearer token, the user, the workspace list, and the active
// workspace. Nothing derived from network state is persisted; every other
// namespace is rebuilt on demand. The state directory is flock-guarded so
// concurrent CLI invocations don't interleave writes.
package session
