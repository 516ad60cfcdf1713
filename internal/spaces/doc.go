// Package spaces models workspaces, the tenant boundary every other
// namespace is scoped to.
package spaces
