// Package tasks mirrors the backend's asynchronous job pipeline for the
// active workspace.
//
// State is driven entirely by push events over a websocket feed, seeded by
// one authoritative list fetch on every (re)connect. Derived display state
// (progress width, completed, halted) is computed from the stage flags by
// pure functions.
package tasks
