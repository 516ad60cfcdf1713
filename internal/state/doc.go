// Package state wires the per-session stores together into one application
// state container. It owns the two lifecycle boundaries: switching the active
// workspace resets every dependent cache (both library trees and the preset
// list) and notifies subscribers, while logout additionally purges the
// persisted credential whitelist.
package state
