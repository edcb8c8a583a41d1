// ABOUTME: Package-level documentation for pkg/monitor
// ABOUTME: A bubbletea status TUI polling World's stats and events

// Package monitor renders a live terminal view of a running World: sample
// rate and block size, active source count, overrun/underrun totals, and the most
// recent events. It owns no engine state of its own — a host program polls
// World and feeds Snapshot values in.
package monitor
