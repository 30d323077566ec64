// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package interop describes the per-frame batch of side effects that
// externally composited content (native overlays, platform views) needs
// applied in the same compositor transaction as a GPU frame.
//
// The content producer builds a fresh Transaction for every frame. The
// redrawer consumes it exactly once and never retains it past the frame.
package interop

// State is the lifecycle marker carried by a Transaction.
type State uint8

const (
	// StateNone means no interop content changed its lifecycle this frame.
	StateNone State = iota

	// StateBegan means interop content appeared. The redrawer switches the
	// swapchain into a compositable (non-opaque) mode and keeps it there
	// until a transaction reports StateEnded.
	StateBegan

	// StateEnded means the last interop content went away. The redrawer
	// leaves compositable mode after presenting the current frame.
	StateEnded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNone:
		return "None"
	case StateBegan:
		return "Began"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Action is a pending side effect that must land together with the frame.
type Action func()

// Transaction is an interop batch for a single frame.
type Transaction struct {
	State   State
	Actions []Action
}

// Empty is the transaction returned by producers without interop content.
var Empty = Transaction{}

// HasActions reports whether the transaction carries pending actions.
// Only transactions with actions require a transactional present.
func (t Transaction) HasActions() bool {
	return len(t.Actions) > 0
}

// Run invokes the pending actions in order. Nil actions are skipped.
func (t Transaction) Run() {
	for _, a := range t.Actions {
		if a != nil {
			a()
		}
	}
}
