// Package request defines the automation request model shared by the
// workspace store, the dispatcher, and the polling loop. A request is
// created externally (phone, tablet, another system) in the workspace
// database and flows queued → running → done/failed; this system never
// deletes one.
package request

import "time"

// Command identifies which local operation a request maps to.
type Command string

// Known command tags. Anything else is rejected by the dispatcher.
const (
	CmdOrganize  Command = "organize"
	CmdExtract   Command = "extract"
	CmdSync      Command = "sync"
	CmdReconcile Command = "reconcile"
	CmdCustom    Command = "custom"
)

// Status is the lifecycle state of a request.
type Status string

// Request status constants. Done and Failed are terminal.
const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusRunning, StatusDone, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// CanTransition reports whether the state machine permits s → to.
// queued → running is the claim; running → done/failed is finalization.
// A failed request is not auto-retried; a human must re-submit.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusQueued:
		return to == StatusRunning
	case StatusRunning:
		return to == StatusDone || to == StatusFailed
	default:
		return false
	}
}

// Request is one automation request read from the workspace database.
type Request struct {
	// ID is the opaque page identifier assigned by the remote store.
	ID string `json:"id"`

	// Name is the free-text description (the page title).
	Name string `json:"name"`

	// Command is the normalized (trimmed, lowercased) command tag.
	// Empty is treated as custom by the dispatcher.
	Command Command `json:"command"`

	// Arguments is free text interpreted per-command, e.g. "tax",
	// "media", "all", or a custom keyword like "daily-briefing".
	Arguments string `json:"arguments"`

	Status  Status    `json:"status"`
	Created time.Time `json:"created"`
	URL     string    `json:"url,omitempty"`
}
