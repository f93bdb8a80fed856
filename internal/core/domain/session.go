package domain

// SessionEntry is an arbitrary structured entry of the per-user session history.
type SessionEntry map[string]any

// Session entry keys written by the HTTP audit trail.
const (
	SessionKeyAction = "action"
	SessionKeyMethod = "method"
	SessionKeyPath   = "path"
	SessionKeyStatus = "status"
	SessionKeyAt     = "at"
)
