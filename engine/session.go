package engine

// Session is the active staff session on this device, or nil when
// logged out. Reconciler invocations take the session as an explicit
// argument; nothing in the engine reads it from ambient state.
type Session struct {
	UserID string
	Name   string
	Dept   string
	Role   string
}
