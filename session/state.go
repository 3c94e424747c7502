package session

// State is the controller's position in its lifecycle.
//
//	Uninitialized -> Initializing -> {Authenticated, Unauthenticated}
//	Unauthenticated -> Authenticated      (login)
//	Authenticated   -> Unauthenticated    (logout, failed login, failed refresh)
//
// There is no way back to Initializing.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only copy of the session as seen by consumers.
type Snapshot struct {
	State      State
	IsLoggedIn bool
	// IsLoading is true while init, login, logout or a background refresh is
	// in flight.
	IsLoading bool
	// IsStarted is true once initialization has completed, whatever its
	// outcome.
	IsStarted bool
}

// IsActionable reports whether the UI may trigger a session operation.
func (s Snapshot) IsActionable() bool {
	return s.IsStarted && !s.IsLoading
}
