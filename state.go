package goSession

// State is the per-instance session lifecycle state.
//
// Warned is a sub-state of Authenticated: the idle warning is visible but
// the session is still alive. Every state can transition to LoggedOut —
// expiry firing, idle forced logout, explicit logout, and peer logout all
// land there regardless of what else is in flight.
type State uint8

const (
	// StateLoggedOut is the initial state with no persisted token, and the
	// terminal state after any logout path. No timers are armed.
	StateLoggedOut State = iota
	// StateAuthenticated has both schedulers armed per the current token
	// and idle configuration.
	StateAuthenticated
	// StateWarned is Authenticated with an active idle-warning countdown.
	StateWarned
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateAuthenticated:
		return "authenticated"
	case StateWarned:
		return "warned"
	default:
		return "unknown"
	}
}

// stateInput is a cause of a state transition.
type stateInput uint8

const (
	inputAuthenticate stateInput = iota
	inputWarning
	inputWarningCleared
	inputLogout
)

// transition is the pure state machine. Inputs that do not apply in the
// current state leave it unchanged; there is no error state — every
// internal failure resolves into LoggedOut or stays where it was.
func transition(s State, in stateInput) State {
	switch in {
	case inputAuthenticate:
		if s == StateLoggedOut {
			return StateAuthenticated
		}
		return s
	case inputWarning:
		if s == StateAuthenticated {
			return StateWarned
		}
		return s
	case inputWarningCleared:
		if s == StateWarned {
			return StateAuthenticated
		}
		return s
	case inputLogout:
		return StateLoggedOut
	default:
		return s
	}
}
