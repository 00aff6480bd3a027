package capture

// State is the scheduler lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
	// StateFaulted is reached on a terminal stream error; the scheduler
	// cleans up and returns to Idle on its own.
	StateFaulted
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Status is one observable lifecycle transition. Err is set for transitions
// caused by a failure (permission denial, stream setup, stream fault).
type Status struct {
	State State
	Err   error
}
