package machine

// State is the host lifecycle state.
type State int

//go:generate go tool stringer -type=State
const (
	Created = State(0) // Constructed, never started.
	Running = State(1) // Started.
	Stopped = State(2) // Stopped after running.
	Error   = State(3) // Latched after an illegal transition.
)

// transitions lists the legal source states for each target state.
var transitions = map[State][]State{
	Running: {Created, Stopped},
	Stopped: {Running},
}
