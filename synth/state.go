package synth

import "fmt"

// State is a step in the synth's lifecycle:
// Uninitialized -> Initializing -> Running -> StopRequested -> Stopped.
// A failed setup goes from Initializing back to Uninitialized.
type State int

const (
	Uninitialized State = iota
	Initializing
	Running
	StopRequested
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case StopRequested:
		return "stop requested"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
