package runtime

// State is the lifecycle of the registration desk:
// Stopped -> Running -> Draining -> Stopped.
type State int

const (
	Stopped State = iota
	Running
	Draining
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Draining:
		return "draining"
	default:
		return "unknown"
	}
}
