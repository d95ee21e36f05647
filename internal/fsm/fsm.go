package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateStopped  State = "stopped"
	StateKilled   State = "killed"
)

const (
	EventSpawn    Event = "spawn"
	EventShutdown Event = "shutdown"
	EventExit     Event = "exit"
	EventKill     Event = "kill"
)

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle:
		switch event {
		case EventSpawn:
			return StateRunning, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRunning:
		switch event {
		case EventShutdown:
			return StateStopping, nil
		case EventExit:
			return StateStopped, nil
		case EventKill:
			return StateKilled, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStopping:
		switch event {
		case EventExit:
			return StateStopped, nil
		case EventKill:
			return StateKilled, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStopped, StateKilled:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// Terminal reports whether no further transitions are possible from s.
func Terminal(s State) bool {
	return s == StateStopped || s == StateKilled
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
