package fsm

import "fmt"

type State string

type Event string

const (
	StateUnconnected State = "unconnected"
	StateConnected   State = "connected"
	StateClosed      State = "closed"
)

const (
	EventConnect     Event = "connect"
	EventConnectFail Event = "connect_fail"
	EventClose       Event = "close"
	EventFault       Event = "fault"
)

// Transition applies one event to a connection state. Close is accepted from
// every state so session teardown stays idempotent; Closed absorbs everything
// else.
func Transition(current State, event Event) (State, error) {
	if event == EventClose {
		return StateClosed, nil
	}

	switch current {
	case StateUnconnected:
		switch event {
		case EventConnect:
			return StateConnected, nil
		case EventConnectFail:
			return StateUnconnected, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateConnected:
		switch event {
		case EventFault:
			return StateClosed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateClosed:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
