package protocol

// State is the position of one Send call in the exchange.
type State int

const (
	// StateIdle is the state before anything is written to the link.
	StateIdle State = iota
	// StateSending is the state while the request packet is written.
	StateSending
	// StateAwaitingPacket is the state while non-return packets are skipped.
	StateAwaitingPacket
	// StateAwaitingResult is the state once the return packet has been reached.
	StateAwaitingResult
	// StateDone is the terminal success state.
	StateDone
	// StateFailed is the terminal failure state.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateAwaitingPacket:
		return "awaiting_packet"
	case StateAwaitingResult:
		return "awaiting_result"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can follow.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
