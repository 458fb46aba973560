package stream

// State is the lifecycle stage of a Stream.
type State uint8

const (
	// StateIdle means no token has been consumed yet.
	StateIdle State = iota
	// StateStreaming means tokens are being consumed; the pending buffer may hold bytes.
	StateStreaming
	// StateCompleted means the document has been delivered in full. Terminal.
	StateCompleted
	// StateFailed means the traversal failed. Terminal.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStreaming:
		return "Streaming"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further output can be produced.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}
