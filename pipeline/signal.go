package pipeline

// Signal is the result of handling a request.
type Signal uint8

const (
	// Continue lets the next stage in the chain run.
	Continue Signal = iota
	// Stop halts the chain; the response is considered final.
	Stop
)

func (s Signal) String() string {
	switch s {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}
