package swrcache

// Event tags what triggered a revalidation. The set is open: downstream
// layers may define their own tags above ErrorRevalidateEvent.
type Event uint8

const (
	FocusEvent Event = iota
	ReconnectEvent
	MutateEvent
	ErrorRevalidateEvent
)

func (e Event) String() string {
	switch e {
	case FocusEvent:
		return "focus"
	case ReconnectEvent:
		return "reconnect"
	case MutateEvent:
		return "mutate"
	case ErrorRevalidateEvent:
		return "error_revalidate"
	default:
		return "custom"
	}
}
