package wireproto

// Priority tiers a message for outbound queuing: Critical messages are
// sent ahead of High, which are sent ahead of Normal.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
	PriorityCritical
)

// String renders the priority's name.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	default:
		return "normal"
	}
}

var messagePriorities = map[MessageType]Priority{
	TypeNewBlock:  PriorityCritical,
	TypeHandshake: PriorityCritical,

	TypePing:           PriorityHigh,
	TypePong:           PriorityHigh,
	TypeNewTransaction: PriorityHigh,
	TypeChainInfo:      PriorityHigh,
	TypeGetChainInfo:   PriorityHigh,
	TypeGetBlocks:      PriorityHigh,
	TypeBlocks:         PriorityHigh,
}

// PriorityOf reports t's priority tier. Types absent from the explicit
// mapping (GetPeers, Peers, Reject, and anything unknown) default to
// PriorityNormal.
func PriorityOf(t MessageType) Priority {
	if p, ok := messagePriorities[t]; ok {
		return p
	}
	return PriorityNormal
}

// Less reports whether a should be sent before b: higher priority first.
func Less(a, b MessageType) bool {
	return PriorityOf(a) > PriorityOf(b)
}
