package tb

import "fmt"

// Kind tags a transaction or observed event as a write or a read.
type Kind int

const (
	// KindWrite is a write transfer carrying a payload byte.
	KindWrite Kind = iota + 1
	// KindRead is a read transfer.
	KindRead
	// KindReset marks a verified reset in the merged event stream. Emitted
	// by the ResetCoordinator, never by monitors.
	KindReset
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindWrite:
		return "write"
	case KindRead:
		return "read"
	case KindReset:
		return "reset"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Transaction is one intended operation, immutable after construction.
// Payload is meaningful only for writes. Construct through NewWrite/NewRead
// so invalid kinds are impossible at runtime.
type Transaction struct {
	Kind    Kind
	Payload byte
}

// NewWrite builds a write transaction carrying payload.
func NewWrite(payload byte) Transaction {
	return Transaction{Kind: KindWrite, Payload: payload}
}

// NewRead builds a read transaction.
func NewRead() Transaction {
	return Transaction{Kind: KindRead}
}

// String renders the transaction for logs.
func (t Transaction) String() string {
	if t.Kind == KindWrite {
		return fmt.Sprintf("write(0x%02x)", t.Payload)
	}
	return t.Kind.String()
}

// Event is one completed transfer actually accepted by the device, as
// observed by a monitor. Attempts rejected by backpressure produce no
// event. Seq is the arrival order in the merged stream, stamped by the
// EventQueue.
type Event struct {
	Kind Kind
	Data byte
	Seq  int64
}
