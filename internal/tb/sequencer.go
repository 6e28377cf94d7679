package tb

import (
	"fmt"
	"sync"
)

// Sequencer queues transactions and hands them to the Driver strictly one
// at a time: the next transaction is not released until the current one is
// marked complete. Delivery order equals enqueue order; there is never more
// than one in-flight item.
//
// Next never blocks: the Driver polls it at edge granularity, which keeps
// every suspension point inside the scheduler's edge model.
type Sequencer struct {
	mu        sync.Mutex
	pending   []Transaction
	inFlight  *Transaction
	closed    bool
	issued    int
	completed int
}

// NewSequencer creates an empty sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Enqueue appends transactions to the stream in order.
func (s *Sequencer) Enqueue(txs ...Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, txs...)
}

/// Close marks the stream exhausted: no further transactions will arrive.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Next hands out the next transaction. ok=false means none is available
// right now; check Exhausted to distinguish "stream ended" from "poll again
// after the next edge".
//
// Requesting a new transaction while one is in flight is a harness bug and
/// panics: the Driver contract requires Complete before the next Next.
func (s *Sequencer) Next() (Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight != nil {
		panic("tb: Sequencer.Next called with a transaction still in flight")
	}
	if len(s.pending) == 0 {
		return Transaction{}, false
	}

	tx := s.pending[0]
	s.pending = s.pending[1:]
	s.inFlight = &tx
	s.issued++
	return tx, true
}

// Complete marks the in-flight transaction done, releasing the next one.
func (s *Sequencer) Complete(tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight == nil {
		return fmt.Errorf("complete %s: no transaction in flight", tx)
	}
	if *s.inFlight != tx {
		return fmt.Errorf("complete %s: in-flight transaction is %s", tx, *s.inFlight)
	}
	s.inFlight = nil
	s.completed++
	return nil
}

// Exhausted reports that the stream is closed and fully drained.
func (s *Sequencer) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed && len(s.pending) == 0 && s.inFlight == nil
}

// Drained reports that everything enqueued so far has completed. Scenarios
// poll this at edge granularity before resets and final checks.
func (s *Sequencer) Drained() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) == 0 && s.inFlight == nil
}

// Completed returns the number of completed transactions.
func (s *Sequencer) Completed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}
