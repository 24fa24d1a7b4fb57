package airsync

import "github.com/lansim/airsync/wire"

// workKind tags a queued work item. The set of variants is closed, so a
// tag plus optional payload pointers replaces any need for run-time type
// inspection.
type workKind uint8

const (
	// workAcDetail carries one full aircraft record.
	workAcDetail workKind = iota
	// workAcPosUpdate carries one position delta record.
	workAcPosUpdate
	// workAcRemove carries one removal record.
	workAcRemove
	// workFlush tells the network goroutine to transmit every non-empty
	// batch buffer immediately. It carries no payload.
	workFlush
)

// workItem moves exactly once from the simulation thread into the queue
// and is consumed by the network goroutine; ownership is never shared.
type workItem struct {
	kind   workKind
	detail *wire.AcDetail
	pos    *wire.AcPosUpdate
	remove wire.AcRemove
}

// pushLocked appends an item. Callers hold s.mu; the simulation thread
// acquires it once per tick, not once per aircraft.
func (s *Session) pushLocked(it workItem) {
	s.queue = append(s.queue, it)
}

// drainItems removes and returns all queued items in FIFO order.
func (s *Session) drainItems() []workItem {
	s.mu.Lock()
	items := s.queue
	s.queue = nil
	s.mu.Unlock()
	return items
}

// signal wakes the network goroutine. The channel has capacity one, so a
// signal that finds a wake already pending is a no-op.
func (s *Session) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
