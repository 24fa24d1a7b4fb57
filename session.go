package airsync

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lansim/airsync/transport"
	"github.com/lansim/airsync/wire"
)

// ErrGivenUp is returned when remote functionality has been abandoned for
// the rest of the process's life after too many network errors.
var ErrGivenUp = errors.New("remote functionality given up after repeated errors")

// ErrBusy is returned when a start is attempted while the session is
// already running a role.
var ErrBusy = errors.New("session already running")

// Session owns all state of the sync subsystem: the multicast socket, the
// cross-thread queue, the per-aircraft update cache and the background
// network goroutine. Create exactly one per process.
//
// The simulation thread drives the producer side (BeginTick,
// EnqueueAircraft, EndTick, RemoveAircraft, ClearAll) and never blocks on
// network I/O; the network goroutine performs all blocking socket calls.
type Session struct {
	cfg Config
	mc  *transport.UDPMulticast

	status atomic.Uint32

	// mu guards the queue and the producer-side cache state. The
	// simulation thread holds it from BeginTick to EndTick.
	mu         sync.Mutex
	queue      []workItem
	cache      map[uint32]*cacheEntry
	nextGroup  int
	dueGroup   int
	tickActive bool

	wake chan struct{}

	// lifeMu guards start/stop transitions.
	lifeMu   sync.Mutex
	stop     chan struct{}
	done     chan struct{}
	running  bool
	errCount atomic.Int32

	cb Callbacks
}

// NewSession creates a session from cfg, applying defaults to unset fields.
func NewSession(cfg Config) *Session {
	cfg.ApplyDefaults()
	return &Session{
		cfg:   cfg,
		mc:    transport.NewUDPMulticast(),
		cache: make(map[uint32]*cacheEntry),
		wake:  make(chan struct{}, 1),
	}
}

// Status returns the current subsystem status.
func (s *Session) Status() Status {
	return Status(s.status.Load())
}

func (s *Session) setStatus(st Status) {
	s.status.Store(uint32(st))
}

// GivenUp reports whether the error threshold was exceeded; once true,
// start attempts are refused until process restart.
func (s *Session) GivenUp() bool {
	return int(s.errCount.Load()) >= s.cfg.MaxErrors
}

// startThread launches the background goroutine in the requested role. A
// previous goroutine that already exited on its own (failed setup, give-up)
// is reaped here, so a transient failure never blocks later attempts.
func (s *Session) startThread(sender bool) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.running {
		select {
		case <-s.done:
			s.running = false
		default:
			return ErrBusy
		}
	}
	if s.GivenUp() {
		return ErrGivenUp
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	if sender {
		go s.sendMain()
	} else {
		go s.recvMain()
	}
	return nil
}

// Stop terminates the background goroutine, whatever it is blocked in, and
// returns only after it has actually exited.
func (s *Session) Stop() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if !s.running {
		return
	}
	close(s.stop) // unblocks the cancellable receive and the send loop
	s.signal()    // wake a drain wait, should the loop be between selects
	<-s.done
	s.running = false
}

// UpdateStatus compares the current sender state against what the
// configuration and aircraft count demand, and starts or stops the sending
// machinery accordingly. It is a no-op while the session acts as receiver.
func (s *Session) UpdateStatus(numAircraft int, networkedSetup bool) {
	cur := s.Status()
	if cur.IsListener() {
		return
	}

	expected := s.desiredStatus(cur, numAircraft, networkedSetup)
	if expected == cur {
		return
	}
	if expected == StatusOff {
		s.Stop()
		return
	}
	if err := s.startThread(true); err != nil && !errors.Is(err, ErrBusy) {
		logrus.WithFields(logrus.Fields{
			"function": "Session.UpdateStatus",
			"error":    err.Error(),
		}).Error("Could not start sender")
	}
}

// desiredStatus resolves the tri-state Remote configuration, the aircraft
// count and the current state into the sender state that should hold.
func (s *Session) desiredStatus(cur Status, numAircraft int, networkedSetup bool) Status {
	if numAircraft <= 0 {
		return StatusOff
	}
	on := s.cfg.Remote == ConfigOn ||
		(s.cfg.Remote == ConfigConditionally && networkedSetup)
	if !on {
		return StatusOff
	}
	if cur == StatusSending {
		return StatusSending
	}
	return StatusSendWaiting
}

// StartReceiver joins the multicast group in the receiver role and invokes
// cb for every decoded message. Sender and receiver roles are mutually
// exclusive within one session.
func (s *Session) StartReceiver(cb Callbacks) error {
	if !s.Status().IsListener() && s.Status() != StatusOff {
		return ErrBusy
	}
	s.cb = cb
	return s.startThread(false)
}

//
// Producer entry points, called from the simulation tick.
//

// BeginTick starts the per-tick aircraft loop: it takes the shared lock
// once and computes which full-update group is due. The lock is held until
// EndTick, batching lock overhead to once per tick.
func (s *Session) BeginTick(now time.Time) {
	if s.Status() != StatusSending {
		return
	}
	s.mu.Lock()
	s.tickActive = true
	s.dueGroup = dueFullGroup(now.Unix(), s.cfg.FullRefreshSeconds)
}

// EnqueueAircraft runs the delta-vs-full decision for one aircraft and
// queues the resulting record. Must be called between BeginTick and
// EndTick.
func (s *Session) EnqueueAircraft(ac *AircraftState) {
	if !s.tickActive {
		return
	}
	e, ok := s.cache[ac.ModeSID]
	if !ok {
		e = &cacheEntry{}
		// Round-robin group assignment, wrapping at the refresh window.
		s.nextGroup++
		if s.nextGroup > s.cfg.FullRefreshSeconds {
			s.nextGroup = 1
		}
		e.fullGroup = s.nextGroup
		s.cache[ac.ModeSID] = e
	}
	if needsFullUpdate(e, !ok, s.dueGroup, ac) {
		s.pushLocked(workItem{kind: workAcDetail, detail: ac.detailRecord()})
	} else {
		s.pushLocked(workItem{kind: workAcPosUpdate, pos: e.posUpdateRecord(ac)})
	}
	e.update(ac)
}

// EndTick closes the per-tick loop: it queues a single flush marker,
// releases the lock and wakes the network goroutine exactly once.
func (s *Session) EndTick() {
	if !s.tickActive {
		return
	}
	s.pushLocked(workItem{kind: workFlush})
	s.tickActive = false
	s.mu.Unlock()
	s.signal()
}

// RemoveAircraft signals that an aircraft no longer exists. While sending,
// a removal record is queued and flushed; otherwise there is nothing to
// compute deltas against anymore and the cache is cleared outright.
func (s *Session) RemoveAircraft(modeSID uint32) {
	s.mu.Lock()
	if s.Status() == StatusSending {
		if _, ok := s.cache[modeSID]; ok {
			delete(s.cache, modeSID)
			s.pushLocked(workItem{kind: workAcRemove, remove: wire.AcRemove{ModeSID: modeSID}})
			s.pushLocked(workItem{kind: workFlush})
			s.mu.Unlock()
			s.signal()
			return
		}
	} else {
		s.cache = make(map[uint32]*cacheEntry)
	}
	s.mu.Unlock()
}

// ClearAll drops every cache entry and all queued work, used on full
// subsystem stop.
func (s *Session) ClearAll() {
	s.mu.Lock()
	s.cache = make(map[uint32]*cacheEntry)
	s.queue = nil
	s.mu.Unlock()
}
