// Package ledger holds the authoritative in-memory seat state for every
// showing.  A seat is either free (no entry), blocked (temporarily held
// with a timestamp) or occupied (permanently booked).  State lives only in
// this process and is rebuilt empty on restart; durability is handled by
// downstream consumers of the booking events, not here.
package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/live-seat-booking/internal/logger"
)

// DefaultBlockTTL is how long a blocked seat stays held when no explicit
// TTL is configured.
const DefaultBlockTTL = 10 * time.Minute

// Notifier receives seat-state change notifications after each mutation.
// The realtime hub implements it; tests substitute a recorder.  All methods
// are invoked outside the ledger's lock.
type Notifier interface {
	SeatsBlocked(showing string, seats []string)
	SeatsBooked(showing string, seats []string)
	SeatsUpdated(showing string, occupied, blocked []string)
}

// Options configures a Ledger.  Zero values select the defaults: the
// package TTL, a nil notifier (notifications dropped), the wall clock and
// a no-op logger.
type Options struct {
	BlockTTL time.Duration
	Notifier Notifier
	Clock    func() time.Time // injectable for tests
	Logger   logger.Logger
}

// Ledger is the single source of truth for seat availability.  All methods
// are safe for concurrent use; one mutex guards the maps so each operation
// observes and produces a consistent snapshot, mirroring the
// run-to-completion semantics the seat model was designed around.
type Ledger struct {
	mu       sync.Mutex
	occupied map[string]map[string]struct{}  // showing -> occupied seat labels
	blocked  map[string]map[string]time.Time // showing -> seat label -> heldAt
	pending  expiryHeap                      // pending block expirations, earliest first

	blockTTL time.Duration
	notifier Notifier
	now      func() time.Time
	log      logger.Logger

	wake   chan struct{} // signals the sweeper that the earliest deadline moved
	done   chan struct{}
	closed bool
}

// New constructs a Ledger and starts its background expiry sweeper.  Call
// Close to stop the sweeper.
func New(opts Options) *Ledger {
	if opts.BlockTTL <= 0 {
		opts.BlockTTL = DefaultBlockTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	l := &Ledger{
		occupied: make(map[string]map[string]struct{}),
		blocked:  make(map[string]map[string]time.Time),
		blockTTL: opts.BlockTTL,
		notifier: opts.Notifier,
		now:      opts.Clock,
		log:      opts.Logger,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Close stops the background sweeper.  The ledger remains usable for
// queries and mutations afterwards; only proactive expiry stops (the lazy
// path keeps reads correct).
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.done)
	}
}

// Status returns the occupied and currently blocked seats for a showing.
// Expired blocks are evicted before reporting.  An unknown showing yields
// empty slices, never an error.
func (l *Ledger) Status(showing string) (occupied, blocked []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evictExpiredLocked(showing)
	return l.snapshotLocked(showing)
}

// CheckAvailability reports whether every listed seat is neither occupied
// nor validly blocked.  An empty list is vacuously available.  Note that a
// positive answer is only a hint: availability can change before a
// subsequent Block call (callers accept that window).
func (l *Ledger) CheckAvailability(showing string, seats []string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evictExpiredLocked(showing)
	occ := l.occupied[showing]
	blk := l.blocked[showing]
	for _, seat := range seats {
		if _, taken := occ[seat]; taken {
			return false
		}
		if _, held := blk[seat]; held {
			return false
		}
	}
	return true
}

// Block marks every listed seat as held right now for this showing,
// unconditionally overwriting any prior hold timestamp (last write wins).
// It does not re-validate availability; callers are expected to run
// CheckAvailability first.  Subscribers are notified with a seat_blocked
// event.
func (l *Ledger) Block(showing string, seats []string) {
	if len(seats) == 0 {
		return
	}
	l.mu.Lock()
	now := l.now()
	blk := l.blocked[showing]
	if blk == nil {
		blk = make(map[string]time.Time)
		l.blocked[showing] = blk
	}
	deadline := now.Add(l.blockTTL)
	for _, seat := range seats {
		blk[seat] = now
		l.pending.push(expiry{showing: showing, seat: seat, at: deadline})
	}
	l.mu.Unlock()

	l.kick()
	l.log.Debugf("ledger: blocked %d seat(s) for showing %s", len(seats), showing)
	if l.notifier != nil {
		l.notifier.SeatsBlocked(showing, seats)
	}
}

// Confirm permanently books the listed seats, removing any matching block
// entry whether or not it had already expired.  Confirming an occupied
// seat again is a no-op, so the operation is idempotent.  Subscribers are
// notified with a seat_booked event.
func (l *Ledger) Confirm(showing string, seats []string) {
	if len(seats) == 0 {
		return
	}
	l.mu.Lock()
	occ := l.occupied[showing]
	if occ == nil {
		occ = make(map[string]struct{})
		l.occupied[showing] = occ
	}
	for _, seat := range seats {
		occ[seat] = struct{}{}
	}
	if blk := l.blocked[showing]; blk != nil {
		for _, seat := range seats {
			delete(blk, seat)
		}
		if len(blk) == 0 {
			delete(l.blocked, showing)
		}
	}
	l.mu.Unlock()

	l.log.Infof("ledger: confirmed %d seat(s) for showing %s", len(seats), showing)
	if l.notifier != nil {
		l.notifier.SeatsBooked(showing, seats)
	}
}

// Release drops blocks on the listed seats, if present.  Occupied seats
// are untouched and releasing a seat that was never blocked is a silent
// no-op.
func (l *Ledger) Release(showing string, seats []string) {
	l.mu.Lock()
	blk := l.blocked[showing]
	if blk != nil {
		for _, seat := range seats {
			delete(blk, seat)
		}
		if len(blk) == 0 {
			delete(l.blocked, showing)
		}
	}
	l.mu.Unlock()
}

// BlockTTL exposes the configured hold duration so edge layers can report
// expiry deadlines to clients.
func (l *Ledger) BlockTTL() time.Duration { return l.blockTTL }

// evictExpiredLocked is the single eviction primitive shared by the lazy
// read path and the background sweeper.  It removes every expired block
// for the showing and returns whether anything was evicted.  Callers hold
// l.mu.
func (l *Ledger) evictExpiredLocked(showing string) bool {
	blk := l.blocked[showing]
	if len(blk) == 0 {
		return false
	}
	now := l.now()
	evicted := false
	for seat, heldAt := range blk {
		if now.Sub(heldAt) >= l.blockTTL {
			delete(blk, seat)
			evicted = true
		}
	}
	if len(blk) == 0 {
		delete(l.blocked, showing)
	}
	return evicted
}

// snapshotLocked copies the current sets into sorted slices.  Callers hold
// l.mu.
func (l *Ledger) snapshotLocked(showing string) (occupied, blocked []string) {
	occupied = make([]string, 0, len(l.occupied[showing]))
	for seat := range l.occupied[showing] {
		occupied = append(occupied, seat)
	}
	blocked = make([]string, 0, len(l.blocked[showing]))
	for seat := range l.blocked[showing] {
		blocked = append(blocked, seat)
	}
	sort.Strings(occupied)
	sort.Strings(blocked)
	return occupied, blocked
}

// kick nudges the sweeper after the earliest deadline may have changed.
func (l *Ledger) kick() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// sweep is the background task behind proactive expiry.  It sleeps until
// the earliest pending deadline, evicts whatever actually expired, and
// pushes a seat_update to subscribers of the affected showings so seat
// maps refresh even when nobody polls.  Entries whose hold was refreshed,
// released or confirmed in the meantime are skipped; the lazy path and the
// sweeper may race over the same seat and both treat a missing entry as
// already handled.
func (l *Ledger) sweep() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		l.mu.Lock()
		wait := time.Hour
		if next, ok := l.pending.peek(); ok {
			// Deadlines are stamped by the injected clock, so the wait
			// must come from the same clock or the timer and the expiry
			// decision disagree.
			wait = next.at.Sub(l.now())
			if wait < 0 {
				wait = 0
			}
		}
		l.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-l.done:
			return
		case <-l.wake:
			continue
		case <-timer.C:
		}

		for _, showing := range l.expireDue() {
			occ, blk := l.Status(showing)
			l.log.Debugf("ledger: expired blocks swept for showing %s", showing)
			if l.notifier != nil {
				l.notifier.SeatsUpdated(showing, occ, blk)
			}
		}
	}
}

// expireDue pops every heap entry whose deadline has passed and evicts the
// expired blocks, returning the showings that actually changed.
func (l *Ledger) expireDue() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	changed := make(map[string]struct{})
	for {
		next, ok := l.pending.peek()
		if !ok || next.at.After(now) {
			break
		}
		l.pending.pop()
		heldAt, held := l.blocked[next.showing][next.seat]
		if !held || now.Sub(heldAt) < l.blockTTL {
			continue // refreshed, released or confirmed since this entry was armed
		}
		delete(l.blocked[next.showing], next.seat)
		if len(l.blocked[next.showing]) == 0 {
			delete(l.blocked, next.showing)
		}
		changed[next.showing] = struct{}{}
	}
	showings := make([]string, 0, len(changed))
	for s := range changed {
		showings = append(showings, s)
	}
	sort.Strings(showings)
	return showings
}
