package hsi

import (
	"time"
)

// WaitOn selects the wait discipline used by WaitForData and WithAccess
type WaitOn int

// The four wait disciplines.  Values match the instrument-side API.
const (
	// NextAcq blocks until an acquisition newer than the last one seen
	// by this caller is published
	NextAcq WaitOn = iota + 1

	// Time blocks until an acquisition stamped at or after the given
	// session-relative time is published
	Time

	// AnyAcq blocks until at least one acquisition has ever been
	// published; it may return data this caller has already seen
	AnyAcq

	// NewData returns immediately when unseen data is already cached,
	// and otherwise behaves like NextAcq
	NewData
)

// spinInterval is the retry period of the claim loop.  The claim is a
// try-and-retry spin rather than a condition wait: the worker holds the
// publish lock across its whole fetch, so a waiter must acquire, check,
// and back off to let the worker make progress.
const spinInterval = 100 * time.Microsecond

// WaitForData blocks until the chosen discipline is satisfied, claiming
// the current acquisition.  After a successful wait the caller holds the
// publish lock and must call DoneWithData; prefer WithAccess, which
// pairs the two on every exit path.  The after argument is only
// meaningful for Time and is the session-relative time in seconds the
// acquisition must be stamped at or after; pass -1 otherwise.
//
// Returns ErrClosed if the session closes while waiting.
func (s *Session) WaitForData(on WaitOn, after float64) error {
	switch on {
	case AnyAcq:
		return s.waitClaim(func() bool {
			return s.acqCount.Load() > 0 && s.cacheLen() > 0
		})
	case NextAcq:
		return s.waitClaim(s.unseenData)
	case Time:
		return s.waitClaim(func() bool {
			return s.cacheLen() > 0 && after <= s.loadAcqTime()
		})
	default: // NewData
		if s.unseenData() {
			s.acqMu.Lock()
			s.claimHoldsLock = true
			if s.pendingRelease <= 0 {
				s.pendingRelease = 1
			}
			return nil
		}
		return s.waitClaim(s.unseenData)
	}
}

// DoneWithData releases a claim made by WaitForData: it marks the
// current acquisition as seen and drops the publish lock so the worker
// can take the next window.  Calling it without a pending claim is a
// debug-level no-op.
func (s *Session) DoneWithData() {
	if s.pendingRelease <= 0 {
		s.logger.Debug("done with data called with no wait pending")
		return
	}
	s.pendingRelease--
	s.lastAcqSeen.Store(s.acqCount.Load())
	s.releaseClaimLock()
}

// WithAccess waits under the chosen discipline, runs fn with the claimed
// acquisition held consistent, and releases on every exit path.  Scopes
// do not nest.
func (s *Session) WithAccess(on WaitOn, after float64, fn func() error) error {
	if err := s.WaitForData(on, after); err != nil {
		return err
	}
	defer s.DoneWithData()
	return fn()
}

// unseenData reports whether the cache holds an acquisition this caller
// has not released yet
func (s *Session) unseenData() bool {
	return s.cacheLen() > 0 && s.lastAcqSeen.Load() < s.acqCount.Load()
}

// waitClaim is the claim loop shared by the blocking disciplines: take
// the publish lock, re-check the predicate, and either keep the lock or
// back off briefly and retry.
func (s *Session) waitClaim(pred func() bool) error {
	for {
		if s.stopping() {
			return ErrClosed
		}
		s.acqMu.Lock()
		s.claimHoldsLock = true
		if pred() {
			break
		}
		s.releaseClaimLock()
		time.Sleep(spinInterval)
	}
	s.pendingRelease++
	return nil
}

func (s *Session) releaseClaimLock() {
	if s.claimHoldsLock {
		s.claimHoldsLock = false
		s.acqMu.Unlock()
	}
}
