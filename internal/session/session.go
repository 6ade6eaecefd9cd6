package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/awnumar/memguard"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
)

// State is the tagged lock state.
type State int

const (
	StateLocked State = iota
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateUnlocked:
		return "unlocked"
	default:
		return "locked"
	}
}

// Snapshot is a consistent view of the session for status reporting.
type Snapshot struct {
	State      State
	Generation uint64
	ExpiresAt  time.Time // zero when no idle timeout is set or Locked
}

type Option func(*Session)

// WithIdleTimeout locks the session after d without a WithKey call.
// Zero disables expiry.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.idle = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

type Session struct {
	mu         sync.RWMutex
	state      State
	key        *memguard.LockedBuffer
	generation uint64

	idle      time.Duration
	expiresAt atomic.Int64 // unix nanoseconds, 0 when unset
	now       func() time.Time
}

func New(opts ...Option) *Session {
	s := &Session{
		state: StateLocked,
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Unlock takes ownership of key: its bytes are moved into protected memory
// and the caller's slice is wiped. It returns the new session generation.
func (s *Session) Unlock(key []byte) (uint64, error) {
	if len(key) != cryptox.KeySize {
		common.WipeByteArray(key)
		return 0, cryptox.ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateUnlocked && !s.expiredLocked() {
		common.WipeByteArray(key)
		return 0, common.ErrAlreadyUnlocked
	}
	s.lockLocked()

	buf := memguard.NewBufferFromBytes(key)
	buf.Freeze()

	s.key = buf
	s.state = StateUnlocked
	s.generation++
	s.touch()

	return s.generation, nil
}

// Lock destroys the key and switches to Locked. It is safe to call in any
// state and blocks until running WithKey callbacks return.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockLocked()
}

func (s *Session) lockLocked() {
	if s.key != nil {
		s.key.Destroy()
		s.key = nil
	}
	s.state = StateLocked
	s.expiresAt.Store(0)
}

// WithKey runs fn with the session key. The slice is valid only during fn
// and must not be retained or modified. It returns common.ErrSessionLocked
// when the session is Locked or has expired.
func (s *Session) WithKey(fn func(key []byte) error) error {
	s.mu.RLock()
	if s.state != StateUnlocked {
		s.mu.RUnlock()
		return common.ErrSessionLocked
	}
	if s.expiredLocked() {
		s.mu.RUnlock()
		s.expire()
		return common.ErrSessionLocked
	}
	defer s.mu.RUnlock()

	s.touch()
	return fn(s.key.Bytes())
}

// Snapshot reports the current state, applying a pending expiry first.
func (s *Session) Snapshot() Snapshot {
	s.expire()

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{State: s.state, Generation: s.generation}
	if ns := s.expiresAt.Load(); ns != 0 && s.state == StateUnlocked {
		snap.ExpiresAt = time.Unix(0, ns)
	}
	return snap
}

func (s *Session) State() State {
	return s.Snapshot().State
}

// Active reports whether the session is Unlocked under generation gen.
func (s *Session) Active(gen uint64) bool {
	snap := s.Snapshot()
	return snap.State == StateUnlocked && snap.Generation == gen
}

// Watch applies idle expiry every interval until ctx is done, so an
// abandoned session loses its key without waiting for the next request.
func (s *Session) Watch(ctx context.Context, interval time.Duration) {
	if s.idle <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.expire()
		}
	}
}

// expire locks the session if it is Unlocked and past its expiry. The
// condition is checked again under the write lock.
func (s *Session) expire() {
	s.mu.RLock()
	due := s.state == StateUnlocked && s.expiredLocked()
	s.mu.RUnlock()
	if !due {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnlocked && s.expiredLocked() {
		s.lockLocked()
	}
}

func (s *Session) expiredLocked() bool {
	ns := s.expiresAt.Load()
	return ns != 0 && !s.now().Before(time.Unix(0, ns))
}

func (s *Session) touch() {
	if s.idle > 0 {
		s.expiresAt.Store(s.now().Add(s.idle).UnixNano())
	}
}
