package optimistic

import (
	"context"
	"errors"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

var ErrMutationSettled = errors.New("mutation already settled")

type State int32

const (
	Idle State = iota
	Optimistic
	Reconciled
	RolledBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Optimistic:
		return "optimistic"
	case Reconciled:
		return "reconciled"
	case RolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// Mutation is an optimistic write on a single key, settled exactly once by Commit or Rollback.
type Mutation[T any] struct {
	store *Store[T]
	key   string
	state atomic.Int32

	snapshot    []byte
	hasSnapshot bool
	// version written by Begin, zero when nothing was written
	version uint64
}

func (m *Mutation[T]) Key() string {
	return m.key
}

func (m *Mutation[T]) State() State {
	return State(m.state.Load())
}

func (m *Mutation[T]) settle(to State) error {
	if !m.state.CompareAndSwap(int32(Optimistic), int32(to)) {
		return ErrMutationSettled
	}
	return nil
}

// Commit marks the mutation reconciled. A non-nil reconcile folds the server answer into
// the current value; with nil reconcile the key is invalidated and the next read refetches.
func (m *Mutation[T]) Commit(reconcile func(T) (T, error)) error {
	if err := m.settle(Reconciled); err != nil {
		return err
	}

	s := m.store
	l := s.keyLock(m.key)
	l.Lock()
	defer l.Unlock()

	if reconcile == nil {
		s.Invalidate(m.key)
		return nil
	}

	current, ok := s.Get(m.key)
	if !ok {
		return nil
	}
	next, err := reconcile(current.Value)
	if err != nil {
		log.Warnf("optimistic store: reconcile %s: %s", m.key, err)
		s.Invalidate(m.key)
		return nil
	}
	if _, err := s.write(m.key, next); err != nil {
		log.Errorf("optimistic store: write reconciled %s: %s", m.key, err)
		s.Invalidate(m.key)
	}
	return nil
}

// Rollback marks the mutation rolled back. The snapshot is restored only if the entry still
// carries the version this mutation wrote; otherwise the key is invalidated.
func (m *Mutation[T]) Rollback(cause error) error {
	if err := m.settle(RolledBack); err != nil {
		return err
	}

	s := m.store
	l := s.keyLock(m.key)
	l.Lock()
	version, ok := s.currentVersion(m.key)
	switch {
	case m.version != 0 && ok && version == m.version && m.hasSnapshot:
		if err := s.restore(m.key, m.snapshot); err != nil {
			log.Errorf("optimistic store: restore %s: %s", m.key, err)
			s.Invalidate(m.key)
		}
	case ok:
		s.Invalidate(m.key)
	}
	l.Unlock()

	if hook := s.rollbackHook(); hook != nil {
		hook(m.key, cause)
	}
	return nil
}

// Pending is a dispatched mutation waiting for the server answer.
type Pending[R any] struct {
	done   chan struct{}
	state  func() State
	result R
	err    error
}

// Wait blocks until the mutation settles and returns the server result or the send error.
func (p *Pending[R]) Wait() (R, error) {
	<-p.done
	return p.result, p.err
}

func (p *Pending[R]) Done() <-chan struct{} {
	return p.done
}

func (p *Pending[R]) State() State {
	return p.state()
}

// Mutate begins a mutation on key synchronously, then dispatches send on its own goroutine
// and settles the mutation with its outcome: reconcile on success, rollback on error.
// A nil reconcile invalidates the key on success.
func Mutate[T, R any](
	ctx context.Context,
	store *Store[T],
	key string,
	transform func(T) (T, error),
	send func(ctx context.Context) (R, error),
	reconcile func(current T, result R) (T, error),
) (*Pending[R], error) {
	m, err := store.Begin(key, transform)
	if err != nil {
		return nil, err
	}

	p := &Pending[R]{
		done:  make(chan struct{}),
		state: m.State,
	}

	go func() {
		defer close(p.done)

		result, err := send(ctx)
		if err != nil {
			p.err = err
			if rbErr := m.Rollback(err); rbErr != nil {
				log.Errorf("optimistic store: rollback %s: %s", key, rbErr)
			}
			return
		}

		p.result = result
		var fold func(T) (T, error)
		if reconcile != nil {
			fold = func(current T) (T, error) {
				return reconcile(current, result)
			}
		}
		if cErr := m.Commit(fold); cErr != nil {
			log.Errorf("optimistic store: commit %s: %s", key, cErr)
		}
	}()

	return p, nil
}
