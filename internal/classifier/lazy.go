package classifier

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Lazy builds a Classifier on first use and reuses it afterwards.
//
// The factory runs at most once. Concurrent first callers block on the same
// initialization; a failed initialization is remembered and returned to every
// later caller.
type Lazy struct {
	factory Factory

	mu   sync.Mutex
	done bool
	c    Classifier
	err  error

	// loaded is set once a successful init has been published; it is read
	// without mu so readiness checks never wait on a running factory.
	loaded atomic.Bool
}

// NewLazy wraps factory.
func NewLazy(factory Factory) *Lazy {
	return &Lazy{factory: factory}
}

// Get returns the classifier, initializing it if needed. Initialization is
// detached from ctx cancellation so that one caller's deadline cannot poison
// the shared instance.
func (l *Lazy) Get(ctx context.Context) (Classifier, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.done {
		l.c, l.err = l.init(context.WithoutCancel(ctx))
		l.done = true
		l.loaded.Store(l.err == nil)
	}
	return l.c, l.err
}

func (l *Lazy) init(ctx context.Context) (c Classifier, err error) {
	if l.factory == nil {
		return nil, fmt.Errorf("%w: no classifier configured", ErrUnavailable)
	}
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("%w: initialization panicked: %v", ErrUnavailable, r)
		}
	}()

	c, err = l.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: factory returned no classifier", ErrUnavailable)
	}
	return c, nil
}

// Loaded reports whether initialization has run and succeeded. It does not
// block while initialization is in progress.
func (l *Lazy) Loaded() bool {
	return l.loaded.Load()
}
