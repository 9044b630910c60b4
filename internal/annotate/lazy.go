package annotate

import (
	"context"
	"sync"
)

// Lazy defers construction of an expensive annotator until first use.
// Exactly one initializer runs even under concurrent first-use; other
// callers wait. A failed initialization is remembered and returned to
// every subsequent caller so health checks can report degradation.
type Lazy struct {
	build func() (Annotator, error)

	once    sync.Once
	backend Annotator
	initErr error
}

// NewLazy wraps a constructor for once-guarded initialization
func NewLazy(build func() (Annotator, error)) *Lazy {
	return &Lazy{build: build}
}

// Annotate initializes the backend on first call, then delegates
func (l *Lazy) Annotate(ctx context.Context, text string) (*Document, error) {
	backend, err := l.get()
	if err != nil {
		return nil, err
	}
	return backend.Annotate(ctx, text)
}

// Ready reports whether the backend is (or can be) initialized
func (l *Lazy) Ready() error {
	_, err := l.get()
	return err
}

func (l *Lazy) get() (Annotator, error) {
	l.once.Do(func() {
		l.backend, l.initErr = l.build()
	})
	return l.backend, l.initErr
}
