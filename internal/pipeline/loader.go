package pipeline

import "sync"

// Loader guards pipeline construction so the expensive path (index open plus
// client handshakes) runs at most once per process. Both outcomes are cached:
// a failed build stays failed until Invalidate, matching the no-automatic-retry
// policy for construction errors.
type Loader struct {
	mu    sync.Mutex
	build func() (*Pipeline, error)
	done  bool
	p     *Pipeline
	err   error
}

// NewLoader wraps a build function in a single-initialization guard.
func NewLoader(build func() (*Pipeline, error)) *Loader {
	return &Loader{build: build}
}

// Get returns the cached pipeline, building it on first call.
func (l *Loader) Get() (*Pipeline, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		l.p, l.err = l.build()
		l.done = true
	}
	return l.p, l.err
}

// Invalidate discards the cached outcome so the next Get rebuilds.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done = false
	l.p = nil
	l.err = nil
}
