package gatt

import (
	"context"
	"sync"
	"time"
)

// A Scheduler arms one-shot callbacks that run on the event loop.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// A Loop runs posted functions one at a time, in order, on the goroutine
// that calls Run. Entity state is only touched from the loop, so entities
// need no locking of their own.
type Loop struct {
	calls chan func()
	done  chan struct{}
	once  sync.Once
	err   error
}

// NewLoop returns a Loop ready to Run.
func NewLoop() *Loop {
	return &Loop{
		calls: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Post queues f to run on the loop. It reports false if the loop has quit.
// Post must not be called from the loop itself once the queue may be full.
func (l *Loop) Post(f func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case <-l.done:
		return false
	case l.calls <- f:
		return true
	}
}

// Do runs f on the loop and waits for it to return. It reports false
// if the loop quit before f ran. Do must not be called from the loop.
func (l *Loop) Do(f func()) bool {
	ran := make(chan struct{})
	if !l.Post(func() { f(); close(ran) }) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-l.done:
		return false
	}
}

// AfterFunc runs f on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, func() { l.Post(f) })
}

// Quit stops the loop; Run returns err. Only the first call has effect.
func (l *Loop) Quit(err error) {
	l.once.Do(func() {
		l.err = err
		close(l.done)
	})
}

// Done is closed once the loop has quit.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run processes posted functions until Quit is called or ctx is done.
// Cancelling ctx is a clean shutdown and makes Run return nil.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Quit(nil)
			return l.err
		case <-l.done:
			return l.err
		case f := <-l.calls:
			f()
		}
	}
}
