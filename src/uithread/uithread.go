// Package uithread runs closures on the single thread that owns every
// native window: the selector surface, translation panels and the settings
// dialog. Worker goroutines never touch windows directly; they Post.
package uithread

import (
	"context"
	"errors"
	"log"
	"runtime"
	"sync"
	"time"
)

// ErrClosed is returned when posting to a loop that has stopped.
var ErrClosed = errors.New("ui loop closed")

const (
	queueSize    = 64
	pumpInterval = 10 * time.Millisecond
)

// Loop is a task queue drained by the goroutine that calls Run.
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

func New() *Loop {
	return &Loop{
		tasks: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Post schedules fn on the UI thread. Safe from any goroutine. Returns false
// once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the UI thread and waits for it to return.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}

// Run owns the calling OS thread until ctx is cancelled, executing posted
// tasks in order and pumping native window messages between them.
func (l *Loop) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer l.stop()

	ticker := time.NewTicker(pumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			l.exec(fn)
			pumpMessages()
		case <-ticker.C:
			pumpMessages()
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("uithread: task panicked: %v", r)
		}
	}()
	fn()
}

func (l *Loop) stop() {
	l.stopOnce.Do(func() { close(l.done) })
}
