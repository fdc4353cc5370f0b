// Package timer implements named one-shot timers. Each logical timer
// (next gong, daily fetch, ack timeout, watchdog) is identified by name;
// starting a timer cancels any outstanding timer with the same name, so at
// most one instance of each logical timer is armed at any time.
package timer

import (
	"log/slog"
	"sync"
	"time"
)

type Timers struct {
	logger *slog.Logger
	lock   sync.Mutex
	timers map[string]*time.Timer
}

func New(logger *slog.Logger) *Timers {
	return &Timers{
		logger: logger,
		timers: make(map[string]*time.Timer),
	}
}

// Start arms the named timer to call fn after d, cancelling any previously
// armed timer with the same name. A non-positive duration fires immediately.
func (t *Timers) Start(name string, d time.Duration, fn func()) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if old, ok := t.timers[name]; ok {
		old.Stop()
	}
	t.logger.Debug("timer armed", slog.String("name", name), slog.Duration("in", d))
	var handle *time.Timer
	handle = time.AfterFunc(d, func() {
		t.expire(name, handle)
		fn()
	})
	t.timers[name] = handle
}

// expire removes the fired timer from the map. The name may have been
// re-armed between the timer firing and this running; only the handle that
// actually fired is removed, so the re-armed timer stays tracked and
// cancellable.
func (t *Timers) expire(name string, handle *time.Timer) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.timers[name] == handle {
		delete(t.timers, name)
	}
}

// Cancel stops the named timer. Cancelling a timer that is not armed is a
// no-op.
func (t *Timers) Cancel(name string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if old, ok := t.timers[name]; ok {
		old.Stop()
		delete(t.timers, name)
		t.logger.Debug("timer cancelled", slog.String("name", name))
	}
}

// CancelAll stops all armed timers.
func (t *Timers) CancelAll() {
	t.lock.Lock()
	defer t.lock.Unlock()
	for name, old := range t.timers {
		old.Stop()
		delete(t.timers, name)
	}
}

// Active reports whether the named timer is currently armed.
func (t *Timers) Active(name string) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	_, ok := t.timers[name]
	return ok
}
