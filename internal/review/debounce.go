package review

import (
	"strings"
	"sync"
	"time"
)

// Debouncer runs the latest scheduled func for a key once the key has been
// quiet for delay. Scheduling again cancels the pending run.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	gen    map[string]uint64
	seq    uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		gen:    make(map[string]uint64),
	}
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.seq++
	mine := d.seq
	d.gen[key] = mine
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// a timer that fired while being replaced must not run
		if d.gen[key] != mine {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		delete(d.gen, key)
		d.mu.Unlock()
		fn()
	})
}

func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[key]
	return ok
}

func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked(key)
}

// CancelPrefix drops every pending run whose key starts with prefix.
func (d *Debouncer) CancelPrefix(prefix string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.timers {
		if strings.HasPrefix(key, prefix) {
			d.cancelLocked(key)
		}
	}
}

func (d *Debouncer) cancelLocked(key string) {
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
	delete(d.gen, key)
}
