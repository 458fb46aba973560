package watch

import "time"

// debouncer coalesces a burst of change events into one run. It is owned by
// the goroutine that selects on C, so it needs no locking: the run it signals
// happens on that same goroutine and a later burst waits for it to finish.
type debouncer struct {
	interval time.Duration
	timer    *time.Timer
	path     string
}

func newDebouncer(interval time.Duration) *debouncer {
	t := time.NewTimer(interval)
	t.Stop()

	return &debouncer{interval: interval, timer: t}
}

// Trigger records path as the latest change and restarts the quiet period.
func (d *debouncer) Trigger(path string) {
	d.path = path
	d.timer.Reset(d.interval)
}

// C receives once the quiet period after the last Trigger has elapsed.
func (d *debouncer) C() <-chan time.Time {
	return d.timer.C
}

// Path returns the path passed to the last Trigger.
func (d *debouncer) Path() string {
	return d.path
}

// Stop discards a pending run.
func (d *debouncer) Stop() {
	d.timer.Stop()
}
