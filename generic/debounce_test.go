package generic_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/voyagehq/quote-engine/generic"
)

func TestDebouncer_BurstCoalescesToNewest(t *testing.T) {
	d := generic.NewDebouncer(time.Hour) // never fires on its own in this test
	defer d.Stop()

	var got atomic.Int32
	d.Trigger(func() { got.Store(1) })
	d.Trigger(func() { got.Store(2) })
	d.Trigger(func() { got.Store(3) })

	d.Flush()
	if got.Load() != 3 {
		t.Errorf("expected newest pending call to run, got %d", got.Load())
	}

	// Nothing pending anymore.
	d.Flush()
	if got.Load() != 3 {
		t.Errorf("second flush should be a no-op, got %d", got.Load())
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := generic.NewDebouncer(time.Millisecond)

	var fired atomic.Bool
	d.Trigger(func() { fired.Store(true) })
	d.Stop()

	time.Sleep(20 * time.Millisecond)
	if fired.Load() {
		t.Error("stopped debouncer still fired")
	}
}
