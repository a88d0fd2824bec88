package search

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CollapsesBurst(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls, last atomic.Int32
	for i := 1; i <= 5; i++ {
		i := int32(i)
		d.Trigger(func() {
			calls.Add(1)
			last.Store(i)
		})
	}
	time.Sleep(100 * time.Millisecond)
	if calls.Load() != 1 || last.Load() != 5 {
		t.Errorf("calls = %d, last = %d; want 1 call of the last trigger", calls.Load(), last.Load())
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	if !d.Cancel() {
		t.Error("Cancel should report a pending call")
	}
	time.Sleep(60 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("canceled call ran %d times", calls.Load())
	}
	if d.Cancel() {
		t.Error("nothing pending after cancel")
	}
}
