// Package loopbridge adapts this module's epoll-backed loop package
// into the registry's Loop, LoopControl, and LoopUtils capability
// façades. The three façades share one underlying *loop.Loop: Loop is
// the low-level add/update/remove-source and invoke surface,
// LoopControl drives dispatch (iterate/enter/leave), and LoopUtils is
// the ergonomic per-source-kind constructor set.
package loopbridge

import (
	"sync"
	"time"
	"unsafe"

	"github.com/aclements/go-spa/loop"
	"github.com/aclements/go-spa/support"
)

// Bundle holds the three façades backed by one shared Loop, plus the
// Loop itself for callers that want direct access (e.g. to read
// Profiler stats).
type Bundle struct {
	Loop        *Loop
	Control     *LoopControl
	Utils       *LoopUtils
	Underlying  *loop.Loop
}

// New builds a Bundle backed by sys.
func New(sys loop.System) (*Bundle, error) {
	l, err := loop.New(sys)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Loop:       &Loop{l: l},
		Control:    &LoopControl{l: l},
		Utils:      &LoopUtils{l: l},
		Underlying: l,
	}, nil
}

// Loop is the registry-facing Loop façade: source registration and
// cross-thread invoke.
type Loop struct {
	l      *loop.Loop
	handle unsafe.Pointer
}

func (f *Loop) Kind() support.Kind { return support.KindLoop }

func (f *Loop) AddSource(src *loop.Source) error    { return f.l.AddSource(src) }
func (f *Loop) UpdateSource(src *loop.Source) error { return f.l.UpdateSource(src) }
func (f *Loop) RemoveSource(fd int) error           { return f.l.RemoveSource(fd) }

func (f *Loop) Invoke(seq uint32, data []byte, block bool, fn loop.InvokeFunc) (int32, error) {
	return f.l.Invoke(seq, data, block, fn)
}

func (f *Loop) NativeHandle() unsafe.Pointer {
	if f.handle == nil {
		f.handle = unsafe.Pointer(f)
	}
	return f.handle
}

func (f *Loop) Close() error { return nil }

// LoopControl is the registry-facing LoopControl façade: Iterate runs
// on the calling goroutine (no goroutine of its own is started), with
// Enter/Leave marking ownership, and it exposes a Lock/Wait/Signal/Accept
// rendezvous for synchronizing against it.
type LoopControl struct {
	l      *loop.Loop
	handle unsafe.Pointer

	mu      sync.Mutex
	cond    *sync.Cond
	entered bool
	running bool
	stop    chan struct{}
	done    chan struct{}

	hooks *loop.HookList[func()]
}

func (f *LoopControl) Kind() support.Kind { return support.KindLoopControl }

func (f *LoopControl) GetFD() uintptr { return 0 }

// AddHook registers a callback invoked once per Iterate pass and
// returns its id for later removal.
func (f *LoopControl) AddHook(cb func()) loop.HookID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hooks == nil {
		f.hooks = loop.NewHookList[func()]()
	}
	return f.hooks.Append(cb)
}

func (f *LoopControl) RemoveHook(id loop.HookID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hooks != nil {
		f.hooks.Remove(id)
	}
}

// Enter marks the loop as owned by the calling goroutine's dispatch
// cycle. It is not reentrant.
func (f *LoopControl) Enter() {
	f.mu.Lock()
	f.entered = true
	if f.cond == nil {
		f.cond = sync.NewCond(&f.mu)
	}
	f.mu.Unlock()
}

// Leave reverses Enter.
func (f *LoopControl) Leave() {
	f.mu.Lock()
	f.entered = false
	if f.cond != nil {
		f.cond.Broadcast()
	}
	f.mu.Unlock()
}

// Iterate runs one dispatch pass, then runs every registered hook.
func (f *LoopControl) Iterate(timeout time.Duration) (int, error) {
	timeoutMs := -1
	if timeout >= 0 {
		timeoutMs = int(timeout / time.Millisecond)
	}
	n, err := f.l.Iterate(timeoutMs)
	f.mu.Lock()
	hooks := f.hooks
	f.mu.Unlock()
	if hooks != nil {
		hooks.Emit(func(cb func()) { cb() })
	}
	return n, err
}

// Check reports whether the calling goroutine may safely call Iterate
// right now (i.e. the loop isn't already entered elsewhere).
func (f *LoopControl) Check() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.entered, nil
}

func (f *LoopControl) Lock() error {
	f.mu.Lock()
	return nil
}

func (f *LoopControl) Unlock() error {
	f.mu.Unlock()
	return nil
}

// Wait blocks on the control lock's condition variable until Signal
// is called or deadline passes. The caller must hold Lock.
func (f *LoopControl) Wait(deadline time.Time) error {
	if f.cond == nil {
		f.cond = sync.NewCond(&f.mu)
	}
	if deadline.IsZero() {
		f.cond.Wait()
		return nil
	}
	timer := time.AfterFunc(time.Until(deadline), func() {
		f.mu.Lock()
		f.cond.Broadcast()
		f.mu.Unlock()
	})
	defer timer.Stop()
	f.cond.Wait()
	return nil
}

// Signal wakes goroutines blocked in Wait and returns immediately;
// waitForAccept is ignored, so Signal never waits for Accept.
func (f *LoopControl) Signal(waitForAccept bool) error {
	f.mu.Lock()
	if f.cond != nil {
		f.cond.Broadcast()
	}
	f.mu.Unlock()
	return nil
}

// Accept is the counterpart to a wait-for-accept Signal. This
// implementation's Signal never blocks on it, so Accept is a no-op
// kept for API symmetry.
func (f *LoopControl) Accept() error { return nil }

func (f *LoopControl) NativeHandle() unsafe.Pointer {
	if f.handle == nil {
		f.handle = unsafe.Pointer(f)
	}
	return f.handle
}

func (f *LoopControl) Close() error { return nil }

// LoopUtils is the registry-facing LoopUtils façade: per-source-kind
// constructors layered over Loop.
type LoopUtils struct {
	l      *loop.Loop
	handle unsafe.Pointer
}

func (f *LoopUtils) Kind() support.Kind { return support.KindLoopUtils }

func (f *LoopUtils) AddIO(fd int, mask uint32, closeFD bool, cb loop.IOFunc) (*loop.Source, error) {
	return f.l.AddIO(fd, mask, closeFD, cb)
}

func (f *LoopUtils) UpdateIO(src *loop.Source, mask uint32) error {
	return f.l.UpdateIO(src, mask)
}

func (f *LoopUtils) AddIdle(enabled bool, cb loop.IdleFunc) (*loop.Source, error) {
	return f.l.AddIdle(enabled, cb)
}

func (f *LoopUtils) EnableIdle(src *loop.Source, enabled bool) error {
	return f.l.EnableIdle(src, enabled)
}

func (f *LoopUtils) AddEvent(cb loop.EventFunc) (*loop.Source, error) {
	return f.l.AddEvent(cb)
}

func (f *LoopUtils) SignalEvent(src *loop.Source) error {
	return f.l.SignalEvent(src)
}

func (f *LoopUtils) AddTimer(cb loop.TimerFunc) (*loop.Source, error) {
	return f.l.AddTimer(cb)
}

func (f *LoopUtils) UpdateTimer(src *loop.Source, value, interval time.Duration, absolute bool) error {
	return f.l.UpdateTimer(src, durationToTimespec(value), durationToTimespec(interval), absolute)
}

func (f *LoopUtils) AddSignal(signum int, cb loop.SignalFunc) (*loop.Source, error) {
	return f.l.AddSignal(signum, cb)
}

func (f *LoopUtils) DestroySource(src *loop.Source) error {
	return f.l.DestroySource(src)
}

func (f *LoopUtils) NativeHandle() unsafe.Pointer {
	if f.handle == nil {
		f.handle = unsafe.Pointer(f)
	}
	return f.handle
}

func (f *LoopUtils) Close() error { return nil }
