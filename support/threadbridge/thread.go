// Package threadbridge implements the registry's ThreadUtils capability
// façade over goroutines: Create starts one, Join waits for its
// result, and realtime-priority control is surfaced as "unsupported"
// since Go's scheduler doesn't expose SCHED_FIFO-style priorities to
// user code.
package threadbridge

import (
	"errors"
	"unsafe"

	"github.com/aclements/go-spa/dict"
	"github.com/aclements/go-spa/support"
)

// ErrUnsupported is returned by realtime-priority operations, which
// have no goroutine-level equivalent.
var ErrUnsupported = errors.New("threadbridge: not supported on goroutines")

// Thread is a handle to a started unit of work.
type Thread struct {
	done   chan any
	result any
}

// ThreadUtils is the registry-facing ThreadUtils façade.
type ThreadUtils struct {
	handle unsafe.Pointer
}

func New() *ThreadUtils { return &ThreadUtils{} }

func (t *ThreadUtils) Kind() support.Kind { return support.KindThreadUtils }

// stackSizeKey is the dictionary key a caller can set in props to hint
// a goroutine's stack size. Goroutine stacks grow dynamically, so this
// is accepted for API compatibility but otherwise ignored.
const stackSizeKey = "thread.stack-size"

// Create starts start on a new goroutine and returns a handle to it.
// props may carry stackSizeKey, accepted but unused.
func (t *ThreadUtils) Create(props *dict.Dict, start func() any) *Thread {
	th := &Thread{done: make(chan any, 1)}
	go func() {
		th.done <- start()
	}()
	return th
}

// Join blocks until th's function returns and yields its result.
func (t *ThreadUtils) Join(th *Thread) any {
	th.result = <-th.done
	return th.result
}

// GetRTRange reports the realtime priority range available to threads
// created by Create. Goroutines never run under a realtime scheduling
// class, so this always fails.
func (t *ThreadUtils) GetRTRange(props *dict.Dict) (min, max int32, err error) {
	return 0, 0, ErrUnsupported
}

func (t *ThreadUtils) AcquireRT(th *Thread, priority int32) error { return ErrUnsupported }
func (t *ThreadUtils) DropRT(th *Thread) error                    { return ErrUnsupported }

func (t *ThreadUtils) NativeHandle() unsafe.Pointer {
	if t.handle == nil {
		t.handle = unsafe.Pointer(t)
	}
	return t.handle
}

func (t *ThreadUtils) Close() error { return nil }
