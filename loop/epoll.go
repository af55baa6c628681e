// Package loop implements an epoll-backed event loop: a Loop multiplexes
// I/O, idle, event, timer, and signal sources onto one poll descriptor,
// a LoopControl-style Iterate drives one dispatch pass, and Invoke lets
// other goroutines run work on the loop's own goroutine.
package loop

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// System is the subset of the registry's System façade the event loop
// needs. loopbridge wires a real *sysbridge.System here; tests can
// supply a fake.
type System interface {
	PollFDCreate(cloExec bool) (int, error)
	PollFDAdd(epfd, fd int, events uint32, data uint64) error
	PollFDMod(epfd, fd int, events uint32, data uint64) error
	PollFDDel(epfd, fd int) error
	PollFDWait(epfd int, events []unix.EpollEvent, timeoutMs int) (int, error)

	EventFDCreate(initval uint32, semaphore bool) (int, error)
	EventFDWrite(fd int, count uint64) error
	EventFDRead(fd int) (uint64, error)

	TimerFDCreate(clockID int) (int, error)
	TimerFDSettime(fd int, flags int, new *unix.ItimerSpec) (*unix.ItimerSpec, error)
	TimerFDRead(fd int) (uint64, error)

	SignalFDCreate(mask *unix.Sigset_t) (int, error)
	SignalFDRead(fd int) (unix.SignalfdSiginfo, error)

	Close(fd int) error
}

// Loop is one epoll-backed event loop instance.
type Loop struct {
	system  System
	pollfd  int
	mu      sync.Mutex
	sources map[int]*Source

	invokeFD    int
	invokeQueue invokeQueue

	profiler *Profiler
}

// New creates a Loop backed by sys. The caller owns sys's lifetime and
// must not Close it while the Loop is in use.
func New(sys System) (*Loop, error) {
	pollfd, err := sys.PollFDCreate(true)
	if err != nil {
		return nil, fmt.Errorf("loop: create pollfd: %w", err)
	}
	l := &Loop{
		system:   sys,
		pollfd:   pollfd,
		sources:  make(map[int]*Source),
		profiler: NewProfiler(),
	}
	if err := l.initInvoke(); err != nil {
		sys.Close(pollfd)
		return nil, err
	}
	return l, nil
}

// AddSource registers src with the loop, arming it for its Mask
// readiness events. src.FD must be unique among currently registered
// sources.
func (l *Loop) AddSource(src *Source) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.sources[src.FD]; exists {
		return fmt.Errorf("loop: fd %d already registered", src.FD)
	}
	src.Rmask = 0
	src.loop = l
	data := uint64(uintptr(src.FD))
	if err := l.system.PollFDAdd(l.pollfd, src.FD, src.Mask, data); err != nil {
		return err
	}
	src.state = SourceActive
	l.sources[src.FD] = src
	return nil
}

// UpdateSource re-arms src's readiness mask after it has changed.
func (l *Loop) UpdateSource(src *Source) error {
	if err := src.checkUsable(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	data := uint64(uintptr(src.FD))
	return l.system.PollFDMod(l.pollfd, src.FD, src.Mask, data)
}

// RemoveSource unregisters the source at fd, if any.
func (l *Loop) RemoveSource(fd int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	src, exists := l.sources[fd]
	if !exists {
		return nil
	}
	if err := l.system.PollFDDel(l.pollfd, fd); err != nil {
		return err
	}
	delete(l.sources, fd)
	src.state = SourceDestroyed
	if src.closeFD {
		l.system.Close(fd)
	}
	return nil
}

// Iterate runs one pass: it waits up to timeoutMs (-1 blocks
// indefinitely, 0 polls without blocking) for any registered source to
// become ready, then dispatches every ready source's callback in turn.
// It returns the number of sources dispatched.
func (l *Loop) Iterate(timeoutMs int) (int, error) {
	l.profiler.startIteration()
	defer l.profiler.endIteration()

	l.mu.Lock()
	events := make([]unix.EpollEvent, len(l.sources)+4)
	l.mu.Unlock()

	n, err := l.system.PollFDWait(l.pollfd, events, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("loop: epoll_wait: %w", err)
	}

	// Invocations queued from other goroutines run before any other
	// source this pass dispatches, regardless of where the invoke
	// eventfd happens to land among the events epoll_wait just
	// returned (or whether it's in there at all).
	l.drainInvokes()

	dispatched := 0
	for i := 0; i < n; i++ {
		fd := int(events[i].Fd)
		l.mu.Lock()
		src, exists := l.sources[fd]
		l.mu.Unlock()
		if !exists || src.state != SourceActive {
			continue
		}
		src.Rmask = events[i].Events
		l.dispatch(src)
		dispatched++
	}
	return dispatched, nil
}

func (l *Loop) dispatch(src *Source) {
	switch src.Kind {
	case SourceIO:
		if src.OnIO != nil {
			src.OnIO(src.FD, src.Rmask)
		}
	case SourceEvent:
		count, err := l.system.EventFDRead(src.FD)
		if err != nil {
			return
		}
		if src.OnEvent != nil {
			src.OnEvent(count)
		}
	case SourceIdle:
		if _, err := l.system.EventFDRead(src.FD); err != nil {
			return
		}
		if src.OnIdle != nil {
			src.OnIdle()
		}
	case SourceTimer:
		expirations, err := l.system.TimerFDRead(src.FD)
		if err != nil {
			return
		}
		if src.OnTimer != nil {
			src.OnTimer(expirations)
		}
	case SourceSignal:
		info, err := l.system.SignalFDRead(src.FD)
		if err != nil {
			return
		}
		if src.OnSignal != nil {
			src.OnSignal(int(info.Signo))
		}
	}
	l.dispatchIdle(src)
}

// Close tears down every remaining source and the loop's own
// descriptors. It is not safe to call concurrently with Iterate.
func (l *Loop) Close() error {
	l.mu.Lock()
	fds := make([]int, 0, len(l.sources))
	for fd := range l.sources {
		fds = append(fds, fd)
	}
	l.mu.Unlock()
	for _, fd := range fds {
		l.RemoveSource(fd)
	}
	l.system.Close(l.invokeFD)
	return l.system.Close(l.pollfd)
}

// Profiler exposes the loop's iteration-latency statistics.
func (l *Loop) Profiler() *Profiler { return l.profiler }
