package loop

import (
	"sync"

	"golang.org/x/sys/unix"
)

// fakeSystem is an in-process stand-in for sysbridge.System used by
// this package's tests: real epoll/eventfd/timerfd syscalls aren't
// exercised, but PollFDWait reports exactly the fds a test has marked
// ready, which is enough to drive Loop's dispatch logic deterministically.
type fakeSystem struct {
	mu sync.Mutex

	nextFD int
	reg    map[int]fakeReg // fd -> registration, across all epfds this fake supports one
	ready  map[int]uint32  // fd -> events currently ready

	eventCounters map[int]uint64
	timerPending  map[int]uint64
	ioReady       map[int]bool
	closed        map[int]bool
}

type fakeReg struct {
	epfd   int
	events uint32
	data   uint64
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{
		reg:           make(map[int]fakeReg),
		ready:         make(map[int]uint32),
		eventCounters: make(map[int]uint64),
		timerPending:  make(map[int]uint64),
		ioReady:       make(map[int]bool),
		closed:        make(map[int]bool),
	}
}

func (f *fakeSystem) alloc() int {
	f.nextFD++
	return f.nextFD
}

func (f *fakeSystem) PollFDCreate(cloExec bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alloc(), nil
}

func (f *fakeSystem) PollFDAdd(epfd, fd int, events uint32, data uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reg[fd] = fakeReg{epfd: epfd, events: events, data: data}
	return nil
}

func (f *fakeSystem) PollFDMod(epfd, fd int, events uint32, data uint64) error {
	return f.PollFDAdd(epfd, fd, events, data)
}

func (f *fakeSystem) PollFDDel(epfd, fd int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reg, fd)
	delete(f.ready, fd)
	return nil
}

func (f *fakeSystem) PollFDWait(epfd int, events []unix.EpollEvent, timeoutMs int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for fd, reg := range f.reg {
		if reg.epfd != epfd {
			continue
		}
		readyMask := uint32(0)
		if f.eventCounters[fd] > 0 || f.timerPending[fd] > 0 || f.ioReady[fd] {
			readyMask = reg.events
		}
		if readyMask == 0 {
			continue
		}
		if n >= len(events) {
			break
		}
		events[n] = unix.EpollEvent{Events: readyMask, Fd: int32(fd)}
		n++
	}
	return n, nil
}

func (f *fakeSystem) EventFDCreate(initval uint32, semaphore bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd := f.alloc()
	f.eventCounters[fd] = uint64(initval)
	return fd, nil
}

func (f *fakeSystem) EventFDWrite(fd int, count uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventCounters[fd] += count
	return nil
}

func (f *fakeSystem) EventFDRead(fd int) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.eventCounters[fd]
	f.eventCounters[fd] = 0
	return v, nil
}

func (f *fakeSystem) TimerFDCreate(clockID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alloc(), nil
}

func (f *fakeSystem) TimerFDSettime(fd int, flags int, new *unix.ItimerSpec) (*unix.ItimerSpec, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	old := &unix.ItimerSpec{}
	if new.Value.Sec != 0 || new.Value.Nsec != 0 {
		f.timerPending[fd] = 1
	} else {
		f.timerPending[fd] = 0
	}
	return old, nil
}

func (f *fakeSystem) TimerFDRead(fd int) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.timerPending[fd]
	f.timerPending[fd] = 0
	return v, nil
}

func (f *fakeSystem) SignalFDCreate(mask *unix.Sigset_t) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alloc(), nil
}

func (f *fakeSystem) SignalFDRead(fd int) (unix.SignalfdSiginfo, error) {
	return unix.SignalfdSiginfo{}, nil
}

func (f *fakeSystem) Close(fd int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed[fd] = true
	return nil
}

// markIOReady marks fd as having pending I/O for the next PollFDWait.
func (f *fakeSystem) markIOReady(fd int, ready bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ioReady[fd] = ready
}
