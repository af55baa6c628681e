// Package sysbridge adapts golang.org/x/sys/unix into the registry's
// System capability façade: the small set of read/write/poll/timer/
// event/signal file-descriptor primitives the event loop and its
// sources are built on.
package sysbridge

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/aclements/go-spa/support"
)

// System is the registry-facing System façade.
type System struct {
	handle unsafe.Pointer
}

// New returns a System façade backed by the host kernel.
func New() *System { return &System{} }

func (s *System) Kind() support.Kind { return support.KindSystem }

func (s *System) Read(fd int, buf []byte) (int, error)  { return unix.Read(fd, buf) }
func (s *System) Write(fd int, buf []byte) (int, error) { return unix.Write(fd, buf) }
func (s *System) Close(fd int) error                     { return unix.Close(fd) }

func (s *System) ClockGettime(clockID int32) (time.Time, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(clockID, &ts); err != nil {
		return time.Time{}, err
	}
	return time.Unix(ts.Sec, ts.Nsec), nil
}

// PollFDCreate creates an epoll instance.
func (s *System) PollFDCreate(cloExec bool) (int, error) {
	flags := 0
	if cloExec {
		flags = unix.EPOLL_CLOEXEC
	}
	return unix.EpollCreate1(flags)
}

// PollFDAdd registers fd with the given readiness mask. data identifies
// the registration to the caller (this package's loop uses it to carry
// the originating fd back out of EpollWait); only its low 32 bits are
// representable since x/sys/unix's EpollEvent carries the union's
// data.fd variant rather than the full 64-bit data.u64 one.
func (s *System) PollFDAdd(epfd, fd int, events uint32, data uint64) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(data)}
	return unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (s *System) PollFDMod(epfd, fd int, events uint32, data uint64) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(data)}
	return unix.EpollCtl(epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (s *System) PollFDDel(epfd, fd int) error {
	return unix.EpollCtl(epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (s *System) PollFDWait(epfd int, events []unix.EpollEvent, timeoutMs int) (int, error) {
	return unix.EpollWait(epfd, events, timeoutMs)
}

func (s *System) TimerFDCreate(clockID int) (int, error) {
	return unix.TimerfdCreate(clockID, unix.TFD_CLOEXEC)
}

func (s *System) TimerFDSettime(fd int, flags int, new *unix.ItimerSpec) (*unix.ItimerSpec, error) {
	old := &unix.ItimerSpec{}
	if err := unix.TimerfdSettime(fd, flags, new, old); err != nil {
		return nil, err
	}
	return old, nil
}

func (s *System) TimerFDRead(fd int) (uint64, error) {
	var buf [8]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil {
		return 0, err
	}
	if n != 8 {
		return 0, unix.EINVAL
	}
	return *(*uint64)(unsafe.Pointer(&buf[0])), nil
}

func (s *System) EventFDCreate(initval uint32, semaphore bool) (int, error) {
	flags := unix.EFD_CLOEXEC | unix.EFD_NONBLOCK
	if semaphore {
		flags |= unix.EFD_SEMAPHORE
	}
	return unix.Eventfd(uint(initval), flags)
}

func (s *System) EventFDWrite(fd int, count uint64) error {
	var buf [8]byte
	*(*uint64)(unsafe.Pointer(&buf[0])) = count
	_, err := unix.Write(fd, buf[:])
	return err
}

func (s *System) EventFDRead(fd int) (uint64, error) {
	var buf [8]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil {
		return 0, err
	}
	if n != 8 {
		return 0, unix.EINVAL
	}
	return *(*uint64)(unsafe.Pointer(&buf[0])), nil
}

func (s *System) SignalFDCreate(mask *unix.Sigset_t) (int, error) {
	return unix.Signalfd(-1, mask, unix.SFD_CLOEXEC|unix.SFD_NONBLOCK)
}

func (s *System) SignalFDRead(fd int) (unix.SignalfdSiginfo, error) {
	var info unix.SignalfdSiginfo
	buf := (*(*[unsafe.Sizeof(info)]byte)(unsafe.Pointer(&info)))[:]
	_, err := unix.Read(fd, buf)
	return info, err
}

func (s *System) NativeHandle() unsafe.Pointer {
	if s.handle == nil {
		s.handle = unsafe.Pointer(s)
	}
	return s.handle
}

func (s *System) Close() error { return nil }
