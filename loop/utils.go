package loop

import "golang.org/x/sys/unix"

// AddIO registers an I/O source on fd watching the given readiness
// mask (EPOLL* bits). If closeFD is true, RemoveSource also closes fd.
func (l *Loop) AddIO(fd int, mask uint32, closeFD bool, cb IOFunc) (*Source, error) {
	src := &Source{Kind: SourceIO, FD: fd, Mask: mask, closeFD: closeFD, OnIO: cb}
	if err := l.AddSource(src); err != nil {
		return nil, err
	}
	return src, nil
}

// UpdateIO changes src's readiness mask.
func (l *Loop) UpdateIO(src *Source, mask uint32) error {
	src.Mask = mask
	return l.UpdateSource(src)
}

// AddIdle registers a source whose callback runs once per Iterate pass
// while enabled. It is implemented as a self-writing eventfd so it
// reuses the same epoll dispatch path as every other source kind.
func (l *Loop) AddIdle(enabled bool, cb IdleFunc) (*Source, error) {
	fd, err := l.system.EventFDCreate(0, false)
	if err != nil {
		return nil, err
	}
	src := &Source{
		Kind:    SourceIdle,
		FD:      fd,
		Mask:    unixEpollIn,
		closeFD: true,
		OnIdle:  cb,
	}
	if err := l.AddSource(src); err != nil {
		l.system.Close(fd)
		return nil, err
	}
	if err := l.EnableIdle(src, enabled); err != nil {
		l.RemoveSource(fd)
		return nil, err
	}
	return src, nil
}

// EnableIdle toggles whether src's callback fires on every iteration.
// An idle source re-arms its own eventfd each time it fires, so
// disabling it just stops that re-arm.
func (l *Loop) EnableIdle(src *Source, enabled bool) error {
	if src.state == SourceDestroyed {
		return src.checkUsable()
	}
	if enabled {
		src.state = SourceActive
		return l.system.EventFDWrite(src.FD, 1)
	}
	src.state = SourceDisabled
	return nil
}

func (l *Loop) dispatchIdle(src *Source) {
	if src.Kind == SourceIdle && src.state == SourceActive {
		l.system.EventFDWrite(src.FD, 1)
	}
}

// AddEvent registers a source that another goroutine can wake via
// SignalEvent.
func (l *Loop) AddEvent(cb EventFunc) (*Source, error) {
	fd, err := l.system.EventFDCreate(0, false)
	if err != nil {
		return nil, err
	}
	src := &Source{Kind: SourceEvent, FD: fd, Mask: unixEpollIn, closeFD: true, OnEvent: cb}
	if err := l.AddSource(src); err != nil {
		l.system.Close(fd)
		return nil, err
	}
	return src, nil
}

// SignalEvent wakes src's callback on the loop goroutine. Safe to call
// from any goroutine.
func (l *Loop) SignalEvent(src *Source) error {
	return l.system.EventFDWrite(src.FD, 1)
}

// AddTimer registers a timer source, initially disarmed; call
// UpdateTimer to arm it.
func (l *Loop) AddTimer(cb TimerFunc) (*Source, error) {
	fd, err := l.system.TimerFDCreate(unix.CLOCK_MONOTONIC)
	if err != nil {
		return nil, err
	}
	src := &Source{Kind: SourceTimer, FD: fd, Mask: unixEpollIn, closeFD: true, OnTimer: cb}
	if err := l.AddSource(src); err != nil {
		l.system.Close(fd)
		return nil, err
	}
	return src, nil
}

// UpdateTimer (re)arms src to first fire after value and then, if
// interval is non-zero, repeat every interval. If absolute is true,
// value is an absolute CLOCK_MONOTONIC deadline rather than relative
// to now.
func (l *Loop) UpdateTimer(src *Source, value, interval unix.Timespec, absolute bool) error {
	var flags int
	if absolute {
		flags = unix.TFD_TIMER_ABSTIME
	}
	spec := &unix.ItimerSpec{Value: value, Interval: interval}
	_, err := l.system.TimerFDSettime(src.FD, flags, spec)
	return err
}

// AddSignal registers a source invoked when the process receives
// signum. The caller is responsible for blocking signum on every
// thread that should not handle it directly (signalfd semantics).
func (l *Loop) AddSignal(signum int, cb SignalFunc) (*Source, error) {
	var mask unix.Sigset_t
	sigaddset(&mask, signum)
	fd, err := l.system.SignalFDCreate(&mask)
	if err != nil {
		return nil, err
	}
	src := &Source{Kind: SourceSignal, FD: fd, Mask: unixEpollIn, closeFD: true, OnSignal: cb}
	if err := l.AddSource(src); err != nil {
		l.system.Close(fd)
		return nil, err
	}
	return src, nil
}

// DestroySource removes and tears down src, regardless of kind.
func (l *Loop) DestroySource(src *Source) error {
	return l.RemoveSource(src.FD)
}

// sigaddset sets sig's bit in set, mirroring glibc's sigset layout
// that unix.Sigset_t's Val array follows: word index, then bit within
// that 64-bit word.
func sigaddset(set *unix.Sigset_t, sig int) {
	word := (sig - 1) / 64
	bit := uint((sig - 1) % 64)
	set.Val[word] |= 1 << bit
}
