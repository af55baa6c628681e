package loop

import "sync"

// InvokeFunc is work submitted to a Loop from another goroutine. seq
// and data are caller-supplied correlation payloads carried through
// unexamined; the return value becomes Invoke's result when block is
// true.
type InvokeFunc func(l *Loop, async bool, seq uint32, data []byte) int32

type invokeItem struct {
	seq   uint32
	data  []byte
	async bool
	fn    InvokeFunc
	done  chan int32
}

type invokeQueue struct {
	mu    sync.Mutex
	items []invokeItem
}

func (q *invokeQueue) push(item invokeItem) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

func (q *invokeQueue) drain() []invokeItem {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

// initInvoke creates the eventfd used to wake the loop's Iterate call
// when work is queued from another goroutine, and registers it as an
// ordinary event source. The original implementation this module
// generalizes never actually wired invoke (its stub always returned
// NotFound); this is built fresh to satisfy cross-thread dispatch.
func (l *Loop) initInvoke() error {
	fd, err := l.system.EventFDCreate(0, false)
	if err != nil {
		return err
	}
	l.invokeFD = fd
	src := &Source{
		Kind:    SourceEvent,
		FD:      fd,
		Mask:    unixEpollIn,
		closeFD: true,
	}
	return l.AddSource(src)
}

// unixEpollIn is the value of unix.EPOLLIN, kept as its own identifier
// since loop/source callbacks deal in the same bit, and duplicating the
// literal at each call site would invite the two to drift.
const unixEpollIn = 0x001

// Invoke submits fn to run on the loop's own goroutine during its next
// Iterate call. If block is true, Invoke waits for fn to finish and
// returns its result; otherwise it returns 0 immediately and fn's
// result is discarded.
func (l *Loop) Invoke(seq uint32, data []byte, block bool, fn InvokeFunc) (int32, error) {
	item := invokeItem{seq: seq, data: data, async: !block, fn: fn}
	if block {
		item.done = make(chan int32, 1)
	}
	l.invokeQueue.push(item)
	if err := l.system.EventFDWrite(l.invokeFD, 1); err != nil {
		return 0, err
	}
	if !block {
		return 0, nil
	}
	return <-item.done, nil
}

// drainInvokes runs every queued InvokeFunc on the calling (loop)
// goroutine. Called from Iterate on every pass, right after the poll
// wait returns and before any source is dispatched.
func (l *Loop) drainInvokes() {
	for _, item := range l.invokeQueue.drain() {
		result := item.fn(l, item.async, item.seq, item.data)
		if item.done != nil {
			item.done <- result
		}
	}
}
