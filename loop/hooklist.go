package loop

import "container/list"

// HookID identifies one registered hook within a HookList.
type HookID uint32

// HookList is an ordered collection of callbacks that supports
// removing any entry, including the one currently executing, without
// invalidating iteration in progress. Append adds to the back,
// Prepend to the front; Emit always walks front-to-back.
type HookList[T any] struct {
	hooks  *list.List
	byID   map[HookID]*list.Element
	nextID HookID
}

type hookEntry[T any] struct {
	id       HookID
	callback T
}

// NewHookList returns an empty hook list.
func NewHookList[T any]() *HookList[T] {
	return &HookList[T]{hooks: list.New(), byID: make(map[HookID]*list.Element)}
}

// Append adds callback to the end of the list and returns its id.
func (h *HookList[T]) Append(callback T) HookID {
	id := h.nextID
	h.nextID++
	el := h.hooks.PushBack(hookEntry[T]{id: id, callback: callback})
	h.byID[id] = el
	return id
}

// Prepend adds callback to the front of the list and returns its id.
func (h *HookList[T]) Prepend(callback T) HookID {
	id := h.nextID
	h.nextID++
	el := h.hooks.PushFront(hookEntry[T]{id: id, callback: callback})
	h.byID[id] = el
	return id
}

// Remove deletes the hook with the given id, if present. It is safe to
// call from within Emit's callback, including to remove the hook
// currently running.
func (h *HookList[T]) Remove(id HookID) {
	el, ok := h.byID[id]
	if !ok {
		return
	}
	h.hooks.Remove(el)
	delete(h.byID, id)
}

// Len reports the number of registered hooks.
func (h *HookList[T]) Len() int { return h.hooks.Len() }

// Emit calls fn once for each hook present at the start of the call,
// front to back, skipping any hook removed by an earlier callback in
// the same pass (matching the source's clone-then-iterate semantics,
// adapted to Go's lack of a thread-confined Rc<RefCell> equivalent: we
// snapshot the element pointers up front instead of cloning a
// reference-counted list).
func (h *HookList[T]) Emit(fn func(T)) {
	elems := make([]*list.Element, 0, h.hooks.Len())
	for el := h.hooks.Front(); el != nil; el = el.Next() {
		elems = append(elems, el)
	}
	for _, el := range elems {
		entry := el.Value.(hookEntry[T])
		if _, stillPresent := h.byID[entry.id]; !stillPresent {
			continue
		}
		fn(entry.callback)
	}
}
