package main

// slot is one variable binding: a Value plus an occupancy flag, because
// the zero Value (Undefined) must be distinguishable from "never
// written" for the fallback-to-global lookup rule in spec §3.
type slot struct {
	val      Value
	occupied bool
}

// frame is an ordered mapping from symbol index to variable slot (spec
// §3 "Frame / stack"). Capacity grows lazily to match the symbol table
// rather than being preallocated to the whole table size, since most
// frames only ever touch a handful of names -- this keeps closure
// snapshots (which copy a whole frame's occupied slots) cheap.
type frame struct {
	slots []slot
}

func (f *frame) ensure(id uint32) {
	if int(id) >= len(f.slots) {
		grown := make([]slot, id+1)
		copy(grown, f.slots)
		f.slots = grown
	}
}

func (f *frame) set(id uint32, v Value) {
	f.ensure(id)
	f.slots[id] = slot{val: v, occupied: true}
}

func (f *frame) get(id uint32) (Value, bool) {
	if int(id) < len(f.slots) && f.slots[id].occupied {
		return f.slots[id].val, true
	}
	return Value{}, false
}

// snapshot copies every occupied slot of f into a fresh frame, by value
// -- this is how a closure captures its enclosing frame at definition
// time (spec §4.4 step 3) without aliasing the live frame, so closures
// can safely outlive the call that defined them.
func (f *frame) snapshot() *frame {
	clone := &frame{slots: make([]slot, len(f.slots))}
	copy(clone.slots, f.slots)
	return clone
}

// callStack is a fixed-capacity stack of frames (spec §3 "Frame / stack":
// "depth >= 32K for recursion like naive Fibonacci"). Frame 0 is always
// the global frame and is never popped.
type callStack struct {
	frames []*frame
	limit  int
}

const defaultStackLimit = 1 << 15 // >= 32K per spec §3

func newCallStack(limit int) *callStack {
	if limit <= 0 {
		limit = defaultStackLimit
	}
	cs := &callStack{limit: limit}
	cs.frames = append(cs.frames, &frame{})
	return cs
}

func (cs *callStack) global() *frame { return cs.frames[0] }

func (cs *callStack) current() *frame { return cs.frames[len(cs.frames)-1] }

func (cs *callStack) depth() int { return len(cs.frames) }

// errStackOverflow is returned by push when the call depth limit would be
// exceeded (spec §7 "Resource": "stack overflow (call depth)").
type errStackOverflow struct{ limit int }

func (e errStackOverflow) Error() string { return "stack overflow" }

func (cs *callStack) push(f *frame) error {
	if len(cs.frames) >= cs.limit {
		return errStackOverflow{cs.limit}
	}
	cs.frames = append(cs.frames, f)
	return nil
}

func (cs *callStack) pop() {
	n := len(cs.frames) - 1
	cs.frames[n] = nil
	cs.frames = cs.frames[:n]
}

// lookup implements spec §3's lookup rule: read the current frame; if
// the slot is Undefined (unset), fall back to the global frame. There is
// no general intermediate-scope search.
func (cs *callStack) lookup(id uint32) (Value, bool) {
	if v, ok := cs.current().get(id); ok {
		return v, true
	}
	if len(cs.frames) > 1 {
		if v, ok := cs.global().get(id); ok {
			return v, true
		}
	}
	return Value{}, false
}

// assign writes to the frame that already owns id, per the current/fall
// back-to-global rule; it reports whether any frame owned it so the
// evaluator can raise an undefined-identifier error otherwise (spec §9
// Open Question: assignment requires the LHS to already exist).
func (cs *callStack) assign(id uint32, v Value) bool {
	cur := cs.current()
	if _, ok := cur.get(id); ok {
		cur.set(id, v)
		return true
	}
	if len(cs.frames) > 1 {
		if _, ok := cs.global().get(id); ok {
			cs.global().set(id, v)
			return true
		}
	}
	return false
}

// define always binds in the current frame, used by `let` (spec §4.3).
func (cs *callStack) define(id uint32, v Value) {
	cs.current().set(id, v)
}

