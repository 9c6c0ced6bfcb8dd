package objmesh

import (
	"sync/atomic"
)

// Stage is what the renderer reads every frame: the render buffers of the
// most recently loaded asset. It replaces any process-wide "current model".
type Stage struct {
	gen atomic.Uint64
	cur atomic.Pointer[Slot]
}

// Slot is a write-once publication point for the buffers of a single asset
// load. Each load gets its own slot; slots are never reused.
type Slot struct {
	gen   uint64
	stage *Stage
	bufs  atomic.Pointer[RenderBuffers]
}

// Begin opens a fresh slot for a new asset load. The slot becomes visible
// to the renderer only once it is published.
func (st *Stage) Begin() *Slot {
	return &Slot{gen: st.gen.Add(1), stage: st}
}

// Current returns the buffers the renderer should draw, or nil before the
// first successful load.
func (st *Stage) Current() *RenderBuffers {
	s := st.cur.Load()
	if s == nil {
		return nil
	}
	return s.bufs.Load()
}

// install makes s current unless a slot from a later Begin already is.
func (st *Stage) install(s *Slot) {
	for {
		old := st.cur.Load()
		if old != nil && old.gen > s.gen {
			return
		}
		if st.cur.CompareAndSwap(old, s) {
			return
		}
	}
}

// Publish stores b in the slot. It succeeds at most once; any further call
// returns ErrAlreadyPublished and leaves the first buffers in place.
func (s *Slot) Publish(b *RenderBuffers) error {
	if b == nil {
		return ErrBuild
	}
	if !s.bufs.CompareAndSwap(nil, b) {
		return ErrAlreadyPublished
	}
	if s.stage != nil {
		s.stage.install(s)
	}
	return nil
}

// Load returns the published buffers, or nil if Publish has not happened.
func (s *Slot) Load() *RenderBuffers {
	return s.bufs.Load()
}

func (s *Slot) Published() bool {
	return s.bufs.Load() != nil
}
