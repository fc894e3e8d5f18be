package engine

import "github.com/neuroplastio/neio-keycore/pkg/fixedlist"

const layerStackSize = 6

// LayerStack orders the held layer keys. The most recent still held layer
// is active, releasing any layer restores the latest remaining one.
// Pushing a layer that is already present appends a second copy, and Pop
// removes only the oldest copy.
type LayerStack struct {
	stack  *fixedlist.List[uint8]
	active uint8
}

func NewLayerStack() *LayerStack {
	return &LayerStack{
		stack: fixedlist.New[uint8](layerStackSize),
	}
}

// Push appends layer. A full stack drops the push and keeps the active
// layer rather than activating the dropped one, since a layer that is not
// on the stack could never be popped again.
func (s *LayerStack) Push(layer uint8) (uint8, bool) {
	ok := s.stack.Push(layer)
	s.recompute()
	return s.active, ok
}

// Pop removes the first copy of layer from the bottom.
func (s *LayerStack) Pop(layer uint8) uint8 {
	s.stack.RemoveFirst(layer)
	s.recompute()
	return s.active
}

func (s *LayerStack) recompute() {
	top, ok := s.stack.Top()
	if !ok {
		s.active = LayerBase
		return
	}
	s.active = top
}

func (s *LayerStack) Active() uint8 {
	return s.active
}

func (s *LayerStack) Layers() []uint8 {
	return s.stack.Items()
}

func (s *LayerStack) Len() int {
	return s.stack.Len()
}
