package dynamics

var _ IDSource = (*IDAllocator)(nil)

// IDAllocator issues identifiers that are unique within one simulation context. Each kind of
// object has its own sequence starting at 1. Identifiers are never recycled.
type IDAllocator struct {
	next map[string]uint64
}

// NewIDAllocator returns an empty allocator.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: map[string]uint64{}}
}

// NextID returns the next identifier for kind.
func (a *IDAllocator) NextID(kind string) uint64 {
	if a.next == nil {
		a.next = map[string]uint64{}
	}
	a.next[kind]++
	return a.next[kind]
}
