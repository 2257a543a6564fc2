package memory

import "sync"

// Pool is a typed object pool with a hard cap on live objects.
// It is not safe for concurrent use; the caller serializes Get and Put.
type Pool[T any] struct {
	p     *sync.Pool
	limit int
	live  int
}

// NewPool returns a pool that hands out at most limit live objects.
// limit <= 0 means unbounded.
func NewPool[T any](limit int, ctor func() *T) *Pool[T] {
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
		limit: limit,
	}
}

// Get returns a free object, or false when the pool is exhausted.
func (p *Pool[T]) Get() (*T, bool) {
	if p.Full() {
		return nil, false
	}
	p.live++
	return p.p.Get().(*T), true
}

// Put returns v to the pool. v must have come from Get and must not be
// used afterwards.
func (p *Pool[T]) Put(v *T) {
	if p.live == 0 {
		panic("memory.Pool: Put without matching Get")
	}
	p.live--
	p.p.Put(v)
}

func (p *Pool[T]) Live() int { return p.live }

func (p *Pool[T]) Limit() int { return p.limit }

// Full reports whether Get would fail.
func (p *Pool[T]) Full() bool {
	return p.limit > 0 && p.live >= p.limit
}
