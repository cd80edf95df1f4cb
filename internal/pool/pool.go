// Package pool recycles the scratch allocations made on the hot lexing path
// so repeated parses stay allocation-free in steady state.
package pool

import "sync"

// Pool is a typed wrapper around sync.Pool with an optional reset hook run
// before every reuse.
type Pool[T any] struct {
	inner sync.Pool
	reset func(*T)
}

// New creates a pool backed by the given factory.
func New[T any](factory func() *T) *Pool[T] {
	return &Pool[T]{
		inner: sync.Pool{
			New: func() any { return factory() },
		},
	}
}

// NewWithReset creates a pool whose objects are reset before each Get returns
// them.
func NewWithReset[T any](factory func() *T, reset func(*T)) *Pool[T] {
	p := New(factory)
	p.reset = reset
	return p
}

// Get retrieves an object from the pool, creating one when empty.
func (p *Pool[T]) Get() *T {
	obj := p.inner.Get().(*T)
	if p.reset != nil {
		p.reset(obj)
	}
	return obj
}

// Put returns an object to the pool for reuse. Nil objects are dropped.
func (p *Pool[T]) Put(obj *T) {
	if obj == nil {
		return
	}
	p.inner.Put(obj)
}

// Lexeme scratch buffers are small and uniform, so a single size class is
// enough. Buffers that grew past maxBufferCap are dropped on Put so one
// pathological value cannot pin memory for the life of the process.
const (
	defaultBufferCap = 256
	maxBufferCap     = 64 << 10
)

// Buffers travel as *[]byte so Put does not box a slice header on every call.
var buffers = NewWithReset(
	func() *[]byte {
		b := make([]byte, 0, defaultBufferCap)
		return &b
	},
	func(b *[]byte) { *b = (*b)[:0] },
)

// GetBuffer returns an empty byte slice ready for appends.
func GetBuffer() *[]byte { return buffers.Get() }

// PutBuffer returns a buffer for reuse. Callers must not touch the slice
// afterwards.
func PutBuffer(b *[]byte) {
	if b == nil || cap(*b) > maxBufferCap {
		return
	}
	buffers.Put(b)
}
