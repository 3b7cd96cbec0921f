// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"unsafe"

	"code.hybscloud.com/ringq/waitstrategy"
)

// Options configures queue creation and algorithm selection.
type Options struct {
	// Producer/Consumer constraints (determines queue type)
	singleProducer bool
	singleConsumer bool

	// Blocking back-pressure instead of ErrWouldBlock
	blocking   bool
	readWait   waitstrategy.Strategy
	writeWait  waitstrategy.Strategy

	// Capacity (rounds up to next power of 2)
	capacity int
}

// Builder creates queues with fluent configuration.
//
// Builder provides a fluent API for configuring and creating queues: it
// supplies capacity, producer/consumer constraints, and wait strategies,
// but never validates element types or owns a queue's hot path. The
// builder automatically selects the non-blocking algorithm based on
// producer/consumer constraints, or switches to the blocking SPSC engine
// when Blocking() is set.
//
// Example:
//
//	// SPSC queue (optimal for single producer/consumer)
//	q := ringq.BuildSPSC[Event](ringq.New(1024).SingleProducer().SingleConsumer())
//
//	// MPMC queue (default, general purpose)
//	q := ringq.BuildMPMC[Request](ringq.New(4096))
//
//	// Blocking SPSC queue with the default wait strategies (nil, nil)
//	q := ringq.BuildBlockingSPSC[Event](ringq.New(1024).Blocking().SingleProducer().SingleConsumer(), nil, nil)
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// Capacity rounds up to the next power of 2.
// For example, capacity=4 results in actual capacity=4, capacity=1000 results
// in actual capacity=1024.
//
// Panics if capacity < 2.
//
// Example:
//
//	// Create builder, then configure and build
//	b := ringq.New(1024)
//	q := ringq.BuildSPSC[int](b.SingleProducer().SingleConsumer())
func New(capacity int) *Builder {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}
	return &Builder{opts: Options{capacity: capacity}}
}

// SingleProducer declares that only one goroutine will enqueue.
// Enables optimized algorithms for SPSC or SPMC patterns.
func (b *Builder) SingleProducer() *Builder {
	b.opts.singleProducer = true
	return b
}

// SingleConsumer declares that only one goroutine will dequeue.
// Enables optimized algorithms for SPSC or MPSC patterns.
func (b *Builder) SingleConsumer() *Builder {
	b.opts.singleConsumer = true
	return b
}

// Blocking selects the blocking SPSC variant instead of the default
// non-blocking family. Only meaningful together with SingleProducer()
// and SingleConsumer() — see [BuildBlockingSPSC].
func (b *Builder) Blocking() *Builder {
	b.opts.blocking = true
	return b
}

// Build creates a Queue[T] with automatic algorithm selection from the
// builder's producer/consumer constraints.
//
// Algorithm selection:
//
//	SingleProducer + SingleConsumer → SPSC (Lamport ring buffer)
//	SingleProducer only             → SPMC (FAA-based, 2n slots)
//	SingleConsumer only             → MPSC (FAA-based, 2n slots)
//	Neither                         → MPMC (FAA-based SCQ, 2n slots)
//
// For type-safe returns with concrete types, use BuildSPSC/BuildMPSC/
// BuildSPMC/BuildMPMC, or BuildBlockingSPSC for the blocking variant.
func Build[T any](b *Builder) Queue[T] {
	switch {
	case b.opts.singleProducer && b.opts.singleConsumer:
		return NewSPSC[T](b.opts.capacity)
	case b.opts.singleProducer:
		return NewSPMC[T](b.opts.capacity)
	case b.opts.singleConsumer:
		return NewMPSC[T](b.opts.capacity)
	default:
		return NewMPMC[T](b.opts.capacity)
	}
}

// BuildSPSC creates a non-blocking SPSC queue with compile-time type safety.
// Panics if builder is not configured with SingleProducer().SingleConsumer().
func BuildSPSC[T any](b *Builder) *SPSC[T] {
	if !b.opts.singleProducer || !b.opts.singleConsumer {
		panic("ringq: BuildSPSC requires SingleProducer().SingleConsumer()")
	}
	return NewSPSC[T](b.opts.capacity)
}

// BuildMPSC creates an MPSC queue with compile-time type safety.
// Panics if builder is not configured with SingleConsumer() only.
func BuildMPSC[T any](b *Builder) Queue[T] {
	if b.opts.singleProducer || !b.opts.singleConsumer {
		panic("ringq: BuildMPSC requires SingleConsumer() without SingleProducer()")
	}
	return NewMPSC[T](b.opts.capacity)
}

// BuildSPMC creates an SPMC queue with compile-time type safety.
// Panics if builder is not configured with SingleProducer() only.
func BuildSPMC[T any](b *Builder) Queue[T] {
	if !b.opts.singleProducer || b.opts.singleConsumer {
		panic("ringq: BuildSPMC requires SingleProducer() without SingleConsumer()")
	}
	return NewSPMC[T](b.opts.capacity)
}

// BuildMPMC creates an MPMC queue with compile-time type safety.
// Panics if builder has any constraints set.
func BuildMPMC[T any](b *Builder) Queue[T] {
	if b.opts.singleProducer || b.opts.singleConsumer {
		panic("ringq: BuildMPMC requires no constraints")
	}
	return NewMPMC[T](b.opts.capacity)
}

// BuildBlockingSPSC creates the blocking SPSC ring-buffer queue (the core
// variant described by this package's design: decrement-oriented index
// pair, cached mirrors, busy-wait back-pressure).
//
// T must be comparable: [BlockingSPSC]'s observer operations (Contains,
// ForEach) compare slot values against each other and against the zero-value
// empty sentinel.
//
// Panics if b is not configured with Blocking().SingleProducer().SingleConsumer().
// A nil read or write strategy defaults to [waitstrategy.Default].
func BuildBlockingSPSC[T comparable](b *Builder, read, write waitstrategy.Strategy) *BlockingSPSC[T] {
	if !b.opts.blocking || !b.opts.singleProducer || !b.opts.singleConsumer {
		panic("ringq: BuildBlockingSPSC requires Blocking().SingleProducer().SingleConsumer()")
	}
	return NewBlockingSPSC[T](b.opts.capacity, read, write)
}

// BuildIndirectSPSC creates a non-blocking SPSC queue for uintptr values.
func (b *Builder) BuildIndirectSPSC() *SPSCIndirect {
	if !b.opts.singleProducer || !b.opts.singleConsumer {
		panic("ringq: BuildIndirectSPSC requires SingleProducer().SingleConsumer()")
	}
	return NewSPSCIndirect(b.opts.capacity)
}

// BuildPtrSPSC creates a non-blocking SPSC queue for unsafe.Pointer values.
func (b *Builder) BuildPtrSPSC() *SPSCPtr {
	if !b.opts.singleProducer || !b.opts.singleConsumer {
		panic("ringq: BuildPtrSPSC requires SingleProducer().SingleConsumer()")
	}
	return NewSPSCPtr(b.opts.capacity)
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// ptrSize is the size of a pointer in bytes.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte

// padPtr is padding to fill cache line after pointer-sized field.
type padPtr [64 - ptrSize]byte
