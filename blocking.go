// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"fmt"
	"strings"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/ringq/waitstrategy"
)

// BlockingSPSC is a single-producer single-consumer bounded ring-buffer
// queue with blocking back-pressure.
//
// Unlike [SPSC], which returns ErrWouldBlock immediately when full or
// empty, BlockingSPSC suspends the calling goroutine via a pluggable
// [waitstrategy.Strategy] until the operation can proceed. The index
// pair decrements (rather than increments) through the slot array:
// both positions start at capacityMinusOne and count down, wrapping to
// capacityMinusOne when they reach zero. This is semantically
// equivalent to the incrementing convention [SPSC] uses and is kept
// distinct deliberately, to mirror the two directions this family's
// underlying algorithm supports.
//
// Memory: O(capacity), one slot per element, cleared to the zero value
// on Take/TakeLast so referenced objects become collectible.
type BlockingSPSC[T comparable] struct {
	_                   pad
	writePosition       atomix.Uint64 // producer-owned, published
	_                   pad
	cachedReadPosition  uint64 // producer-private mirror of readPosition
	_                   pad
	readPosition        atomix.Uint64 // consumer-owned, published
	_                   pad
	cachedWritePosition uint64 // consumer-private mirror of writePosition
	_                   pad
	buffer              []T
	capacityMinusOne    uint64
	readWait            waitstrategy.Strategy
	writeWait           waitstrategy.Strategy
}

// NewBlockingSPSC creates a blocking SPSC queue. Capacity rounds up to
// the next power of 2, same convention as the rest of this package.
//
// A nil read or write strategy defaults to [waitstrategy.Default].
// Panics if capacity < 2.
func NewBlockingSPSC[T comparable](capacity int, read, write waitstrategy.Strategy) *BlockingSPSC[T] {
	if capacity < 2 {
		panic("ringq: capacity must be >= 2")
	}
	if read == nil {
		read = waitstrategy.Default()
	}
	if write == nil {
		write = waitstrategy.Default()
	}

	n := uint64(roundToPow2(capacity))
	q := &BlockingSPSC[T]{
		buffer:           make([]T, n),
		capacityMinusOne: n - 1,
		readWait:         read,
		writeWait:        write,
	}
	// Both positions start at capacityMinusOne, not zero: empty is
	// read == write, and decrementing from the top keeps the very
	// first Put's target slot (capacityMinusOne) consistent with the
	// cached mirrors' initial values below.
	q.writePosition.StoreRelaxed(n - 1)
	q.cachedReadPosition = n - 1
	q.readPosition.StoreRelaxed(n - 1)
	q.cachedWritePosition = n - 1
	return q
}

// decrementPos moves p one step backward through [0, capacityMinusOne],
// wrapping from 0 to capacityMinusOne.
func decrementPos(p, capacityMinusOne uint64) uint64 {
	if p == 0 {
		return capacityMinusOne
	}
	return p - 1
}

// incrementPos moves p one step forward, the direction opposite to
// decrementPos. Used only by TakeLast to locate the most recently
// published slot.
func incrementPos(p, capacityMinusOne uint64) uint64 {
	if p == capacityMinusOne {
		return 0
	}
	return p + 1
}

// isFullCached reports whether the prospective write position next
// would collide with readPosition, refreshing the producer's cached
// mirror only when the fast comparison suggests the queue may be full.
func (q *BlockingSPSC[T]) isFullCached(next uint64) bool {
	if next == q.cachedReadPosition {
		q.cachedReadPosition = q.readPosition.LoadAcquire()
		if next == q.cachedReadPosition {
			return true
		}
	}
	return false
}

// isEmptyCached reports whether readPosition has caught up with
// writePosition, refreshing the consumer's cached mirror only on
// suspected collision.
func (q *BlockingSPSC[T]) isEmptyCached(read uint64) bool {
	if read == q.cachedWritePosition {
		q.cachedWritePosition = q.writePosition.LoadAcquire()
		if read == q.cachedWritePosition {
			return true
		}
	}
	return false
}

// Cap returns the queue's immutable capacity.
func (q *BlockingSPSC[T]) Cap() int {
	return int(q.capacityMinusOne + 1)
}

// Put adds an element, blocking until a slot is free (producer only).
func (q *BlockingSPSC[T]) Put(e T) {
	write := q.writePosition.LoadRelaxed()
	next := decrementPos(write, q.capacityMinusOne)

	q.writeWait.Reset()
	for q.isFullCached(next) {
		q.writeWait.Tick()
	}

	q.buffer[write] = e
	q.writePosition.StoreRelease(next)
}

// Take removes and returns an element, blocking until one is available
// (consumer only). The slot is cleared to the zero value before
// returning so any referenced object becomes collectible.
func (q *BlockingSPSC[T]) Take() T {
	read := q.readPosition.LoadRelaxed()

	q.readWait.Reset()
	for q.isEmptyCached(read) {
		q.readWait.Tick()
	}

	next := decrementPos(read, q.capacityMinusOne)
	q.readPosition.StoreRelease(next)

	e := q.buffer[read]
	var zero T
	q.buffer[read] = zero
	return e
}

// TakePlain removes and returns an element without blocking and
// without refreshing the cached mirror (consumer only).
//
// Undefined unless the caller already knows the queue is non-empty —
// typically right after [BlockingSPSC.TakeBatch] reports enough
// elements are present. Calling it on an empty queue reads whatever
// the slot currently holds, including the empty sentinel.
func (q *BlockingSPSC[T]) TakePlain() T {
	read := q.readPosition.LoadRelaxed()
	next := decrementPos(read, q.capacityMinusOne)
	q.readPosition.StoreRelease(next)

	e := q.buffer[read]
	var zero T
	q.buffer[read] = zero
	return e
}

// TakeBatch blocks until at least n elements are present, without
// consuming any of them. Used to amortize the wait cost before a burst
// of [BlockingSPSC.TakePlain] calls (consumer only).
func (q *BlockingSPSC[T]) TakeBatch(n int) {
	q.readWait.Reset()
	for q.Size() < n {
		q.readWait.Tick()
	}
	// TakePlain never refreshes the cached mirror, so bring it up to the
	// published write position here: the following TakePlain calls then
	// cannot move readPosition past it, and a later Take still sees empty.
	q.cachedWritePosition = q.writePosition.LoadAcquire()
}

// TakeLast blocks until at least one element exists, drains all but
// the most recently published element, and returns that element
// (consumer only).
//
// TakeLast publishes the drained-to read position (== writePosition)
// with a relaxed store, not Put/Take's release-store, so no release
// fence is paid on this path. Size/IsEmpty/Contains still observe the
// queue as empty immediately afterward because they acquire-load both
// positions fresh rather than consulting a cached copy.
func (q *BlockingSPSC[T]) TakeLast() T {
	q.readWait.Reset()
	var write, read uint64
	for {
		write = q.writePosition.LoadAcquire()
		read = q.readPosition.LoadRelaxed()
		if write != read {
			break
		}
		q.readWait.Tick()
	}

	// p is the most recently published slot: writePosition already
	// points at the next slot to be written, so the last published
	// element sits one step in the increment direction from it.
	p := incrementPos(write, q.capacityMinusOne)
	elem := q.buffer[p]

	var zero T
	for cur := read; cur != p; cur = decrementPos(cur, q.capacityMinusOne) {
		q.buffer[cur] = zero
	}
	q.buffer[p] = zero

	q.cachedWritePosition = write
	q.readPosition.StoreRelaxed(write)
	return elem
}

// Size returns the current occupancy from an acquire-load of both
// indices (wait-free observer). May be stale but never negative and
// never exceeds Cap()-1.
func (q *BlockingSPSC[T]) Size() int {
	read := q.readPosition.LoadAcquire()
	write := q.writePosition.LoadAcquire()
	return int(circularOccupancy(read, write, q.capacityMinusOne+1))
}

// IsEmpty reports whether Size() == 0 (wait-free observer).
func (q *BlockingSPSC[T]) IsEmpty() bool {
	return q.Size() == 0
}

// Contains reports whether any logical element equals e (wait-free
// observer). Traverses from readPosition toward writePosition,
// tolerating a slot transiently holding the empty sentinel during a
// concurrent Take/TakeLast by loading each slot once and skipping it
// rather than comparing against a torn read.
func (q *BlockingSPSC[T]) Contains(e T) bool {
	found := false
	q.ForEach(func(v T) {
		if v == e {
			found = true
		}
	})
	return found
}

// ForEach applies f to each logical element, from readPosition toward
// writePosition (wait-free observer). Holds no exclusion against a
// concurrent Put or Take; see [BlockingSPSC.Contains] for the
// slot-read race this tolerates. Every slot holding the zero value is
// skipped, so elements equal to T's zero value are not visited (nor
// reported by Contains or String).
func (q *BlockingSPSC[T]) ForEach(f func(T)) {
	read := q.readPosition.LoadAcquire()
	write := q.writePosition.LoadAcquire()

	var zero T
	for cur := read; cur != write; cur = decrementPos(cur, q.capacityMinusOne) {
		v := q.buffer[cur]
		if v != zero {
			f(v)
		}
	}
}

// String returns a human-readable dump of the logical content in the
// same traversal order as ForEach, formatted as "[e1, e2, ...]".
func (q *BlockingSPSC[T]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	q.ForEach(func(v T) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprint(&b, v)
	})
	b.WriteByte(']')
	return b.String()
}

// GetReadMonitor is not supported by this variant; it exists because
// the wider queue family shares a uniform contract that some other
// member implements. Always returns ErrUnsupported.
func (q *BlockingSPSC[T]) GetReadMonitor() error {
	return ErrUnsupported
}

// TakeWithStrategy is not supported by this variant. Always returns
// ErrUnsupported; use the strategies installed at construction instead.
func (q *BlockingSPSC[T]) TakeWithStrategy(strategy waitstrategy.Strategy) (T, error) {
	var zero T
	return zero, ErrUnsupported
}

// circularOccupancy computes the number of decrement-steps from read
// to reach write, i.e. the number of occupied slots.
func circularOccupancy(read, write, capacity uint64) uint64 {
	if read >= write {
		return read - write
	}
	return read + capacity - write
}
