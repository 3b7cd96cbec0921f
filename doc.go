// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ringq provides bounded single-producer/single-consumer (SPSC)
// FIFO ring-buffer queues, in two access models.
//
// [SPSC], [SPSCIndirect] and [SPSCPtr] return [ErrWouldBlock] immediately
// when an operation cannot proceed (queue full on Enqueue, empty on
// Dequeue). [BlockingSPSC] instead suspends the calling goroutine with a
// pluggable [code.hybscloud.com/ringq/waitstrategy.Strategy] until the
// operation can proceed.
//
// [MPSC], [SPMC] and [MPMC] relax those constraints using an FAA-based
// (Fetch-And-Add) SCQ-style algorithm instead of SPSC's cached index pair,
// at the cost of 2n physical slots for capacity n. [Queue], [QueueIndirect],
// [QueuePtr] and [Drainer] let code written against this package accept any
// family member by interface without naming its concrete type.
//
// # Quick Start
//
// Direct constructors (recommended for most cases):
//
//	q := ringq.NewSPSC[Event](1024)
//
// Builder API selects the concrete type from the constraints supplied:
//
//	q := ringq.BuildSPSC[Event](ringq.New(1024).SingleProducer().SingleConsumer())
//	q := ringq.Build[Request](ringq.New(4096)) // no constraints -> MPMC
//
// # Blocking SPSC
//
// BlockingSPSC trades the would-block contract for back-pressure: Put
// and Take suspend instead of returning an error, idling via the
// strategies supplied at construction.
//
//	q := ringq.NewBlockingSPSC[Event](1024, waitstrategy.Default(), waitstrategy.Default())
//
//	go func() { // producer
//	    for ev := range events {
//	        q.Put(ev)
//	    }
//	}()
//
//	go func() { // consumer
//	    for {
//	        process(q.Take())
//	    }
//	}()
//
// A consumer that only cares about the freshest value — discarding
// anything stale — uses TakeLast instead of Take:
//
//	latest := q.TakeLast() // drains everything older, returns the newest
//
// A burst consumer amortizes the wait cost of TakeBatch before draining
// with non-blocking TakePlain:
//
//	q.TakeBatch(4)              // blocks until at least 4 elements exist
//	for range 4 {
//	    process(q.TakePlain())  // known non-empty, never blocks
//	}
//
// The builder reaches the same type:
//
//	q := ringq.BuildBlockingSPSC[Event](ringq.New(1024).Blocking().SingleProducer().SingleConsumer(), nil, nil)
//
// # Basic Usage (non-blocking SPSC)
//
//	// Create a queue
//	q := ringq.NewSPSC[int](1024)
//
//	// Enqueue (non-blocking, producer only)
//	value := 42
//	err := q.Enqueue(&value)
//	if ringq.IsWouldBlock(err) {
//	    // Queue is full - handle backpressure
//	}
//
//	// Dequeue (non-blocking, consumer only)
//	elem, err := q.Dequeue()
//	if ringq.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// # Multi-Producer / Multi-Consumer Variants
//
// [MPSC], [SPMC] and [MPMC] cover the access patterns SPSC can't: any
// number of producers, any number of consumers, or both. They trade
// SPSC's single cached index pair for per-slot cycle tags and FAA-claimed
// positions (Nikolaev's SCQ algorithm), which needs 2n physical slots for
// a queue of capacity n.
//
// Event aggregation (many producers, one consumer):
//
//	q := ringq.NewMPSC[Event](1024)
//
//	for range workers {
//	    go func() {
//	        for ev := range localEvents {
//	            for q.Enqueue(&ev) != nil {
//	                runtime.Gosched()
//	            }
//	        }
//	    }()
//	}
//
//	go func() { // single aggregator
//	    for {
//	        ev, err := q.Dequeue()
//	        if err != nil {
//	            runtime.Gosched()
//	            continue
//	        }
//	        aggregate(ev)
//	    }
//	}()
//
// Work distribution (one producer, many consumers):
//
//	q := ringq.NewSPMC[Task](1024)
//
//	go func() { // single dispatcher
//	    for t := range tasks {
//	        for q.Enqueue(&t) != nil {
//	            runtime.Gosched()
//	        }
//	    }
//	    q.Drain() // no more tasks coming
//	}()
//
//	for range workers {
//	    go func() {
//	        for {
//	            t, err := q.Dequeue()
//	            if err != nil {
//	                runtime.Gosched()
//	                continue
//	            }
//	            handle(t)
//	        }
//	    }()
//	}
//
// Worker pool (many producers, many consumers):
//
//	q := ringq.NewMPMC[Request](4096)
//
// # Common Patterns
//
// Pipeline Stage (non-blocking SPSC):
//
//	// Stage 1 → Queue → Stage 2
//	q := ringq.NewSPSC[Data](1024)
//
//	go func() { // Producer (Stage 1)
//	    for data := range input {
//	        for q.Enqueue(&data) != nil {
//	            runtime.Gosched()
//	        }
//	    }
//	}()
//
//	go func() { // Consumer (Stage 2)
//	    for {
//	        data, err := q.Dequeue()
//	        if err != nil {
//	            runtime.Gosched()
//	            continue
//	        }
//	        process(data)
//	    }
//	}()
//
// Pipeline Stage (blocking SPSC, no spin-retry loop needed):
//
//	q := ringq.NewBlockingSPSC[Data](1024, nil, nil)
//
//	go func() { // Producer
//	    for data := range input {
//	        q.Put(data)
//	    }
//	}()
//
//	go func() { // Consumer
//	    for {
//	        process(q.Take())
//	    }
//	}()
//
// Latest-Value Sampling (blocking SPSC):
//
//	// A sensor publishes continuously; a slow consumer only ever wants
//	// the freshest reading, discarding anything it fell behind on.
//	q := ringq.NewBlockingSPSC[Reading](64, nil, nil)
//
//	go func() {
//	    for r := range sensor.Readings() {
//	        q.Put(r)
//	    }
//	}()
//
//	go func() {
//	    for {
//	        render(q.TakeLast())
//	    }
//	}()
//
// # Queue Variants
//
// Two element-passing flavors sit alongside the generic SPSC[T] family:
//
//	BuildIndirectSPSC() - SPSC queue for uintptr values (pool indices, handles)
//	BuildPtrSPSC()      - SPSC queue for unsafe.Pointer (zero-copy pointer passing)
//
// When to use Indirect:
//
//	// Buffer pool with index-based access
//	pool := make([][]byte, 1024)
//	freeList := ringq.NewSPSCIndirect(1024)
//
//	// Initialize free list with buffer indices
//	for i := range pool {
//	    pool[i] = make([]byte, 4096)
//	    freeList.Enqueue(uintptr(i))
//	}
//
//	// Allocate: get index from free list
//	idx, err := freeList.Dequeue()
//	buf := pool[idx]
//
//	// Free: return index to free list
//	freeList.Enqueue(idx)
//
// When to use Ptr:
//
//	// Zero-copy object passing between goroutines
//	q := ringq.NewSPSCPtr(1024)
//
//	// Producer creates object once
//	msg := &Message{Data: largePayload}
//	q.Enqueue(unsafe.Pointer(msg))
//
//	// Consumer receives same pointer - no copy
//	ptr, _ := q.Dequeue()
//	msg := (*Message)(ptr)
//
// # Algorithm Selection
//
// SPSC is a Lamport ring buffer with cached index optimization: both
// sides keep a private mirror of the opposite side's position, refreshed
// only when the fast-path comparison suggests the queue may be full or
// empty. BlockingSPSC uses the same cached-index technique, oriented
// by decrementing index rather than incrementing, and replaces the
// ErrWouldBlock return with a pluggable busy-wait loop. MPSC, SPMC and
// MPMC instead use FAA-claimed positions over cycle-tagged slots, since a
// single cached index pair cannot coordinate more than one writer or
// reader on the same side.
//
// Type-safe builder functions enforce constraints at compile time:
//
//	Build[T](b) → Queue[T]                     // Selects by constraints (see below)
//	BuildSPSC[T](b) → *SPSC[T]                  // Requires SP + SC
//	BuildMPSC[T](b) → Queue[T]                  // Requires SC, no SP
//	BuildSPMC[T](b) → Queue[T]                  // Requires SP, no SC
//	BuildMPMC[T](b) → Queue[T]                  // Requires no constraints
//	BuildBlockingSPSC[T](b, read, write) → *BlockingSPSC[T]  // Requires Blocking + SP + SC
//	b.BuildIndirectSPSC() → *SPSCIndirect       // Requires SP + SC
//	b.BuildPtrSPSC() → *SPSCPtr                 // Requires SP + SC
//
// [Build] picks SPSC/SPMC/MPSC/MPMC automatically from whichever of
// SingleProducer/SingleConsumer were set on the builder.
//
// # Error Handling
//
// The non-blocking family returns [ErrWouldBlock] when operations cannot
// proceed. This error is sourced from [code.hybscloud.com/iox] for
// ecosystem consistency:
//
//	// Retry loop with backoff
//	for {
//	    err := q.Enqueue(&item)
//	    if err == nil {
//	        break
//	    }
//	    if !ringq.IsWouldBlock(err) {
//	        return err // Unexpected error
//	    }
//	    runtime.Gosched()
//	}
//
// For semantic error classification (delegates to iox):
//
//	ringq.IsWouldBlock(err)  // true if queue full/empty
//	ringq.IsSemantic(err)    // true if control flow signal
//	ringq.IsNonFailure(err)  // true if nil or ErrWouldBlock
//
// BlockingSPSC never returns ErrWouldBlock — it blocks instead — but
// shares the family's [ErrUnsupported] sentinel for the operations
// ([BlockingSPSC.GetReadMonitor], [BlockingSPSC.TakeWithStrategy]) it
// opts out of; these exist only because the wider queue family shares a
// uniform contract some other member implements.
//
// # Capacity and Length
//
// Capacity rounds up to the next power of 2:
//
//	q := ringq.NewSPSC[int](3)     // Actual capacity: 4
//	q := ringq.NewSPSC[int](4)     // Actual capacity: 4
//	q := ringq.NewSPSC[int](1000)  // Actual capacity: 1024
//	q := ringq.NewSPSC[int](1024)  // Actual capacity: 1024
//
// Minimum capacity is 2 (already a power of 2). Panic if capacity < 2.
//
// Length is intentionally not provided on [SPSC]/[SPSCIndirect]/[SPSCPtr]
// because accurate counts in lock-free algorithms require expensive
// cross-core synchronization. [BlockingSPSC.Size] is the one exception
// in this package: it is a cheap two-load observer, documented as
// possibly stale under concurrent Put/Take.
//
// # Thread Safety
//
// All queue operations are thread-safe within their access pattern constraints:
//
//   - SPSC / SPSCIndirect / SPSCPtr / BlockingSPSC: one producer goroutine,
//     one consumer goroutine
//   - MPSC: any number of producer goroutines, one consumer goroutine
//   - SPMC: one producer goroutine, any number of consumer goroutines
//   - MPMC: any number of producer goroutines, any number of consumer goroutines
//
// Violating these constraints (e.g., multiple producers on SPSC) causes
// undefined behavior including data corruption and races.
//
// # Graceful Shutdown
//
// [SPSC], [SPSCIndirect], [SPSCPtr] and [BlockingSPSC] have no
// close/shutdown operation of their own: a producer that stops calling
// Enqueue/Put simply stops, and a consumer drains whatever remains by
// continuing to call Dequeue/Take until it observes empty.
//
// [SPMC] and [MPMC] do implement [Drainer]: their FAA-based threshold
// mechanism can otherwise make Dequeue report empty while producers are
// still finishing. [MPSC] implements [Drainer] as well, but has no
// threshold, so its Drain does not change Dequeue's behavior.
//
//	// Producer goroutines finish
//	prodWg.Wait()
//
//	// Signal no more enqueues will occur, if q supports it
//	if d, ok := q.(ringq.Drainer); ok {
//	    d.Drain()
//	}
//
// SPSC and BlockingSPSC do not implement Drainer — they have no threshold
// to release — but a caller holding a [Queue] value of unknown concrete
// type can use the type assertion above uniformly regardless.
//
// # Race Detection
//
// Go's race detector is not designed for lock-free algorithm verification.
// The race detector tracks explicit synchronization primitives (mutex, channels,
// WaitGroup) but cannot observe happens-before relationships established through
// atomic memory orderings (acquire-release semantics).
//
// BlockingSPSC and SPSC use index pairs with acquire-release semantics to
// protect non-atomic slot fields. These algorithms are correct, but the race
// detector may report false positives because it cannot track synchronization
// provided by atomic operations on separate variables.
//
// For lock-free algorithm correctness verification, use:
//   - Formal verification tools (TLA+, SPIN)
//   - Stress testing without race detector
//   - Memory model analysis
//
// Tests incompatible with race detection are excluded via the
// [RaceEnabled] build-tag-gated constant and a runtime t.Skip.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit memory
// ordering, and [code.hybscloud.com/spin] for CPU pause instructions
// (through [code.hybscloud.com/ringq/waitstrategy] for BlockingSPSC).
package ringq
