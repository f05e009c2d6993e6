// Package events implements the per-transfer lifecycle event stream
// described in spec.md section 4.6: one Bus per session, serialized
// per transfer, best-effort delivery to an optional observer.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/artifactrelay/connector/internal/constants"
)

// Kind enumerates the five lifecycle events spec.md names.
type Kind string

const (
	Initiated  Kind = "INITIATED"
	Progressed Kind = "PROGRESSED"
	Succeeded  Kind = "SUCCEEDED"
	Corrupted  Kind = "CORRUPTED"
	Failed     Kind = "FAILED"
)

// TransferEvent is published once per lifecycle step of one descriptor.
// Events for a single TransferID are totally ordered (invariant 4); across
// descriptors there is no ordering guarantee.
type TransferEvent struct {
	Kind       Kind
	Time       time.Time
	TransferID string
	Path       string // local destination (Get) or relative path (Put)

	// Populated for Progressed.
	BytesDelta int64
	BytesTotal int64 // 0 when unknown

	// Populated for Failed.
	Err error

	// Populated for Corrupted (soft checksum failure under WARN).
	Message string
}

// Bus is a single-session, multi-subscriber event dispatcher. It never
// blocks a worker: a full subscriber buffer drops the event and increments
// a counter instead.
type Bus struct {
	mu            sync.RWMutex
	subscribers   []chan TransferEvent
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64
}

// NewBus creates a bus with the given per-subscriber buffer size. A
// non-positive size uses constants.EventBusDefaultBuffer.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &Bus{bufferSize: bufferSize}
}

// Subscribe returns a channel receiving every published event. Callers
// should drain it until it's closed (on Bus.Close).
func (b *Bus) Subscribe() <-chan TransferEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan TransferEvent)
		close(ch)
		return ch
	}

	ch := make(chan TransferEvent, b.bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Publish delivers an event to every subscriber, non-blocking. A nil Bus is
// a valid no-op publisher, so workers don't need to nil-check before use.
func (b *Bus) Publish(ev TransferEvent) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			b.droppedEvents.Add(1)
		}
	}
}

// Close shuts the bus down and closes every subscriber channel. Idempotent.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
}

// DroppedEventCount reports how many events were discarded due to a full
// subscriber buffer.
func (b *Bus) DroppedEventCount() int64 {
	if b == nil {
		return 0
	}
	return b.droppedEvents.Load()
}
