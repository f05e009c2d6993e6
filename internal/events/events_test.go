package events

import (
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(4)
	ch := bus.Subscribe()

	bus.Publish(TransferEvent{Kind: Initiated, TransferID: "t1"})

	select {
	case ev := <-ch:
		if ev.Kind != Initiated || ev.TransferID != "t1" {
			t.Fatalf("got %+v, want Initiated/t1", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBusDropsOnFullBuffer(t *testing.T) {
	bus := NewBus(1)
	_ = bus.Subscribe() // never drained

	bus.Publish(TransferEvent{Kind: Progressed})
	bus.Publish(TransferEvent{Kind: Progressed})
	bus.Publish(TransferEvent{Kind: Progressed})

	if bus.DroppedEventCount() != 2 {
		t.Fatalf("DroppedEventCount() = %d, want 2", bus.DroppedEventCount())
	}
}

func TestBusCloseIsIdempotent(t *testing.T) {
	bus := NewBus(4)
	ch := bus.Subscribe()

	bus.Close()
	bus.Close() // must not panic

	if _, ok := <-ch; ok {
		t.Fatal("expected subscriber channel to be closed")
	}
}

func TestBusPublishAfterCloseIsNoop(t *testing.T) {
	bus := NewBus(4)
	bus.Close()
	bus.Publish(TransferEvent{Kind: Failed}) // must not panic or block
}

func TestNilBusIsSafe(t *testing.T) {
	var bus *Bus
	bus.Publish(TransferEvent{Kind: Initiated})
	bus.Close()
	if bus.DroppedEventCount() != 0 {
		t.Fatalf("DroppedEventCount() on nil bus = %d, want 0", bus.DroppedEventCount())
	}
}

func TestNewBusBufferBounds(t *testing.T) {
	bus := NewBus(0)
	if bus.bufferSize <= 0 {
		t.Fatalf("NewBus(0) bufferSize = %d, want positive default", bus.bufferSize)
	}

	huge := NewBus(1 << 20)
	if huge.bufferSize > 4096 {
		t.Fatalf("NewBus(huge) bufferSize = %d, want clamped to EventBusMaxBuffer", huge.bufferSize)
	}
}
