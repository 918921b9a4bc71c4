package kafka

import (
	"context"
	"testing"
	"time"
)

// Close and context cancellation race each other during shutdown; neither
// ordering may panic or leave WaitClosed hanging.
func TestProducer_CloseThenCancelExitsCleanly(t *testing.T) {
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewProducer([]string{"127.0.0.1:9092"}, "inventory.events", 8)
		p.Start(ctx)
		p.Close()
		cancel()

		done := make(chan struct{})
		go func() { p.WaitClosed(); close(done) }()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("producer loop did not exit")
		}
	}
}

func TestProducer_CancelAloneDrainsAndExits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewProducer([]string{"127.0.0.1:9092"}, "inventory.events", 8)
	p.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() { p.WaitClosed(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer loop did not exit")
	}
}
