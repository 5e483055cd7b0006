package clock

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTicker_PublishFansOut(t *testing.T) {
	tk := NewTicker(Real{}, time.Second)
	a, cancelA := tk.Subscribe()
	b, cancelB := tk.Subscribe()
	defer cancelA()
	defer cancelB()

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	tk.Publish(now)

	if got := <-a; !got.Equal(now) {
		t.Errorf("subscriber a got %v", got)
	}
	if got := <-b; !got.Equal(now) {
		t.Errorf("subscriber b got %v", got)
	}
}

func TestTicker_SlowSubscriberDoesNotBlock(t *testing.T) {
	tk := NewTicker(Real{}, time.Second)
	ch, cancel := tk.Subscribe()
	defer cancel()

	first := time.Unix(100, 0)
	tk.Publish(first)
	tk.Publish(time.Unix(101, 0))

	if got := <-ch; !got.Equal(first) {
		t.Errorf("got %v, want the first undelivered tick", got)
	}
	select {
	case got := <-ch:
		t.Errorf("expected the second tick to be dropped, got %v", got)
	default:
	}
}

func TestTicker_CancelClosesChannel(t *testing.T) {
	tk := NewTicker(nil, 0)
	ch, cancel := tk.Subscribe()

	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}
	if n := tk.Subscribers(); n != 0 {
		t.Errorf("Subscribers() = %d, want 0", n)
	}
}

func TestTicker_RunStopsWithContext(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))
	tk := NewTicker(fake, 5*time.Millisecond)
	ch, cancel := tk.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tk.Run(ctx)
		close(done)
	}()

	select {
	case got := <-ch:
		if !got.Equal(fake.Now()) {
			t.Errorf("tick stamped %v, want clock time %v", got, fake.Now())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no tick received")
	}

	stop()
	<-done

	for range ch {
	}
}

func TestFake_Advance(t *testing.T) {
	start := time.Unix(1000, 0)
	f := NewFake(start)
	f.Advance(90 * time.Second)
	if got := f.Now().Sub(start); got != 90*time.Second {
		t.Errorf("advanced by %v, want 90s", got)
	}
	f.Set(start)
	if !f.Now().Equal(start) {
		t.Error("Set did not move the clock")
	}
}
