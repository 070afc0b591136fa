package internal

import (
	"testing"
	"time"

	"github.com/relayhouse/httpcache/internal/testutil"
)

func TestBody_AppendAndSnapshot(t *testing.T) {
	b := NewBody()
	testutil.AssertTrue(t, b.State() == BodyEmpty)
	b.Append([]byte("hel"))
	testutil.AssertTrue(t, b.State() == BodyReceiving)
	b.Append([]byte("lo"))
	state, bytes := b.Snapshot()
	testutil.AssertTrue(t, state == BodyReceiving)
	testutil.AssertEqual(t, "hello", string(bytes))
	b.Complete()
	state, bytes = b.Snapshot()
	testutil.AssertTrue(t, state == BodyDone)
	testutil.AssertEqual(t, "hello", string(bytes))
}

func TestBody_AwaitTerminalAlreadyDone(t *testing.T) {
	b := NewDoneBody([]byte("x"))
	ch := NewWaiter()
	waiting := b.Await(ch)
	testutil.AssertTrue(t, !waiting)
	select {
	case sig := <-ch:
		testutil.AssertTrue(t, sig == SignalDone)
	default:
		t.Fatal("expected an immediate signal on an already-done body")
	}
}

func TestBody_AwaitThenWake(t *testing.T) {
	b := NewBody()
	ch := NewWaiter()
	waiting := b.Await(ch)
	testutil.AssertTrue(t, waiting)

	done := make(chan Signal, 1)
	go func() {
		done <- <-ch
	}()

	b.Append([]byte("partial"))
	b.Complete()

	select {
	case sig := <-done:
		testutil.AssertTrue(t, sig == SignalDone)
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken")
	}
}

func TestBody_CancelWakesWaiters(t *testing.T) {
	b := NewBody()
	ch := NewWaiter()
	b.Await(ch)
	b.Cancel()
	sig := <-ch
	testutil.AssertTrue(t, sig == SignalCancelled)
	testutil.AssertTrue(t, b.State() == BodyCancelled)
}

func TestBody_LateJoinerNeverBlocksForever(t *testing.T) {
	b := NewBody()
	b.Append([]byte("abc"))
	b.Complete()

	// A joiner arriving after completion must not register as a waiter
	// that's never woken; it must observe the terminal state directly.
	ch := NewWaiter()
	waiting := b.Await(ch)
	testutil.AssertTrue(t, !waiting)
	testutil.AssertTrue(t, <-ch == SignalDone)
}

func TestBody_FinishIsIdempotent(t *testing.T) {
	b := NewBody()
	ch1 := NewWaiter()
	b.Await(ch1)
	b.Complete()
	b.Cancel() // no-op: already terminal
	testutil.AssertTrue(t, b.State() == BodyDone)
	testutil.AssertTrue(t, <-ch1 == SignalDone)
}
