package enginetest

import (
	"context"
	"testing"

	"github.com/fenwick/ucirun"
)

// RunChannelTests runs the behavioral compliance suite for a
// [ucirun.Channel] implementation. The factory is called once per
// subtest to ensure fresh channel state.
//
// Example usage in an implementation's test file:
//
//	func TestCompliance(t *testing.T) {
//	    enginetest.RunChannelTests(t, func() ucirun.Channel {
//	        return startTestChannel(t)
//	    })
//	}
func RunChannelTests(t *testing.T, factory func() ucirun.Channel) {
	t.Helper()

	t.Run("DoneOpenWhileLive", func(t *testing.T) {
		ch := factory()
		defer ch.Close(context.Background())
		select {
		case <-ch.Done():
			t.Error("Done must not be closed on a live channel")
		default:
		}
		if err := ch.Err(); err != nil {
			t.Errorf("Err on a live channel = %v, want nil", err)
		}
	})

	t.Run("CloseClosesDone", func(t *testing.T) {
		ch := factory()
		if err := ch.Close(context.Background()); err != nil {
			t.Fatalf("Close: %v", err)
		}
		select {
		case <-ch.Done():
		default:
			t.Error("Done must be closed after Close")
		}
	})

	t.Run("CloseIdempotent", func(t *testing.T) {
		ch := factory()
		if err := ch.Close(context.Background()); err != nil {
			t.Fatalf("first Close: %v", err)
		}
		if err := ch.Close(context.Background()); err != nil {
			t.Errorf("second Close = %v, want nil", err)
		}
	})

	t.Run("CleanCloseHasNilErr", func(t *testing.T) {
		ch := factory()
		_ = ch.Close(context.Background())
		if err := ch.Err(); err != nil {
			t.Errorf("Err after clean Close = %v, want nil", err)
		}
	})

	t.Run("SendAfterCloseFails", func(t *testing.T) {
		ch := factory()
		_ = ch.Close(context.Background())
		if err := ch.Send(context.Background(), "isready"); err == nil {
			t.Error("Send after Close must fail")
		}
	})

	t.Run("NilHandlerSafe", func(t *testing.T) {
		ch := factory()
		defer ch.Close(context.Background())
		ch.SetLineHandler(nil)
		ch.SetLineHandler(func(string) {})
		ch.SetLineHandler(nil)
	})
}
