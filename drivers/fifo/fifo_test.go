package fifo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/clktmr/doomdev/drivers/fifo"
	"github.com/clktmr/doomdev/hw"
	"github.com/clktmr/doomdev/hw/cmd"
	ddtesting "github.com/clktmr/doomdev/testing"
)

func setup(t *testing.T) (*fifo.Queue, *ddtesting.Accel) {
	accel := ddtesting.NewAccel()
	regs := hw.NewRegisters(accel)
	regs.SetEnabled(hw.IntrPongSync | hw.IntrFaults)
	q := fifo.New(regs, fifo.DefaultHeartbeat, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for accel.Wait(ctx) == nil {
			q.HandleInterrupt()
			accel.Unmask()
		}
	}()
	t.Cleanup(func() { cancel(); <-done })

	return q, accel
}

func fills(n int) []cmd.Command {
	words := make([]cmd.Command, n)
	for i := range words {
		words[i] = cmd.FillColor(uint8(i))
	}
	return words
}

func TestHeartbeat(t *testing.T) {
	q, accel := setup(t)

	n, err := q.Send(context.Background(), fills(70))
	if err != nil || n != 70 {
		t.Fatalf("got %d, %v", n, err)
	}

	var pings []int
	for i, w := range accel.Words() {
		if w.Op() == cmd.OpPingAsync {
			pings = append(pings, i)
		}
	}
	if diff := cmp.Diff([]int{32, 65}, pings); diff != "" {
		t.Errorf("heartbeat positions (-want +got):\n%s", diff)
	}
}

func TestBackpressure(t *testing.T) {
	q, accel := setup(t)
	accel.SetFree(0)

	words := fills(3)
	result := make(chan error, 1)
	go func() {
		_, err := q.Send(context.Background(), words)
		result <- err
	}()

	select {
	case <-accel.Armed():
	case <-time.After(5 * time.Second):
		t.Fatal("writer didn't arm PONG_ASYNC")
	}
	if got := len(accel.Words()); got != 0 {
		t.Fatalf("%d words written to a full FIFO", got)
	}
	if s := q.State(); s != fifo.AwaitingSlot {
		// The state is set right after arming, give the writer a moment.
		time.Sleep(10 * time.Millisecond)
		if s = q.State(); s != fifo.AwaitingSlot {
			t.Errorf("state is %v", s)
		}
	}

	accel.Release(16)

	if err := <-result; err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(words, accel.Words()); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
	if accel.Enabled()&hw.IntrPongAsync != 0 {
		t.Error("PONG_ASYNC left enabled")
	}
}

func TestInterrupted(t *testing.T) {
	q, accel := setup(t)
	accel.SetFree(3) // room for exactly two words

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-accel.Armed()
		cancel()
	}()

	n, err := q.Send(ctx, fills(5))
	if !errors.Is(err, fifo.ErrInterrupted) || !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want ErrInterrupted", err)
	}
	if n != 2 || len(accel.Words()) != 2 {
		t.Errorf("sent %d, recorded %d, want 2", n, len(accel.Words()))
	}
	if q.State() != fifo.Idle {
		t.Errorf("state is %v", q.State())
	}
}

func TestSync(t *testing.T) {
	q, accel := setup(t)
	accel.SyncDelay = 20 * time.Millisecond

	if _, err := q.Send(context.Background(), fills(4)); err != nil {
		t.Fatal(err)
	}
	if err := q.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}
	accel.Log("synced")

	if diff := cmp.Diff([]string{"pong sync", "synced"}, accel.Events()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestFault(t *testing.T) {
	accel := ddtesting.NewAccel()
	regs := hw.NewRegisters(accel)
	regs.SetEnabled(hw.IntrFaults)
	q := fifo.New(regs, 0, nil)

	accel.Fault(7, cmd.DrawSpan())
	f, ok := q.HandleInterrupt()
	if !ok {
		t.Fatal("fault not reported")
	}
	want := fifo.Fault{Intr: hw.IntrFEError, Code: 7, Cmd: cmd.DrawSpan()}
	if f != want {
		t.Errorf("got %+v, want %+v", f, want)
	}
	if regs.Pending() != 0 {
		t.Errorf("pending %v after handling", regs.Pending())
	}
}
