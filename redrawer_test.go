// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pacer

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gg/recording"

	"github.com/gogpu/pacer/clock"
	"github.com/gogpu/pacer/internal/gputest"
	"github.com/gogpu/pacer/interop"
)

// testContent draws a small rectangle and hands out scripted transactions.
type testContent struct {
	gpu *gputest.GPU

	mu         sync.Mutex
	timestamps []time.Duration
	txs        []interop.Transaction
	retrieved  int
}

func (c *testContent) Render(rec *recording.Recorder, t time.Duration) {
	rec.SetRGB(1, 0, 0)
	rec.DrawRectangle(0, 0, 2, 2)
	rec.Fill()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.timestamps = append(c.timestamps, t)
}

func (c *testContent) RetrieveInteropTransaction() interop.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retrieved++
	if len(c.txs) == 0 {
		return interop.Empty
	}
	tx := c.txs[0]
	c.txs = c.txs[1:]
	return tx
}

func (c *testContent) queue(txs ...interop.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs = append(c.txs, txs...)
}

func (c *testContent) action(name string) interop.Action {
	return func() { c.gpu.Log(name) }
}

func (c *testContent) renders() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.timestamps...)
}

func (c *testContent) retrievals() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retrieved
}

type fixture struct {
	gpu     *gputest.GPU
	clock   *clock.Manual
	content *testContent
	r       *Redrawer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	g := gputest.New(8, 8)
	m := clock.NewManual()
	c := &testContent{gpu: g}
	r, err := New(g.Swapchain(), g.Device(), c, append([]Option{WithClock(m)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if !r.disposed.Load() {
			g.SetMode(gputest.ModeSync)
			g.ScheduleAll()
			g.CompleteAll()
			r.Dispose()
		}
	})
	return &fixture{gpu: g, clock: m, content: c, r: r}
}

func indexOf(events []string, event string) int {
	for i, e := range events {
		if e == event {
			return i
		}
	}
	return -1
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNewValidation(t *testing.T) {
	g := gputest.New(4, 4)
	c := &testContent{gpu: g}

	tests := []struct {
		name string
		fn   func() error
		want error
	}{
		{"nil swapchain", func() error { _, err := New(nil, g.Device(), c); return err }, ErrNilSwapchain},
		{"nil device", func() error { _, err := New(g.Swapchain(), nil, c); return err }, ErrNilDevice},
		{"nil content", func() error { _, err := New(g.Swapchain(), g.Device(), nil); return err }, ErrNilContent},
		{"negative capacity", func() error {
			_, err := New(g.Swapchain(), g.Device(), c, WithClock(clock.NewManual()), WithCapacity(-1))
			return err
		}, ErrInvalidCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewStartedClockFails(t *testing.T) {
	g := gputest.New(4, 4)
	m := clock.NewManual()
	if err := m.Start(func(clock.Tick) {}); err != nil {
		t.Fatal(err)
	}
	_, err := New(g.Swapchain(), g.Device(), &testContent{gpu: g}, WithClock(m))
	if !errors.Is(err, clock.ErrStarted) {
		t.Errorf("New() error = %v, want clock.ErrStarted", err)
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew(nil, ...) did not panic")
		}
	}()
	MustNew(nil, nil, nil)
}

func TestCapacityFromImageCount(t *testing.T) {
	g := gputest.New(4, 4)
	g.SetImageCount(2)
	r := MustNew(g.Swapchain(), g.Device(), &testContent{gpu: g}, WithClock(clock.NewManual()))
	defer r.Dispose()
	if got := r.Stats().Capacity; got != 2 {
		t.Errorf("Capacity = %d, want 2", got)
	}
}

func TestClockStartsPaused(t *testing.T) {
	f := newFixture(t)
	if !f.clock.Paused() {
		t.Error("clock running before any redraw request")
	}
	if f.clock.Fire(0) {
		t.Error("paused clock delivered a tick")
	}
}

func TestNeedRedrawDrawsTwoFrames(t *testing.T) {
	f := newFixture(t)
	f.r.NeedRedraw()

	fired := 0
	for i := 0; i < 3; i++ {
		if f.clock.Fire(time.Duration(i) * time.Millisecond) {
			fired++
		}
	}
	if fired != 2 {
		t.Errorf("delivered ticks = %d, want 2 (clock must pause after the schedule drains)", fired)
	}
	if got := len(f.gpu.Frames()); got != 2 {
		t.Errorf("presented frames = %d, want 2", got)
	}
	if !f.clock.Paused() {
		t.Error("clock running after schedule drained")
	}

	f.r.NeedRedraw()
	f.clock.Fire(10 * time.Millisecond)
	if got := len(f.gpu.Frames()); got != 3 {
		t.Errorf("presented frames after second request = %d, want 3", got)
	}
}

func TestEffectiveTimestampMonotonic(t *testing.T) {
	f := newFixture(t)
	ms := time.Millisecond
	for _, ts := range []time.Duration{10 * ms, 25 * ms, 20 * ms, 30 * ms} {
		f.r.NeedRedraw()
		if !f.clock.Fire(ts) {
			t.Fatalf("tick %v not delivered", ts)
		}
	}
	got := f.content.renders()
	want := []time.Duration{10 * ms, 25 * ms, 25 * ms, 30 * ms}
	if len(got) != len(want) {
		t.Fatalf("renders = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("render %d at %v, want %v", i, got[i], want[i])
		}
	}
	if ts := f.r.Stats().LastTimestamp; ts != 30*ms {
		t.Errorf("LastTimestamp = %v, want 30ms", ts)
	}
}

func TestDrawSynchronouslyUsesClockNow(t *testing.T) {
	f := newFixture(t)
	f.clock.SetNow(42 * time.Millisecond)
	f.r.DrawSynchronously()
	if got := f.content.renders(); len(got) != 1 || got[0] != 42*time.Millisecond {
		t.Errorf("renders = %v, want [42ms]", got)
	}
	buffers := f.gpu.Buffers()
	if len(buffers) != 1 || !buffers[0].Status().AtLeastScheduled() {
		t.Fatalf("buffers = %d, want 1 completed", len(buffers))
	}
}

func TestZeroSizeConsumesNothing(t *testing.T) {
	for _, size := range [][2]int{{0, 0}, {0, 8}, {8, 0}, {-1, 8}} {
		f := newFixture(t)
		f.gpu.SetSize(size[0], size[1])
		f.r.DrawSynchronously()

		s := f.r.Stats()
		if s.SkippedZeroSize != 1 {
			t.Errorf("%v: SkippedZeroSize = %d, want 1", size, s.SkippedZeroSize)
		}
		if s.InFlight != 0 || f.gpu.Acquired() != 0 || len(f.gpu.Buffers()) != 0 {
			t.Errorf("%v: in flight %d, acquired %d, buffers %d; want all zero",
				size, s.InFlight, f.gpu.Acquired(), len(f.gpu.Buffers()))
		}
		if n := len(f.content.renders()); n != 0 {
			t.Errorf("%v: content rendered %d times", size, n)
		}
	}
}

func TestPresentationMode(t *testing.T) {
	tests := []struct {
		name          string
		tx            interop.Transaction
		force         bool
		transactional bool
		interop       bool
	}{
		{"none", interop.Transaction{State: interop.StateNone}, false, false, false},
		{"began without actions", interop.Transaction{State: interop.StateBegan}, false, false, true},
		{"began with action", interop.Transaction{State: interop.StateBegan, Actions: []interop.Action{nil}}, false, true, true},
		{"ended without actions", interop.Transaction{State: interop.StateEnded}, false, false, false},
		{"forced", interop.Transaction{State: interop.StateNone}, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, WithForcePresentWithTransaction(tt.force))
			f.content.queue(tt.tx)
			f.r.DrawSynchronously()

			s := f.r.Stats()
			if got := s.TransactionalPresents == 1; got != tt.transactional {
				t.Errorf("transactional = %v, want %v", got, tt.transactional)
			}
			if s.FramesDrawn != 1 || len(f.gpu.Frames()) != 1 {
				t.Errorf("frames drawn %d, presented %d; want 1/1", s.FramesDrawn, len(f.gpu.Frames()))
			}
			if f.r.InteropActive() != tt.interop {
				t.Errorf("InteropActive() = %v, want %v", f.r.InteropActive(), tt.interop)
			}
		})
	}
}

func TestTransactionalOrdering(t *testing.T) {
	for _, mode := range []gputest.Mode{gputest.ModeSync, gputest.ModeAsync} {
		f := newFixture(t)
		f.gpu.SetMode(mode)
		f.content.queue(interop.Transaction{
			State:   interop.StateBegan,
			Actions: []interop.Action{f.content.action("action:1"), f.content.action("action:2")},
		})
		f.r.DrawSynchronously()

		ev := f.gpu.Events()
		order := []string{
			"interop:opaque=false,async=false",
			"commit:" + presentLabel,
			"scheduled:" + presentLabel,
			"present:1",
			"action:1",
			"action:2",
		}
		prev := -1
		for _, e := range order {
			i := indexOf(ev, e)
			if i <= prev {
				t.Fatalf("mode %d: event %q out of order in %v", mode, e, ev)
			}
			prev = i
		}
	}
}

func TestImmediatePresentAttachesDrawable(t *testing.T) {
	f := newFixture(t)
	f.r.DrawSynchronously()
	ev := f.gpu.Events()
	commit := indexOf(ev, "commit:"+presentLabel)
	present := indexOf(ev, "present:1")
	if commit < 0 || present < commit {
		t.Errorf("immediate present not driven by the command buffer: %v", ev)
	}
	if f.content.retrievals() != 1 {
		t.Errorf("transaction retrieved %d times, want 1", f.content.retrievals())
	}
}

func TestTransactionalWaitsForSchedule(t *testing.T) {
	f := newFixture(t)
	f.gpu.SetMode(gputest.ModeManual)
	f.content.queue(interop.Transaction{Actions: []interop.Action{f.content.action("action")}})
	f.r.NeedRedraw()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.clock.Fire(time.Millisecond)
	}()

	waitFor(t, "commit", func() bool { return f.gpu.Pending() == 1 })
	time.Sleep(10 * time.Millisecond)
	if i := indexOf(f.gpu.Events(), "action"); i >= 0 {
		t.Fatal("interop action ran before the frame was scheduled")
	}
	if len(f.gpu.Frames()) != 0 {
		t.Fatal("drawable presented before the frame was scheduled")
	}

	f.gpu.ScheduleAll()
	<-done
	ev := f.gpu.Events()
	if indexOf(ev, "present:1") > indexOf(ev, "action") || indexOf(ev, "action") < 0 {
		t.Errorf("events = %v, want present before action", ev)
	}

	if got := f.r.Stats().InFlight; got != 1 {
		t.Errorf("InFlight = %d before completion, want 1", got)
	}
	f.gpu.CompleteAll()
	if got := f.r.Stats().InFlight; got != 0 {
		t.Errorf("InFlight = %d after completion, want 0", got)
	}
}

func TestInteropBeganEnded(t *testing.T) {
	f := newFixture(t)
	f.content.queue(
		interop.Transaction{State: interop.StateBegan},
		interop.Transaction{State: interop.StateNone},
		interop.Transaction{State: interop.StateEnded},
		interop.Transaction{State: interop.StateNone},
	)

	f.r.DrawSynchronously()
	if !f.r.InteropActive() || !f.r.Stats().InteropActive {
		t.Fatal("interop not active after Began")
	}
	f.r.DrawSynchronously()
	if !f.r.InteropActive() {
		t.Fatal("interop flag not sticky across a None frame")
	}
	f.r.DrawSynchronously()
	if f.r.InteropActive() {
		t.Fatal("interop still active after Ended")
	}
	f.r.DrawSynchronously()

	modes := f.gpu.InteropModes()
	want := []gputest.InteropMode{{Opaque: false, Async: false}, {Opaque: true, Async: true}}
	if len(modes) != len(want) || modes[0] != want[0] || modes[1] != want[1] {
		t.Errorf("InteropModes() = %v, want %v", modes, want)
	}

	ev := f.gpu.Events()
	if indexOf(ev, "present:3") > indexOf(ev, "interop:opaque=true,async=true") {
		t.Errorf("interop cleared before the Ended frame was presented: %v", ev)
	}
}

func TestEndedWithoutBeganKeepsMode(t *testing.T) {
	f := newFixture(t)
	f.content.queue(interop.Transaction{State: interop.StateEnded})
	f.r.DrawSynchronously()
	if len(f.gpu.InteropModes()) != 0 {
		t.Errorf("InteropModes() = %v, want none", f.gpu.InteropModes())
	}
}

func TestInFlightBoundedByCapacity(t *testing.T) {
	f := newFixture(t, WithCapacity(2))
	f.gpu.SetMode(gputest.ModeManual)

	f.r.NeedRedraw()
	f.clock.Fire(1)
	f.clock.Fire(2)
	if got := f.gpu.Acquired(); got != 2 {
		t.Fatalf("Acquired() = %d, want 2", got)
	}
	if got := f.r.Stats().InFlight; got != 2 {
		t.Fatalf("InFlight = %d, want 2", got)
	}

	f.r.NeedRedraw()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.clock.Fire(3)
	}()

	time.Sleep(20 * time.Millisecond)
	if got := f.gpu.Acquired(); got != 2 {
		t.Fatalf("third frame acquired a drawable with no free slot: %d", got)
	}

	f.gpu.CompleteNext()
	<-done
	if got := f.gpu.Acquired(); got != 3 {
		t.Errorf("Acquired() = %d after a slot freed, want 3", got)
	}
	if got := f.r.Stats().InFlight; got > 2 {
		t.Errorf("InFlight = %d exceeds capacity", got)
	}
}

func TestNoDrawableSkipsFrame(t *testing.T) {
	f := newFixture(t)
	f.gpu.FailNextDrawable(errors.New("timeout"))
	f.r.DrawSynchronously()

	s := f.r.Stats()
	if s.SkippedNoDrawable != 1 || s.InFlight != 0 || s.FramesDrawn != 0 {
		t.Errorf("stats = %+v, want one skipped frame and no permits held", s)
	}
	if f.content.retrievals() != 0 {
		t.Error("transaction retrieved for an abandoned frame")
	}

	f.gpu.FailNextDrawable(nil)
	f.r.DrawSynchronously()
	if got := f.r.Stats().FramesDrawn; got != 1 {
		t.Errorf("FramesDrawn = %d after recovery, want 1", got)
	}
}

func TestRenderTargetFailureReleasesDrawable(t *testing.T) {
	f := newFixture(t)
	f.gpu.FailRenderTarget(errors.New("surface lost"))
	f.r.DrawSynchronously()

	s := f.r.Stats()
	if s.SkippedNoTarget != 1 || s.InFlight != 0 {
		t.Errorf("stats = %+v", s)
	}
	if f.gpu.ReleasedDrawables() != 1 {
		t.Errorf("ReleasedDrawables() = %d, want 1", f.gpu.ReleasedDrawables())
	}
}

func TestReplayFailureStillAppliesInterop(t *testing.T) {
	f := newFixture(t)
	f.gpu.FailReplay(errors.New("bad payload"))
	f.content.queue(interop.Transaction{
		State:   interop.StateBegan,
		Actions: []interop.Action{f.content.action("action")},
	})
	f.r.DrawSynchronously()

	s := f.r.Stats()
	if s.SkippedEncode != 1 || s.InFlight != 0 || len(f.gpu.Buffers()) != 0 {
		t.Errorf("stats = %+v, buffers %d", s, len(f.gpu.Buffers()))
	}
	if indexOf(f.gpu.Events(), "action") < 0 {
		t.Error("interop action dropped with the frame")
	}
	if !f.r.InteropActive() {
		t.Error("Began not applied for an abandoned frame")
	}
}

func TestSubmitFailureReturnsPermit(t *testing.T) {
	for _, force := range []bool{false, true} {
		f := newFixture(t, WithForcePresentWithTransaction(force))
		f.gpu.FailSubmit(errors.New("device lost"))
		f.r.DrawSynchronously()

		s := f.r.Stats()
		if s.SubmitErrors != 1 || s.InFlight != 0 || s.FramesDrawn != 0 || s.TransactionalPresents != 0 {
			t.Errorf("force=%v: stats = %+v", force, s)
		}
		if f.gpu.ReleasedDrawables() != 1 {
			t.Errorf("force=%v: ReleasedDrawables() = %d, want 1", force, f.gpu.ReleasedDrawables())
		}
	}
}

func TestDisposeTwicePanics(t *testing.T) {
	f := newFixture(t)
	f.r.Dispose()

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrAlreadyDisposed) {
			t.Errorf("second Dispose() panic = %v, want ErrAlreadyDisposed", r)
		}
	}()
	f.r.Dispose()
}

func TestDisposeWithFramesInFlight(t *testing.T) {
	f := newFixture(t)
	f.gpu.SetMode(gputest.ModeManual)
	f.r.NeedRedraw()
	f.clock.Fire(1)
	f.clock.Fire(2)
	if got := f.r.Stats().InFlight; got != 2 {
		t.Fatalf("InFlight = %d, want 2", got)
	}

	f.r.Dispose()
	if !f.clock.Stopped() {
		t.Error("clock not stopped")
	}
	if !f.gpu.SwapchainReleased() || !f.gpu.DeviceReleased() {
		t.Error("swapchain or device not released")
	}

	f.gpu.CompleteAll()
	if got := f.r.Stats().InFlight; got != 0 {
		t.Errorf("InFlight = %d after in-flight buffers completed, want 0", got)
	}

	f.r.NeedRedraw()
	f.r.DrawSynchronously()
	f.r.OnApplicationActiveChanged(false)
	if got := f.gpu.Acquired(); got != 2 {
		t.Errorf("drawing after Dispose acquired drawables: %d", got)
	}
	if err := f.r.Do(func() {}); !errors.Is(err, ErrDisposed) {
		t.Errorf("Do() after Dispose error = %v, want ErrDisposed", err)
	}
}

func TestApplicationInactiveDrains(t *testing.T) {
	f := newFixture(t)
	f.gpu.SetMode(gputest.ModeManual)
	f.r.NeedRedraw()
	f.clock.Fire(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.r.OnApplicationActiveChanged(false)
	}()

	select {
	case <-done:
		t.Fatal("OnApplicationActiveChanged(false) returned with an unscheduled buffer")
	case <-time.After(20 * time.Millisecond):
	}

	f.gpu.ScheduleAll()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drain did not return after the buffer was scheduled")
	}

	if !f.clock.Paused() {
		t.Error("clock running while application inactive")
	}
	if f.clock.Fire(2) {
		t.Error("tick delivered while inactive")
	}

	f.r.OnApplicationActiveChanged(true)
	if !f.clock.Fire(3) {
		t.Error("pending redraw lost across suspension")
	}
}

func TestProperties(t *testing.T) {
	f := newFixture(t, WithMaximumFramesPerSecond(30))
	if f.r.MaximumFramesPerSecond() != 30 || f.clock.PreferredFramesPerSecond() != 30 {
		t.Errorf("max fps = %d, clock %d; want 30", f.r.MaximumFramesPerSecond(), f.clock.PreferredFramesPerSecond())
	}
	f.r.SetMaximumFramesPerSecond(-5)
	if f.r.MaximumFramesPerSecond() != 0 || f.clock.PreferredFramesPerSecond() != 0 {
		t.Error("negative fps not clamped to 0")
	}

	f.r.SetNeedsProactiveRedraw(true)
	if !f.r.NeedsProactiveRedraw() || f.clock.Paused() {
		t.Error("proactive redraw did not start the clock")
	}
	f.r.SetNeedsProactiveRedraw(false)
	if !f.clock.Paused() {
		t.Error("clock running after proactive redraw disabled")
	}

	f.r.SetForcePresentWithTransaction(true)
	if !f.r.ForcePresentWithTransaction() {
		t.Error("force flag not stored")
	}
	if f.r.ID() == "" {
		t.Error("empty ID")
	}
}

func TestBackgroundEncoding(t *testing.T) {
	f := newFixture(t, WithBackgroundEncoding())
	f.gpu.SetMode(gputest.ModeAsync)

	f.r.NeedRedraw()
	f.clock.Fire(1)
	f.clock.Fire(2)

	f.content.queue(interop.Transaction{
		State:   interop.StateBegan,
		Actions: []interop.Action{f.content.action("action")},
	})
	f.r.DrawSynchronously()

	waitFor(t, "three presented frames", func() bool { return len(f.gpu.Frames()) == 3 })
	if got := f.content.retrievals(); got != 3 {
		t.Errorf("transactions retrieved %d times, want 3", got)
	}
	ev := f.gpu.Events()
	if indexOf(ev, "present:3") > indexOf(ev, "action") {
		t.Errorf("action ran before the transactional frame was presented: %v", ev)
	}
	if indexOf(ev, "acquire:3") < indexOf(ev, "acquire:2") {
		t.Errorf("frames encoded out of order: %v", ev)
	}
	if got := f.r.Stats().TransactionalPresents; got != 1 {
		t.Errorf("TransactionalPresents = %d, want 1", got)
	}
}

func TestBackgroundEncodingDisposeWhileBlocked(t *testing.T) {
	f := newFixture(t, WithBackgroundEncoding(), WithCapacity(1))
	f.gpu.SetMode(gputest.ModeManual)

	f.r.NeedRedraw()
	f.clock.Fire(1)
	// The second frame waits for a permit on the encoder goroutine.
	f.clock.Fire(2)

	f.r.Dispose()
	f.gpu.CompleteAll()
	if got := f.gpu.Acquired(); got != 1 {
		t.Errorf("Acquired() = %d, want 1", got)
	}
	if got := f.r.Stats().InFlight; got != 0 {
		t.Errorf("InFlight = %d, want 0", got)
	}
}

func TestDoUsesDispatcher(t *testing.T) {
	var mu sync.Mutex
	dispatched := 0
	dispatch := func(fn func()) {
		mu.Lock()
		dispatched++
		mu.Unlock()
		go fn()
	}
	f := newFixture(t, WithDispatcher(dispatch))

	ran := false
	if err := f.r.Do(func() { ran = true }); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !ran {
		t.Error("Do() returned before fn ran")
	}
	mu.Lock()
	defer mu.Unlock()
	if dispatched != 1 {
		t.Errorf("dispatcher called %d times, want 1", dispatched)
	}
}

func TestDefaultClockDrawsOnOwnLoop(t *testing.T) {
	g := gputest.New(8, 8)
	g.SetMode(gputest.ModeAsync)
	c := &testContent{gpu: g}
	r, err := New(g.Swapchain(), g.Device(), c)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := r.Do(r.NeedRedraw); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	waitFor(t, "two frames", func() bool { return len(g.Frames()) >= 2 })

	if err := r.Do(r.Dispose); err != nil {
		t.Fatalf("Do(Dispose) error = %v", err)
	}
	if len(g.Frames()) != 2 {
		t.Errorf("presented %d frames for one redraw request, want 2", len(g.Frames()))
	}
}

func TestRedrawerLogsWithInstanceID(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f := newFixture(t, WithLogger(l))

	f.gpu.SetSize(0, 0)
	f.r.DrawSynchronously()

	out := buf.String()
	if !strings.Contains(out, "pacer="+f.r.ID()) {
		t.Errorf("log output missing instance ID: %s", out)
	}
	if !strings.Contains(out, "zero drawable size") {
		t.Errorf("zero-size skip not logged: %s", out)
	}
}

func TestRenderFuncContent(t *testing.T) {
	g := gputest.New(4, 4)
	calls := 0
	content := RenderFunc(func(rec *recording.Recorder, _ time.Duration) {
		calls++
		rec.Clear()
	})
	r := MustNew(g.Swapchain(), g.Device(), content, WithClock(clock.NewManual()))
	defer r.Dispose()

	r.DrawSynchronously()
	if calls != 1 || len(g.Frames()) != 1 {
		t.Errorf("calls = %d, frames = %d; want 1/1", calls, len(g.Frames()))
	}
	if tx := content.RetrieveInteropTransaction(); tx.State != interop.StateNone || tx.HasActions() {
		t.Errorf("RenderFunc transaction = %+v, want empty", tx)
	}
}
