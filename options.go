package pacer

import (
	"log/slog"

	"github.com/gogpu/pacer/clock"
)

// Option configures a Redrawer during creation.
//
// Example:
//
//	// Default: display link clock, capacity from the swapchain image count
//	r, err := pacer.New(sc, dev, content)
//
//	// Tests: deterministic clock, two frames in flight
//	r, err := pacer.New(sc, dev, content,
//	    pacer.WithClock(clock.NewManual()),
//	    pacer.WithCapacity(2))
type Option func(*options)

// options holds optional configuration for Redrawer creation.
type options struct {
	capacity         int
	clock            clock.Clock
	dispatcher       clock.Dispatcher
	maxFPS           int
	forceTransaction bool
	background       bool
	logger           *slog.Logger
}

// defaultOptions returns the default redrawer options.
func defaultOptions() options {
	return options{
		capacity: 0,   // Swapchain image count
		clock:    nil, // DisplayLink at clock.DefaultRefreshRate
	}
}

// WithCapacity sets the number of frames allowed in flight. The default is
// the swapchain image count.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithClock sets the frame clock. The Redrawer starts it and stops it on
// Dispose. Without this option a clock.DisplayLink is created.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithDispatcher sets how ticks reach the owning goroutine. It is handed to
// the default display link and used by Do.
//
// Without a dispatcher and without WithClock, the Redrawer runs its own
// uiloop.Loop and that loop's goroutine owns the Redrawer.
func WithDispatcher(d clock.Dispatcher) Option {
	return func(o *options) {
		o.dispatcher = d
	}
}

// WithMaximumFramesPerSecond caps the tick rate. Zero means the display
// refresh rate.
func WithMaximumFramesPerSecond(fps int) Option {
	return func(o *options) {
		o.maxFPS = fps
	}
}

// WithForcePresentWithTransaction presents every frame transactionally.
func WithForcePresentWithTransaction(force bool) Option {
	return func(o *options) {
		o.forceTransaction = force
	}
}

// WithBackgroundEncoding moves replay and submission of plain frames to an
// encoder goroutine. Frames that are presented transactionally or touch
// interop state still encode on the owning goroutine, after the encoder
// went idle. Off by default.
func WithBackgroundEncoding() Option {
	return func(o *options) {
		o.background = true
	}
}

// WithLogger sets the logger of one Redrawer, overriding the package
// logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
