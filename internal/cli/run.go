// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cli

import (
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gpucontext"
	"github.com/spf13/cobra"

	"github.com/gogpu/pacer"
	_ "github.com/gogpu/pacer/backend/hosted"
	"github.com/gogpu/pacer/backend/software"
	"github.com/gogpu/pacer/clock"
	"github.com/gogpu/pacer/swapchain"
)

// RunOptions holds the flags of the run command.
type RunOptions struct {
	Profile string
	Backend string
	Frames  int
	Output  string
	Thumb   float64
}

// AutoBackend selects the highest-priority registered backend.
const AutoBackend = "auto"

// RunResult summarizes a run.
type RunResult struct {
	Backend               string        `json:"backend"`
	FramesDrawn           uint64        `json:"frames_drawn"`
	TransactionalPresents uint64        `json:"transactional_presents"`
	Skipped               uint64        `json:"skipped"`
	Presents              int           `json:"presents"`
	LastTimestamp         time.Duration `json:"last_timestamp_ns"`
	Width                 int           `json:"width"`
	Height                int           `json:"height"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Animate frames through a Redrawer",
		Long: `Animate a scene through a Redrawer presenting to a registered swapchain
backend (software by default, "auto" for the preferred one).

The clock is driven manually, one tick per animation frame; the last frame
is drawn synchronously so it is on screen when the run ends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := LoadProfile(opts.Profile)
			if err != nil {
				return err
			}
			if opts.Frames > 0 {
				p.Frames = opts.Frames
			}
			log := rootOpts.logger(cmd.ErrOrStderr())
			res, sc, err := Run(p, opts.Backend, log)
			if err != nil {
				return err
			}
			if opts.Output != "" {
				if err := writePNG(opts.Output, sc, opts.Thumb); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", opts.Output)
			}
			return writeResult(cmd.OutOrStdout(), rootOpts.Format, res)
		},
	}
	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "YAML pacing profile")
	cmd.Flags().StringVarP(&opts.Backend, "backend", "b", software.Name,
		fmt.Sprintf("swapchain backend (%s, or %s)", strings.Join(swapchain.Backends(), ", "), AutoBackend))
	cmd.Flags().IntVarP(&opts.Frames, "frames", "n", 0, "number of frames (overrides the profile)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the last frame as PNG")
	cmd.Flags().Float64Var(&opts.Thumb, "thumbnail", 1, "scale factor of the written PNG")
	return cmd
}

// Run animates p.Frames frames on the named backend and returns the
// summary and the swapchain holding the last presented frame.
func Run(p Profile, backend string, log *slog.Logger) (RunResult, swapchain.Swapchain, error) {
	if err := p.Validate(); err != nil {
		return RunResult{}, nil, err
	}
	cfg := swapchain.Config{
		Window:     gpucontext.NullWindowProvider{W: p.Width, H: p.Height, SF: p.Scale},
		ImageCount: p.ImageCount,
	}
	var (
		sc  swapchain.Swapchain
		dev swapchain.Device
		err error
	)
	if backend == AutoBackend {
		backend, sc, dev, err = swapchain.OpenBest(cfg)
	} else {
		sc, dev, err = swapchain.Open(backend, cfg)
	}
	if err != nil {
		return RunResult{}, nil, err
	}

	clk := clock.NewManual()
	opts := append(p.Options(), pacer.WithClock(clk))
	if log != nil {
		opts = append(opts, pacer.WithLogger(log))
	}
	r, err := pacer.New(sc, dev, pacer.RenderFunc(bouncingBall), opts...)
	if err != nil {
		sc.Release()
		dev.Release()
		return RunResult{}, nil, err
	}

	step := p.Interval()
	for i := 1; i < p.Frames; i++ {
		t := time.Duration(i) * step
		clk.SetNow(t)
		r.NeedRedraw()
		clk.Fire(t)
	}
	clk.SetNow(time.Duration(p.Frames) * step)
	r.DrawSynchronously()

	r.Dispose()
	st := r.Stats()
	w, h := sc.DrawableSize()
	presents := 0
	if pc, ok := sc.(interface{ Presents() int }); ok {
		presents = pc.Presents()
	}
	return RunResult{
		Backend:               backend,
		FramesDrawn:           st.FramesDrawn,
		TransactionalPresents: st.TransactionalPresents,
		Skipped:               st.Skipped(),
		Presents:              presents,
		LastTimestamp:         st.LastTimestamp,
		Width:                 w,
		Height:                h,
	}, sc, nil
}

// bouncingBall draws a ball crossing the frame once per second.
func bouncingBall(rec *recording.Recorder, t time.Duration) {
	w, h := float64(rec.Width()), float64(rec.Height())
	rec.SetRGB(0.08, 0.1, 0.2)
	rec.DrawRectangle(0, 0, w, h)
	rec.Fill()

	r := math.Min(w, h) / 8
	phase := math.Mod(t.Seconds(), 1)
	x := r + (w-2*r)*(1-math.Abs(2*phase-1))
	y := h/2 + (h/2-r)*math.Sin(2*math.Pi*phase)/2
	rec.SetRGB(1, 0.55, 0.1)
	rec.DrawCircle(x, y, r)
	rec.Fill()
}

func writePNG(path string, sc swapchain.Swapchain, factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("invalid thumbnail scale %g", factor)
	}
	snap, ok := sc.(*software.Swapchain)
	if !ok {
		return fmt.Errorf("backend %T keeps no presented frames to write", sc)
	}
	img := snap.Snapshot(factor)
	if img == nil {
		return fmt.Errorf("no frame was presented")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return f.Close()
}

func writeResult(w io.Writer, format string, res RunResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err := fmt.Fprintf(w, `backend:                %s
frames drawn:           %d
transactional presents: %d
skipped:                %d
presents:               %d
last timestamp:         %s
drawable:               %dx%d
`, res.Backend, res.FramesDrawn, res.TransactionalPresents, res.Skipped, res.Presents,
		res.LastTimestamp, res.Width, res.Height)
	return err
}
