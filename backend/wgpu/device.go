// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/pacer/internal/nopslog"
	"github.com/gogpu/pacer/internal/replay"
	"github.com/gogpu/pacer/swapchain"
)

// releaseTimeout bounds how long Device.Release waits for the GPU.
const releaseTimeout = 2 * time.Second

// GPUInfo describes the adapter behind the device, when the host shares it.
type GPUInfo struct {
	Name string
	Type gpucontext.AdapterType
}

// String returns a human-readable description of the GPU.
func (g GPUInfo) String() string {
	return fmt.Sprintf("%s (%s)", g.Name, g.Type)
}

// New creates a swapchain and device over the surface and device in
// cfg.Native (a *Target) or cfg.Provider.
func New(cfg swapchain.Config) (*Swapchain, *Device, error) {
	s, err := resolve(cfg)
	if err != nil {
		return nil, nil, err
	}
	sc := &Swapchain{
		surface: s.surface,
		device:  s.device,
		window:  s.window,
		format:  s.format,
		images:  s.images,
		opaque:  true,
		async:   true,
		dirty:   true,
		log:     nopslog.New(),
	}
	var info *GPUInfo
	if s.adapter != nil {
		info = &GPUInfo{Name: s.adapter.Name, Type: s.adapter.Type}
	}
	return sc, newDevice(sc, s.device, info), nil
}

func newDevice(sc *Swapchain, dev *wgpu.Device, info *GPUInfo) *Device {
	queue := dev.Queue()
	return &Device{
		sc:     sc,
		dev:    dev,
		queue:  queue,
		poller: newPoller(queue.Poll, DefaultPollInterval),
		info:   info,
		log:    sc.log,
	}
}

// Device rasterizes recordings on the CPU and blits them onto surface
// textures with a render pass.
type Device struct {
	sc     *Swapchain
	dev    *wgpu.Device
	queue  *wgpu.Queue
	poller *poller
	info   *GPUInfo

	mu       sync.Mutex
	log      *slog.Logger
	blit     *blitPipeline
	upload   *uploadTexture
	staging  *image.RGBA
	flushed  uint64
	released bool
}

var (
	_ swapchain.Swapchain = (*Swapchain)(nil)
	_ swapchain.Device    = (*Device)(nil)
	_ swapchain.Queue     = (*Device)(nil)
)

// Info returns the adapter description, or nil when unknown.
func (d *Device) Info() *GPUInfo {
	return d.info
}

// SetLogger sets the logger of the device and its swapchain.
func (d *Device) SetLogger(l *slog.Logger) {
	l = nopslog.Or(l)
	d.mu.Lock()
	d.log = l
	d.mu.Unlock()
	d.sc.SetLogger(l)
	if d.info != nil {
		l.Info("wgpu: using GPU", "gpu", d.info.String())
	}
}

// NewRenderTarget wraps a surface texture acquired from this backend.
func (d *Device) NewRenderTarget(dr swapchain.Drawable) (swapchain.RenderTarget, error) {
	wd, ok := dr.(*drawable)
	if !ok || wd.sc != d.sc {
		return nil, fmt.Errorf("wgpu: foreign drawable %T", dr)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, swapchain.ErrReleased
	}
	if d.blit == nil {
		p, err := newBlitPipeline(d.dev, d.sc.format)
		if err != nil {
			return nil, err
		}
		d.blit = p
	}
	return &renderTarget{dev: d, dr: wd}, nil
}

// Queue returns the device itself; it creates command buffers that present
// and complete in step with the wgpu queue.
func (d *Device) Queue() swapchain.Queue {
	return d
}

// NewCommandBuffer creates a buffer covering the work flushed so far.
func (d *Device) NewCommandBuffer(label string) (swapchain.CommandBuffer, error) {
	return swapchain.NewBuffer(label, d.submit), nil
}

func (d *Device) submit(b *swapchain.Buffer) error {
	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return swapchain.ErrReleased
	}
	index := d.flushed
	log := d.log
	d.mu.Unlock()

	// Flushed work is already on the GPU queue.
	if err := b.MarkScheduled(); err != nil {
		log.Warn("wgpu: present failed", "buffer", b.Label(), "err", err)
	}
	if !d.poller.track(index, b) {
		_ = b.MarkCompleted()
	}
	return nil
}

// Release waits for submitted work, then frees the blit resources. The wgpu
// device stays owned by the caller.
func (d *Device) Release() {
	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return
	}
	d.released = true
	last := d.flushed
	d.mu.Unlock()

	deadline := time.Now().Add(releaseTimeout)
	for d.queue.Poll() < last && time.Now().Before(deadline) {
		time.Sleep(DefaultPollInterval)
	}
	d.poller.close()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.upload.release()
	d.upload = nil
	d.blit.release()
	d.blit = nil
}

// renderTarget replays into a CPU staging image, uploads it and encodes the
// blit into the drawable's surface texture.
type renderTarget struct {
	dev *Device
	dr  *drawable

	cmd      *wgpu.CommandBuffer
	released bool
}

func (t *renderTarget) Replay(rec *recording.Recording) error {
	if t.released {
		return swapchain.ErrReleased
	}
	d := t.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return swapchain.ErrReleased
	}

	w, h := t.dr.Size()
	if d.staging == nil || d.staging.Bounds().Dx() != w || d.staging.Bounds().Dy() != h {
		d.staging = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	if err := replay.Into(d.staging, rec); err != nil {
		return err
	}

	up, err := d.ensureUpload(w, h)
	if err != nil {
		return err
	}
	if err := up.write(d.queue, d.staging); err != nil {
		return err
	}

	cmd, err := t.encode(up)
	if err != nil {
		return err
	}
	t.releaseCmd()
	t.cmd = cmd
	return nil
}

func (d *Device) ensureUpload(w, h int) (*uploadTexture, error) {
	if d.upload != nil && d.upload.width == w && d.upload.height == h {
		return d.upload, nil
	}
	up, err := newUploadTexture(d.dev, d.blit, w, h)
	if err != nil {
		return nil, err
	}
	d.upload.release()
	d.upload = up
	return up, nil
}

func (t *renderTarget) encode(up *uploadTexture) (*wgpu.CommandBuffer, error) {
	d := t.dev
	view, err := t.dr.view()
	if err != nil {
		return nil, fmt.Errorf("wgpu: surface view: %w", err)
	}
	defer view.Release()

	enc, err := d.dev.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "pacer.blit"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: command encoder: %w", err)
	}
	pass, err := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "pacer.blit",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{},
		}},
	})
	if err != nil {
		enc.DiscardEncoding()
		return nil, fmt.Errorf("wgpu: begin render pass: %w", err)
	}
	pass.SetPipeline(d.blit.pipeline)
	pass.SetBindGroup(0, up.bind, nil)
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		enc.DiscardEncoding()
		return nil, fmt.Errorf("wgpu: end render pass: %w", err)
	}
	cmd, err := enc.Finish()
	if err != nil {
		return nil, fmt.Errorf("wgpu: finish encoder: %w", err)
	}
	return cmd, nil
}

func (t *renderTarget) Flush() error {
	if t.released {
		return swapchain.ErrReleased
	}
	if t.cmd == nil {
		return nil
	}
	cmd := t.cmd
	t.cmd = nil
	index, err := t.dev.queue.Submit(cmd)
	if err != nil {
		cmd.Release()
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	t.dev.mu.Lock()
	t.dev.flushed = max(t.dev.flushed, index)
	t.dev.mu.Unlock()
	return nil
}

func (t *renderTarget) Release() {
	if t.released {
		return
	}
	t.released = true
	t.releaseCmd()
}

func (t *renderTarget) releaseCmd() {
	if t.cmd != nil {
		t.cmd.Release()
		t.cmd = nil
	}
}
