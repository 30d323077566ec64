// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
)

// blitPipeline draws an RGBA texture onto a surface texture.
type blitPipeline struct {
	shader   *wgpu.ShaderModule
	bindings *wgpu.BindGroupLayout
	layout   *wgpu.PipelineLayout
	pipeline *wgpu.RenderPipeline
}

func newBlitPipeline(dev *wgpu.Device, format gputypes.TextureFormat) (_ *blitPipeline, err error) {
	src, err := blitShader()
	if err != nil {
		return nil, err
	}

	p := &blitPipeline{}
	defer func() {
		if err != nil {
			p.release()
		}
	}()

	p.shader, err = dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "pacer.blit",
		WGSL:  src,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create blit shader: %w", err)
	}

	p.bindings, err = dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "pacer.blit",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create blit bind group layout: %w", err)
	}

	p.layout, err = dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "pacer.blit",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.bindings},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create blit pipeline layout: %w", err)
	}

	p.pipeline, err = dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "pacer.blit",
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  ^uint64(0),
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    format,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create blit pipeline: %w", err)
	}
	return p, nil
}

func (p *blitPipeline) release() {
	if p == nil {
		return
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.layout != nil {
		p.layout.Release()
	}
	if p.bindings != nil {
		p.bindings.Release()
	}
	if p.shader != nil {
		p.shader.Release()
	}
}

// uploadTexture holds the CPU frame on the GPU, bound for the blit.
type uploadTexture struct {
	width  int
	height int
	tex    *wgpu.Texture
	view   *wgpu.TextureView
	bind   *wgpu.BindGroup
}

func newUploadTexture(dev *wgpu.Device, p *blitPipeline, w, h int) (_ *uploadTexture, err error) {
	up := &uploadTexture{width: w, height: h}
	defer func() {
		if err != nil {
			up.release()
		}
	}()

	up.tex, err = dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "pacer.frame",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create frame texture: %w", err)
	}
	up.view, err = dev.CreateTextureView(up.tex, nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create frame view: %w", err)
	}
	up.bind, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "pacer.frame",
		Layout:  p.bindings,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, TextureView: up.view}},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create frame bind group: %w", err)
	}
	return up, nil
}

func (up *uploadTexture) write(q *wgpu.Queue, img *image.RGBA) error {
	err := q.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: up.tex, Aspect: gputypes.TextureAspectAll},
		img.Pix,
		&wgpu.ImageDataLayout{BytesPerRow: uint32(img.Stride), RowsPerImage: uint32(up.height)},
		&wgpu.Extent3D{Width: uint32(up.width), Height: uint32(up.height), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: upload frame: %w", err)
	}
	return nil
}

func (up *uploadTexture) release() {
	if up == nil {
		return
	}
	if up.bind != nil {
		up.bind.Release()
	}
	if up.view != nil {
		up.view.Release()
	}
	if up.tex != nil {
		up.tex.Release()
	}
}
