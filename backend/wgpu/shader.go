// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/naga"
)

// blitShaderWGSL draws the uploaded frame over the whole surface with a
// single oversized triangle. Pixels are copied 1:1 with textureLoad.
const blitShaderWGSL = `
@group(0) @binding(0) var frame: texture_2d<f32>;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> VertexOutput {
    let uv = vec2<f32>(f32((idx << 1u) & 2u), f32(idx & 2u));
    var out: VertexOutput;
    out.position = vec4<f32>(uv.x * 2.0 - 1.0, 1.0 - uv.y * 2.0, 0.0, 1.0);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureLoad(frame, vec2<i32>(in.position.xy), 0);
}
`

var blitShaderCheck = sync.OnceValue(func() error {
	if _, err := naga.Compile(blitShaderWGSL); err != nil {
		return fmt.Errorf("wgpu: blit shader: %w", err)
	}
	return nil
})

// blitShader returns the blit shader source after it was compiled once.
func blitShader() (string, error) {
	if err := blitShaderCheck(); err != nil {
		return "", err
	}
	return blitShaderWGSL, nil
}
