// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package hosted

import (
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/pacer/swapchain"
)

// RenderTo draws the latest presented frame with the host's drawer. Call it
// from the host's draw callback.
//
// The host texture is created lazily and updated in place while the frame
// size is stable. When the size changes the old texture is kept until the
// replacement has been created: creating a texture waits for the GPU, so
// only then is the old one no longer referenced by in-flight work.
//
// RenderTo draws nothing until the first frame was presented. It may run
// concurrently with Release; once Release returns no texture is drawn.
func (s *Swapchain) RenderTo(dc gpucontext.TextureDrawer) error {
	s.texMu.Lock()
	defer s.texMu.Unlock()

	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return swapchain.ErrReleased
	}
	frame := s.pending
	s.pending = nil
	log := s.log
	s.mu.Unlock()

	if frame != nil {
		w, h := frame.Bounds().Dx(), frame.Bounds().Dy()
		if s.texture != nil && (s.texture.Width() != w || s.texture.Height() != h) {
			destroy(s.oldTexture)
			s.oldTexture = s.texture
			s.texture = nil
		}

		if s.texture == nil {
			creator := dc.TextureCreator()
			if creator == nil {
				return ErrNoTextureCreator
			}
			tex, err := creator.NewTextureFromRGBA(w, h, frame.Pix)
			if err != nil {
				return fmt.Errorf("hosted: create texture: %w", err)
			}
			if tex == nil {
				return ErrNotTexture
			}
			// gg pixels are premultiplied.
			if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
				pt.SetPremultiplied(true)
			}
			if s.isReleased() {
				destroy(tex)
				return swapchain.ErrReleased
			}
			s.texture = tex
			destroy(s.oldTexture)
			s.oldTexture = nil
			log.Debug("hosted: created texture", "width", w, "height", h)
		} else if updater, ok := s.texture.(gpucontext.TextureUpdater); ok {
			if err := updater.UpdateData(frame.Pix); err != nil {
				return fmt.Errorf("hosted: update texture: %w", err)
			}
		}
		s.uploads++
	}

	if s.texture == nil {
		return nil
	}
	return dc.DrawTexture(s.texture, 0, 0)
}

// Uploads returns the number of frames uploaded to host textures.
func (s *Swapchain) Uploads() int {
	s.texMu.Lock()
	defer s.texMu.Unlock()
	return s.uploads
}

func (s *Swapchain) isReleased() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
