// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/pacer"
)

// Profile describes a demo run.
type Profile struct {
	Width              int     `yaml:"width" json:"width"`
	Height             int     `yaml:"height" json:"height"`
	Scale              float64 `yaml:"scale" json:"scale"`
	Frames             int     `yaml:"frames" json:"frames"`
	FPS                int     `yaml:"fps" json:"fps"`
	MaxFPS             int     `yaml:"max_fps" json:"max_fps"`
	Capacity           int     `yaml:"capacity" json:"capacity"`
	ImageCount         int     `yaml:"image_count" json:"image_count"`
	ForceTransaction   bool    `yaml:"force_transaction" json:"force_transaction"`
	BackgroundEncoding bool    `yaml:"background_encoding" json:"background_encoding"`
}

// ErrInvalidProfile is returned for profiles that cannot drive a run.
var ErrInvalidProfile = errors.New("invalid profile")

// DefaultProfile returns the profile used when no file is given.
func DefaultProfile() Profile {
	return Profile{
		Width:      320,
		Height:     240,
		Scale:      1,
		Frames:     60,
		FPS:        60,
		ImageCount: 3,
	}
}

// LoadProfile reads a YAML profile. Fields missing from the file keep
// their default values; unknown fields are rejected.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read profile: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return p, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate checks the profile's ranges.
func (p Profile) Validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidProfile, p.Width, p.Height)
	case p.Scale <= 0:
		return fmt.Errorf("%w: scale %g", ErrInvalidProfile, p.Scale)
	case p.Frames <= 0:
		return fmt.Errorf("%w: frames %d", ErrInvalidProfile, p.Frames)
	case p.FPS <= 0:
		return fmt.Errorf("%w: fps %d", ErrInvalidProfile, p.FPS)
	case p.MaxFPS < 0 || p.Capacity < 0 || p.ImageCount < 0:
		return fmt.Errorf("%w: negative max_fps, capacity or image_count", ErrInvalidProfile)
	}
	return nil
}

// Interval returns the time between two animation frames.
func (p Profile) Interval() time.Duration {
	return time.Second / time.Duration(p.FPS)
}

// Options maps the profile onto Redrawer options.
func (p Profile) Options() []pacer.Option {
	opts := []pacer.Option{
		pacer.WithMaximumFramesPerSecond(p.MaxFPS),
		pacer.WithForcePresentWithTransaction(p.ForceTransaction),
	}
	if p.Capacity > 0 {
		opts = append(opts, pacer.WithCapacity(p.Capacity))
	}
	if p.BackgroundEncoding {
		opts = append(opts, pacer.WithBackgroundEncoding())
	}
	return opts
}

// NewProfileCommand creates the profile command.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile [profile.yaml]",
		Short: "Print the effective pacing profile",
		Long: `Print the profile a run would use: the defaults overlaid with the
given YAML file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			p, err := LoadProfile(path)
			if err != nil {
				return err
			}
			return writeProfile(cmd.OutOrStdout(), rootOpts.Format, p)
		},
	}
}

func writeProfile(w io.Writer, format string, p Profile) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}
