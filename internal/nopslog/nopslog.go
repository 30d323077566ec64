// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package nopslog provides the silent slog handler pacer packages start
// with until a logger is set.
package nopslog

import (
	"context"
	"log/slog"
)

// Handler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type Handler struct{}

func (Handler) Enabled(context.Context, slog.Level) bool  { return false }
func (Handler) Handle(context.Context, slog.Record) error { return nil }
func (Handler) WithAttrs([]slog.Attr) slog.Handler        { return Handler{} }
func (Handler) WithGroup(string) slog.Handler             { return Handler{} }

// New returns a logger that discards all output.
func New() *slog.Logger { return slog.New(Handler{}) }

// Or returns l, or a silent logger when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l == nil {
		return New()
	}
	return l
}
