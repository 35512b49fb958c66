package pool

import (
	"context"
	"log/slog"
)

// disabledHandler is the default slog handler: it drops everything, so a
// pool without WithLogger stays silent at zero cost.
type disabledHandler struct{}

func (d disabledHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (d disabledHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (d disabledHandler) WithAttrs(_ []slog.Attr) slog.Handler          { return disabledHandler{} }
func (d disabledHandler) WithGroup(_ string) slog.Handler               { return disabledHandler{} }
