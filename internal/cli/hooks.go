package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/critpath/pkg/observability"
)

// logHooks reports observability events through the CLI logger at debug
// level, failures at warn.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.SessionHooks = (*logHooks)(nil)
	_ observability.RenderHooks  = (*logHooks)(nil)
	_ observability.CacheHooks   = (*logHooks)(nil)
	_ observability.HTTPHooks    = (*logHooks)(nil)
)

func (h *logHooks) OnMutation(_ context.Context, sessionID, op string, err error) {
	if err != nil {
		h.logger.Warn("mutation rejected", "session", sessionID, "op", op, "error", err)
		return
	}
	h.logger.Debug("mutation", "session", sessionID, "op", op)
}

func (h *logHooks) OnCalculate(_ context.Context, sessionID string, activities int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("calculation failed", "session", sessionID, "activities", activities, "error", err)
		return
	}
	h.logger.Debug("calculated", "session", sessionID, "activities", activities, "took", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, format string, activities int) {
	h.logger.Debug("rendering", "format", format, "activities", activities)
}

func (h *logHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "format", format, "error", err)
		return
	}
	h.logger.Debug("rendered", "format", format, "bytes", size, "took", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("request", "method", method, "route", route, "status", status, "took", d.Round(time.Microsecond))
}
