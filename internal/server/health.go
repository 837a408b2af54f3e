package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"PalavraCerta/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// healthHandler reports the preference store, the database pool (when in use)
// and basic host metrics. The status is 503 when the store does not answer.
func (s *Server) healthHandler(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]any{
		"status": "online",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	}

	body["store"] = s.storeHealth(ctx)
	if body["store"].(map[string]string)["status"] != "up" {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}

	if s.db != nil {
		body["database"] = s.db.Health()
	}

	body["system"] = systemStats(ctx)

	return c.JSON(status, body)
}

func (s *Server) storeHealth(ctx context.Context) map[string]string {
	if s.store == nil {
		return map[string]string{"status": "up", "backend": "none"}
	}
	backend := s.store.Backend()
	stats := map[string]string{"status": "up", "backend": fmt.Sprintf("%T", backend)}

	if p, ok := backend.(store.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			stats["status"] = "down"
			stats["error"] = err.Error()
		}
	}
	return stats
}

func systemStats(ctx context.Context) map[string]any {
	out := map[string]any{}

	if v, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out["memory"] = map[string]any{
			"total_gb":     fmt.Sprintf("%.2f GB", float64(v.Total)/1024/1024/1024),
			"used_gb":      fmt.Sprintf("%.2f GB", float64(v.Used)/1024/1024/1024),
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
		}
	}

	// Zero interval compares against the previous call instead of sleeping.
	if p, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(p) > 0 {
		out["cpu"] = map[string]any{"usage_percent": fmt.Sprintf("%.2f%%", p[0])}
	}

	if h, err := host.InfoWithContext(ctx); err == nil {
		out["runtime"] = map[string]any{
			"os":       h.OS,
			"platform": h.Platform,
			"arch":     h.KernelArch,
			"hostname": h.Hostname,
		}
	}

	return out
}
