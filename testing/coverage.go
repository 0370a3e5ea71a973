package e2etesting

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
)

type RouteInfo struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	HitCount int    `json:"hit_count,omitempty"`
}

type CoverageStats struct {
	TotalRoutes   int
	CoveredRoutes int
	MissingRoutes []RouteInfo
	Coverage      float64
}

// CoverageTracker counts which registered API routes an end-to-end suite
// actually exercised.
type CoverageTracker struct {
	mu       sync.RWMutex
	routes   map[string]RouteInfo
	hits     map[string]int
	excludes []string
}

// NewCoverageTracker ignores routes matching any of the path.Match patterns.
func NewCoverageTracker(excludes ...string) *CoverageTracker {
	return &CoverageTracker{
		routes:   make(map[string]RouteInfo),
		hits:     make(map[string]int),
		excludes: excludes,
	}
}

func routeKey(method, path string) string {
	return method + " " + path
}

func (ct *CoverageTracker) excluded(routePath string) bool {
	for _, pattern := range ct.excludes {
		if ok, _ := path.Match(pattern, routePath); ok {
			return true
		}
	}
	return false
}

func (ct *CoverageTracker) RegisterRoutes(e *echo.Echo) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	for _, route := range e.Routes() {
		// echo registers catch-all handlers under its own package name
		if strings.HasPrefix(route.Name, "github.com/labstack/echo") || ct.excluded(route.Path) {
			continue
		}
		ct.routes[routeKey(route.Method, route.Path)] = RouteInfo{Method: route.Method, Path: route.Path}
	}
}

func (ct *CoverageTracker) TrackingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ct.mu.Lock()
			ct.hits[routeKey(c.Request().Method, c.Path())]++
			ct.mu.Unlock()
			return next(c)
		}
	}
}

func (ct *CoverageTracker) GetStats() CoverageStats {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	var missing []RouteInfo
	for key, route := range ct.routes {
		if ct.hits[key] == 0 {
			missing = append(missing, route)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Path == missing[j].Path {
			return missing[i].Method < missing[j].Method
		}
		return missing[i].Path < missing[j].Path
	})

	stats := CoverageStats{
		TotalRoutes:   len(ct.routes),
		CoveredRoutes: len(ct.routes) - len(missing),
		MissingRoutes: missing,
	}
	if stats.TotalRoutes > 0 {
		stats.Coverage = float64(stats.CoveredRoutes) / float64(stats.TotalRoutes) * 100
	}
	return stats
}

func (ct *CoverageTracker) HitCount(method, routePath string) int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.hits[routeKey(method, routePath)]
}

func (ct *CoverageTracker) PrintReportTo(w io.Writer) {
	stats := ct.GetStats()
	fmt.Fprintf(w, "Route coverage: %d/%d (%.1f%%)\n", stats.CoveredRoutes, stats.TotalRoutes, stats.Coverage)
	for _, route := range stats.MissingRoutes {
		fmt.Fprintf(w, "  missing: %-7s %s\n", route.Method, route.Path)
	}
}

func (e *E2EApp) AssertMinimumCoverage(t interface {
	Fatalf(format string, args ...any)
}, minPercent float64) {
	if e.CoverageTracker == nil {
		t.Fatalf("Coverage tracking not enabled")
		return
	}
	stats := e.CoverageTracker.GetStats()
	if stats.Coverage < minPercent {
		var report strings.Builder
		e.CoverageTracker.PrintReportTo(&report)
		t.Fatalf("Coverage %.1f%% is below minimum required %.1f%%\n%s", stats.Coverage, minPercent, report.String())
	}
}
