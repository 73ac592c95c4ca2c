package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/pullfeed/component"
)

// RouteInfo is an HTTP route listed in the summary.
type RouteInfo struct {
	Method string
	Path   string
}

// Summary prints what started: components with their descriptions, HTTP
// routes, and live health.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	routes          []RouteInfo
}

// NewSummary creates a summary for the named service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path})
}

// Routes returns the tracked routes.
func (s *Summary) Routes() []RouteInfo { return s.routes }

// Display writes the summary to w. A nil registry prints no components.
func (s *Summary) Display(w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n\n", s.serviceName, s.version, s.startupDuration.Seconds())

	var comps []component.Component
	var health map[string]component.Health
	if registry != nil {
		comps = registry.All()
		health = make(map[string]component.Health)
		for _, h := range registry.HealthAll(context.Background()) {
			health[h.Name] = h
		}
	}

	if len(comps) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n")
	} else {
		fmt.Fprintf(w, "Components\n")
		healthy := 0
		for i, c := range comps {
			h := health[c.Name()]
			if h.Status == component.StatusHealthy {
				healthy++
			}
			label := c.Name()
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				if desc.Name != "" {
					label = desc.Name
				}
				if desc.Details != "" {
					label += ": " + desc.Details
				}
				if desc.Port > 0 {
					label += fmt.Sprintf(" (:%d)", desc.Port)
				}
			}
			msg := ""
			if h.Message != "" {
				msg = " - " + h.Message
			}
			fmt.Fprintf(w, "   %s %s %s [%s]%s\n", treePrefix(i, len(comps)), healthStatusIcon(h.Status),
				label, strings.ToLower(string(h.Status)), msg)
		}
		fmt.Fprintf(w, "\n%d/%d components healthy\n", healthy, len(comps))
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\nRoutes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-7s %s\n", treePrefix(i, len(s.routes)), r.Method, r.Path)
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
