// Package metrics collects audit results as Prometheus gauges and counters
// and exports them in the text exposition format, e.g. for the node_exporter
// textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hardenaudit/hardenaudit/internal/errors"
	"github.com/hardenaudit/hardenaudit/internal/util"
)

// Counter represents a monotonically increasing counter
type Counter struct {
	mu    sync.RWMutex
	value float64
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	c.Add(1)
}

// Add adds a non-negative delta; negative values are ignored.
func (c *Counter) Add(delta float64) {
	if delta < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
}

// Value returns the current counter value
func (c *Counter) Value() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Gauge represents a value that can go up and down
type Gauge struct {
	mu    sync.RWMutex
	value float64
}

// Set sets the gauge to the given value
func (g *Gauge) Set(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = value
}

// Value returns the current gauge value
func (g *Gauge) Value() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.value
}

type series struct {
	name   string
	labels string // rendered {k="v",...}, sorted by key
}

type family struct {
	kind string
	help string
}

// Registry holds all metrics
type Registry struct {
	mu       sync.RWMutex
	families map[string]family
	counters map[series]*Counter
	gauges   map[series]*Gauge
}

// NewRegistry creates a new metrics registry
func NewRegistry() *Registry {
	return &Registry{
		families: make(map[string]family),
		counters: make(map[series]*Counter),
		gauges:   make(map[series]*Gauge),
	}
}

// Describe sets the HELP text emitted for a metric name.
func (r *Registry) Describe(name, help string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.families[name]
	f.help = help
	r.families[name] = f
}

// Counter gets or creates a counter
func (r *Registry) Counter(name string, labels map[string]string) *Counter {
	key := series{name: name, labels: formatLabels(labels)}
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.counters[key]; ok {
		return c
	}
	c := &Counter{}
	r.counters[key] = c
	r.setKind(name, "counter")
	return c
}

// Gauge gets or creates a gauge
func (r *Registry) Gauge(name string, labels map[string]string) *Gauge {
	key := series{name: name, labels: formatLabels(labels)}
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.gauges[key]; ok {
		return g
	}
	g := &Gauge{}
	r.gauges[key] = g
	r.setKind(name, "gauge")
	return g
}

func (r *Registry) setKind(name, kind string) {
	f := r.families[name]
	f.kind = kind
	r.families[name] = f
}

// ExportPrometheus renders every series, grouped by metric name and sorted
// so repeated exports of the same values are byte-identical.
func (r *Registry) ExportPrometheus() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := make(map[series]float64, len(r.counters)+len(r.gauges))
	for k, c := range r.counters {
		values[k] = c.Value()
	}
	for k, g := range r.gauges {
		values[k] = g.Value()
	}

	keys := make([]series, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].labels < keys[j].labels
	})

	var sb strings.Builder
	last := ""
	for _, k := range keys {
		if k.name != last {
			f := r.families[k.name]
			if f.help != "" {
				fmt.Fprintf(&sb, "# HELP %s %s\n", k.name, f.help)
			}
			fmt.Fprintf(&sb, "# TYPE %s %s\n", k.name, f.kind)
			last = k.name
		}
		fmt.Fprintf(&sb, "%s%s %g\n", k.name, k.labels, values[k])
	}
	return sb.String()
}

// WriteTextfile writes the export to path via a temporary file and rename,
// so a collector never reads a half-written file.
func (r *Registry) WriteTextfile(path string) error {
	if err := util.EnsureParentDir(path); err != nil {
		return errors.Wrap(errors.ErrFileOperation, "create directory for %s: %v", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".hardenaudit-*.prom")
	if err != nil {
		return errors.Wrap(errors.ErrFileOperation, "create temp file: %v", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(r.ExportPrometheus()); err != nil {
		_ = tmp.Close()
		return errors.Wrap(errors.ErrFileOperation, "write %s: %v", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrFileOperation, "close %s: %v", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.Wrap(errors.ErrFileOperation, "chmod %s: %v", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrFileOperation, "rename to %s: %v", path, err)
	}
	return nil
}

// formatLabels renders labels as {key1="value1",key2="value2"} in key order.
func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, labels[k]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
