package passes

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Statistic is a named counter bumped by passes. Counters are registered at
// package init and recorded only while statistics are enabled.
type Statistic struct {
	Name string
	Desc string
	val  atomic.Int64
}

var (
	statsMu      sync.Mutex
	statsEnabled bool
	registry     []*Statistic
)

// NewStatistic registers a counter. Intended for package-level vars.
func NewStatistic(name, desc string) *Statistic {
	s := &Statistic{Name: name, Desc: desc}
	statsMu.Lock()
	registry = append(registry, s)
	statsMu.Unlock()
	return s
}

// Add bumps the counter when statistics recording is enabled.
func (s *Statistic) Add(n int64) {
	if statsEnabled {
		s.val.Add(n)
	}
}

// Value returns the current count.
func (s *Statistic) Value() int64 { return s.val.Load() }

// EnableStatistics turns on counter recording and zeroes every counter.
func EnableStatistics() {
	statsMu.Lock()
	defer statsMu.Unlock()
	statsEnabled = true
	for _, s := range registry {
		s.val.Store(0)
	}
}

// StatisticsEnabled reports whether recording is on.
func StatisticsEnabled() bool { return statsEnabled }

// PrintStatistics writes nonzero counters as aligned text.
func PrintStatistics(w io.Writer) {
	fmt.Fprintln(w, "=== statistics ===")
	for _, s := range sortedStats() {
		if s.Value() != 0 {
			fmt.Fprintf(w, "%8d %s - %s\n", s.Value(), s.Name, s.Desc)
		}
	}
}

// PrintStatisticsJSON writes every counter, including zeroes, as a JSON
// object keyed by counter name.
func PrintStatisticsJSON(w io.Writer) error {
	out := make(map[string]int64)
	for _, s := range sortedStats() {
		out[s.Name] = s.Value()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func sortedStats() []*Statistic {
	statsMu.Lock()
	defer statsMu.Unlock()
	out := make([]*Statistic, len(registry))
	copy(out, registry)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PrintTimers writes the accumulated per-pass timing report. No output is
// produced when nothing was timed.
func PrintTimers(w io.Writer) {
	passTimesMu.Lock()
	defer passTimesMu.Unlock()
	if len(passOrder) == 0 {
		return
	}
	fmt.Fprintln(w, "=== pass timings ===")
	var total time.Duration
	for _, name := range passOrder {
		total += passTimes[name]
	}
	for _, name := range passOrder {
		fmt.Fprintf(w, "  %-28s %10.4f ms\n", name,
			float64(passTimes[name])/float64(time.Millisecond))
	}
	fmt.Fprintf(w, "  %-28s %10.4f ms\n", "total", float64(total)/float64(time.Millisecond))
}
