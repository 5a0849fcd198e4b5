// Package passes provides the pass-manager abstraction the driver stages run
// on: module- and function-scoped pass sequences, the standard pipeline
// builder, and the process-wide option, timing and statistics state shared by
// the low-level pipeline.
package passes

import (
	"time"

	"vecc/internal/ir"
)

// Pass transforms a whole module in place.
type Pass interface {
	Name() string
	Run(m *ir.Module)
}

// FuncPass transforms one function in place.
type FuncPass interface {
	Name() string
	RunOnFunc(f *ir.Func, m *ir.Module)
}

// Manager runs module-scoped passes in registration order. Seeded
// configuration values (target info, backend config) are visible to every
// pass through Config.
type Manager struct {
	name    string
	passes  []Pass
	configs map[string]any
}

func NewManager(name string) *Manager {
	return &Manager{name: name, configs: make(map[string]any)}
}

// Add appends a pass to the sequence.
func (m *Manager) Add(p Pass) { m.passes = append(m.passes, p) }

// AddConfig seeds a configuration value retrievable by key.
func (m *Manager) AddConfig(key string, v any) { m.configs[key] = v }

// Config returns a seeded configuration value, or nil.
func (m *Manager) Config(key string) any { return m.configs[key] }

// Run executes the sequence once over the module.
func (m *Manager) Run(mod *ir.Module) {
	for _, p := range m.passes {
		start := time.Now()
		p.Run(mod)
		if TimePassesEnabled {
			recordPassTime(p.Name(), time.Since(start))
		}
	}
}

// FuncManager runs function-scoped passes in registration order.
type FuncManager struct {
	name    string
	passes  []FuncPass
	configs map[string]any
}

func NewFuncManager(name string) *FuncManager {
	return &FuncManager{name: name, configs: make(map[string]any)}
}

func (m *FuncManager) Add(p FuncPass) { m.passes = append(m.passes, p) }

func (m *FuncManager) AddConfig(key string, v any) { m.configs[key] = v }

func (m *FuncManager) Config(key string) any { return m.configs[key] }

// Run executes the sequence once over one function.
func (m *FuncManager) Run(f *ir.Func, mod *ir.Module) {
	for _, p := range m.passes {
		start := time.Now()
		p.RunOnFunc(f, mod)
		if TimePassesEnabled {
			recordPassTime(p.Name(), time.Since(start))
		}
	}
}

// Configuration keys for seeded values.
const (
	ConfigTargetInfo    = "target-info"
	ConfigBackend       = "backend-config"
	ConfigTargetLibinfo = "target-library-info"
)
