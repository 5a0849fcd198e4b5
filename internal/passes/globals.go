package passes

import (
	"strings"
	"sync"
	"time"
)

// The low-level pipeline keeps process-wide mutable state: parsed pass
// options, the pass timing toggle and the statistics toggle. One driver
// invocation owns this state at a time; Acquire serializes invocations and
// Release restores everything on every exit path.

// TimePassesEnabled turns on per-pass timing collection. Global, saved and
// restored by the Guard.
var TimePassesEnabled bool

var (
	globalMu     sync.Mutex
	globalOpts   = map[string][]string{}
	globalToggle = map[string]bool{}

	passTimesMu sync.Mutex
	passTimes   map[string]time.Duration
	passOrder   []string
)

// ParseCommandLine folds an argument vector into the global option state.
// Parsing never fails: tokens are interpreted as "-key=value", "-key value"
// or bare "-toggle"; anything else is kept verbatim under its own key.
// The caller must hold the state through a Guard.
func ParseCommandLine(args []string) {
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if !strings.HasPrefix(tok, "-") {
			globalOpts[tok] = append(globalOpts[tok], "")
			continue
		}
		name := strings.TrimLeft(tok, "-")
		if key, val, found := strings.Cut(name, "="); found {
			globalOpts[key] = append(globalOpts[key], strings.Trim(val, "'"))
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			globalOpts[name] = append(globalOpts[name], args[i+1])
			i++
			continue
		}
		globalToggle[name] = true
		if name == "time-passes" {
			TimePassesEnabled = true
		}
	}
}

// OptionValues returns all values recorded for a key, in occurrence order.
func OptionValues(key string) []string {
	return globalOpts[key]
}

// ToggleSet reports whether a bare toggle was seen.
func ToggleSet(name string) bool {
	return globalToggle[name]
}

// ResetAllOptions clears every recorded occurrence so one invocation cannot
// leak option state into the next.
func ResetAllOptions() {
	globalOpts = map[string][]string{}
	globalToggle = map[string]bool{}
}

// Guard scopes ownership of the global pipeline state. Acquire locks out
// concurrent invocations, snapshots the toggles it may disturb and parses the
// given low-level option string into the global state; Release resets the
// state and restores the snapshot. Release must run on every exit path.
type Guard struct {
	savedTimePasses bool
	released        bool
}

// Acquire takes the global state and parses args into it.
func Acquire(args []string) *Guard {
	globalMu.Lock()
	g := &Guard{savedTimePasses: TimePassesEnabled}
	resetPassTimes()
	ResetAllOptions()
	ParseCommandLine(args)
	return g
}

// Release resets the global state, restores saved toggles and unlocks.
// Safe to call more than once.
func (g *Guard) Release() {
	if g.released {
		return
	}
	g.released = true
	ResetAllOptions()
	TimePassesEnabled = g.savedTimePasses
	statsEnabled = false
	globalMu.Unlock()
}

func resetPassTimes() {
	passTimesMu.Lock()
	passTimes = map[string]time.Duration{}
	passOrder = nil
	passTimesMu.Unlock()
}

func recordPassTime(name string, d time.Duration) {
	passTimesMu.Lock()
	if _, seen := passTimes[name]; !seen {
		passOrder = append(passOrder, name)
	}
	passTimes[name] += d
	passTimesMu.Unlock()
}
