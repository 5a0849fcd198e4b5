package target

import (
	"fmt"
	"strings"
)

// FeatureSet accumulates subtarget features in order and renders them as the
// canonical "+feat,-feat" string.
type FeatureSet struct {
	feats []string
}

// Add appends a feature with its enable state.
func (fs *FeatureSet) Add(name string, enabled bool) {
	marker := "-"
	if enabled {
		marker = "+"
	}
	fs.feats = append(fs.feats, marker+name)
}

// AddList parses a comma-separated auxiliary feature list. Every entry is
// trimmed and must begin with an explicit '+' or '-'; anything else is an
// internal consistency fault, not user input to be diagnosed.
func (fs *FeatureSet) AddList(list string) {
	if list == "" {
		return
	}
	for _, raw := range strings.Split(list, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if name, ok := strings.CutPrefix(entry, "+"); ok {
			fs.Add(name, true)
			continue
		}
		name, ok := strings.CutPrefix(entry, "-")
		if !ok {
			panic(fmt.Sprintf("unexpected feature format: %q", entry))
		}
		fs.Add(name, false)
	}
}

// String renders the accumulated features.
func (fs *FeatureSet) String() string {
	return strings.Join(fs.feats, ",")
}

// parseFeatures decodes a rendered feature string into an enable map.
func parseFeatures(s string) map[string]bool {
	out := make(map[string]bool)
	if s == "" {
		return out
	}
	for _, entry := range strings.Split(s, ",") {
		if name, ok := strings.CutPrefix(entry, "+"); ok {
			out[name] = true
		} else if name, ok := strings.CutPrefix(entry, "-"); ok {
			out[name] = false
		}
	}
	return out
}
