// Package options implements the two option grammars of the driver: the
// public (API) grammar and the internal (debug) grammar. Each grammar is an
// independently loaded table mapping canonical option identifiers to accepted
// spellings and category tags; argument lists are filtered by set-intersection
// over category tags after alias resolution.
package options

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

//go:embed tables/api.toml
var apiTableTOML []byte

//go:embed tables/internal.toml
var internalTableTOML []byte

// Category is a bit-set of option grammar categories.
type Category uint32

const (
	VCApi Category = 1 << iota
	IGCApi
	IgcmcApi
	VCInternal
	IGCInternal
)

var categoryNames = map[string]Category{
	"vc-api":       VCApi,
	"igc-api":      IGCApi,
	"igcmc-api":    IgcmcApi,
	"vc-internal":  VCInternal,
	"igc-internal": IGCInternal,
}

// Kind describes how an option consumes its value.
type Kind uint8

const (
	// Flag takes no value.
	Flag Kind = iota
	// Joined takes a value after '=': -opt=value.
	Joined
	// Separate takes the next token as its value: -opt value.
	Separate
)

var kindNames = map[string]Kind{
	"flag":     Flag,
	"joined":   Joined,
	"separate": Separate,
}

// Option is one entry of a table.
type Option struct {
	ID         string
	Spelling   string
	Kind       Kind
	Categories Category
	AliasOf    string
	Help       string
	MetaVar    string
}

// Table is one loaded option grammar.
type Table struct {
	opts     []*Option
	byID     map[string]*Option
	exact    map[string]*Option // Flag and Separate spellings
	joined   map[string]*Option // Joined spellings, keyed without '='
}

type tableFile struct {
	Option []struct {
		ID         string   `toml:"id"`
		Spelling   string   `toml:"spelling"`
		Kind       string   `toml:"kind"`
		Categories []string `toml:"categories"`
		AliasOf    string   `toml:"alias-of"`
		Help       string   `toml:"help"`
		MetaVar    string   `toml:"metavar"`
	} `toml:"option"`
}

// Load parses a TOML option table document.
func Load(data []byte) (*Table, error) {
	var file tableFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("option table: %w", err)
	}
	t := &Table{
		byID:   make(map[string]*Option),
		exact:  make(map[string]*Option),
		joined: make(map[string]*Option),
	}
	for _, raw := range file.Option {
		kind, ok := kindNames[raw.Kind]
		if !ok {
			return nil, fmt.Errorf("option %s: unknown kind %q", raw.ID, raw.Kind)
		}
		var cats Category
		for _, c := range raw.Categories {
			bit, ok := categoryNames[c]
			if !ok {
				return nil, fmt.Errorf("option %s: unknown category %q", raw.ID, c)
			}
			cats |= bit
		}
		opt := &Option{
			ID:         raw.ID,
			Spelling:   raw.Spelling,
			Kind:       kind,
			Categories: cats,
			AliasOf:    raw.AliasOf,
			Help:       raw.Help,
			MetaVar:    raw.MetaVar,
		}
		if _, dup := t.byID[opt.ID]; dup {
			return nil, fmt.Errorf("duplicate option id %q", opt.ID)
		}
		t.opts = append(t.opts, opt)
		t.byID[opt.ID] = opt
		switch kind {
		case Joined:
			t.joined[opt.Spelling] = opt
		default:
			t.exact[opt.Spelling] = opt
		}
	}
	for _, opt := range t.opts {
		if opt.AliasOf == "" {
			continue
		}
		if _, ok := t.byID[opt.AliasOf]; !ok {
			return nil, fmt.Errorf("option %s: alias target %q not found", opt.ID, opt.AliasOf)
		}
	}
	return t, nil
}

func mustLoad(data []byte, name string) *Table {
	t, err := Load(data)
	if err != nil {
		panic(fmt.Sprintf("embedded %s option table is broken: %v", name, err))
	}
	return t
}

var (
	apiTable      = mustLoad(apiTableTOML, "api")
	internalTable = mustLoad(internalTableTOML, "internal")
)

// API returns the public option grammar table.
func API() *Table { return apiTable }

// Internal returns the internal option grammar table.
func Internal() *Table { return internalTable }

// Lookup returns the option with the given canonical ID.
func (t *Table) Lookup(id string) *Option {
	return t.byID[id]
}

// Canonical resolves an option through its alias chain.
func (t *Table) Canonical(o *Option) *Option {
	for o.AliasOf != "" {
		next := t.byID[o.AliasOf]
		if next == nil || next == o {
			break
		}
		o = next
	}
	return o
}

// Options returns all options sorted by spelling, for help rendering.
func (t *Table) Options() []*Option {
	out := make([]*Option, len(t.opts))
	copy(out, t.opts)
	sort.Slice(out, func(i, j int) bool { return out[i].Spelling < out[j].Spelling })
	return out
}
