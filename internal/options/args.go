package options

import (
	"fmt"
	"strings"
)

// Arg is one parsed occurrence of an option. Opt is the option as spelled
// (possibly an alias); Canon is its canonical form.
type Arg struct {
	Opt      *Option
	Canon    *Option
	Spelling string
	Value    string
	Index    int
}

// String renders the argument the way it was written, for error messages.
func (a *Arg) String() string {
	switch a.Opt.Kind {
	case Joined:
		return a.Spelling + "=" + a.Value
	case Separate:
		return a.Spelling + " " + a.Value
	}
	return a.Spelling
}

// ArgList is a parsed, possibly filtered, view of one option string.
type ArgList struct {
	table   *Table
	args    []*Arg
	unknown []string
	inputs  []string
}

// Table returns the grammar this list was parsed against.
func (l *ArgList) Table() *Table { return l.table }

// Args returns the parsed arguments in occurrence order.
func (l *ArgList) Args() []*Arg { return l.args }

// Unknown returns tokens that matched no in-category option.
func (l *ArgList) Unknown() []string { return l.unknown }

// Inputs returns positional tokens (no leading dash).
func (l *ArgList) Inputs() []string { return l.inputs }

// Has reports whether any occurrence resolves to the given canonical ID.
func (l *ArgList) Has(id string) bool {
	for _, a := range l.args {
		if a.Canon.ID == id {
			return true
		}
	}
	return false
}

// Last returns the last occurrence among the given canonical IDs, or nil.
// Last-occurrence-wins is the repeat policy for single-valued options.
func (l *ArgList) Last(ids ...string) *Arg {
	for i := len(l.args) - 1; i >= 0; i-- {
		for _, id := range ids {
			if l.args[i].Canon.ID == id {
				return l.args[i]
			}
		}
	}
	return nil
}

// LastValue returns the value of the last occurrence of id, or "".
func (l *ArgList) LastValue(id string) string {
	if a := l.Last(id); a != nil {
		return a.Value
	}
	return ""
}

// Values returns every value of id in occurrence order.
func (l *ArgList) Values(id string) []string {
	var out []string
	for _, a := range l.args {
		if a.Canon.ID == id {
			out = append(out, a.Value)
		}
	}
	return out
}

// Filtered derives a view restricted to options whose canonical form carries
// at least one of the include categories. Unknown and input tokens do not
// survive filtering.
func (l *ArgList) Filtered(include Category) *ArgList {
	out := &ArgList{table: l.table}
	for _, a := range l.args {
		if a.Canon.Categories&include != 0 {
			out.args = append(out.args, a)
		}
	}
	return out
}

// MissingValueError reports a Separate option at the end of the argument
// vector, or any other occurrence lacking its required value.
type MissingValueError struct {
	Spelling string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("option %s is missing its value", e.Spelling)
}

// ParseArgs parses tokens against the table. Options outside the include
// category set, and tokens that match nothing, are collected as unknown
// rather than failing: strictness policy belongs to the caller. The only
// parse-fatal condition is a missing option value.
func ParseArgs(t *Table, argv []string, include Category) (*ArgList, error) {
	list := &ArgList{table: t}
	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		if !strings.HasPrefix(tok, "-") {
			list.inputs = append(list.inputs, tok)
			continue
		}
		if opt, ok := t.exact[tok]; ok {
			arg := &Arg{Opt: opt, Canon: t.Canonical(opt), Spelling: tok, Index: i}
			if opt.Kind == Separate {
				if i+1 >= len(argv) {
					return nil, &MissingValueError{Spelling: tok}
				}
				i++
				arg.Value = argv[i]
			}
			if opt.Categories&include == 0 {
				list.unknown = append(list.unknown, arg.String())
				continue
			}
			list.args = append(list.args, arg)
			continue
		}
		if name, val, found := strings.Cut(tok, "="); found {
			if opt, ok := t.joined[name]; ok {
				arg := &Arg{Opt: opt, Canon: t.Canonical(opt), Spelling: name, Value: val, Index: i}
				if opt.Categories&include == 0 {
					list.unknown = append(list.unknown, arg.String())
					continue
				}
				list.args = append(list.args, arg)
				continue
			}
		}
		list.unknown = append(list.unknown, tok)
	}
	return list, nil
}
