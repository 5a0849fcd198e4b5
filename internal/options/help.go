package options

import (
	"fmt"
	"io"
)

// PrintHelp renders the options of t carrying any include category as an
// aligned two-column listing. Aliases are folded into their canonical entry.
func PrintHelp(w io.Writer, t *Table, usage, title string, include Category) {
	fmt.Fprintf(w, "%s\n\nUSAGE: %s\n\nOPTIONS:\n", title, usage)

	type row struct{ left, help string }
	var rows []row
	width := 0
	for _, opt := range t.Options() {
		if opt.AliasOf != "" || opt.Categories&include == 0 {
			continue
		}
		left := opt.Spelling
		switch opt.Kind {
		case Joined:
			left += "=" + metaVar(opt)
		case Separate:
			left += " " + metaVar(opt)
		}
		if len(left) > width {
			width = len(left)
		}
		rows = append(rows, row{left: left, help: opt.Help})
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-*s  %s\n", width, r.left, r.help)
	}
}

func metaVar(opt *Option) string {
	if opt.MetaVar != "" {
		return opt.MetaVar
	}
	return "<value>"
}
