package decl

import (
	"fmt"

	"cssdecl/utils/debug"
)

// Dump writes every remembered entry, superseded ones included, in storage
// order.
func (d *Declaration) Dump(tw *debug.TreeWriter, depth int) {
	tw.Line(depth, "Declaration owner[%d] entries[%d] runs[%d]", d.owner, len(d.store.entries), d.store.runs)
	for i := range d.store.entries {
		e := &d.store.entries[i]
		tw.Field(depth+1, e.name, e.val.String(), e.flags()...)
	}
}

func (e *entry) flags() []string {
	flags := make([]string, 0, 5)
	if e.important {
		flags = append(flags, "important")
	}
	if e.val.Pending {
		flags = append(flags, "pending")
	}
	if !e.explicit() {
		flags = append(flags, fmt.Sprintf("%s run %d", e.source, e.run))
	}
	if !e.live {
		flags = append(flags, "superseded")
	}
	return append(flags, fmt.Sprintf("seq %d", e.seq))
}
