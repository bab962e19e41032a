package css

import (
	"cssdecl/utils/debug"
)

// Dump returns readable tree of the stylesheet including internal state of
// every declaration block. It exists solely for debug reports.
func (s *Stylesheet) Dump() string {
	if s == nil {
		return "<nil Stylesheet>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Stylesheet[%s] items[%d]", s.ID, len(s.Items))
	dumpItems(tw, 1, s.Items)
	if len(s.Warnings) > 0 {
		tw.Line(0, "Warnings: %d", len(s.Warnings))
		for _, w := range s.Warnings {
			tw.Field(1, "warning", w)
		}
	}
	return tw.String()
}

func dumpItems(tw *debug.TreeWriter, depth int, items []StylesheetItem) {
	for _, item := range items {
		switch {
		case item.Import != nil:
			tw.Field(depth, "@import", *item.Import)
		case item.FontFace != nil:
			tw.Line(depth, "@font-face %q", item.FontFace.Family())
			item.FontFace.Style.Dump(tw, depth+1)
		case item.MediaBlock != nil:
			q := item.MediaBlock.Query
			tw.Line(depth, "@media %q type[%s] features[%d]", q.Raw, q.Type, len(q.Features))
			if q.Negated {
				tw.Line(depth+1, "not")
			}
			for _, f := range q.Features {
				negated := ""
				if f.Negated {
					negated = "not"
				}
				tw.Field(depth+1, "feature", f.Name, negated)
			}
			for _, r := range item.MediaBlock.Rules {
				tw.Line(depth+1, "Rule %q", r.Selector())
				r.Style.Dump(tw, depth+2)
			}
		case item.AtRule != nil:
			ar := item.AtRule
			tw.Line(depth, "%s %q block[%t]", ar.Name, ar.Prelude, ar.Block)
			switch {
			case ar.Style != nil:
				ar.Style.Dump(tw, depth+1)
			case ar.Items != nil:
				dumpItems(tw, depth+1, ar.Items)
			case ar.Raw != "":
				tw.Field(depth+1, "raw", ar.Raw)
			}
		case item.Rule != nil:
			tw.Line(depth, "Rule %q", item.Rule.Selector())
			item.Rule.Style.Dump(tw, depth+1)
		}
	}
}
