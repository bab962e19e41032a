package decl

import (
	"strings"

	"cssdecl/css/props"
	"cssdecl/css/value"
)

// declaration is a single serialized "name: value" pair.
type declaration struct {
	name      string
	val       value.Value
	important bool
}

func (d declaration) write(sb *strings.Builder, minify bool) {
	sb.WriteString(d.name)
	if minify {
		sb.WriteByte(':')
		sb.WriteString(d.val.Minified())
		if d.important {
			sb.WriteString("!important")
		}
		sb.WriteByte(';')
		return
	}
	sb.WriteString(": ")
	sb.WriteString(d.val.String())
	if d.important {
		sb.WriteString(" ! important")
	}
	sb.WriteString("; ")
}

func (d declaration) size(minify bool) int {
	var sb strings.Builder
	d.write(&sb, minify)
	return sb.Len()
}

func serialize(ds []declaration, minify bool) string {
	var sb strings.Builder
	for _, d := range ds {
		d.write(&sb, minify)
	}
	return sb.String()
}

// collapse turns store into the shortest list of declarations producing the
// same longhand values. Explicit entries are written as is, every shorthand
// run is reconstructed at its position.
func (s *store) collapse(minify bool) []declaration {
	var out []declaration
	done := make(map[int]bool)
	for _, e := range s.entries {
		switch {
		case e.explicit():
			out = append(out, declaration{name: e.name, val: e.val, important: e.important})
		case !done[e.run]:
			done[e.run] = true
			out = append(out, collapseRun(s.members(e.run), minify)...)
		}
	}
	return out
}

type coverage struct {
	decl     declaration
	longhand map[string]bool
}

func collapseRun(members []entry, minify bool) []declaration {
	live := 0
	for _, m := range members {
		if m.live {
			live++
		}
	}
	if live == 0 {
		return nil
	}

	d, _ := props.Lookup(members[0].source)
	important := members[0].important
	if members[0].val.Pending {
		// unresolved text can only go back the way it came
		return []declaration{{name: d.Name, val: members[0].val, important: important}}
	}

	vals := make(map[string]value.Value, len(members))
	isLive := make(map[string]bool, len(members))
	for _, m := range members {
		vals[m.name] = m.val
		isLive[m.name] = m.live
	}

	var candidates []coverage
	for _, sd := range append([]*props.Descriptor{d}, d.SubShorthands()...) {
		part := make(map[string]value.Value, len(sd.Longhands))
		useful := false
		for _, name := range sd.Longhands {
			v, ok := vals[name]
			if !ok {
				break
			}
			part[name] = v
			useful = useful || isLive[name]
		}
		if len(part) != len(sd.Longhands) || !useful {
			continue
		}
		v, ok := sd.Recombine(part)
		if !ok {
			continue
		}
		c := coverage{
			decl:     declaration{name: sd.Name, val: v, important: important},
			longhand: make(map[string]bool, len(sd.Longhands)),
		}
		for _, name := range sd.Longhands {
			c.longhand[name] = true
		}
		candidates = append(candidates, c)
	}

	search := runSearch{members: members, candidates: candidates, minify: minify, important: important}
	search.walk(0, nil, map[string]bool{})
	return search.best
}

// runSearch looks for disjoint set of shorthands which together with
// leftover live longhands gives the shortest text.
type runSearch struct {
	members    []entry
	candidates []coverage
	minify     bool
	important  bool

	best     []declaration
	bestSize int
	found    bool
}

func (rs *runSearch) walk(k int, chosen []int, covered map[string]bool) {
	if k == len(rs.candidates) {
		rs.consider(chosen, covered)
		return
	}
	c := rs.candidates[k]
	disjoint := true
	for name := range c.longhand {
		if covered[name] {
			disjoint = false
			break
		}
	}
	if disjoint {
		for name := range c.longhand {
			covered[name] = true
		}
		rs.walk(k+1, append(chosen, k), covered)
		for name := range c.longhand {
			delete(covered, name)
		}
	}
	rs.walk(k+1, chosen, covered)
}

func (rs *runSearch) consider(chosen []int, covered map[string]bool) {
	ds := make([]declaration, 0, len(chosen)+len(rs.members))
	size := 0
	for _, k := range chosen {
		ds = append(ds, rs.candidates[k].decl)
		size += rs.candidates[k].decl.size(rs.minify)
	}
	for _, m := range rs.members {
		if m.live && !covered[m.name] {
			d := declaration{name: m.name, val: m.val, important: m.important}
			ds = append(ds, d)
			size += d.size(rs.minify)
		}
	}
	if !rs.found || size < rs.bestSize || size == rs.bestSize && len(ds) < len(rs.best) {
		rs.best, rs.bestSize, rs.found = ds, size, true
	}
}
