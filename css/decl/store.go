package decl

import (
	"slices"

	"cssdecl/css/props"
	"cssdecl/css/value"
)

// entry is a single longhand assignment. Entries written by one shorthand
// call share run id and are kept together, superseded members of a run are
// retained as long as they may be needed to restore or recombine it.
type entry struct {
	name      string
	val       value.Value
	important bool
	// source is the shorthand which produced the value, empty for explicit
	// assignments.
	source string
	run    int
	// live is false for values overridden later but still remembered.
	live bool
	seq  int
}

func (e *entry) explicit() bool {
	return e.source == ""
}

// store keeps entries in declaration order. At most one live entry exists
// per name.
type store struct {
	entries []entry
	runs    int
	seq     int
}

func (s *store) reset() {
	s.entries = s.entries[:0]
}

func (s *store) next() int {
	s.seq++
	return s.seq
}

// live returns index of live entry for name or -1.
func (s *store) live(name string) int {
	for i := range s.entries {
		if s.entries[i].live && s.entries[i].name == name {
			return i
		}
	}
	return -1
}

// guarded reports whether normal priority write to name has to be ignored.
func (s *store) guarded(name string, important bool) bool {
	i := s.live(name)
	return i >= 0 && s.entries[i].important && !important
}

// setExplicit assigns longhand value, it reports false when assignment was
// ignored because of priority.
func (s *store) setExplicit(name string, v value.Value, important bool) bool {
	if s.guarded(name, important) {
		return false
	}
	if i := s.live(name); i >= 0 {
		e := &s.entries[i]
		if e.explicit() {
			e.val, e.important, e.seq = v, important, s.next()
			return true
		}
		e.live = false
	}
	s.entries = append(s.entries, entry{name: name, val: v, important: important, live: true, seq: s.next()})
	s.gc()
	return true
}

// setRun stores values produced by shorthand d. When every affected
// longhand still belongs to a single previous run of d that run is updated in
// place, otherwise new run is appended.
func (s *store) setRun(d *props.Descriptor, vals map[string]value.Value, important bool) {
	skip := make(map[string]bool, len(d.Longhands))
	for _, name := range d.Longhands {
		skip[name] = s.guarded(name, important)
	}

	if run := s.reusableRun(d, skip); run > 0 {
		for i := range s.entries {
			e := &s.entries[i]
			if e.run != run {
				continue
			}
			e.val, e.important, e.seq = vals[e.name], important, s.next()
		}
		s.gc()
		return
	}

	drop := make(map[int]bool)
	for _, name := range d.Longhands {
		if skip[name] {
			continue
		}
		if i := s.live(name); i >= 0 {
			if s.entries[i].explicit() {
				drop[i] = true
			} else {
				s.entries[i].live = false
			}
		}
	}
	if len(drop) > 0 {
		kept := s.entries[:0]
		for i, e := range s.entries {
			if !drop[i] {
				kept = append(kept, e)
			}
		}
		s.entries = kept
	}

	s.runs++
	for _, name := range d.Longhands {
		s.entries = append(s.entries, entry{
			name:      name,
			val:       vals[name],
			important: important,
			source:    d.Name,
			run:       s.runs,
			live:      !skip[name],
			seq:       s.next(),
		})
	}
	s.gc()
}

// reusableRun returns id of the run of d owning every writable longhand, 0
// if there is none.
func (s *store) reusableRun(d *props.Descriptor, skip map[string]bool) int {
	run := 0
	for _, name := range d.Longhands {
		if skip[name] {
			continue
		}
		i := s.live(name)
		if i < 0 || s.entries[i].source != d.Name {
			return 0
		}
		switch {
		case run == 0:
			run = s.entries[i].run
		case run != s.entries[i].run:
			return 0
		}
	}
	return run
}

// removeExplicit deletes explicit longhand assignment and brings back the
// most recent shorthand contribution for the same name.
func (s *store) removeExplicit(name string) (value.Value, bool) {
	i := s.live(name)
	if i < 0 || !s.entries[i].explicit() {
		return value.Value{}, false
	}
	v := s.entries[i].val
	s.entries = slices.Delete(s.entries, i, i+1)

	if j := s.latestShadow(name); j >= 0 {
		s.entries[j].live = true
	}
	s.gc()
	return v, true
}

// removeSource deletes everything shorthand d produced and returns the most
// recent contributions per longhand.
func (s *store) removeSource(d *props.Descriptor) map[string]value.Value {
	removed := make(map[string]value.Value, len(d.Longhands))
	seqs := make(map[string]int, len(d.Longhands))
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.source != d.Name {
			kept = append(kept, e)
			continue
		}
		if e.seq > seqs[e.name] {
			removed[e.name], seqs[e.name] = e.val, e.seq
		}
	}
	s.entries = kept
	s.gc()
	return removed
}

func (s *store) latestShadow(name string) int {
	j := -1
	for k := range s.entries {
		e := &s.entries[k]
		if e.name == name && !e.live && (j < 0 || e.seq > s.entries[j].seq) {
			j = k
		}
	}
	return j
}

// gc forgets superseded entries nobody can use anymore. Superseded entry
// survives while its run has live members or while it is the value to be
// restored when explicit override of that name goes away.
func (s *store) gc() {
	liveRuns := make(map[int]bool)
	liveSource := make(map[string]string)
	for _, e := range s.entries {
		if e.live {
			liveRuns[e.run] = true
			liveSource[e.name] = e.source
		}
	}

	latest := make(map[string]int)
	for i, e := range s.entries {
		if e.live {
			continue
		}
		if j, ok := latest[e.name]; !ok || e.seq > s.entries[j].seq {
			latest[e.name] = i
		}
	}

	kept := s.entries[:0]
	for i, e := range s.entries {
		if !e.live {
			src, ok := liveSource[e.name]
			if !ok {
				continue
			}
			if !liveRuns[e.run] && (src != "" || latest[e.name] != i) {
				continue
			}
		}
		kept = append(kept, e)
	}
	s.entries = kept
}

// members returns all entries of the run in order.
func (s *store) members(run int) []entry {
	var out []entry
	for _, e := range s.entries {
		if e.run == run {
			out = append(out, e)
		}
	}
	return out
}
