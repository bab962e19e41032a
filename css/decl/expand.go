package decl

import (
	"go.uber.org/zap"

	"cssdecl/css/diag"
	"cssdecl/css/props"
	"cssdecl/css/value"
)

// expand assigns every longhand of shorthand sd. CSS-wide keywords, system
// values and values waiting for substitution go to all longhands unchanged, anything
// else has to be parsed by the shorthand family in full or nothing changes.
func (d *Declaration) expand(sd *props.Descriptor, v value.Value, important bool) bool {
	vals := make(map[string]value.Value, len(sd.Longhands))
	switch {
	case v.Keyword != "", v.Pending:
		for _, name := range sd.Longhands {
			vals[name] = v
		}
	case sd.IsSystemValue(v):
		// platform resolves it, longhands have nothing to show on their own
		v.Pending = true
		for _, name := range sd.Longhands {
			vals[name] = v
		}
	default:
		var err error
		if vals, err = sd.Expand(v.Components); err != nil {
			diag.ReportErr(d.eh, sd.Name, value.Errorf(v.String(), "%v", err))
			d.log.Debug("Shorthand rejected", zap.String("property", sd.Name), zap.Error(err))
			return false
		}
	}
	d.store.setRun(sd, vals, important)
	return true
}
