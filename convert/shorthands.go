package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cssdecl/css/props"
	"cssdecl/state"
)

// Shorthands lists known shorthand properties and longhands they expand
// into. When names are given only those are listed.
func Shorthands(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	var out io.Writer = os.Stdout
	if w := cmd.Root().Writer; w != nil {
		out = w
	}

	names := props.Shorthands()
	if cmd.Args().Len() > 0 {
		names = nil
		for _, n := range cmd.Args().Slice() {
			n = strings.ToLower(n)
			if !props.IsShorthand(n) {
				env.Log.Warn("Not a shorthand property, ignoring", zap.String("name", n))
				continue
			}
			names = append(names, n)
		}
	}
	return listShorthands(out, names, cmd.Bool("verbose"))
}

func listShorthands(w io.Writer, names []string, verbose bool) error {
	for _, name := range names {
		sd, ok := props.Lookup(name)
		if !ok {
			continue
		}
		mark := ""
		if sd.Layered {
			mark = " (layered)"
		}
		if _, err := fmt.Fprintf(w, "%s%s: %s\n", sd.Name, mark, strings.Join(sd.Longhands, " ")); err != nil {
			return err
		}
		if !verbose {
			continue
		}
		if subs := sd.SubShorthands(); len(subs) > 0 {
			sub := make([]string, 0, len(subs))
			for _, s := range subs {
				sub = append(sub, s.Name)
			}
			if _, err := fmt.Fprintf(w, "    includes: %s\n", strings.Join(sub, " ")); err != nil {
				return err
			}
		}
		for _, l := range sd.Longhands {
			def := sd.Default(l)
			if def.IsZero() {
				continue
			}
			if _, err := fmt.Fprintf(w, "    %s: %s\n", l, def); err != nil {
				return err
			}
		}
	}
	return nil
}
