package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nonibytes/docexpr/docexpr/collection"
	"github.com/nonibytes/docexpr/docexpr/update"
	"github.com/nonibytes/docexpr/internal/cliopt"
	"github.com/nonibytes/docexpr/internal/cliutil"
)

type assignFlag struct {
	name string
	raw  string
}

// assignList collects --set, --inc, --unset and --rename in command-line
// order; every flag appends to the same list
type assignList struct {
	name  string
	items *[]assignFlag
}

func (l assignList) String() string {
	var out []string
	for _, a := range *l.items {
		if a.name == l.name {
			out = append(out, a.raw)
		}
	}
	return "[" + strings.Join(out, ",") + "]"
}

func (l assignList) Set(s string) error {
	*l.items = append(*l.items, assignFlag{name: l.name, raw: s})
	return nil
}

func (l assignList) Type() string {
	return "stringArray"
}

type updateFlags struct {
	where   string
	assigns []assignFlag
	multi   bool
	upsert  bool
	apply   bool
}

func NewUpdateCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var f updateFlags

	c := &cobra.Command{
		Use:   "update",
		Short: "Compile (and optionally run) an update of the documents matching a predicate",
		Long: `Compile (and optionally run) an update of the documents matching a predicate.

Assignments are recorded in the order they appear on the command line, so
modifier groups and the fields inside each group follow that order.`,
		Example: `  docexpr --schema tasks.json update --where 'x.Name == "U1"' --set Summary="Updated summary" --inc Rev=1
  docexpr --schema tasks.json update --where 'x.Done' --unset Summary --multi --apply`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.where == "" {
				return usagef("missing --where")
			}
			b, err := f.builder()
			if err != nil {
				return err
			}

			env, err := cliutil.Setup(*g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer env.Logger.Sync()

			pred, err := env.Translator.Parse(f.where)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !f.apply {
				filter, err := env.Translator.CompileFilter(pred)
				if err != nil {
					return err
				}
				doc, err := env.Translator.CompileUpdate(b)
				if err != nil {
					return err
				}
				return cliutil.PrintDoc(w, bson.D{
					{Key: "filter", Value: filter},
					{Key: "update", Value: doc},
					{Key: "multi", Value: f.multi},
					{Key: "upsert", Value: f.upsert},
				}, env.Canonical)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			coll, closeFn, err := cliutil.OpenCollection(ctx, env, *g)
			if err != nil {
				return err
			}
			defer closeFn()

			opts, err := cliutil.WriteConcern(env, *g)
			if err != nil {
				return err
			}
			var flags collection.UpdateFlags
			if f.multi {
				flags |= collection.UpdateMulti
			}
			if f.upsert {
				flags |= collection.UpdateUpsert
			}
			opts = append(opts, collection.WithUpdateFlags(flags))

			res, err := coll.Update(ctx, pred, b, opts...)
			if err != nil {
				return err
			}
			if env.Format == cliutil.FormatJSON {
				cliutil.PrintJSON(w, res)
				return nil
			}
			fmt.Fprintf(w, "matched %d, modified %d, upserted %d\n", res.Matched, res.Modified, res.Upserted)
			return nil
		},
	}

	fs := c.Flags()
	fs.StringVarP(&f.where, "where", "w", "", "predicate selecting the documents")
	fs.Var(assignList{name: "set", items: &f.assigns}, "set", "Field=value to assign (repeatable)")
	fs.Var(assignList{name: "inc", items: &f.assigns}, "inc", "Field=n to increment by (repeatable)")
	fs.Var(assignList{name: "unset", items: &f.assigns}, "unset", "Field to remove (repeatable)")
	fs.Var(assignList{name: "rename", items: &f.assigns}, "rename", "Field=NewField to rename (repeatable)")
	fs.BoolVar(&f.multi, "multi", false, "update every match instead of the first")
	fs.BoolVar(&f.upsert, "upsert", false, "insert when nothing matches")
	fs.BoolVar(&f.apply, "apply", false, "run the update against the configured collection")
	return c
}

// builder records assignments in command-line order
func (f updateFlags) builder() (*update.Builder, error) {
	b := update.New()
	for _, a := range f.assigns {
		if a.name == "unset" {
			b.Unset(cliutil.Selector(a.raw))
			continue
		}

		sel, v, err := cliutil.Assignment(a.raw)
		if err != nil {
			return nil, &UsageError{Err: err}
		}
		switch a.name {
		case "set":
			b.Set(sel, v)
		case "inc":
			switch v.(type) {
			case int64, float64:
			default:
				return nil, usagef("--inc %s: increment must be a number", a.raw)
			}
			b.Inc(sel, v)
		case "rename":
			to, ok := v.(string)
			if !ok {
				return nil, usagef("--rename %s: target must be a field name", a.raw)
			}
			b.Rename(sel, cliutil.Selector(to))
		}
	}
	return b, nil
}
