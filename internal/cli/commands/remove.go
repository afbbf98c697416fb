package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nonibytes/docexpr/docexpr/collection"
	"github.com/nonibytes/docexpr/internal/cliopt"
	"github.com/nonibytes/docexpr/internal/cliutil"
)

func NewRemoveCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var (
		where  string
		single bool
		apply  bool
	)

	c := &cobra.Command{
		Use:   "remove",
		Short: "Compile (and optionally run) a removal of the documents matching a predicate",
		Example: `  docexpr --schema tasks.json remove --where 'x.Done && x.Age > 90'
  docexpr --schema tasks.json --mongo-uri mongodb://localhost:27017 --database app remove --where 'x.Done' --apply`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if where == "" {
				return usagef("missing --where")
			}

			env, err := cliutil.Setup(*g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer env.Logger.Sync()

			pred, err := env.Translator.Parse(where)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !apply {
				filter, err := env.Translator.CompileFilter(pred)
				if err != nil {
					return err
				}
				return cliutil.PrintDoc(w, bson.D{
					{Key: "filter", Value: filter},
					{Key: "multi", Value: !single},
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
			if single {
				opts = append(opts, collection.WithRemoveFlags(collection.RemoveSingle))
			}

			res, err := coll.Remove(ctx, pred, opts...)
			if err != nil {
				return err
			}
			if env.Format == cliutil.FormatJSON {
				cliutil.PrintJSON(w, res)
				return nil
			}
			fmt.Fprintf(w, "deleted %d\n", res.Deleted)
			return nil
		},
	}

	fs := c.Flags()
	fs.StringVarP(&where, "where", "w", "", "predicate selecting the documents")
	fs.BoolVar(&single, "single", false, "remove only the first match")
	fs.BoolVar(&apply, "apply", false, "run the removal against the configured collection")
	return c
}
