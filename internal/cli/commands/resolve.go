package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nonibytes/docexpr/internal/cliopt"
	"github.com/nonibytes/docexpr/internal/cliutil"
)

func NewResolveCmd(g *cliopt.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "resolve <Member.Chain>",
		Short:   "Print the stored field path of a member chain",
		Example: `  docexpr --schema tasks.json --naming camel resolve Address.City`,
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cliutil.Setup(*g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer env.Logger.Sync()

			fp, err := env.Translator.Resolve(cliutil.Selector(args[0]))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if env.Format == cliutil.FormatJSON {
				cliutil.PrintJSON(w, map[string]any{
					"selector": args[0],
					"path":     fp.Path,
					"type":     fp.Leaf.Type,
				})
				return nil
			}
			fmt.Fprintf(w, "%s (%s)\n", fp.Path, fp.Leaf.Type)
			return nil
		},
	}
}

func NewSchemaCmd(g *cliopt.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Validate the schema and print it as JSON",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cliutil.Setup(*g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer env.Logger.Sync()

			b, err := env.Schema.ToJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}
