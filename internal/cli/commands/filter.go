package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nonibytes/docexpr/internal/cliopt"
	"github.com/nonibytes/docexpr/internal/cliutil"
)

func NewFilterCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var explain bool

	c := &cobra.Command{
		Use:   "filter <predicate>",
		Short: "Compile a predicate into a filter document",
		Example: `  docexpr --schema tasks.json filter 'x.Name == "U1" && x.Age >= 21'
  docexpr --schema tasks.json filter --explain 'x.Tags.Contains("go") || x.Done'`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cliutil.Setup(*g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer env.Logger.Sync()

			pred, err := env.Translator.Parse(args[0])
			if err != nil {
				return err
			}
			out, err := env.Translator.ExplainFilter(pred)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if explain {
				fmt.Fprintln(w, "=== Plan ===")
				for _, step := range out.ExplainSteps {
					fmt.Fprintf(w, "  %s\n", step)
				}
				fmt.Fprintln(w, "=== Filter ===")
			}
			return cliutil.PrintDoc(w, out.Filter, env.Canonical)
		},
	}
	c.Flags().BoolVar(&explain, "explain", false, "show compilation steps")
	return c
}
