package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nonibytes/docexpr/internal/cli/commands"
	"github.com/nonibytes/docexpr/internal/cliopt"
)

// Execute runs the CLI and returns an exit code.
func Execute(argv []string) int {
	return run(argv, os.Stdout, os.Stderr)
}

func run(argv []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var usage *commands.UsageError
	if errors.As(err, &usage) || strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintf(stderr, "%v\n\n", err)
		fmt.Fprintln(stderr, `Run "docexpr --help" for usage.`)
		return 2
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}

func newRootCmd() *cobra.Command {
	g := cliopt.DefaultGlobalOptions()

	root := &cobra.Command{
		Use:   "docexpr",
		Short: "Compile typed predicates and updates into document database queries",
		Long: `docexpr compiles Go-like predicates over a document schema into filter
documents, and field assignments into update documents. Output is relaxed
Extended JSON unless --canonical is set.

Configuration is read from --config and DOCEXPR_* environment variables
(e.g. DOCEXPR_LOG_LEVEL, DOCEXPR_MONGO_URI); flags win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &commands.UsageError{Err: err}
	})
	cliopt.BindGlobalFlags(root, &g)

	root.AddCommand(
		commands.NewFilterCmd(&g),
		commands.NewUpdateCmd(&g),
		commands.NewRemoveCmd(&g),
		commands.NewResolveCmd(&g),
		commands.NewSchemaCmd(&g),
	)
	return root
}
