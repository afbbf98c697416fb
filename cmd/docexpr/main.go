package main

import (
	"os"

	"github.com/nonibytes/docexpr/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
