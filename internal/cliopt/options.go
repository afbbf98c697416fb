package cliopt

import "github.com/spf13/cobra"

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
// Empty values leave the loaded configuration untouched.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command router and per-command code.
type GlobalOptions struct {
	ConfigPath string
	SchemaPath string
	Naming     string
	LogLevel   string
	Canonical  bool
	Format     string

	MongoURI     string
	Database     string
	Collection   string
	WriteConcern string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		Format: "text",
	}
}

func BindGlobalFlags(cmd *cobra.Command, g *GlobalOptions) {
	fs := cmd.PersistentFlags()
	fs.StringVarP(&g.ConfigPath, "config", "c", g.ConfigPath, "config file (yaml, json or toml)")
	fs.StringVarP(&g.SchemaPath, "schema", "s", g.SchemaPath, "schema file describing the documents (json or yaml)")
	fs.StringVar(&g.Naming, "naming", g.Naming, "stored name convention: as-is|lower|camel")
	fs.StringVar(&g.LogLevel, "log-level", g.LogLevel, "log level: debug|info|warn|error")
	fs.BoolVar(&g.Canonical, "canonical", g.Canonical, "print canonical instead of relaxed Extended JSON")
	fs.StringVar(&g.Format, "format", g.Format, "output format for results: text|json")

	fs.StringVar(&g.MongoURI, "mongo-uri", g.MongoURI, "mongodb connection string")
	fs.StringVar(&g.Database, "database", g.Database, "database name")
	fs.StringVar(&g.Collection, "collection", g.Collection, "collection name (default: the schema's collection)")
	fs.StringVar(&g.WriteConcern, "write-concern", g.WriteConcern, "write concern: majority or a node count")
}
