package cliutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nonibytes/docexpr/docexpr"
	"github.com/nonibytes/docexpr/docexpr/collection"
	"github.com/nonibytes/docexpr/docexpr/expr"
	"github.com/nonibytes/docexpr/docexpr/mapping"
	"github.com/nonibytes/docexpr/internal/cliopt"
)

type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func ParseOutputFormat(s string) OutputFormat {
	switch OutputFormat(s) {
	case FormatText, FormatJSON:
		return OutputFormat(s)
	default:
		return FormatText
	}
}

func PrintJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

// PrintDoc writes doc as one line of Extended JSON
func PrintDoc(w io.Writer, doc any, canonical bool) error {
	s, err := docexpr.RenderJSON(doc, canonical)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, s)
	return nil
}

// Env is what every command needs: configuration, a logger and a
// translator for the schema
type Env struct {
	Config     *docexpr.Config
	Logger     *zap.Logger
	Schema     mapping.Schema
	Translator *docexpr.Translator
	Canonical  bool
	Format     OutputFormat
}

// Setup loads configuration, applies flag overrides and builds the
// translator. Logs go to stderr.
func Setup(g cliopt.GlobalOptions, stderr io.Writer) (*Env, error) {
	cfg, err := docexpr.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	if g.Naming != "" {
		cfg.Naming = g.Naming
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.SchemaPath != "" {
		cfg.Schema = g.SchemaPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Schema == "" {
		return nil, docexpr.NewError(docexpr.ErrConfig, "no schema: pass --schema or set schema in the config")
	}

	logger, err := cfg.Log.BuildWithOutput(zapcore.AddSync(stderr))
	if err != nil {
		return nil, err
	}

	schema, err := mapping.LoadSchema(cfg.Schema)
	if err != nil {
		return nil, docexpr.ConfigError("load schema", err)
	}
	// An explicit flag wins over the schema's own convention
	if g.Naming != "" || schema.Naming == "" {
		schema = schema.WithNaming(mapping.NameConvention(cfg.Naming))
	}

	opts, err := cfg.Options(logger)
	if err != nil {
		return nil, err
	}

	return &Env{
		Config:     cfg,
		Logger:     logger,
		Schema:     schema,
		Translator: docexpr.New(schema.Type(), opts),
		Canonical:  g.Canonical || cfg.Canonical,
		Format:     ParseOutputFormat(g.Format),
	}, nil
}

// Selector turns "Address.City" into the member chain x.Address.City. A
// leading "x." is accepted.
func Selector(s string) expr.Expr {
	s = strings.TrimPrefix(strings.TrimSpace(s), expr.DefaultParamName+".")
	return expr.Field(strings.Split(s, ".")...)
}

// Literal parses a value flag. Anything that is not a literal is taken as a
// plain string, so --set Name=U1 needs no quoting.
func Literal(s string) any {
	v, err := expr.ParseLiteral(s)
	if err != nil {
		return s
	}
	return v
}

// Assignment splits "Field=value"
func Assignment(s string) (expr.Expr, any, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return nil, nil, fmt.Errorf("invalid assignment %q (expected Field=value)", s)
	}
	return Selector(name), Literal(value), nil
}

// OpenCollection connects to the configured server. The returned func
// disconnects.
func OpenCollection(ctx context.Context, env *Env, g cliopt.GlobalOptions) (*collection.Collection[bson.M], func(), error) {
	uri := firstNonEmpty(g.MongoURI, env.Config.Mongo.URI)
	db := firstNonEmpty(g.Database, env.Config.Mongo.Database)
	name := firstNonEmpty(g.Collection, env.Schema.Collection)
	switch {
	case uri == "":
		return nil, nil, docexpr.NewError(docexpr.ErrConfig, "no mongo uri: pass --mongo-uri or set mongo.uri")
	case db == "":
		return nil, nil, docexpr.NewError(docexpr.ErrConfig, "no database: pass --database or set mongo.database")
	case name == "":
		return nil, nil, docexpr.NewError(docexpr.ErrConfig, "no collection: pass --collection or set collection in the schema")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, docexpr.ExecutionError("connect", err)
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			env.Logger.Warn("disconnect failed", zap.Error(err))
		}
	}

	exec := collection.NewMongoExecutor(client.Database(db).Collection(name))
	env.Logger.Debug("connected", zap.String("database", db), zap.String("collection", name))
	return collection.NewWithTranslator[bson.M](env.Translator, exec), closeFn, nil
}

// WriteConcern returns the write concern option, if one is configured
func WriteConcern(env *Env, g cliopt.GlobalOptions) ([]collection.Option, error) {
	wc, err := collection.ParseWriteConcern(firstNonEmpty(g.WriteConcern, env.Config.Mongo.WriteConcern))
	if err != nil || wc == nil {
		return nil, err
	}
	return []collection.Option{collection.WithWriteConcern(wc)}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
