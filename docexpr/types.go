package docexpr

import (
	"strings"

	"go.uber.org/zap"

	"github.com/nonibytes/docexpr/docexpr/mapping"
)

// TraceLevel selects which compiled documents are logged
type TraceLevel uint8

const (
	TraceNone    TraceLevel = 0
	TraceQueries TraceLevel = 1 << iota // compiled filters
	TraceUpdates                        // compiled update documents
	TraceDeletes                        // filters sent with a remove
	TraceAll     = TraceQueries | TraceUpdates | TraceDeletes
)

var traceNames = map[string]TraceLevel{
	"none":    TraceNone,
	"queries": TraceQueries,
	"updates": TraceUpdates,
	"deletes": TraceDeletes,
	"all":     TraceAll,
}

// ParseTraceLevel combines trace level names such as "queries" and "deletes"
func ParseTraceLevel(names []string) (TraceLevel, error) {
	var level TraceLevel
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		l, ok := traceNames[n]
		if !ok {
			return TraceNone, NewError(ErrConfig, "unknown trace level "+n)
		}
		level |= l
	}
	return level, nil
}

// Has reports whether every level in want is enabled
func (l TraceLevel) Has(want TraceLevel) bool {
	return want != TraceNone && l&want == want
}

// Options configures a Translator
type Options struct {
	Logger   *zap.Logger            // default zap.NewNop()
	Trace    TraceLevel             // compiled documents to log at debug level
	Naming   mapping.NameConvention // for reflected members without a bson name
	MaxDepth int                    // expression depth accepted by CheckDepth callers
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		Logger:   zap.NewNop(),
		Trace:    TraceNone,
		Naming:   DefaultNaming,
		MaxDepth: DefaultMaxDepth,
	}
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Naming == "" {
		o.Naming = DefaultNaming
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}
