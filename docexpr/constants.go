package docexpr

import "github.com/nonibytes/docexpr/docexpr/mapping"

const (
	DefaultMaxDepth  = 64
	DefaultNaming    = mapping.NameLower
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
	EnvPrefix        = "DOCEXPR"
)
