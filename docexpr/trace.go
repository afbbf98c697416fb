package docexpr

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// Trace logs msg at debug level when level is enabled
func (t *Translator) Trace(level TraceLevel, msg string, fields ...zap.Field) {
	if !t.opts.Trace.Has(level) {
		return
	}
	t.log.Debug(msg, fields...)
}

// Logger returns the translator's logger
func (t *Translator) Logger() *zap.Logger {
	return t.log
}

// DocField renders doc as relaxed Extended JSON for a log field
func DocField(key string, doc bson.D) zap.Field {
	s, err := RenderJSON(doc, false)
	if err != nil {
		return zap.NamedError(key, err)
	}
	return zap.String(key, s)
}

// RenderJSON renders doc as Extended JSON, canonical or relaxed
func RenderJSON(doc any, canonical bool) (string, error) {
	b, err := bson.MarshalExtJSON(doc, canonical, false)
	if err != nil {
		return "", Wrap(ErrInternalInvariant, "render document", err)
	}
	return string(b), nil
}
