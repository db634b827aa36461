package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Redacted replaces the value of any field whose key names a secret.
const Redacted = "***REDACTED***"

var redactKeys = map[string]struct{}{
	"password":    {},
	"passphrase":  {},
	"private_key": {},
	"privatekey":  {},
	"key":         {},
	"mnemonic":    {},
	"phrase":      {},
	"seed":        {},
	"secret":      {},
	"api_key":     {},
	"apikey":      {},
}

// IsSecretKey reports whether a field named key is redacted.
func IsSecretKey(key string) bool {
	_, ok := redactKeys[strings.ToLower(key)]
	return ok
}

// RedactFields returns fields with secret-named values replaced.
func RedactFields(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		if !IsSecretKey(f.Key) {
			continue
		}
		if out == nil {
			out = make([]zapcore.Field, len(fields))
			copy(out, fields)
		}
		out[i] = zap.String(f.Key, Redacted)
	}
	if out == nil {
		return fields
	}
	return out
}

// redactCore scrubs secret fields before they reach the wrapped core.
type redactCore struct {
	zapcore.Core
}

func newRedactCore(core zapcore.Core) zapcore.Core {
	return &redactCore{Core: core}
}

func (c *redactCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactCore{Core: c.Core.With(RedactFields(fields))}
}

func (c *redactCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(ent, RedactFields(fields))
}
