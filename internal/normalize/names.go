package normalize

import (
	"regexp"
	"strings"
)

var nonIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// SourceTag builds the printer name stored with every event of a source,
// e.g. prefix "HQ" and model "IM C3000" give "HQ_IM C3000".
func SourceTag(prefix, model string) string {
	prefix = strings.TrimSpace(prefix)
	model = strings.TrimSpace(model)
	if prefix == "" {
		return model
	}
	return prefix + "_" + model
}

// IdentPart lowercases s and replaces everything outside [a-z0-9_] with an
// underscore, truncating to limit bytes. Used to build table names.
func IdentPart(s string, limit int) string {
	s = nonIdent.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
	s = strings.Trim(s, "_")
	if len(s) > limit {
		s = s[:limit]
	}
	return s
}
