package config

import (
	"bytes"
	"log/slog"
	"maps"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// evaluate renders string values containing template expressions against
// the merged config scope. Non-string values and plain strings pass
// through untouched. A value that fails to render is returned as-is with a
// diagnostic; resolution itself never fails on a bad expression.
func (r *Resolver) evaluate(key string, value any) any {
	s, ok := value.(string)
	if !ok || !strings.Contains(s, "{{") {
		return value
	}

	tmpl, err := template.New(key).Funcs(sprig.FuncMap()).Parse(s)
	if err != nil {
		slog.Warn("config expression does not parse, using raw value", "key", key, "error", err)
		return value
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r.scope()); err != nil {
		slog.Warn("config expression failed to render, using raw value", "key", key, "error", err)
		return value
	}
	return buf.String()
}

// scope flattens the parent chain's local configs under this resolver's
// own, innermost scope winning, for use as template data.
func (r *Resolver) scope() map[string]any {
	var chain []*Resolver
	for cur := r; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}

	merged := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		maps.Copy(merged, chain[i].Local)
	}
	return merged
}
