// Package aql manages named AQL query templates.
//
// AQL is the ActivityWatch query language: a query is a list of script
// statements executed server-side once per timeperiod. Templates keep the
// common queries (AFK-filtered window activity, per-app summaries) in one
// place with named placeholders for the bucket IDs, and users can add their
// own in queries.yaml under the awmcp home directory.
package aql

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"awmcp/internal/paths"
)

// Template is one named query with placeholder parameters. Placeholders use
// the {{name}} form inside statements.
type Template struct {
	// Description says what the query computes
	Description string `yaml:"description,omitempty"`

	// Params are the placeholder names the statements expect
	Params []string `yaml:"params,omitempty"`

	// Statements are the AQL lines, in execution order
	Statements []string `yaml:"statements"`
}

// File is the root structure of queries.yaml.
type File struct {
	Version int                 `yaml:"version"`
	Queries map[string]Template `yaml:"queries"`
}

// Library is a resolved set of templates, built-ins merged with any
// user-defined file (user entries win on name collisions).
type Library struct {
	templates map[string]Template
}

var placeholder = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// Builtin returns the built-in template library.
func Builtin() *Library {
	return &Library{templates: map[string]Template{
		"window-events": {
			Description: "Raw window events from one bucket",
			Params:      []string{"window_bucket"},
			Statements: []string{
				`events = query_bucket("{{window_bucket}}");`,
				`RETURN = events;`,
			},
		},
		"active-window": {
			Description: "Window events clipped to periods where the user was not AFK",
			Params:      []string{"window_bucket", "afk_bucket"},
			Statements: []string{
				`events = flood(query_bucket("{{window_bucket}}"));`,
				`not_afk = flood(query_bucket("{{afk_bucket}}"));`,
				`not_afk = filter_keyvals(not_afk, "status", ["not-afk"]);`,
				`events = filter_period_intersect(events, not_afk);`,
				`RETURN = sort_by_duration(events);`,
			},
		},
		"app-summary": {
			Description: "Total time per application",
			Params:      []string{"window_bucket"},
			Statements: []string{
				`events = flood(query_bucket("{{window_bucket}}"));`,
				`merged = merge_events_by_keys(events, ["app"]);`,
				`RETURN = sort_by_duration(merged);`,
			},
		},
		"title-summary": {
			Description: "Total time per application and window title",
			Params:      []string{"window_bucket"},
			Statements: []string{
				`events = flood(query_bucket("{{window_bucket}}"));`,
				`merged = merge_events_by_keys(events, ["app", "title"]);`,
				`RETURN = sort_by_duration(merged);`,
			},
		},
		"afk-summary": {
			Description: "Time split between AFK and active",
			Params:      []string{"afk_bucket"},
			Statements: []string{
				`events = flood(query_bucket("{{afk_bucket}}"));`,
				`merged = merge_events_by_keys(events, ["status"]);`,
				`RETURN = sort_by_duration(merged);`,
			},
		},
	}}
}

// Load merges queries.yaml from the awmcp home directory over the
// built-ins. A missing file yields just the built-ins.
func Load() (*Library, error) {
	path, err := paths.GetQueriesConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get queries config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom merges a queries file from an explicit path over the built-ins.
func LoadFrom(path string) (*Library, error) {
	lib := Builtin()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, fmt.Errorf("failed to read queries config: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse queries config: %w", err)
	}

	for name, tmpl := range file.Queries {
		if len(tmpl.Statements) == 0 {
			return nil, fmt.Errorf("queries config: template %q has no statements", name)
		}
		lib.templates[name] = tmpl
	}
	return lib, nil
}

// Names lists the available template names, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns one template by name.
func (l *Library) Get(name string) (Template, bool) {
	tmpl, ok := l.templates[name]
	return tmpl, ok
}

// Render substitutes params into a named template and returns the finished
// statement list. Every placeholder must be supplied; param values must be
// safe to embed in an AQL string literal.
func (l *Library) Render(name string, params map[string]string) ([]string, error) {
	tmpl, ok := l.templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown query template %q (available: %s)", name, strings.Join(l.Names(), ", "))
	}

	for key, value := range params {
		if strings.ContainsAny(value, "\"\n") {
			return nil, fmt.Errorf("query param %q contains characters not allowed in AQL strings", key)
		}
	}

	var missing []string
	out := make([]string, len(tmpl.Statements))
	for i, stmt := range tmpl.Statements {
		out[i] = placeholder.ReplaceAllStringFunc(stmt, func(m string) string {
			key := placeholder.FindStringSubmatch(m)[1]
			value, ok := params[key]
			if !ok {
				missing = append(missing, key)
				return m
			}
			return value
		})
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("query template %q is missing params: %s", name, strings.Join(dedupe(missing), ", "))
	}
	return out, nil
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
