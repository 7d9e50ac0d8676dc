// Package query composes named SQL templates into parameterized statements
// for column-filterable, sortable, paginated datasets and shapes their
// results into the paged response envelope.
//
// Templates mark optional splice points with comments of the form
// /*@name*/. Composition replaces each marker with a fragment that uses
// only `?` placeholders, and collects the bound arguments in textual order;
// user-supplied values never become SQL text. Markers left unused collapse
// to nothing, so a template is valid SQL with or without its filters.
package query

import (
	"regexp"
	"strings"
)

var markerPattern = regexp.MustCompile(`/\*@([A-Za-z0-9_]+)\*/`)

// Query is a composed statement and its ordered bind arguments.
type Query struct {
	SQL  string
	Args []any
}

type fragment struct {
	text string
	args []any
}

// Builder collects fragments for the markers of one template.
type Builder struct {
	template  string
	fragments map[string]fragment
}

// NewBuilder starts composing template.
func NewBuilder(template string) *Builder {
	return &Builder{template: template, fragments: make(map[string]fragment)}
}

// HasMarker reports whether the template contains the marker name.
func (b *Builder) HasMarker(name string) bool {
	return strings.Contains(b.template, "/*@"+name+"*/")
}

// Set assigns text and its arguments to the marker name. Setting a marker
// the template lacks is a no-op at Build time.
func (b *Builder) Set(name, text string, args ...any) {
	b.fragments[name] = fragment{text: text, args: args}
}

// Build splices every fragment into its marker's first occurrence and
// returns the statement with arguments ordered by placeholder position.
func (b *Builder) Build() Query {
	matches := markerPattern.FindAllStringSubmatchIndex(b.template, -1)
	if len(matches) == 0 {
		return Query{SQL: b.template}
	}

	used := make(map[string]bool, len(b.fragments))
	var sb strings.Builder
	var args []any
	last := 0
	for _, m := range matches {
		sb.WriteString(b.template[last:m[0]])
		last = m[1]

		name := b.template[m[2]:m[3]]
		frag, ok := b.fragments[name]
		if !ok || used[name] {
			continue
		}
		used[name] = true
		sb.WriteString(frag.text)
		args = append(args, frag.args...)
	}
	sb.WriteString(b.template[last:])

	return Query{SQL: sb.String(), Args: args}
}

// placeholders returns n comma-separated `?` placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
