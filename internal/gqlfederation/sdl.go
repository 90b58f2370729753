package gqlfederation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

// typeLinePattern matches the start of a type/interface declaration
// PrintSchema emits, capturing the type name so an entity's @key
// directives can be spliced onto the same line.
var typeLinePattern = regexp.MustCompile(`^(type|interface)\s+(\w+)(\s*\{?)$`)

// fieldLinePattern matches a field definition line inside a type or
// interface block (two-space indent, name, optional args, `: Type`),
// capturing the field name so an entity's FieldDirectives can be
// spliced onto the same line.
var fieldLinePattern = regexp.MustCompile(`^  (\w+)(\(.*\))?:\s*\S+`)

// directiveNamePattern pulls the bare directive name (without its
// leading @ or any argument list) out of a directive string such as
// `@requires(fields: "id")`, for building the @link import list.
var directiveNamePattern = regexp.MustCompile(`^@(\w+)`)

// GenerateSDL renders the federated SDL for a subgraph: the standard
// printed schema with each entity's `type X {` line annotated with its
// @key directives and any extra type-level directives, each of its
// field lines annotated with that field's FieldDirectives, and an
// `extend schema @link(...)` header naming every directive actually
// used (spec.md §4.7 "the _service field returns this subgraph's own
// SDL, annotated with federation directives").
//
// This is a text overlay, not a structural one: the standard
// graphql-go this runtime depends on has no notion of applied
// directives on a built *graphql.Object, so there is nothing to ask
// PrintSchema to emit them from. Overlaying onto its text output is the
// only way to get federation directives into the SDL without forking
// the library.
func GenerateSDL(schema graphql.Schema, reg gqlschema.Registry) string {
	base := PrintSchema(schema)
	if len(reg.Entities) == 0 {
		return base
	}

	lines := strings.Split(base, "\n")
	imports := map[string]bool{}
	var current *gqlschema.EntityReg

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if m := typeLinePattern.FindStringSubmatch(trimmed); m != nil {
			entity, ok := reg.Entities[m[2]]
			if !ok {
				current = nil
				continue
			}
			lines[i] = annotateTypeLine(line, entity, imports)
			current = &entity
			continue
		}

		if trimmed == "}" {
			current = nil
			continue
		}

		if current == nil {
			continue
		}
		if m := fieldLinePattern.FindStringSubmatch(line); m != nil {
			if directives, ok := current.FieldDirectives[m[1]]; ok {
				lines[i] = annotateFieldLine(line, directives, imports)
			}
		}
	}

	names := make([]string, 0, len(imports))
	for name := range imports {
		names = append(names, name)
	}
	sort.Strings(names)

	header := fmt.Sprintf("extend schema @link(url: \"https://specs.apollo.dev/federation/v2.5\", import: %s)\n\n",
		formatImportList(names))
	return header + strings.Join(lines, "\n")
}

// recordImports registers the bare name of every directive in
// directives (e.g. "key" for `@key(fields: "id")`) into imports, so
// GenerateSDL's @link header only ever names directives this SDL
// actually applies.
func recordImports(directives []string, imports map[string]bool) {
	for _, d := range directives {
		if m := directiveNamePattern.FindStringSubmatch(d); m != nil {
			imports["@"+m[1]] = true
		}
	}
}

func annotateTypeLine(line string, entity gqlschema.EntityReg, imports map[string]bool) string {
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	trimmed := strings.TrimRight(line, " \t{")
	brace := ""
	if strings.HasSuffix(strings.TrimSpace(line), "{") {
		brace = " {"
	}

	var directives []string
	keys := append([]string(nil), entity.Keys...)
	sort.Strings(keys)
	for _, k := range keys {
		directives = append(directives, fmt.Sprintf(`@key(fields: "%s")`, k))
	}
	directives = append(directives, entity.Directives...)
	recordImports(directives, imports)

	return indent + strings.TrimSpace(trimmed) + " " + strings.Join(directives, " ") + brace
}

// annotateFieldLine appends directives to a single `  fieldName: Type`
// SDL line, the field-level half of §4.7 step 5's @external/@requires
// /@provides/@override/@shareable/@inaccessible/@interfaceObject/@tag
// overlay (type-level directives are handled by annotateTypeLine).
func annotateFieldLine(line string, directives []string, imports map[string]bool) string {
	recordImports(directives, imports)
	return strings.TrimRight(line, " \t") + " " + strings.Join(directives, " ")
}

func formatImportList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf(`"%s"`, n)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
