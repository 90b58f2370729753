package gqlfederation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"
)

// graphql-go v0.8.1 has no schema-to-SDL printer (only language/printer,
// which walks AST nodes, not a built *graphql.Schema) — this is a plain
// text-rendering walk of schema.TypeMap(), one print function per kind.

func printDescription(desc string, indent int, out *strings.Builder) {
	if desc == "" {
		return
	}
	if indent > 0 {
		out.WriteString(strings.Repeat(" ", indent))
	}
	if !strings.Contains(desc, "\n") {
		out.WriteString("\"")
		out.WriteString(desc)
		out.WriteString("\"\n")
		return
	}
	out.WriteString("\"\"\"\n")
	for _, d := range strings.Split(desc, "\n") {
		out.WriteString(strings.Repeat(" ", indent))
		out.WriteString(d)
		out.WriteString("\n")
	}
	out.WriteString(strings.Repeat(" ", indent))
	out.WriteString("\"\"\"\n")
}

func printSchemaDefinition(schema graphql.Schema, out *strings.Builder) {
	out.WriteString("schema {\n")
	if schema.QueryType() != nil {
		fmt.Fprintf(out, "  query: %v\n", schema.QueryType().Name())
	}
	if schema.MutationType() != nil {
		fmt.Fprintf(out, "  mutation: %v\n", schema.MutationType().Name())
	}
	if schema.SubscriptionType() != nil {
		fmt.Fprintf(out, "  subscription: %v\n", schema.SubscriptionType().Name())
	}
	out.WriteString("}\n\n")
}

func printEnumDefinitions(enums []*graphql.Enum, out *strings.Builder) {
	sort.Slice(enums, func(i, j int) bool { return enums[i].Name() < enums[j].Name() })

	for _, enum := range enums {
		printDescription(enum.Description(), 0, out)
		fmt.Fprintf(out, "enum %s {\n", enum.Name())

		values := append([]*graphql.EnumValueDefinition(nil), enum.Values()...)
		sort.Slice(values, func(i, j int) bool { return values[i].Name < values[j].Name })
		for _, v := range values {
			printDescription(v.Description, 2, out)
			fmt.Fprintf(out, "  %s\n", v.Name)
		}
		out.WriteString("}\n\n")
	}
}

func printInputObjectDefinitions(inputs []*graphql.InputObject, out *strings.Builder) {
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Name() < inputs[j].Name() })

	for _, input := range inputs {
		printDescription(input.Description(), 0, out)
		fmt.Fprintf(out, "input %s {\n", input.Name())
		printInputFieldDefinitions(input.Fields(), out)
		out.WriteString("}\n\n")
	}
}

func printInputFieldDefinitions(fields graphql.InputObjectFieldMap, out *strings.Builder) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		field := fields[k]
		printDescription(field.Description(), 2, out)
		fmt.Fprintf(out, "  %s: %s\n", field.Name(), field.Type.String())
	}
}

func printInterfaceDefinitions(interfaces []*graphql.Interface, out *strings.Builder) {
	sort.Slice(interfaces, func(i, j int) bool { return interfaces[i].Name() < interfaces[j].Name() })

	for _, intf := range interfaces {
		printDescription(intf.Description(), 0, out)
		fmt.Fprintf(out, "interface %s {\n", intf.Name())
		printFieldDefinitions(intf.Fields(), out)
		out.WriteString("}\n\n")
	}
}

func printObjectDefinitions(objects []*graphql.Object, out *strings.Builder) {
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name() < objects[j].Name() })

	for _, object := range objects {
		printDescription(object.Description(), 0, out)
		fmt.Fprintf(out, "type %s", object.Name())
		if len(object.Interfaces()) > 0 {
			names := make([]string, 0, len(object.Interfaces()))
			for _, i := range object.Interfaces() {
				names = append(names, i.Name())
			}
			out.WriteString(" implements ")
			out.WriteString(strings.Join(names, ", "))
		}
		out.WriteString(" {\n")
		printFieldDefinitions(object.Fields(), out)
		out.WriteString("}\n\n")
	}
}

func printFieldDefinitions(fields graphql.FieldDefinitionMap, out *strings.Builder) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		field := fields[k]
		printDescription(field.Description, 2, out)
		fmt.Fprintf(out, "  %s", field.Name)

		if len(field.Args) > 0 {
			args := make([]string, 0, len(field.Args))
			for _, arg := range field.Args {
				args = append(args, fmt.Sprintf("%s: %s", arg.Name(), arg.Type.Name()))
			}
			fmt.Fprintf(out, "(%s)", strings.Join(args, ", "))
		}

		fmt.Fprintf(out, ": %s", field.Type.Name())
		if field.DeprecationReason != "" {
			fmt.Fprintf(out, " @deprecated(reason: %q)", field.DeprecationReason)
		}
		out.WriteString("\n")
	}
}

func printUnionDefinitions(unions []*graphql.Union, out *strings.Builder) {
	sort.Slice(unions, func(i, j int) bool { return unions[i].Name() < unions[j].Name() })

	for _, union := range unions {
		printDescription(union.Description(), 0, out)
		fmt.Fprintf(out, "union %s = ", union.Name())

		names := make([]string, 0, len(union.Types()))
		for _, t := range union.Types() {
			names = append(names, t.Name())
		}
		sort.Strings(names)
		out.WriteString(strings.Join(names, " | "))
		out.WriteString("\n\n")
	}
}

func printCustomScalars(scalars []*graphql.Scalar, out *strings.Builder) {
	sort.Slice(scalars, func(i, j int) bool { return scalars[i].Name() < scalars[j].Name() })

	for _, scalar := range scalars {
		printDescription(scalar.Description(), 0, out)
		fmt.Fprintf(out, "scalar %s\n\n", scalar.Name())
	}
}

var builtinScalars = map[string]bool{
	"Boolean": true, "Float": true, "ID": true, "Int": true, "String": true,
}

// PrintSchema renders schema's SDL by walking its TypeMap, skipping
// introspection (__-prefixed) and built-in scalar types. graphql-go
// v0.8.1 has no schema-to-SDL printer of its own (only language/printer,
// which walks AST nodes rather than a built *graphql.Schema), so
// callers elsewhere in this module that just need plain SDL text — with
// no federation directives to overlay — use this directly instead of
// reaching for a library function that does not exist. GenerateSDL
// layers federation directives onto this text afterward, since a built
// *graphql.Object here carries no applied-directive metadata for this
// print to emit inline.
func PrintSchema(schema graphql.Schema) string {
	var (
		enums        []*graphql.Enum
		inputObjects []*graphql.InputObject
		interfaces   []*graphql.Interface
		objects      []*graphql.Object
		unions       []*graphql.Union
		scalars      []*graphql.Scalar
	)

	for name, t := range schema.TypeMap() {
		if strings.HasPrefix(name, "__") || builtinScalars[name] {
			continue
		}
		switch v := t.(type) {
		case *graphql.Enum:
			enums = append(enums, v)
		case *graphql.InputObject:
			inputObjects = append(inputObjects, v)
		case *graphql.Interface:
			interfaces = append(interfaces, v)
		case *graphql.Object:
			objects = append(objects, v)
		case *graphql.Union:
			unions = append(unions, v)
		case *graphql.Scalar:
			scalars = append(scalars, v)
		}
	}

	var sdl strings.Builder
	printSchemaDefinition(schema, &sdl)
	printEnumDefinitions(enums, &sdl)
	printInputObjectDefinitions(inputObjects, &sdl)
	printInterfaceDefinitions(interfaces, &sdl)
	printObjectDefinitions(objects, &sdl)
	printUnionDefinitions(unions, &sdl)
	printCustomScalars(scalars, &sdl)

	return strings.TrimSpace(sdl.String())
}
