// Package gqlfield assembles graphql-go field configs from the
// registrations held in a gqlschema.Registry: argument coercion, return
// type mapping, and the wrapped resolver with its directive/middleware
// chain (the Field Builder).
package gqlfield

import (
	"fmt"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

// Decode converts a raw, graphql-go-coerced value (maps, slices, and
// scalars) into the schema's decoded representation. Struct nodes
// decode to map[string]any; a Transformation node with a non-nil Decode
// func runs it; everything else passes through unchanged.
func Decode(node gqlschema.Node, raw any) (any, error) {
	switch v := node.(type) {
	case gqlschema.PropertySignatureNode:
		return Decode(v.Inner, raw)

	case gqlschema.NullOrNode:
		if raw == nil {
			return nil, nil
		}
		return Decode(v.Inner, raw)
	case gqlschema.UndefinedOrNode:
		if raw == nil {
			return nil, nil
		}
		return Decode(v.Inner, raw)
	case gqlschema.OptionWrappedNode:
		if raw == nil {
			return nil, nil
		}
		return Decode(v.Decoded, raw)

	case gqlschema.RefinementNode:
		return Decode(v.Base, raw)
	case gqlschema.BrandNode:
		return Decode(v.Base, raw)
	case gqlschema.DeclarationNode:
		return Decode(v.Unwrap(), raw)
	case gqlschema.SuspendNode:
		return Decode(v.Resolve(), raw)

	case gqlschema.TransformationNode:
		if v.Decode == nil {
			return raw, nil
		}
		decoded, err := v.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("gqlfield: decode %q: %w", node.Identifier(), err)
		}
		return decoded, nil

	case gqlschema.ArrayNode:
		if raw == nil {
			return nil, nil
		}
		raws, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("gqlfield: expected list, got %T", raw)
		}
		out := make([]any, len(raws))
		for i, item := range raws {
			d, err := Decode(v.Elem, item)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil

	case gqlschema.StructNode:
		if raw == nil {
			return nil, nil
		}
		rawMap, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("gqlfield: expected input object, got %T", raw)
		}
		out := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			fv, present := rawMap[f.Name]
			if !present {
				if f.Default != nil {
					out[f.Name] = f.Default
				}
				continue
			}
			d, err := Decode(f.Node, fv)
			if err != nil {
				return nil, fmt.Errorf("gqlfield: field %q: %w", f.Name, err)
			}
			out[f.Name] = d
		}
		return out, nil

	default:
		return raw, nil
	}
}

// Encode is Decode's inverse for a resolver's return value: it converts
// a decoded value back to the wire shape implied by node (§4.3.d
// "encode result per output schema"). Struct/object shapes are left to
// graphql-go's own per-field resolution (each child field has its own
// Resolve), so only Transformation needs special handling here.
func Encode(node gqlschema.Node, value any) (any, error) {
	switch v := node.(type) {
	case gqlschema.PropertySignatureNode:
		return Encode(v.Inner, value)
	case gqlschema.NullOrNode:
		if value == nil {
			return nil, nil
		}
		return Encode(v.Inner, value)
	case gqlschema.UndefinedOrNode:
		if value == nil {
			return nil, nil
		}
		return Encode(v.Inner, value)
	case gqlschema.OptionWrappedNode:
		if value == nil {
			return nil, nil
		}
		return Encode(v.Decoded, value)

	case gqlschema.RefinementNode:
		return Encode(v.Base, value)
	case gqlschema.BrandNode:
		return Encode(v.Base, value)
	case gqlschema.DeclarationNode:
		return Encode(v.Unwrap(), value)
	case gqlschema.SuspendNode:
		return Encode(v.Resolve(), value)

	case gqlschema.TransformationNode:
		if v.Encode == nil {
			return value, nil
		}
		encoded, err := v.Encode(value)
		if err != nil {
			return nil, fmt.Errorf("gqlfield: encode %q: %w", node.Identifier(), err)
		}
		return encoded, nil

	default:
		return value, nil
	}
}

// decodeArgs decodes a root FieldConfigArgument struct; always returns
// a non-nil map so resolvers never need a nil check.
func decodeArgs(argsSchema gqlschema.Node, raw map[string]any) (map[string]any, error) {
	if argsSchema == nil {
		return map[string]any{}, nil
	}
	decoded, err := Decode(argsSchema, any(raw))
	if err != nil {
		return nil, fmt.Errorf("gqlfield: argument decode failed: %w", err)
	}
	m, _ := decoded.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}
