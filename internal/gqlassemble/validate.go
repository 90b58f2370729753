package gqlassemble

import (
	"fmt"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

// validateInterfaceCoverage checks that every object implementing an
// interface carries all of that interface's fields, in its base struct
// or in its colocated extra fields (§3 "implementers of an interface
// must include all interface fields; implementers are validated at
// build"). Interface-name existence is already checked by
// gqlschema.Registry.Validate (field-name uniqueness within a struct is
// not checked); this needs the merged view of base and extra fields,
// which is why it lives here instead.
func validateInterfaceCoverage(reg gqlschema.Registry) error {
	for _, name := range sortedKeys(reg.Objects) {
		obj := reg.Objects[name]
		s, ok := obj.Schema.(gqlschema.StructNode)
		if !ok || len(obj.Implements) == 0 {
			continue
		}
		fieldNames := map[string]bool{}
		for _, f := range s.Fields {
			fieldNames[f.Name] = true
		}
		for _, extra := range reg.ExtraFields[name] {
			fieldNames[extra.FieldName] = true
		}
		for _, ifaceName := range obj.Implements {
			iface, ok := reg.Interfaces[ifaceName]
			if !ok {
				continue // reported by Registry.Validate
			}
			is, ok := iface.Schema.(gqlschema.StructNode)
			if !ok {
				continue
			}
			for _, ifField := range is.Fields {
				if !fieldNames[ifField.Name] {
					return &gqlschema.BuildError{Reason: fmt.Sprintf(
						"object %q implements %q but is missing field %q", name, ifaceName, ifField.Name,
					)}
				}
			}
		}
	}
	return nil
}
