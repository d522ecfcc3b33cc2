package synth

import (
	"fmt"

	"github.com/99designs/gqlgen/graphql/introspection"
	"github.com/vektah/gqlparser/v2/ast"
)

// isIntrospectionOnly reports whether every top-level response key of the
// operation resolves to __schema, __type, or __typename. Anything else
// (a single non-introspection field mixed in) sends the whole operation
// down the random synthesis path instead, per the documented limitation.
func isIntrospectionOnly(op *ast.OperationDefinition, fragments ast.FragmentDefinitionList) bool {
	groups := collectTopLevel(op.SelectionSet, fragments)
	if len(groups) == 0 {
		return false
	}
	for _, g := range groups {
		switch g.occurrences[0].Name {
		case "__schema", "__type", "__typename":
		default:
			return false
		}
	}
	return true
}

// executeIntrospection computes the real answer to a pure introspection
// query against schema, using gqlgen's introspection package (the same
// type wrapper gqlgen's own generated resolvers use) rather than
// hand-rolling __Type/__Field projections. vars is threaded through the
// whole projection chain so arguments anywhere in the selection
// (`__type(name: $n)`, `fields(includeDeprecated: $x)`) coerce against
// the request's variables.
func executeIntrospection(schema *ast.Schema, selSet ast.SelectionSet, fragments ast.FragmentDefinitionList, vars map[string]interface{}) (map[string]interface{}, error) {
	introspectionSchema := introspection.WrapSchema(schema)

	groups := collectTopLevel(selSet, fragments)
	out := make(map[string]interface{}, len(groups))

	for _, g := range groups {
		first := g.occurrences[0]
		switch first.Name {
		case "__typename":
			rootName := "Query"
			if schema.Query != nil {
				rootName = schema.Query.Name
			}
			out[g.responseKey] = rootName
		case "__schema":
			value, err := projectSchema(introspectionSchema, g.mergedSelectionSet(), fragments, vars)
			if err != nil {
				return nil, err
			}
			out[g.responseKey] = value
		case "__type":
			name, err := stringArg(first, "name", vars)
			if err != nil {
				return nil, err
			}
			def := schema.Types[name]
			if def == nil {
				out[g.responseKey] = nil
				continue
			}
			typ := introspection.WrapTypeFromDef(schema, def)
			value, err := projectType(typ, g.mergedSelectionSet(), fragments, vars)
			if err != nil {
				return nil, err
			}
			out[g.responseKey] = value
		}
	}
	return out, nil
}

func stringArg(f *ast.Field, name string, vars map[string]interface{}) (string, error) {
	arg := f.Arguments.ForName(name)
	if arg == nil {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	v, err := arg.Value.Value(vars)
	if err != nil {
		return "", fmt.Errorf("coerce argument %q: %w", name, err)
	}
	s, _ := v.(string)
	return s, nil
}

func boolArg(f *ast.Field, name string, vars map[string]interface{}, def bool) bool {
	arg := f.Arguments.ForName(name)
	if arg == nil {
		return def
	}
	v, err := arg.Value.Value(vars)
	if err != nil {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func projectSchema(s *introspection.Schema, selSet ast.SelectionSet, fragments ast.FragmentDefinitionList, vars map[string]interface{}) (map[string]interface{}, error) {
	groups := collectTopLevel(selSet, fragments)
	out := make(map[string]interface{}, len(groups))
	for _, g := range groups {
		first := g.occurrences[0]
		switch first.Name {
		case "types":
			var list []interface{}
			for _, t := range s.Types() {
				t := t
				projected, err := projectType(&t, g.mergedSelectionSet(), fragments, vars)
				if err != nil {
					return nil, err
				}
				list = append(list, projected)
			}
			out[g.responseKey] = list
		case "queryType":
			out[g.responseKey] = mustProjectTypePtr(s.QueryType(), g.mergedSelectionSet(), fragments, vars)
		case "mutationType":
			out[g.responseKey] = mustProjectTypePtr(s.MutationType(), g.mergedSelectionSet(), fragments, vars)
		case "subscriptionType":
			out[g.responseKey] = mustProjectTypePtr(s.SubscriptionType(), g.mergedSelectionSet(), fragments, vars)
		case "directives":
			var list []interface{}
			for _, d := range s.Directives() {
				d := d
				list = append(list, projectDirective(&d, g.mergedSelectionSet(), fragments, vars))
			}
			out[g.responseKey] = list
		}
	}
	return out, nil
}

func mustProjectTypePtr(t *introspection.Type, selSet ast.SelectionSet, fragments ast.FragmentDefinitionList, vars map[string]interface{}) interface{} {
	if t == nil {
		return nil
	}
	projected, err := projectType(t, selSet, fragments, vars)
	if err != nil {
		return nil
	}
	return projected
}

func projectType(t *introspection.Type, selSet ast.SelectionSet, fragments ast.FragmentDefinitionList, vars map[string]interface{}) (map[string]interface{}, error) {
	if t == nil {
		return nil, nil
	}
	groups := collectTopLevel(selSet, fragments)
	out := make(map[string]interface{}, len(groups))
	for _, g := range groups {
		first := g.occurrences[0]
		switch first.Name {
		case "kind":
			out[g.responseKey] = t.Kind()
		case "name":
			if name := t.Name(); name != nil {
				out[g.responseKey] = *name
			} else {
				out[g.responseKey] = nil
			}
		case "description":
			out[g.responseKey] = t.Description()
		case "specifiedByURL":
			out[g.responseKey] = t.SpecifiedByURL()
		case "fields":
			includeDeprecated := boolArg(first, "includeDeprecated", vars, false)
			var list []interface{}
			for _, f := range t.Fields(includeDeprecated) {
				f := f
				list = append(list, projectField(&f, g.mergedSelectionSet(), fragments, vars))
			}
			out[g.responseKey] = list
		case "interfaces":
			var list []interface{}
			for _, i := range t.Interfaces() {
				i := i
				projected, err := projectType(&i, g.mergedSelectionSet(), fragments, vars)
				if err != nil {
					return nil, err
				}
				list = append(list, projected)
			}
			out[g.responseKey] = list
		case "possibleTypes":
			var list []interface{}
			for _, p := range t.PossibleTypes() {
				p := p
				projected, err := projectType(&p, g.mergedSelectionSet(), fragments, vars)
				if err != nil {
					return nil, err
				}
				list = append(list, projected)
			}
			out[g.responseKey] = list
		case "enumValues":
			includeDeprecated := boolArg(first, "includeDeprecated", vars, false)
			var list []interface{}
			for _, e := range t.EnumValues(includeDeprecated) {
				e := e
				list = append(list, projectEnumValue(&e))
			}
			out[g.responseKey] = list
		case "inputFields":
			var list []interface{}
			for _, iv := range t.InputFields() {
				iv := iv
				list = append(list, projectInputValue(&iv, g.mergedSelectionSet(), fragments, vars))
			}
			out[g.responseKey] = list
		case "ofType":
			projected, err := projectType(t.OfType(), g.mergedSelectionSet(), fragments, vars)
			if err != nil {
				return nil, err
			}
			out[g.responseKey] = projected
		}
	}
	return out, nil
}

func projectField(f *introspection.Field, selSet ast.SelectionSet, fragments ast.FragmentDefinitionList, vars map[string]interface{}) map[string]interface{} {
	groups := collectTopLevel(selSet, fragments)
	out := make(map[string]interface{}, len(groups))
	for _, g := range groups {
		first := g.occurrences[0]
		switch first.Name {
		case "name":
			out[g.responseKey] = f.Name
		case "description":
			out[g.responseKey] = f.Description()
		case "args":
			var list []interface{}
			for _, a := range f.Args {
				a := a
				list = append(list, projectInputValue(&a, g.mergedSelectionSet(), fragments, vars))
			}
			out[g.responseKey] = list
		case "type":
			projected, _ := projectType(f.Type, g.mergedSelectionSet(), fragments, vars)
			out[g.responseKey] = projected
		case "isDeprecated":
			out[g.responseKey] = f.IsDeprecated()
		case "deprecationReason":
			out[g.responseKey] = f.DeprecationReason()
		}
	}
	return out
}

func projectInputValue(iv *introspection.InputValue, selSet ast.SelectionSet, fragments ast.FragmentDefinitionList, vars map[string]interface{}) map[string]interface{} {
	groups := collectTopLevel(selSet, fragments)
	out := make(map[string]interface{}, len(groups))
	for _, g := range groups {
		first := g.occurrences[0]
		switch first.Name {
		case "name":
			out[g.responseKey] = iv.Name
		case "description":
			out[g.responseKey] = iv.Description()
		case "type":
			projected, _ := projectType(iv.Type, g.mergedSelectionSet(), fragments, vars)
			out[g.responseKey] = projected
		case "defaultValue":
			out[g.responseKey] = iv.DefaultValue
		}
	}
	return out
}

func projectEnumValue(e *introspection.EnumValue) map[string]interface{} {
	return map[string]interface{}{
		"name":              e.Name,
		"description":       e.Description(),
		"isDeprecated":      e.IsDeprecated(),
		"deprecationReason": e.DeprecationReason(),
	}
}

func projectDirective(d *introspection.Directive, selSet ast.SelectionSet, fragments ast.FragmentDefinitionList, vars map[string]interface{}) map[string]interface{} {
	groups := collectTopLevel(selSet, fragments)
	out := make(map[string]interface{}, len(groups))
	for _, g := range groups {
		first := g.occurrences[0]
		switch first.Name {
		case "name":
			out[g.responseKey] = d.Name
		case "description":
			out[g.responseKey] = d.Description()
		case "locations":
			out[g.responseKey] = d.Locations
		case "args":
			var list []interface{}
			for _, a := range d.Args {
				a := a
				list = append(list, projectInputValue(&a, g.mergedSelectionSet(), fragments, vars))
			}
			out[g.responseKey] = list
		case "isRepeatable":
			out[g.responseKey] = d.IsRepeatable
		}
	}
	return out
}
