// Package synth implements the response synthesizer: given a validated
// executable document and a selected query operation, it fabricates a
// schema-conformant JSON response using a configured random source, with
// optional simulated GraphQL-level error injection.
//
// The walk relies on validator.Validate having populated each ast.Field's
// Definition/ObjectDefinition for the whole document, instead of
// re-deriving parent types by hand.
package synth

import (
	"fmt"
	"math/rand/v2"

	"github.com/apollosolutions/subgraph-mock/internal/config"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Request bundles everything the synthesizer needs for one operation.
type Request struct {
	Schema     *ast.Schema
	Document   *ast.QueryDocument
	Operation  *ast.OperationDefinition
	Variables  map[string]interface{}
	ServiceSDL string
	Gen        config.ResponseGeneration
	RNG        *rand.Rand
}

// Result is the synthesized response envelope.
type Result struct {
	Data   map[string]interface{}
	Errors gqlerror.List
}

// Execute runs the full C4 contract: introspection short-circuit, then
// selection walk, then error injection.
func Execute(req Request) (*Result, error) {
	if isIntrospectionOnly(req.Operation, req.Document.Fragments) {
		data, err := executeIntrospection(req.Schema, req.Operation.SelectionSet, req.Document.Fragments, req.Variables)
		if err != nil {
			return nil, err
		}
		return &Result{Data: data}, nil
	}

	s := &synthesizer{
		schema:     req.Schema,
		fragments:  req.Document.Fragments,
		serviceSDL: req.ServiceSDL,
		gen:        req.Gen,
		rng:        req.RNG,
	}

	queryRoot := req.Schema.Query
	if queryRoot == nil {
		return nil, fmt.Errorf("schema has no query root")
	}
	data, err := s.synthesizeObject(req.Operation.SelectionSet, queryRoot)
	if err != nil {
		return nil, err
	}

	return s.injectErrors(data), nil
}

type synthesizer struct {
	schema     *ast.Schema
	fragments  ast.FragmentDefinitionList
	serviceSDL string
	gen        config.ResponseGeneration
	rng        *rand.Rand
}

// synthesizeObject walks selSet against parentType and returns the
// resulting response object.
func (s *synthesizer) synthesizeObject(selSet ast.SelectionSet, parentType *ast.Definition) (map[string]interface{}, error) {
	groups := collectTopLevel(selSet, s.fragments)
	out := make(map[string]interface{}, len(groups))

	for _, g := range groups {
		value, err := s.synthesizeGroup(g, parentType)
		if err != nil {
			return nil, err
		}
		out[g.responseKey] = value
	}
	return out, nil
}

func (s *synthesizer) synthesizeGroup(g *fieldGroup, parentType *ast.Definition) (interface{}, error) {
	first := g.occurrences[0]

	if first.Name == "__typename" {
		return parentType.Name, nil
	}
	if first.Name == "_service" {
		return map[string]interface{}{"sdl": s.serviceSDL}, nil
	}

	fieldDef := first.Definition
	if fieldDef == nil {
		return nil, fmt.Errorf("field %s.%s has no definition after validation", parentType.Name, first.Name)
	}

	if isNullable(fieldDef.Type) && s.gen.NullRatio.Trial(s.rng) {
		return nil, nil
	}

	merged := g.mergedSelectionSet()
	if len(merged) > 0 {
		childType := s.schema.Types[namedType(fieldDef.Type)]
		if childType == nil {
			return nil, fmt.Errorf("unknown type %s for field %s.%s", namedType(fieldDef.Type), parentType.Name, first.Name)
		}
		if isListType(fieldDef.Type) {
			n := s.gen.Array.Range(s.rng)
			arr := make([]interface{}, n)
			for i := range arr {
				obj, err := s.synthesizeObject(merged, childType)
				if err != nil {
					return nil, err
				}
				arr[i] = obj
			}
			return arr, nil
		}
		return s.synthesizeObject(merged, childType)
	}

	return s.synthesizeLeaf(fieldDef.Type, parentType.Name, first.Name)
}

func (s *synthesizer) synthesizeLeaf(t *ast.Type, parentName, fieldName string) (interface{}, error) {
	if isListType(t) {
		n := s.gen.Array.Range(s.rng)
		arr := make([]interface{}, n)
		for i := range arr {
			leaf, err := s.synthesizeScalarOrEnum(namedType(t), parentName, fieldName)
			if err != nil {
				return nil, err
			}
			arr[i] = leaf
		}
		return arr, nil
	}
	return s.synthesizeScalarOrEnum(namedType(t), parentName, fieldName)
}

func (s *synthesizer) synthesizeScalarOrEnum(typeName, parentName, fieldName string) (interface{}, error) {
	def := s.schema.Types[typeName]
	if def != nil && def.Kind == ast.Enum {
		if len(def.EnumValues) == 0 {
			return nil, fmt.Errorf("enum %s has no values to sample from", typeName)
		}
		idx := s.rng.IntN(len(def.EnumValues))
		return def.EnumValues[idx].Name, nil
	}

	if def != nil && def.Kind != ast.Scalar {
		return nil, fmt.Errorf("invariant violation: field %s.%s has non-leaf type %s with no sub-selections", parentName, fieldName, typeName)
	}

	gen, ok := s.gen.Scalars[typeName]
	if !ok {
		gen = config.ScalarGenerator{Kind: config.ScalarString, MinLen: 1, MaxLen: 10}
	}
	value, err := gen.Generate(s.rng)
	if err != nil {
		return nil, fmt.Errorf("generate %s.%s: %w", parentName, fieldName, err)
	}

	if typeName == "ID" {
		return fmt.Sprintf("%v", value), nil
	}
	return value, nil
}

// injectErrors applies the request_error_ratio / field_error_ratio trials.
// Dropping is shallow: only top-level keys are ever removed.
func (s *synthesizer) injectErrors(data map[string]interface{}) *Result {
	if s.gen.GraphQLErrors.RequestErrorRatio.Trial(s.rng) {
		return &Result{
			Data:   nil,
			Errors: gqlerror.List{{Message: "Request error simulated"}},
		}
	}

	if len(data) > 0 && s.gen.GraphQLErrors.FieldErrorRatio.Trial(s.rng) {
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		k := 1 + s.rng.IntN(len(keys))
		perm := s.rng.Perm(len(keys))[:k]

		var errs gqlerror.List
		for _, idx := range perm {
			key := keys[idx]
			delete(data, key)
			errs = append(errs, &gqlerror.Error{
				Message: "Field error simulated",
				Path:    ast.Path{ast.PathName(key)},
			})
		}
		return &Result{Data: data, Errors: errs}
	}

	return &Result{Data: data}
}
