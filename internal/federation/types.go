package federation

import "github.com/vektah/gqlparser/v2/ast"

// scalarDefinition builds a bare scalar type definition, used for all of
// the federation-injected scalars (_Any, FieldSet, link__Import, ...).
func scalarDefinition(name string) *ast.Definition {
	return &ast.Definition{Kind: ast.Scalar, Name: name}
}

// serviceDefinition builds the `_Service { sdl: String! }` object injected
// into every loaded schema, plain (non-federated) ones included.
func serviceDefinition() *ast.Definition {
	return &ast.Definition{
		Kind: ast.Object,
		Name: "_Service",
		Fields: ast.FieldList{
			{Name: "sdl", Type: ast.NonNullNamedType("String", nil)},
		},
	}
}

// entityUnionDefinition builds the `_Entity` union over the supplied member
// type names.
func entityUnionDefinition(members []string) *ast.Definition {
	return &ast.Definition{
		Kind:  ast.Union,
		Name:  "_Entity",
		Types: members,
	}
}

// linkPurposeEnumDefinition builds the `link__Purpose` enum with values
// SECURITY and EXECUTION.
func linkPurposeEnumDefinition() *ast.Definition {
	return &ast.Definition{
		Kind: ast.Enum,
		Name: "link__Purpose",
		EnumValues: ast.EnumValueList{
			{Name: "SECURITY"},
			{Name: "EXECUTION"},
		},
	}
}

// entitiesFieldDefinition builds the `_entities(representations: [_Any!]!):
// [_Entity]!` field installed on the query root when entities exist.
func entitiesFieldDefinition() *ast.FieldDefinition {
	return &ast.FieldDefinition{
		Name: "_entities",
		Arguments: ast.ArgumentDefinitionList{
			{
				Name: "representations",
				Type: ast.NonNullListType(ast.NonNullNamedType("_Any", nil), nil),
			},
		},
		Type: ast.NonNullListType(ast.NamedType("_Entity", nil), nil),
	}
}

// serviceFieldDefinition builds the `_service: _Service!` field installed on
// every query root, plain (non-federated) schemas included.
func serviceFieldDefinition() *ast.FieldDefinition {
	return &ast.FieldDefinition{
		Name: "_service",
		Type: ast.NonNullNamedType("_Service", nil),
	}
}

// subgraphScalars are the scalars injected only for Subgraph-flavored
// documents, beyond the _Any scalar shared with Supergraph.
var subgraphScalars = []string{
	"FieldSet",
	"link__Import",
	"federation__ContextFieldValue",
	"federation__Scope",
	"federation__Policy",
}
