package federation

import (
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
)

// federationDirectives returns the 16 Apollo Federation directive
// definitions injected into a subgraph document during the AST patch stage.
// Argument and location shapes follow the federation spec; this package
// never resolves or enforces any of them at request time, it only makes
// schemas carrying them parse and validate.
func federationDirectives() []*ast.DirectiveDefinition {
	fieldSet := ast.NonNullNamedType("FieldSet", nil)
	stringType := ast.NamedType("String", nil)
	nonNullString := ast.NonNullNamedType("String", nil)
	boolType := ast.NamedType("Boolean", nil)
	listOfImport := ast.ListType(ast.NamedType("link__Import", nil), nil)
	purpose := ast.NamedType("link__Purpose", nil)
	scopes := ast.NonNullListType(ast.NonNullListType(ast.NonNullNamedType("federation__Scope", nil), nil), nil)
	contextFieldValue := ast.NonNullNamedType("federation__ContextFieldValue", nil)
	policyType := ast.NonNullListType(ast.NonNullListType(ast.NonNullNamedType("federation__Policy", nil), nil), nil)

	return []*ast.DirectiveDefinition{
		{
			Name: "external",
			Locations: []ast.DirectiveLocation{
				ast.LocationFieldDefinition, ast.LocationObject,
			},
		},
		{
			Name: "requires",
			Arguments: ast.ArgumentDefinitionList{
				arg("fields", fieldSet),
			},
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition},
		},
		{
			Name: "provides",
			Arguments: ast.ArgumentDefinitionList{
				arg("fields", fieldSet),
			},
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition},
		},
		{
			Name: "key",
			Arguments: ast.ArgumentDefinitionList{
				arg("fields", fieldSet),
				argWithDefault("resolvable", boolType, boolValue(true)),
			},
			Locations: []ast.DirectiveLocation{
				ast.LocationObject, ast.LocationInterface,
			},
			IsRepeatable: true,
		},
		{
			Name: "link",
			Arguments: ast.ArgumentDefinitionList{
				arg("url", stringType),
				arg("as", stringType),
				arg("for", purpose),
				arg("import", listOfImport),
			},
			Locations:    []ast.DirectiveLocation{ast.LocationSchema},
			IsRepeatable: true,
		},
		{
			Name:      "shareable",
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition, ast.LocationObject},
		},
		{
			Name:      "inaccessible",
			Locations: []ast.DirectiveLocation{
				ast.LocationFieldDefinition, ast.LocationObject, ast.LocationInterface,
				ast.LocationUnion, ast.LocationEnum, ast.LocationEnumValue,
				ast.LocationScalar, ast.LocationInputObject, ast.LocationInputFieldDefinition,
				ast.LocationArgumentDefinition,
			},
		},
		{
			Name: "tag",
			Arguments: ast.ArgumentDefinitionList{
				arg("name", nonNullString),
			},
			Locations: []ast.DirectiveLocation{
				ast.LocationFieldDefinition, ast.LocationObject, ast.LocationInterface,
				ast.LocationUnion, ast.LocationEnum, ast.LocationEnumValue,
				ast.LocationScalar, ast.LocationInputObject, ast.LocationInputFieldDefinition,
				ast.LocationArgumentDefinition, ast.LocationSchema,
			},
			IsRepeatable: true,
		},
		{
			Name: "override",
			Arguments: ast.ArgumentDefinitionList{
				arg("from", nonNullString),
				arg("label", stringType),
			},
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition},
		},
		{
			Name: "composeDirective",
			Arguments: ast.ArgumentDefinitionList{
				arg("name", nonNullString),
			},
			Locations:    []ast.DirectiveLocation{ast.LocationSchema},
			IsRepeatable: true,
		},
		{
			Name:      "interfaceObject",
			Locations: []ast.DirectiveLocation{ast.LocationObject},
		},
		{
			Name:      "authenticated",
			Locations: []ast.DirectiveLocation{
				ast.LocationFieldDefinition, ast.LocationObject, ast.LocationInterface,
				ast.LocationScalar, ast.LocationEnum,
			},
		},
		{
			Name: "requiresScopes",
			Arguments: ast.ArgumentDefinitionList{
				arg("scopes", scopes),
			},
			Locations: []ast.DirectiveLocation{
				ast.LocationFieldDefinition, ast.LocationObject, ast.LocationInterface,
				ast.LocationScalar, ast.LocationEnum,
			},
		},
		{
			Name: "policy",
			Arguments: ast.ArgumentDefinitionList{
				arg("policies", policyType),
			},
			Locations: []ast.DirectiveLocation{
				ast.LocationFieldDefinition, ast.LocationObject, ast.LocationInterface,
				ast.LocationScalar, ast.LocationEnum,
			},
		},
		{
			Name: "context",
			Arguments: ast.ArgumentDefinitionList{
				arg("name", nonNullString),
			},
			Locations:    []ast.DirectiveLocation{ast.LocationInterface, ast.LocationObject, ast.LocationUnion},
			IsRepeatable: true,
		},
		{
			Name: "fromContext",
			Arguments: ast.ArgumentDefinitionList{
				arg("field", contextFieldValue),
			},
			Locations: []ast.DirectiveLocation{ast.LocationArgumentDefinition},
		},
	}
}

// deferStreamDirectives returns the @defer/@stream directive definitions
// installed into supergraph documents when not already present. They are
// accepted during validation only; this package never executes either of
// them.
func deferStreamDirectives() []*ast.DirectiveDefinition {
	stringType := ast.NamedType("String", nil)
	boolType := ast.NamedType("Boolean", nil)
	return []*ast.DirectiveDefinition{
		{
			Name: "defer",
			Arguments: ast.ArgumentDefinitionList{
				arg("label", stringType),
				argWithDefault("if", boolType, boolValue(true)),
			},
			Locations: []ast.DirectiveLocation{
				ast.LocationFragmentSpread, ast.LocationInlineFragment,
			},
		},
		{
			Name: "stream",
			Arguments: ast.ArgumentDefinitionList{
				arg("label", stringType),
				argWithDefault("initialCount", ast.NamedType("Int", nil), intValue(0)),
				argWithDefault("if", boolType, boolValue(true)),
			},
			Locations: []ast.DirectiveLocation{ast.LocationField},
		},
	}
}

func arg(name string, typ *ast.Type) *ast.ArgumentDefinition {
	return &ast.ArgumentDefinition{Name: name, Type: typ}
}

func argWithDefault(name string, typ *ast.Type, def *ast.Value) *ast.ArgumentDefinition {
	return &ast.ArgumentDefinition{Name: name, Type: typ, DefaultValue: def}
}

func boolValue(b bool) *ast.Value {
	raw := "false"
	if b {
		raw = "true"
	}
	return &ast.Value{Kind: ast.BooleanValue, Raw: raw}
}

func intValue(n int) *ast.Value {
	return &ast.Value{Kind: ast.IntValue, Raw: strconv.Itoa(n)}
}
