package synth

import (
	"math/rand/v2"
	"testing"

	"github.com/apollosolutions/subgraph-mock/internal/config"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

const testSDL = `
type Query {
  user(id: ID!): User
  posts: [Post!]!
}

type User {
  id: ID!
  name: String
  nickname: String @deprecated(reason: "use name")
  isActive: Boolean!
  role: Role!
}

type Post {
  title: String!
}

enum Role {
  ADMIN
  MEMBER
}
`

func mustLoadSchema(t *testing.T) *ast.Schema {
	t.Helper()
	doc, err := parser.ParseSchemas(validator.Prelude, &ast.Source{Input: testSDL, Name: "test.graphql"})
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	schema, err := validator.ValidateSchemaDocument(doc)
	if err != nil {
		t.Fatalf("ValidateSchemaDocument: %v", err)
	}
	return schema
}

func mustLoadQuery(t *testing.T, schema *ast.Schema, query string) *ast.QueryDocument {
	t.Helper()
	doc, err := parser.ParseQuery(&ast.Source{Input: query, Name: "query.graphql"})
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if errs := validator.Validate(schema, doc); errs != nil {
		t.Fatalf("Validate: %v", errs)
	}
	return doc
}

func TestExecuteScenario1(t *testing.T) {
	schema := mustLoadSchema(t)
	doc := mustLoadQuery(t, schema, `query { user(id:"1"){ id name isActive role } }`)

	gen := config.DefaultResponseGeneration()
	gen.NullRatio = &config.Rational{Numerator: 0, Denominator: 1}
	rng := rand.New(rand.NewPCG(1, 1))

	result, err := Execute(Request{
		Schema:    schema,
		Document:  doc,
		Operation: doc.Operations[0],
		Gen:       gen,
		RNG:       rng,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	user, ok := result.Data["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("data.user should be an object, got %T", result.Data["user"])
	}
	if _, ok := user["id"].(string); !ok {
		t.Fatalf("id should be a string, got %T", user["id"])
	}
	if _, ok := user["isActive"].(bool); !ok {
		t.Fatalf("isActive should be a bool, got %T", user["isActive"])
	}
	role, ok := user["role"].(string)
	if !ok || (role != "ADMIN" && role != "MEMBER") {
		t.Fatalf("role should be one of the enum values, got %v", user["role"])
	}
}

func TestExecuteListField(t *testing.T) {
	schema := mustLoadSchema(t)
	doc := mustLoadQuery(t, schema, `query { posts { title } }`)

	gen := config.DefaultResponseGeneration()
	gen.NullRatio = &config.Rational{Numerator: 0, Denominator: 1}
	rng := rand.New(rand.NewPCG(2, 2))

	result, err := Execute(Request{
		Schema:    schema,
		Document:  doc,
		Operation: doc.Operations[0],
		Gen:       gen,
		RNG:       rng,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	posts, ok := result.Data["posts"].([]interface{})
	if !ok {
		t.Fatalf("data.posts should be an array, got %T", result.Data["posts"])
	}
	if len(posts) < gen.Array.MinLength || len(posts) > gen.Array.MaxLength {
		t.Fatalf("posts length %d outside configured range", len(posts))
	}
}

func TestExecuteRequestErrorRatio(t *testing.T) {
	schema := mustLoadSchema(t)
	doc := mustLoadQuery(t, schema, `query { posts { title } }`)

	gen := config.DefaultResponseGeneration()
	gen.GraphQLErrors.RequestErrorRatio = &config.Rational{Numerator: 1, Denominator: 1}
	rng := rand.New(rand.NewPCG(3, 3))

	result, err := Execute(Request{
		Schema:    schema,
		Document:  doc,
		Operation: doc.Operations[0],
		Gen:       gen,
		RNG:       rng,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Data != nil {
		t.Fatalf("data should be nil on a simulated request error")
	}
	if len(result.Errors) != 1 || result.Errors[0].Message != "Request error simulated" {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
}

func TestExecuteFieldErrorRatioDropsTopLevelKeys(t *testing.T) {
	schema := mustLoadSchema(t)
	doc := mustLoadQuery(t, schema, `query { user(id:"1"){ id name } posts { title } }`)

	gen := config.DefaultResponseGeneration()
	gen.NullRatio = &config.Rational{Numerator: 0, Denominator: 1}
	gen.GraphQLErrors.FieldErrorRatio = &config.Rational{Numerator: 1, Denominator: 1}
	rng := rand.New(rand.NewPCG(4, 4))

	result, err := Execute(Request{
		Schema:    schema,
		Document:  doc,
		Operation: doc.Operations[0],
		Gen:       gen,
		RNG:       rng,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Errors) == 0 {
		t.Fatalf("expected field errors to be emitted")
	}
	for _, e := range result.Errors {
		if e.Message != "Field error simulated" {
			t.Fatalf("unexpected error message %q", e.Message)
		}
		key := string(e.Path[0].(ast.PathName))
		if _, stillPresent := result.Data[key]; stillPresent {
			t.Fatalf("dropped key %q should not remain in data", key)
		}
	}
}

func TestIntrospectionCoercesVariables(t *testing.T) {
	schema := mustLoadSchema(t)
	doc := mustLoadQuery(t, schema, `query Fields($x: Boolean!) { __type(name: "User") { fields(includeDeprecated: $x) { name } } }`)

	fieldNames := func(include bool) []string {
		t.Helper()
		result, err := Execute(Request{
			Schema:    schema,
			Document:  doc,
			Operation: doc.Operations[0],
			Variables: map[string]interface{}{"x": include},
			Gen:       config.DefaultResponseGeneration(),
			RNG:       rand.New(rand.NewPCG(6, 6)),
		})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		typ, ok := result.Data["__type"].(map[string]interface{})
		if !ok {
			t.Fatalf("__type should be an object, got %v", result.Data)
		}
		fields, ok := typ["fields"].([]interface{})
		if !ok {
			t.Fatalf("fields should be a list, got %v", typ)
		}
		var names []string
		for _, f := range fields {
			names = append(names, f.(map[string]interface{})["name"].(string))
		}
		return names
	}

	hasNickname := func(names []string) bool {
		for _, n := range names {
			if n == "nickname" {
				return true
			}
		}
		return false
	}

	if names := fieldNames(true); !hasNickname(names) {
		t.Fatalf("includeDeprecated: $x with x=true should list the deprecated field, got %v", names)
	}
	if names := fieldNames(false); hasNickname(names) {
		t.Fatalf("includeDeprecated: $x with x=false should omit the deprecated field, got %v", names)
	}
}

func TestIntrospectionShortCircuit(t *testing.T) {
	schema := mustLoadSchema(t)
	doc := mustLoadQuery(t, schema, `{ __schema { queryType { name } types { name kind } } }`)

	result, err := Execute(Request{
		Schema:    schema,
		Document:  doc,
		Operation: doc.Operations[0],
		Gen:       config.DefaultResponseGeneration(),
		RNG:       rand.New(rand.NewPCG(5, 5)),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Data) != 1 {
		t.Fatalf("introspection response should contain only __schema, got keys %v", result.Data)
	}
	introspected, ok := result.Data["__schema"].(map[string]interface{})
	if !ok {
		t.Fatalf("__schema should be an object")
	}
	queryType, ok := introspected["queryType"].(map[string]interface{})
	if !ok {
		t.Fatalf("queryType should be an object")
	}
	if queryType["name"] != "Query" {
		t.Fatalf("queryType.name = %v, want Query", queryType["name"])
	}
	types, ok := introspected["types"].([]interface{})
	if !ok || len(types) == 0 {
		t.Fatalf("types should be a non-empty list")
	}
}
