// Package federation implements the two-stage schema loading pipeline:
// parsing federation-flavored SDL that is not valid vanilla GraphQL,
// patching its AST so it validates, then computing the federated-entity
// surface (_Entity union, _entities, _service) needed to serve a mock.
package federation

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
	"go.uber.org/zap"
)

// Flavor identifies which federation dialect a document was written in.
type Flavor string

const (
	FlavorSupergraph Flavor = "supergraph"
	FlavorSubgraph   Flavor = "subgraph"
	FlavorNone       Flavor = "none"
)

// Bundle is a loaded, validated schema plus the metadata the rest of the
// mock needs: its original source text (for _service.sdl), its flavor, and
// the entity type names exposed through _Entity/_entities.
type Bundle struct {
	Schema        *ast.Schema
	Source        string
	Flavor        Flavor
	EntityMembers []string
}

// Load runs the full two-stage pipeline over raw SDL text: AST patch,
// schema patch, then a single final validation. A parse or validation
// failure is returned wrapped with the stage that failed; the caller is responsible for
// deciding whether this should replace a live schema.
func Load(sdl string, logger *zap.Logger) (*Bundle, error) {
	doc, err := parser.ParseSchemas(validator.Prelude, &ast.Source{Input: sdl, Name: "schema.graphql"})
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	flavor := detectFlavor(doc)
	warnUnresolvedImports(doc, flavor, logger)

	if flavor == FlavorSubgraph {
		patchSubgraphStage1(doc)
	}

	members := computeEntityMembers(doc, flavor)
	patchStage2(doc, flavor, members)

	schema, err := validator.ValidateSchemaDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}

	return &Bundle{
		Schema:        schema,
		Source:        sdl,
		Flavor:        flavor,
		EntityMembers: members,
	}, nil
}

// detectFlavor implements the flavor-detection rule: a join__Graph
// definition means Supergraph; a schema extension carrying @link means
// Subgraph; anything else is None. Supergraph is checked first because a
// supergraph's schema extension commonly also carries @link.
func detectFlavor(doc *ast.SchemaDocument) Flavor {
	for _, def := range doc.Definitions {
		if def.Name == "join__Graph" {
			return FlavorSupergraph
		}
	}
	for _, ext := range doc.SchemaExtension {
		if ext.Directives.ForName("link") != nil {
			return FlavorSubgraph
		}
	}
	return FlavorNone
}

// warnUnresolvedImports logs once per @link directive found on a schema
// definition or extension; this mock never resolves the imported names, it
// only needs the document to validate.
func warnUnresolvedImports(doc *ast.SchemaDocument, flavor Flavor, logger *zap.Logger) {
	if flavor == FlavorNone {
		return
	}
	schemas := append(append([]*ast.SchemaDefinition{}, doc.Schema...), doc.SchemaExtension...)
	for _, s := range schemas {
		for _, d := range s.Directives {
			if d.Name != "link" {
				continue
			}
			url := ""
			if arg := d.Arguments.ForName("url"); arg != nil {
				url = arg.Value.Raw
			}
			logger.Warn("link directive imports are not resolved", zap.String("url", url))
		}
	}
}

// patchSubgraphStage1 injects a default schema definition (if missing) and
// the 16 federation directive definitions into a Subgraph document.
func patchSubgraphStage1(doc *ast.SchemaDocument) {
	if len(doc.Schema) == 0 {
		doc.Schema = append(doc.Schema, &ast.SchemaDefinition{
			OperationTypes: []*ast.OperationTypeDefinition{
				{Operation: ast.Query, Type: "Query"},
			},
		})
	}
	doc.Directives = append(doc.Directives, federationDirectives()...)
}

// computeEntityMembers finds every object type (excluding the query root)
// carrying an applicable @key (subgraph) or @join__type (supergraph)
// directive whose resolvable argument is absent or literally "true".
func computeEntityMembers(doc *ast.SchemaDocument, flavor Flavor) []string {
	if flavor == FlavorNone {
		return nil
	}
	directiveName := "key"
	if flavor == FlavorSupergraph {
		directiveName = "join__type"
	}
	queryRoot := queryRootName(doc)

	var members []string
	for _, def := range doc.Definitions {
		if def.Kind != ast.Object || def.Name == queryRoot {
			continue
		}
		for _, d := range def.Directives {
			if d.Name != directiveName {
				continue
			}
			if isResolvable(d) {
				members = append(members, def.Name)
				break
			}
		}
	}
	return members
}

func isResolvable(d *ast.Directive) bool {
	arg := d.Arguments.ForName("resolvable")
	if arg == nil || arg.Value == nil {
		return true
	}
	return arg.Value.Raw == "true"
}

// queryRootName returns the configured query root type name, defaulting to
// "Query" when no schema definition names one.
func queryRootName(doc *ast.SchemaDocument) string {
	for _, s := range doc.Schema {
		for _, op := range s.OperationTypes {
			if op.Operation == ast.Query {
				return op.Type
			}
		}
	}
	return "Query"
}

// patchStage2 installs _Service/_service unconditionally (plain schemas
// included), _Entity/_entities when members is non-empty, the
// subgraph-only federation scalars, the link__Purpose enum, and (for
// supergraphs) @defer/@stream when absent. For Subgraph flavor it also
// synthesizes an empty Query type when the document has none at all.
func patchStage2(doc *ast.SchemaDocument, flavor Flavor, members []string) {
	queryRoot := queryRootName(doc)
	root := findDefinition(doc, queryRoot)
	if root == nil && flavor == FlavorSubgraph {
		root = &ast.Definition{Kind: ast.Object, Name: queryRoot}
		doc.Definitions = append(doc.Definitions, root)
		if len(doc.Schema) == 0 {
			doc.Schema = append(doc.Schema, &ast.SchemaDefinition{
				OperationTypes: []*ast.OperationTypeDefinition{{Operation: ast.Query, Type: queryRoot}},
			})
		}
	}

	if findDefinition(doc, "_Service") == nil {
		doc.Definitions = append(doc.Definitions, serviceDefinition())
	}
	if root != nil && root.Fields.ForName("_service") == nil {
		root.Fields = append(root.Fields, serviceFieldDefinition())
	}

	if len(members) > 0 {
		doc.Definitions = append(doc.Definitions, entityUnionDefinition(members))
		if root != nil {
			root.Fields = append(root.Fields, entitiesFieldDefinition())
		}
	}

	if flavor != FlavorNone && findDefinition(doc, "_Any") == nil {
		doc.Definitions = append(doc.Definitions, scalarDefinition("_Any"))
	}

	if flavor == FlavorSubgraph {
		for _, name := range subgraphScalars {
			if findDefinition(doc, name) == nil {
				doc.Definitions = append(doc.Definitions, scalarDefinition(name))
			}
		}
		if findDefinition(doc, "link__Purpose") == nil {
			doc.Definitions = append(doc.Definitions, linkPurposeEnumDefinition())
		}
	}

	if flavor == FlavorSupergraph {
		if findDirectiveDefinition(doc, "defer") == nil || findDirectiveDefinition(doc, "stream") == nil {
			doc.Directives = append(doc.Directives, deferStreamDirectivesMissing(doc)...)
		}
	}
}

// deferStreamDirectivesMissing returns only the @defer/@stream definitions
// not already declared in doc, so a supergraph that already carries its own
// copies is never given duplicates.
func deferStreamDirectivesMissing(doc *ast.SchemaDocument) []*ast.DirectiveDefinition {
	var missing []*ast.DirectiveDefinition
	for _, d := range deferStreamDirectives() {
		if findDirectiveDefinition(doc, d.Name) == nil {
			missing = append(missing, d)
		}
	}
	return missing
}

func findDefinition(doc *ast.SchemaDocument, name string) *ast.Definition {
	for _, def := range doc.Definitions {
		if def.Name == name {
			return def
		}
	}
	return nil
}

func findDirectiveDefinition(doc *ast.SchemaDocument, name string) *ast.DirectiveDefinition {
	for _, d := range doc.Directives {
		if d.Name == name {
			return d
		}
	}
	return nil
}
