package synth

import "github.com/vektah/gqlparser/v2/ast"

// fieldGroup is one response key's collected occurrences. The first
// occurrence supplies schema metadata (its FieldDefinition); later
// occurrences under the same response key only contribute additional
// sub-selections, which get merged at generation time.
type fieldGroup struct {
	responseKey string
	occurrences []*ast.Field
}

// mergedSelectionSet concatenates every occurrence's sub-selection set,
// matching "the merged sub-selection set is built from the union of the
// fields' sub-selections".
func (g *fieldGroup) mergedSelectionSet() ast.SelectionSet {
	var merged ast.SelectionSet
	for _, f := range g.occurrences {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// collectFields performs field collection over a selection set: it
// descends into fragment spreads (resolved by name against the document's
// fragment map) and inline fragments, accumulating ast.Field occurrences
// under their response key (alias if present, else name) in first-seen
// order.
func collectFields(selSet ast.SelectionSet, fragments ast.FragmentDefinitionList, groups []*fieldGroup, index map[string]int) []*fieldGroup {
	for _, sel := range selSet {
		switch s := sel.(type) {
		case *ast.Field:
			key := s.Alias
			if idx, ok := index[key]; ok {
				groups[idx].occurrences = append(groups[idx].occurrences, s)
				continue
			}
			index[key] = len(groups)
			groups = append(groups, &fieldGroup{responseKey: key, occurrences: []*ast.Field{s}})
		case *ast.FragmentSpread:
			frag := s.Definition
			if frag == nil {
				frag = fragments.ForName(s.Name)
			}
			if frag == nil {
				continue
			}
			groups = collectFields(frag.SelectionSet, fragments, groups, index)
		case *ast.InlineFragment:
			groups = collectFields(s.SelectionSet, fragments, groups, index)
		}
	}
	return groups
}

// collectTopLevel is the entry point used by both the random synthesizer
// and the introspection executor.
func collectTopLevel(selSet ast.SelectionSet, fragments ast.FragmentDefinitionList) []*fieldGroup {
	return collectFields(selSet, fragments, nil, map[string]int{})
}

// namedType unwraps List/NonNull wrappers to the underlying named type.
func namedType(t *ast.Type) string {
	for t.NamedType == "" && t.Elem != nil {
		t = t.Elem
	}
	return t.NamedType
}

// isListType reports whether t (at its outermost wrapper, ignoring
// NonNull) is a list type.
func isListType(t *ast.Type) bool {
	if t.NamedType != "" {
		return false
	}
	return t.Elem != nil
}

// isNullable reports whether t's outermost wrapper permits null.
func isNullable(t *ast.Type) bool {
	return !t.NonNull
}
