package cache

import (
	"testing"

	"github.com/vektah/gqlparser/v2/ast"
)

func TestResponsesStoreIsWriteOnce(t *testing.T) {
	var r Responses
	first := r.Store(1, Response{Status: 200, Body: []byte("a")})
	second := r.Store(1, Response{Status: 400, Body: []byte("b")})
	if string(first.Body) != "a" || string(second.Body) != "a" || second.Status != 200 {
		t.Fatalf("second Store should not override the first write, got %+v then %+v", first, second)
	}
}

func TestResponsesCachesNon200Status(t *testing.T) {
	var r Responses
	r.Store(2, Response{Status: 400, Body: []byte("bad query")})
	cached, ok := r.Load(2)
	if !ok {
		t.Fatalf("expected a hit")
	}
	if cached.Status != 400 {
		t.Fatalf("cached status = %d, want 400", cached.Status)
	}
}

func TestResponsesLoadMiss(t *testing.T) {
	var r Responses
	if _, ok := r.Load(42); ok {
		t.Fatalf("expected a miss on an empty cache")
	}
}

func TestDocumentsLoadOrStoreBuildsOnce(t *testing.T) {
	var d Documents
	calls := 0
	build := func() (*ast.QueryDocument, error) {
		calls++
		return &ast.QueryDocument{}, nil
	}
	doc1, err := d.LoadOrStore(7, build)
	if err != nil {
		t.Fatalf("LoadOrStore: %v", err)
	}
	doc2, err := d.LoadOrStore(7, build)
	if err != nil {
		t.Fatalf("LoadOrStore: %v", err)
	}
	if doc1 != doc2 {
		t.Fatalf("expected the same cached document instance")
	}
	if calls != 1 {
		t.Fatalf("build should only run once on a hit path, ran %d times", calls)
	}
}
