// Package cache implements the two non-evicting, fingerprint-keyed caches:
// one for validated executable documents, one for serialized response
// bodies. Entries are never evicted; schema reloads change the fingerprint
// instead, so stale entries are simply never looked up again.
package cache

import (
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
)

// Documents is a non-evicting cache of validated executable documents keyed
// by 64-bit query fingerprint.
type Documents struct {
	m sync.Map // uint64 -> *ast.QueryDocument
}

// LoadOrStore returns the cached document for key if present, otherwise
// calls build, stores its result, and returns that. Concurrent misses for
// the same key may both call build; the first stored value wins and every
// caller observes the same value thereafter.
func (d *Documents) LoadOrStore(key uint64, build func() (*ast.QueryDocument, error)) (*ast.QueryDocument, error) {
	if v, ok := d.m.Load(key); ok {
		return v.(*ast.QueryDocument), nil
	}
	doc, err := build()
	if err != nil {
		return nil, err
	}
	actual, _ := d.m.LoadOrStore(key, doc)
	return actual.(*ast.QueryDocument), nil
}

// Response is a cached HTTP response: the status code synthesize() decided
// on (200, 400, or 500) alongside its body. Caching the status along with
// the body matters because not every cacheable response is a 200 — an
// invalid-query or not-implemented reply is just as reproducible as a
// successful one, and a cache hit must replay the same status it first
// produced.
type Response struct {
	Status int
	Body   []byte
}

// Responses is a non-evicting cache of serialized responses keyed by
// 64-bit fingerprint.
type Responses struct {
	m sync.Map // uint64 -> Response
}

// Load returns the cached response for key, if present.
func (r *Responses) Load(key uint64) (Response, bool) {
	v, ok := r.m.Load(key)
	if !ok {
		return Response{}, false
	}
	return v.(Response), true
}

// Store writes resp for key if no value is present yet, and returns the
// value now stored for key (the caller's value on first write, the
// existing value on a race).
func (r *Responses) Store(key uint64, resp Response) Response {
	actual, _ := r.m.LoadOrStore(key, resp)
	return actual.(Response)
}
