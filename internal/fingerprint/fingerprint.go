// Package fingerprint computes the 64-bit cache key fingerprint described
// in the data model: a digest over query text, the effective
// response-generation config, the current schema's identity, and
// (optionally) the subgraph name.
package fingerprint

import (
	"encoding/binary"
	"sort"

	"github.com/apollosolutions/subgraph-mock/internal/config"
	"github.com/cespare/xxhash/v2"
)

// Of combines queryText, the effective response-generation config,
// schemaGeneration (a monotonically increasing id bumped on every
// successful hot-reload), and subgraph (empty when no override applies)
// into one 64-bit digest.
func Of(queryText string, gen config.ResponseGeneration, schemaGeneration uint64, subgraph string) uint64 {
	h := xxhash.New()
	writeString(h, queryText)
	writeResponseGeneration(h, gen)
	writeUint64(h, schemaGeneration)
	writeString(h, subgraph)
	return h.Sum64()
}

func writeString(h *xxhash.Digest, s string) {
	writeUint64(h, uint64(len(s)))
	_, _ = h.WriteString(s)
}

func writeUint64(h *xxhash.Digest, n uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	_, _ = h.Write(buf[:])
}

func writeFloat64(h *xxhash.Digest, f float64) {
	writeUint64(h, uint64(int64(f*1e9)))
}

func writeRational(h *xxhash.Digest, r *config.Rational) {
	if r == nil {
		writeUint64(h, 0)
		return
	}
	writeUint64(h, 1)
	writeUint64(h, r.Numerator)
	writeUint64(h, r.Denominator)
}

// writeResponseGeneration serializes the config in a key-sorted, order
// stable way so that two structurally equal configs always hash the same
// regardless of Go's randomized map iteration order.
func writeResponseGeneration(h *xxhash.Digest, gen config.ResponseGeneration) {
	scalarNames := make([]string, 0, len(gen.Scalars))
	for name := range gen.Scalars {
		scalarNames = append(scalarNames, name)
	}
	sort.Strings(scalarNames)
	writeUint64(h, uint64(len(scalarNames)))
	for _, name := range scalarNames {
		g := gen.Scalars[name]
		writeString(h, name)
		writeString(h, string(g.Kind))
		writeFloat64(h, g.Min)
		writeFloat64(h, g.Max)
		writeUint64(h, uint64(g.MinLen))
		writeUint64(h, uint64(g.MaxLen))
	}

	writeUint64(h, uint64(gen.Array.MinLength))
	writeUint64(h, uint64(gen.Array.MaxLength))

	writeRational(h, gen.NullRatio)

	headerNames := make([]string, 0, len(gen.HeaderRatio))
	for name := range gen.HeaderRatio {
		headerNames = append(headerNames, name)
	}
	sort.Strings(headerNames)
	writeUint64(h, uint64(len(headerNames)))
	for _, name := range headerNames {
		writeString(h, name)
		writeRational(h, gen.HeaderRatio[name])
	}

	writeRational(h, gen.HTTPErrorRatio)
	writeRational(h, gen.GraphQLErrors.RequestErrorRatio)
	writeRational(h, gen.GraphQLErrors.FieldErrorRatio)
}
