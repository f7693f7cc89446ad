// Package aggregation contains the pure consolidation rules that turn the
// material lists extracted from many source documents into a single
// replenishment list. Nothing here touches the database or the network, so
// every rule is unit-testable in isolation.
package aggregation

import "strings"

// GroupKey is the identity under which consumed materials are merged.
// Identidade is the trimmed+lowercased code when present, otherwise the
// trimmed+lowercased description; Lote discriminates batches of the same
// material. A struct key (instead of string concatenation) makes collisions
// between a description suffix and the lot marker impossible.
type GroupKey struct {
	Identidade string
	Lote       string
}

// KeyFor derives the grouping key for a consumed material line.
// Description must be non-empty — callers validate before this point.
func KeyFor(descricao, codigo, lote string) GroupKey {
	identidade := normalize(codigo)
	if identidade == "" {
		identidade = normalize(descricao)
	}
	return GroupKey{Identidade: identidade, Lote: strings.TrimSpace(lote)}
}

// String renders the legacy display form of the key.
func (k GroupKey) String() string {
	if k.Lote == "" {
		return k.Identidade + "_NO_LOT"
	}
	return k.Identidade + "_LOT_" + k.Lote
}

// normalize applies the case/whitespace folding used for every identity
// comparison in this package.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// sameText compares two strings under the normalize folding.
func sameText(a, b string) bool {
	return normalize(a) == normalize(b)
}
