package aggregation

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
)

// Correcao is one reviewer correction fed back into the master catalog:
// the description/code pair the reviewer considers correct for a line.
type Correcao struct {
	Descricao string
	Codigo    string
}

// Aprender merges reviewer corrections into the master catalog so future
// extractions match better. Best-effort, additive heuristic:
//
//   - a coded correction updates the description of the entry holding that
//     code, or attaches the code to a codeless entry with the same
//     description, or appends a new entry — never creating a second entry
//     with the same non-empty code;
//   - a codeless correction appends a new codeless entry only when no
//     codeless entry with that description exists, so it cannot collapse a
//     coded entry that happens to share the description;
//   - nothing is ever deleted, and a codeless correction never overwrites
//     an existing entry's code.
//
// The returned catalog is re-sorted by description (pt-BR). The bool reports
// whether anything changed.
func Aprender(catalogo []Entrada, correcoes []Correcao) ([]Entrada, bool) {
	out := make([]Entrada, len(catalogo))
	copy(out, catalogo)
	mudou := false

	for _, c := range correcoes {
		descricao := strings.TrimSpace(c.Descricao)
		codigo := strings.TrimSpace(c.Codigo)
		if descricao == "" {
			continue
		}

		if codigo != "" {
			if i := indexPorCodigo(out, codigo); i >= 0 {
				if out[i].Descricao != descricao {
					out[i].Descricao = descricao
					mudou = true
				}
				continue
			}
			if i := indexSemCodigoPorDescricao(out, descricao); i >= 0 {
				out[i].Codigo = codigo
				mudou = true
				continue
			}
			out = append(out, Entrada{Descricao: descricao, Codigo: codigo})
			mudou = true
			continue
		}

		// Codeless correction: add only if no codeless entry already has
		// this exact description.
		if indexSemCodigoPorDescricao(out, descricao) >= 0 {
			continue
		}
		out = append(out, Entrada{Descricao: descricao})
		mudou = true
	}

	if mudou {
		col := collate.New(ptBR, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Descricao, out[j].Descricao) < 0
		})
	}
	return out, mudou
}

func indexPorCodigo(catalogo []Entrada, codigo string) int {
	for i := range catalogo {
		if catalogo[i].Codigo != "" && sameText(catalogo[i].Codigo, codigo) {
			return i
		}
	}
	return -1
}

func indexSemCodigoPorDescricao(catalogo []Entrada, descricao string) int {
	for i := range catalogo {
		if catalogo[i].Codigo == "" && sameText(catalogo[i].Descricao, descricao) {
			return i
		}
	}
	return -1
}
