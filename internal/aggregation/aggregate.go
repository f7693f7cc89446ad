package aggregation

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Suggestion notes attached to every replenishment line after the
// master-catalog cross-reference.
const (
	NotaReposicaoPadrao  = "Reposição baseada no consumo."
	NotaNaoCadastrado    = "Material não cadastrado na base de materiais; reposição baseada no consumo."
	notaDivergenciaDescr = "Reposição baseada no consumo. Divergência de descrição com o cadastro: documento \"%s\" vs base \"%s\"."
)

// Registro is one consumed material line as extracted/corrected.
type Registro struct {
	Descricao         string
	Codigo            string
	Lote              string
	Quantidade        int
	Observacao        string // AI-sourced
	ObservacaoUsuario string // reviewer-sourced
	Contaminado       bool
}

// Documento is a source document contributing records to one aggregation run.
// Only documents with Sucesso=true contribute.
type Documento struct {
	ID        string
	Sucesso   bool
	Materiais []Registro
}

// Entrada is a row of the material master catalog.
type Entrada struct {
	ID        string
	Descricao string
	Codigo    string // empty means "no code"
}

// Item is one consolidated replenishment line.
type Item struct {
	Descricao           string
	Codigo              string
	Lote                string
	ObservacaoMesclada  string
	QuantidadeConsumida int
	QuantidadeRepor     int
	DocumentosOrigem    []string
	Contaminado         bool
	NotaSugestao        string
}

// collator for pt-BR ordering of the final list and of the catalog.
var ptBR = language.BrazilianPortuguese

// Aggregate folds every successful document's materials into one
// deduplicated, quantity-summed replenishment list, then cross-references
// each line against the master catalog. The function is deterministic:
// re-running over the same input yields an identical list, order included.
// An input without successful documents yields an empty (non-nil) list.
func Aggregate(docs []Documento, catalogo []Entrada) []Item {
	type membro struct {
		reg   Registro
		docID string
	}

	// 1. Flatten — only successful documents contribute.
	var planos []membro
	for _, d := range docs {
		if !d.Sucesso {
			continue
		}
		for _, m := range d.Materiais {
			if strings.TrimSpace(m.Descricao) == "" {
				continue
			}
			planos = append(planos, membro{reg: m, docID: d.ID})
		}
	}

	// 2. Group by key, preserving first-appearance order.
	grupos := make(map[GroupKey][]membro)
	var ordem []GroupKey
	for _, p := range planos {
		k := KeyFor(p.reg.Descricao, p.reg.Codigo, p.reg.Lote)
		if _, ok := grupos[k]; !ok {
			ordem = append(ordem, k)
		}
		grupos[k] = append(grupos[k], p)
	}

	itens := make([]Item, 0, len(ordem))
	for _, k := range ordem {
		membros := grupos[k]
		rep := membros[0].reg // representative record for descriptive fields

		// Explicit passes over the whole group: totals stay correct no
		// matter the insertion order, so re-aggregation is idempotent.
		total := 0
		contaminado := false
		var docIDs []string
		vistos := make(map[string]bool)
		obs := ""
		for _, m := range membros {
			q := m.reg.Quantidade
			if q <= 0 {
				q = 1
			}
			total += q
			if m.reg.Contaminado {
				contaminado = true
			}
			if !vistos[m.docID] {
				vistos[m.docID] = true
				docIDs = append(docIDs, m.docID)
			}
			obs = appendObservacao(obs, mesclarObservacao(m.reg))
		}

		itens = append(itens, Item{
			Descricao:           strings.TrimSpace(rep.Descricao),
			Codigo:              strings.TrimSpace(rep.Codigo),
			Lote:                strings.TrimSpace(rep.Lote),
			ObservacaoMesclada:  obs,
			QuantidadeConsumida: total,
			// Current policy: replenish exactly what was consumed.
			QuantidadeRepor:  total,
			DocumentosOrigem: docIDs,
			Contaminado:      contaminado,
			NotaSugestao:     notaSugestao(rep, catalogo),
		})
	}

	// 4. Locale-aware ordering: description, then lot (empty first), then
	// code as a final deterministic tie-break.
	col := collate.New(ptBR, collate.IgnoreCase)
	sort.SliceStable(itens, func(i, j int) bool {
		if c := col.CompareString(itens[i].Descricao, itens[j].Descricao); c != 0 {
			return c < 0
		}
		if itens[i].Lote != itens[j].Lote {
			return itens[i].Lote < itens[j].Lote
		}
		return itens[i].Codigo < itens[j].Codigo
	})
	return itens
}

// mesclarObservacao combines one record's AI and reviewer observations into
// "<*ai*> | user", or whichever half is present.
func mesclarObservacao(r Registro) string {
	ai := strings.TrimSpace(r.Observacao)
	user := strings.TrimSpace(r.ObservacaoUsuario)
	switch {
	case ai != "" && user != "":
		return "*" + ai + "* | " + user
	case ai != "":
		return "*" + ai + "*"
	default:
		return user
	}
}

// appendObservacao accumulates merged texts across group members, skipping
// fragments already contained in the accumulated string so repeated
// per-document notes don't repeat without bound.
func appendObservacao(acc, next string) string {
	if next == "" {
		return acc
	}
	if acc == "" {
		return next
	}
	if strings.Contains(acc, next) {
		return acc
	}
	return acc + " | " + next
}

// notaSugestao cross-references a group's representative record against the
// master catalog. Match precedence:
//  1. both sides carry a code and they match (case-insensitive)
//  2. neither side carries a code and descriptions match
//  3. record has no code and some catalog description matches — first match
//     in catalog order wins
func notaSugestao(rep Registro, catalogo []Entrada) string {
	codigo := strings.TrimSpace(rep.Codigo)

	var match *Entrada
	for i := range catalogo {
		e := &catalogo[i]
		switch {
		case codigo != "" && e.Codigo != "":
			if sameText(codigo, e.Codigo) {
				match = e
			}
		case codigo == "" && e.Codigo == "":
			if sameText(rep.Descricao, e.Descricao) {
				match = e
			}
		case codigo == "":
			if sameText(rep.Descricao, e.Descricao) {
				match = e
			}
		}
		if match != nil {
			break
		}
	}

	if match == nil {
		return NotaNaoCadastrado
	}
	if !sameText(rep.Descricao, match.Descricao) {
		return fmt.Sprintf(notaDivergenciaDescr, strings.TrimSpace(rep.Descricao), match.Descricao)
	}
	return NotaReposicaoPadrao
}
