package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAprenderAtualizaDescricaoPorCodigo(t *testing.T) {
	catalogo := []Entrada{{ID: "1", Descricao: "Parafuso Antigo", Codigo: "P-1"}}

	out, mudou := Aprender(catalogo, []Correcao{{Descricao: "Parafuso Cortical 3.5mm", Codigo: "p-1"}})
	require.True(t, mudou)
	require.Len(t, out, 1)
	assert.Equal(t, "Parafuso Cortical 3.5mm", out[0].Descricao, "corrected casing preserved")
	assert.Equal(t, "P-1", out[0].Codigo, "existing code untouched")
}

func TestAprenderAnexaCodigoAEntradaSemCodigo(t *testing.T) {
	catalogo := []Entrada{{ID: "1", Descricao: "Gaze Estéril"}}

	out, mudou := Aprender(catalogo, []Correcao{{Descricao: "gaze estéril", Codigo: "G-10"}})
	require.True(t, mudou)
	require.Len(t, out, 1, "code attached in place, no duplicate created")
	assert.Equal(t, "G-10", out[0].Codigo)
}

func TestAprenderAdicionaEntradaNova(t *testing.T) {
	out, mudou := Aprender(nil, []Correcao{{Descricao: "Haste Intramedular", Codigo: "H-7"}})
	require.True(t, mudou)
	require.Len(t, out, 1)
	assert.Equal(t, "H-7", out[0].Codigo)
}

func TestAprenderNuncaDuplicaCodigo(t *testing.T) {
	catalogo := []Entrada{{ID: "1", Descricao: "Parafuso", Codigo: "P-1"}}

	correcoes := []Correcao{
		{Descricao: "Parafuso Cortical", Codigo: "P-1"},
		{Descricao: "Parafuso Esponjoso", Codigo: "p-1"},
		{Descricao: "Parafuso Esponjoso", Codigo: "P-1"},
	}
	out, _ := Aprender(catalogo, correcoes)

	vistos := make(map[string]int)
	for _, e := range out {
		if e.Codigo != "" {
			vistos[normalize(e.Codigo)]++
		}
	}
	for codigo, n := range vistos {
		assert.Equal(t, 1, n, "code %q appears more than once", codigo)
	}
}

func TestAprenderSemCodigoNaoDuplicaDescricao(t *testing.T) {
	catalogo := []Entrada{
		{ID: "1", Descricao: "Gaze", Codigo: "G-1"},
		{ID: "2", Descricao: "Compressa"},
	}

	// "Gaze" only exists as a coded entry: a codeless correction adds a
	// distinct codeless entry rather than touching the coded one.
	out, mudou := Aprender(catalogo, []Correcao{{Descricao: "Gaze"}, {Descricao: "Compressa"}})
	require.True(t, mudou)
	require.Len(t, out, 3)

	// Re-applying the same corrections is a no-op.
	out2, mudou2 := Aprender(out, []Correcao{{Descricao: "Gaze"}, {Descricao: "Compressa"}})
	assert.False(t, mudou2)
	assert.Equal(t, out, out2)
}

func TestAprenderIgnoraCorrecaoVazia(t *testing.T) {
	out, mudou := Aprender(nil, []Correcao{{Descricao: "   "}, {Codigo: "X-1"}})
	assert.False(t, mudou)
	assert.Empty(t, out)
}

func TestAprenderReordenaPorDescricao(t *testing.T) {
	catalogo := []Entrada{{ID: "1", Descricao: "Placa", Codigo: "PL-1"}}

	out, _ := Aprender(catalogo, []Correcao{
		{Descricao: "Agulha", Codigo: "A-1"},
		{Descricao: "órtese", Codigo: "O-1"},
	})
	require.Len(t, out, 3)
	assert.Equal(t, "Agulha", out[0].Descricao)
	assert.Equal(t, "órtese", out[1].Descricao)
	assert.Equal(t, "Placa", out[2].Descricao)
}
