package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyForPrefersCodigo(t *testing.T) {
	a := KeyFor("Parafuso Cortical", "  P-1 ", "")
	b := KeyFor("Parafuso cortical 3.5mm", "p-1", "")
	assert.Equal(t, a, b, "same code must group regardless of description")
	assert.Equal(t, "p-1", a.Identidade)
}

func TestKeyForFallsBackToDescricao(t *testing.T) {
	a := KeyFor("  Gaze Estéril ", "", "")
	b := KeyFor("gaze estéril", "", "")
	assert.Equal(t, a, b)
	assert.Equal(t, "gaze estéril", a.Identidade)
}

func TestKeyForLoteDiscriminates(t *testing.T) {
	a := KeyFor("Placa", "C-9", "L1")
	b := KeyFor("Placa", "C-9", "L2")
	c := KeyFor("Placa", "C-9", "")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, KeyFor("placa", "c-9", " L1 "))
}

func TestKeyForNoConcatenationCollision(t *testing.T) {
	// The historical string key "<identity>_LOT_<lot>" could collide when a
	// description ends in lot-marker text; the tuple key cannot.
	a := KeyFor("parafuso_LOT_X", "", "")
	b := KeyFor("parafuso", "", "X")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a.String(), "parafuso_lot_x_NO_LOT")
	assert.Equal(t, b.String(), "parafuso_LOT_X")
}

func TestGroupKeyString(t *testing.T) {
	assert.Equal(t, "p-1_NO_LOT", KeyFor("Parafuso", "P-1", "").String())
	assert.Equal(t, "p-1_LOT_L7", KeyFor("Parafuso", "P-1", "L7").String())
}
