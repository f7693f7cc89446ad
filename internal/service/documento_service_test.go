package service

import (
	"context"
	"testing"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/aggregation"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func novoDocumentoFixture(t *testing.T, statusPedido string) (DocumentoService, *model.Documento, *stubMaterialSvc) {
	t.Helper()
	pedido := &model.Pedido{ID: uuid.New(), Status: statusPedido}
	pedidoRepo := newMemPedidoRepo(pedido)
	docRepo := newMemDocRepo()
	doc := &model.Documento{
		ID:       uuid.New(),
		PedidoID: pedido.ID,
		Status:   model.DocumentoErro,
		Materiais: []model.MaterialConsumido{
			{Descricao: "Material Ilegível", Quantidade: 1},
		},
	}
	require.NoError(t, docRepo.Create(context.Background(), doc))

	materiais := &stubMaterialSvc{}
	svc := NewDocumentoService(docRepo, pedidoRepo, materiais, zerolog.Nop())
	return svc, doc, materiais
}

func TestCorrigirSubstituiMateriais(t *testing.T) {
	svc, doc, _ := novoDocumentoFixture(t, model.PedidoRevisao)

	resp, err := svc.Corrigir(context.Background(), doc.ID, dto.CorrigirDocumentoRequest{
		PacienteNome: ptr("Ana Paula"),
		Materiais: []dto.MaterialConsumidoInput{
			{Descricao: "Parafuso Cortical 3.5mm", Codigo: ptr("PC-3.5"), Quantidade: 2},
			{Descricao: "Fio Guia", Quantidade: 0, ObservacaoUsuario: ptr("confirmar com fornecedor")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.DocumentoSucesso, resp.Status, "documento revisado vira sucesso")
	require.NotNil(t, resp.PacienteNome)
	assert.Equal(t, "Ana Paula", *resp.PacienteNome)

	require.Len(t, resp.Materiais, 2)
	assert.Equal(t, "Parafuso Cortical 3.5mm", resp.Materiais[0].Descricao)
	assert.Equal(t, 1, resp.Materiais[1].Quantidade, "quantidade zero vira 1")
	require.NotNil(t, resp.Materiais[1].ObservacaoUsuario)
}

func TestCorrigirComAprendizado(t *testing.T) {
	svc, doc, materiais := novoDocumentoFixture(t, model.PedidoRevisao)

	_, err := svc.Corrigir(context.Background(), doc.ID, dto.CorrigirDocumentoRequest{
		Materiais: []dto.MaterialConsumidoInput{
			{Descricao: "Placa LCP 3.5mm", Codigo: ptr("PL-3.5"), Quantidade: 1},
		},
		Aprender: true,
	})
	require.NoError(t, err)

	require.Len(t, materiais.aprendido, 1)
	assert.Equal(t, []aggregation.Correcao{
		{Descricao: "Placa LCP 3.5mm", Codigo: "PL-3.5"},
	}, materiais.aprendido[0])
}

func TestCorrigirSemAprendizadoNaoTocaCatalogo(t *testing.T) {
	svc, doc, materiais := novoDocumentoFixture(t, model.PedidoRevisao)

	_, err := svc.Corrigir(context.Background(), doc.ID, dto.CorrigirDocumentoRequest{
		Materiais: []dto.MaterialConsumidoInput{
			{Descricao: "Placa LCP 3.5mm", Quantidade: 1},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, materiais.aprendido)
}

func TestCorrigirPedidoConcluido(t *testing.T) {
	svc, doc, _ := novoDocumentoFixture(t, model.PedidoConcluida)

	_, err := svc.Corrigir(context.Background(), doc.ID, dto.CorrigirDocumentoRequest{
		Materiais: []dto.MaterialConsumidoInput{{Descricao: "Qualquer", Quantidade: 1}},
	})
	assert.ErrorIs(t, err, ErrPedidoConcluido)
}

func TestCorrigirDocumentoInexistente(t *testing.T) {
	svc, _, _ := novoDocumentoFixture(t, model.PedidoRevisao)

	_, err := svc.Corrigir(context.Background(), uuid.New(), dto.CorrigirDocumentoRequest{
		Materiais: []dto.MaterialConsumidoInput{{Descricao: "Qualquer", Quantidade: 1}},
	})
	assert.ErrorIs(t, err, ErrDocumentoNaoEncontrado)
}
