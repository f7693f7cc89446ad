package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/aggregation"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/config"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Stubs ───────────────────────────────────────────────────────────────────

type memPedidoRepo struct {
	mu      sync.Mutex
	pedidos map[uuid.UUID]*model.Pedido
	numero  int
}

func newMemPedidoRepo(pedidos ...*model.Pedido) *memPedidoRepo {
	r := &memPedidoRepo{pedidos: map[uuid.UUID]*model.Pedido{}}
	for _, p := range pedidos {
		r.pedidos[p.ID] = p
	}
	return r
}

func (r *memPedidoRepo) Create(ctx context.Context, p *model.Pedido) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.pedidos[p.ID] = p
	return nil
}

func (r *memPedidoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pedidos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *memPedidoRepo) List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Pedido
	for _, p := range r.pedidos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *memPedidoRepo) NextNumero(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.numero++
	return r.numero, nil
}

func (r *memPedidoRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pedidos[id].Status = status
	return nil
}

func (r *memPedidoRepo) UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pedidos[id].PDFPath = &path
	return nil
}

func (r *memPedidoRepo) ReplaceItens(ctx context.Context, pedidoID uuid.UUID, itens []model.ItemReposicao) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pedidos[pedidoID].Itens = itens
	return nil
}

type memHospitalRepo struct {
	hospitais map[uuid.UUID]*model.Hospital
}

func (r *memHospitalRepo) Create(ctx context.Context, h *model.Hospital) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	r.hospitais[h.ID] = h
	return nil
}

func (r *memHospitalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	h, ok := r.hospitais[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return h, nil
}

func (r *memHospitalRepo) List(ctx context.Context) ([]model.Hospital, error) { return nil, nil }
func (r *memHospitalRepo) Update(ctx context.Context, h *model.Hospital) error {
	r.hospitais[h.ID] = h
	return nil
}
func (r *memHospitalRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.hospitais[id].Ativo = false
	return nil
}

type memDocRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*model.Documento
}

func newMemDocRepo() *memDocRepo { return &memDocRepo{docs: map[uuid.UUID]*model.Documento{}} }

func (r *memDocRepo) Create(ctx context.Context, d *model.Documento) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.docs[d.ID] = d
	return nil
}

func (r *memDocRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Documento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return d, nil
}

func (r *memDocRepo) ListByPedido(ctx context.Context, pedidoID uuid.UUID) ([]model.Documento, error) {
	return nil, nil
}
func (r *memDocRepo) ListByPedidoStatus(ctx context.Context, pedidoID uuid.UUID, status string) ([]model.Documento, error) {
	return nil, nil
}
func (r *memDocRepo) Update(ctx context.Context, d *model.Documento) error { return nil }
func (r *memDocRepo) MarcarProcessando(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (r *memDocRepo) MarcarSucesso(ctx context.Context, d *model.Documento) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.Status = model.DocumentoSucesso
	d.ErroMensagem = nil
	r.docs[d.ID] = d
	return nil
}

func (r *memDocRepo) MarcarErro(ctx context.Context, id uuid.UUID, mensagem string, nextRetryAt *time.Time) error {
	return nil
}
func (r *memDocRepo) ReplaceMateriais(ctx context.Context, documentoID uuid.UUID, materiais []model.MaterialConsumido) error {
	return nil
}
func (r *memDocRepo) ListPendingRetries(ctx context.Context, now time.Time, maxRetries, limit int) ([]model.Documento, error) {
	return nil, nil
}

type stubMaterialSvc struct {
	catalogo  []aggregation.Entrada
	aprendido [][]aggregation.Correcao
}

func (s *stubMaterialSvc) Criar(ctx context.Context, req dto.CriarMaterialRequest) (*dto.MaterialResponse, error) {
	return nil, nil
}
func (s *stubMaterialSvc) Listar(ctx context.Context, f dto.MaterialFilter) (*dto.MaterialListResponse, error) {
	return nil, nil
}
func (s *stubMaterialSvc) Obter(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error) {
	return nil, nil
}
func (s *stubMaterialSvc) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarMaterialRequest) (*dto.MaterialResponse, error) {
	return nil, nil
}
func (s *stubMaterialSvc) Excluir(ctx context.Context, id uuid.UUID) error { return nil }
func (s *stubMaterialSvc) AprenderCorrecoes(ctx context.Context, correcoes []aggregation.Correcao) error {
	s.aprendido = append(s.aprendido, correcoes)
	return nil
}
func (s *stubMaterialSvc) Catalogo(ctx context.Context) ([]aggregation.Entrada, error) {
	return s.catalogo, nil
}

type stubEnfileirador struct {
	mu   sync.Mutex
	jobs []enfileirado
}

type enfileirado struct {
	queue   string
	payload interface{}
}

func (e *stubEnfileirador) Enqueue(ctx context.Context, queue string, payload interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobs = append(e.jobs, enfileirado{queue: queue, payload: payload})
	return nil
}

// ─── Fixtures ────────────────────────────────────────────────────────────────

type pedidoFixture struct {
	svc        PedidoService
	pedidoRepo *memPedidoRepo
	docRepo    *memDocRepo
	hospital   *model.Hospital
	fila       *stubEnfileirador
	materiais  *stubMaterialSvc
}

func novoPedidoFixture(t *testing.T, pedidos ...*model.Pedido) *pedidoFixture {
	t.Helper()
	hospital := &model.Hospital{ID: uuid.New(), Nome: "Hospital Santa Casa", Ativo: true}
	hospitalRepo := &memHospitalRepo{hospitais: map[uuid.UUID]*model.Hospital{hospital.ID: hospital}}
	pedidoRepo := newMemPedidoRepo(pedidos...)
	docRepo := newMemDocRepo()
	fila := &stubEnfileirador{}
	materiais := &stubMaterialSvc{}
	cfg := &config.Config{
		UploadStoragePath: t.TempDir(),
		PDFStoragePath:    t.TempDir(),
	}
	svc := NewPedidoService(pedidoRepo, docRepo, hospitalRepo, materiais, fila, cfg, zerolog.Nop())
	return &pedidoFixture{
		svc:        svc,
		pedidoRepo: pedidoRepo,
		docRepo:    docRepo,
		hospital:   hospital,
		fila:       fila,
		materiais:  materiais,
	}
}

func ptr(s string) *string { return &s }

// ─── Tests ───────────────────────────────────────────────────────────────────

func TestCriarPedido(t *testing.T) {
	f := novoPedidoFixture(t)

	resp, err := f.svc.Criar(context.Background(), dto.CriarPedidoRequest{HospitalID: f.hospital.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Numero)
	assert.Equal(t, model.PedidoAberta, resp.Status)

	resp2, err := f.svc.Criar(context.Background(), dto.CriarPedidoRequest{HospitalID: f.hospital.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 2, resp2.Numero, "números de pedido são sequenciais")
}

func TestCriarPedidoHospitalInativo(t *testing.T) {
	f := novoPedidoFixture(t)
	f.hospital.Ativo = false

	_, err := f.svc.Criar(context.Background(), dto.CriarPedidoRequest{HospitalID: f.hospital.ID.String()})
	assert.ErrorIs(t, err, ErrHospitalInativo)

	_, err = f.svc.Criar(context.Background(), dto.CriarPedidoRequest{HospitalID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrHospitalInativo)
}

func TestAdicionarDocumento(t *testing.T) {
	pedido := &model.Pedido{ID: uuid.New(), Numero: 7, Status: model.PedidoAberta}
	f := novoPedidoFixture(t, pedido)

	resp, err := f.svc.AdicionarDocumento(context.Background(), pedido.ID, "ficha.jpg", "image/jpeg", []byte("scan"))
	require.NoError(t, err)
	assert.Equal(t, model.DocumentoPendente, resp.Status)
	assert.Equal(t, "ficha.jpg", resp.NomeArquivo)

	docID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	doc, err := f.docRepo.FindByID(context.Background(), docID)
	require.NoError(t, err)
	conteudo, err := os.ReadFile(doc.CaminhoArquivo)
	require.NoError(t, err)
	assert.Equal(t, []byte("scan"), conteudo)
}

func TestAdicionarDocumentoFormatoInvalido(t *testing.T) {
	pedido := &model.Pedido{ID: uuid.New(), Status: model.PedidoAberta}
	f := novoPedidoFixture(t, pedido)

	_, err := f.svc.AdicionarDocumento(context.Background(), pedido.ID, "planilha.xlsx", "application/vnd.ms-excel", nil)
	assert.ErrorIs(t, err, ErrFormatoNaoSuportado)
}

func TestAdicionarDocumentoPedidoConcluido(t *testing.T) {
	pedido := &model.Pedido{ID: uuid.New(), Status: model.PedidoConcluida}
	f := novoPedidoFixture(t, pedido)

	_, err := f.svc.AdicionarDocumento(context.Background(), pedido.ID, "ficha.jpg", "image/jpeg", []byte("scan"))
	assert.ErrorIs(t, err, ErrPedidoConcluido)
}

func TestProcessarEnfileiraExtracao(t *testing.T) {
	pedido := &model.Pedido{
		ID:     uuid.New(),
		Status: model.PedidoAberta,
		Documentos: []model.Documento{
			{ID: uuid.New(), Status: model.DocumentoPendente},
		},
	}
	f := novoPedidoFixture(t, pedido)

	require.NoError(t, f.svc.Processar(context.Background(), pedido.ID))
	assert.Equal(t, model.PedidoProcessando, pedido.Status)
	require.Len(t, f.fila.jobs, 1)
	assert.Equal(t, "jobs:extracao", f.fila.jobs[0].queue)
}

func TestProcessarSemDocumentos(t *testing.T) {
	pedido := &model.Pedido{ID: uuid.New(), Status: model.PedidoAberta}
	f := novoPedidoFixture(t, pedido)

	err := f.svc.Processar(context.Background(), pedido.ID)
	assert.ErrorIs(t, err, ErrPedidoSemDocumentos)
	assert.Empty(t, f.fila.jobs)
}

func TestReprocessarExigeDocumentoComErro(t *testing.T) {
	pedido := &model.Pedido{
		ID:     uuid.New(),
		Status: model.PedidoRevisao,
		Documentos: []model.Documento{
			{ID: uuid.New(), Status: model.DocumentoSucesso},
		},
	}
	f := novoPedidoFixture(t, pedido)

	err := f.svc.Reprocessar(context.Background(), pedido.ID)
	assert.ErrorIs(t, err, ErrPedidoSemDocumentos, "sem documentos com erro não há o que reprocessar")
}

func TestAgregarConsolidaDocumentos(t *testing.T) {
	docA, docB, docErro := uuid.New(), uuid.New(), uuid.New()
	pedido := &model.Pedido{
		ID:     uuid.New(),
		Status: model.PedidoProcessando,
		Documentos: []model.Documento{
			{ID: docA, Status: model.DocumentoSucesso, Materiais: []model.MaterialConsumido{
				{Descricao: "Parafuso Cortical", Codigo: ptr("P-1"), Lote: ptr("L1"), Quantidade: 2},
			}},
			{ID: docB, Status: model.DocumentoSucesso, Materiais: []model.MaterialConsumido{
				{Descricao: "Parafuso Cortical", Codigo: ptr("P-1"), Lote: ptr("L1"), Quantidade: 3},
				{Descricao: "Fio Guia", Quantidade: 1},
			}},
			// documento com erro não contribui
			{ID: docErro, Status: model.DocumentoErro, Materiais: []model.MaterialConsumido{
				{Descricao: "Broca", Quantidade: 9},
			}},
		},
	}
	f := novoPedidoFixture(t, pedido)
	f.materiais.catalogo = []aggregation.Entrada{
		{ID: "m1", Descricao: "Parafuso Cortical", Codigo: "P-1"},
	}

	resp, err := f.svc.Agregar(context.Background(), pedido.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PedidoRevisao, resp.Status)

	require.Len(t, pedido.Itens, 2)
	porDescricao := map[string]model.ItemReposicao{}
	for i, item := range pedido.Itens {
		assert.Equal(t, i, item.Posicao, "posições devem ser sequenciais")
		porDescricao[item.Descricao] = item
	}

	parafuso := porDescricao["Parafuso Cortical"]
	assert.Equal(t, 5, parafuso.QuantidadeConsumida)
	assert.Equal(t, 5, parafuso.QuantidadeRepor)
	assert.ElementsMatch(t, []string{docA.String(), docB.String()}, parafuso.DocumentosOrigem)
	assert.Equal(t, aggregation.NotaReposicaoPadrao, parafuso.NotaSugestao)

	fio := porDescricao["Fio Guia"]
	assert.Equal(t, 1, fio.QuantidadeConsumida)
	assert.Equal(t, aggregation.NotaNaoCadastrado, fio.NotaSugestao)

	_, temBroca := porDescricao["Broca"]
	assert.False(t, temBroca)
}

func TestConcluirExigeRevisaoEItens(t *testing.T) {
	aberta := &model.Pedido{ID: uuid.New(), Status: model.PedidoAberta}
	semItens := &model.Pedido{ID: uuid.New(), Status: model.PedidoRevisao}
	f := novoPedidoFixture(t, aberta, semItens)

	err := f.svc.Concluir(context.Background(), aberta.ID, dto.ConcluirPedidoRequest{})
	assert.ErrorIs(t, err, ErrPedidoNaoRevisao)

	err = f.svc.Concluir(context.Background(), semItens.ID, dto.ConcluirPedidoRequest{})
	assert.ErrorIs(t, err, ErrPedidoSemItens)
}

func TestConcluirEnfileiraRelatorio(t *testing.T) {
	pedido := &model.Pedido{
		ID:     uuid.New(),
		Status: model.PedidoRevisao,
		Itens:  []model.ItemReposicao{{Descricao: "Parafuso", QuantidadeRepor: 1}},
	}
	f := novoPedidoFixture(t, pedido)

	require.NoError(t, f.svc.Concluir(context.Background(), pedido.ID, dto.ConcluirPedidoRequest{EnviarEmail: true}))
	assert.Equal(t, model.PedidoConcluida, pedido.Status)
	require.Len(t, f.fila.jobs, 1)
	assert.Equal(t, "jobs:relatorio", f.fila.jobs[0].queue)

	// concluir de novo é rejeitado
	err := f.svc.Concluir(context.Background(), pedido.ID, dto.ConcluirPedidoRequest{})
	assert.ErrorIs(t, err, ErrPedidoConcluido)
}

func TestCaminhoRelatorio(t *testing.T) {
	emRevisao := &model.Pedido{ID: uuid.New(), Numero: 41, Status: model.PedidoRevisao}
	concluido := &model.Pedido{ID: uuid.New(), Numero: 42, Status: model.PedidoConcluida}
	f := novoPedidoFixture(t, emRevisao, concluido)

	_, _, err := f.svc.CaminhoRelatorio(context.Background(), emRevisao.ID)
	assert.ErrorIs(t, err, ErrRelatorioIndisponivel, "pedido não concluído não tem relatório")

	tmp, err := os.CreateTemp(t.TempDir(), "pedido_42_*.pdf")
	require.NoError(t, err)
	tmp.Close()
	path := tmp.Name()
	concluido.PDFPath = &path

	caminho, nome, err := f.svc.CaminhoRelatorio(context.Background(), concluido.ID)
	require.NoError(t, err)
	assert.Equal(t, path, caminho)
	assert.Equal(t, "pedido_42.pdf", nome)
}

func TestCaminhoRelatorioGeraSobDemanda(t *testing.T) {
	pedido := &model.Pedido{
		ID:     uuid.New(),
		Numero: 43,
		Status: model.PedidoConcluida,
		Itens:  []model.ItemReposicao{{Descricao: "Parafuso", QuantidadeRepor: 2, NotaSugestao: "Reposição baseada no consumo."}},
	}
	f := novoPedidoFixture(t, pedido)

	caminho, nome, err := f.svc.CaminhoRelatorio(context.Background(), pedido.ID)
	require.NoError(t, err)
	assert.Equal(t, "pedido_43.pdf", nome)
	assert.FileExists(t, caminho)
	require.NotNil(t, pedido.PDFPath, "caminho fica registrado para os próximos downloads")
}
