//go:build integration

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/config"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/dto"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/infra"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/repository"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	engine *gin.Engine
	db     *gorm.DB
	rdb    *goredis.Client
	token  string
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("healthadmin_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	redisC, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	redisURL, err := redisC.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(redisURL)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "integration-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    2,
		UploadStoragePath:  t.TempDir(),
		PDFStoragePath:     t.TempDir(),
	}
	log := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb, log)

	engine := Setup(Dependencies{
		DB:         db,
		Redis:      rdb,
		Config:     cfg,
		Logger:     log,
		CB:         cb,
		Dispatcher: dispatcher,
	})

	env := &testEnv{engine: engine, db: db, rdb: rdb}
	env.token = env.seedAndLogin(t)
	return env
}

func (e *testEnv) seedAndLogin(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("senha-forte"), 4)
	require.NoError(t, err)
	admin := &model.Usuario{
		Username:     "admin",
		Nome:         "Administrador",
		PasswordHash: string(hash),
		Rol:          "administrador",
		Ativo:        true,
	}
	require.NoError(t, repository.NewUsuarioRepository(e.db).Create(context.Background(), admin))

	var login dto.LoginResponse
	status := e.request(t, http.MethodPost, "/v1/auth/login", "",
		dto.LoginRequest{Username: "admin", Password: "senha-forte"}, &login)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, login.AccessToken)
	return login.AccessToken
}

func (e *testEnv) request(t *testing.T, method, path, token string, body, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func strptr(s string) *string { return &s }

func TestFluxoCompletoDePedido(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	// rotas protegidas exigem token
	status := env.request(t, http.MethodGet, "/v1/pedidos", "", nil, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	// hospital + catálogo
	var hospital dto.HospitalResponse
	status = env.request(t, http.MethodPost, "/v1/hospitais", env.token,
		dto.CriarHospitalRequest{Nome: "Hospital Integração", EmailContato: strptr("compras@hospital.test")}, &hospital)
	require.Equal(t, http.StatusCreated, status)

	var material dto.MaterialResponse
	status = env.request(t, http.MethodPost, "/v1/materiais", env.token,
		dto.CriarMaterialRequest{Descricao: "Parafuso Cortical 3.5mm", Codigo: strptr("PC-3.5")}, &material)
	require.Equal(t, http.StatusCreated, status)

	// pedido
	var pedido dto.PedidoResponse
	status = env.request(t, http.MethodPost, "/v1/pedidos", env.token,
		dto.CriarPedidoRequest{HospitalID: hospital.ID}, &pedido)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, model.PedidoAberta, pedido.Status)
	assert.Positive(t, pedido.Numero)

	// dois documentos extraídos com sucesso, inseridos direto no repositório
	// (a extração real depende do provedor externo)
	docRepo := repository.NewDocumentoRepository(env.db)
	pedidoID := mustUUID(t, pedido.ID)
	doc1 := &model.Documento{
		PedidoID: pedidoID, NomeArquivo: "ficha1.jpg", CaminhoArquivo: "/dev/null",
		MimeType: "image/jpeg", Status: model.DocumentoSucesso,
		Materiais: []model.MaterialConsumido{
			{Descricao: "Parafuso Cortical 3.5mm", Codigo: strptr("PC-3.5"), Lote: strptr("L1"), Quantidade: 2},
		},
	}
	doc2 := &model.Documento{
		PedidoID: pedidoID, NomeArquivo: "ficha2.jpg", CaminhoArquivo: "/dev/null",
		MimeType: "image/jpeg", Status: model.DocumentoSucesso,
		Materiais: []model.MaterialConsumido{
			{Descricao: "Parafuso Cortical 3.5mm", Codigo: strptr("PC-3.5"), Lote: strptr("L1"), Quantidade: 3},
			{Descricao: "Fio Guia", Quantidade: 1},
		},
	}
	require.NoError(t, docRepo.Create(ctx, doc1))
	require.NoError(t, docRepo.Create(ctx, doc2))

	// agregação consolida e soma
	var agregado dto.PedidoResponse
	status = env.request(t, http.MethodPost, "/v1/pedidos/"+pedido.ID+"/agregar", env.token, nil, &agregado)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.PedidoRevisao, agregado.Status)
	require.Len(t, agregado.Itens, 2)

	var parafuso *dto.ItemReposicaoResponse
	for i := range agregado.Itens {
		if agregado.Itens[i].Codigo != nil && *agregado.Itens[i].Codigo == "PC-3.5" {
			parafuso = &agregado.Itens[i]
		}
	}
	require.NotNil(t, parafuso)
	assert.Equal(t, 5, parafuso.QuantidadeConsumida)
	assert.Equal(t, 5, parafuso.QuantidadeRepor)
	assert.Len(t, parafuso.DocumentosOrigem, 2)

	// correção com aprendizado cadastra o material desconhecido
	var docResp dto.DocumentoResponse
	status = env.request(t, http.MethodPut, "/v1/documentos/"+doc2.ID.String(), env.token,
		dto.CorrigirDocumentoRequest{
			Materiais: []dto.MaterialConsumidoInput{
				{Descricao: "Parafuso Cortical 3.5mm", Codigo: strptr("PC-3.5"), Lote: strptr("L1"), Quantidade: 3},
				{Descricao: "Fio Guia Cirúrgico", Codigo: strptr("FG-1"), Quantidade: 1},
			},
			Aprender: true,
		}, &docResp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.DocumentoSucesso, docResp.Status)

	var materiais dto.MaterialListResponse
	status = env.request(t, http.MethodGet, "/v1/materiais?busca=FG-1", env.token, nil, &materiais)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, materiais.Data, 1)
	assert.Equal(t, "Fio Guia Cirúrgico", materiais.Data[0].Descricao)

	// concluir enfileira a geração do relatório
	status = env.request(t, http.MethodPost, "/v1/pedidos/"+pedido.ID+"/concluir", env.token,
		dto.ConcluirPedidoRequest{EnviarEmail: false}, nil)
	require.Equal(t, http.StatusAccepted, status)

	pendentes, err := env.rdb.LLen(ctx, worker.QueueRelatorio).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pendentes)

	// pedido concluído congela documentos
	status = env.request(t, http.MethodPut, "/v1/documentos/"+doc1.ID.String(), env.token,
		dto.CorrigirDocumentoRequest{
			Materiais: []dto.MaterialConsumidoInput{{Descricao: "Qualquer", Quantidade: 1}},
		}, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestReprocessamentoDaDLQ(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	log := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	job := worker.Job{
		ID:         uuid.NewString(),
		Queue:      worker.QueueExtracao,
		Payload:    json.RawMessage(`{"pedido_id":"` + uuid.NewString() + `","somente_erros":false}`),
		EnqueuedAt: time.Now().UTC(),
		Attempts:   1,
	}
	worker.SendToDLQ(ctx, env.rdb, job, "provedor fora do ar", log)

	var tamanhos map[string]int64
	status := env.request(t, http.MethodGet, "/v1/filas/dlq", env.token, nil, &tamanhos)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), tamanhos["extracao"])
	assert.Equal(t, int64(0), tamanhos["relatorio"])

	var resultado map[string]int
	status = env.request(t, http.MethodPost, "/v1/filas/extracao/dlq/reprocessar", env.token, nil, &resultado)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, resultado["reprocessados"])

	vivos, err := env.rdb.LLen(ctx, worker.QueueExtracao).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), vivos)
	mortos, err := env.rdb.LLen(ctx, "dlq:"+worker.QueueExtracao).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), mortos)

	status = env.request(t, http.MethodPost, "/v1/filas/inexistente/dlq/reprocessar", env.token, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPermissoesPorPapel(t *testing.T) {
	env := setupEnv(t)

	// cria um técnico via rota administrativa
	var tecnico dto.UsuarioResponse
	status := env.request(t, http.MethodPost, "/v1/usuarios", env.token, dto.CriarUsuarioRequest{
		Username: "tecnico1",
		Nome:     "Técnico de Campo",
		Password: "senha-forte",
		Rol:      "tecnico",
	}, &tecnico)
	require.Equal(t, http.StatusCreated, status)

	var login dto.LoginResponse
	status = env.request(t, http.MethodPost, "/v1/auth/login", "",
		dto.LoginRequest{Username: "tecnico1", Password: "senha-forte"}, &login)
	require.Equal(t, http.StatusOK, status)

	// técnico não administra usuários nem hospitais
	status = env.request(t, http.MethodGet, "/v1/usuarios", login.AccessToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status = env.request(t, http.MethodPost, "/v1/hospitais", login.AccessToken,
		dto.CriarHospitalRequest{Nome: "Hospital Indevido"}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// mas opera o fluxo de pedidos
	status = env.request(t, http.MethodGet, "/v1/pedidos", login.AccessToken, nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func mustUUID(t *testing.T, s string) (id uuid.UUID) {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
