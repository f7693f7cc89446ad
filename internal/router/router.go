package router

import (
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/config"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/handler"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/infra"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/middleware"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/repository"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/service"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// requests per minute per client IP
const rateLimitPerMinute = 120

// Dependencies carries everything the HTTP layer needs wired in.
type Dependencies struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Config     *config.Config
	Logger     zerolog.Logger
	CB         *infra.CircuitBreaker
	Dispatcher *worker.Dispatcher
}

// Setup builds the gin engine: middleware chain, dependency graph
// (repositories → services → handlers) and every route group.
func Setup(deps Dependencies) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.Env, deps.Config.Domain))
	r.Use(middleware.RateLimiter(deps.Redis, rateLimitPerMinute, deps.Logger))

	// Repositories
	usuarioRepo := repository.NewUsuarioRepository(deps.DB)
	hospitalRepo := repository.NewHospitalRepository(deps.DB)
	materialRepo := repository.NewMaterialRepository(deps.DB)
	pedidoRepo := repository.NewPedidoRepository(deps.DB)
	docRepo := repository.NewDocumentoRepository(deps.DB)

	// Services
	authSvc := service.NewAuthService(usuarioRepo, deps.Config)
	hospitalSvc := service.NewHospitalService(hospitalRepo)
	materialSvc := service.NewMaterialService(materialRepo, deps.Logger)
	documentoSvc := service.NewDocumentoService(docRepo, pedidoRepo, materialSvc, deps.Logger)
	pedidoSvc := service.NewPedidoService(pedidoRepo, docRepo, hospitalRepo, materialSvc, deps.Dispatcher, deps.Config, deps.Logger)

	// Handlers
	healthH := handler.NewHealthHandler(deps.DB, deps.Redis, deps.CB)
	authH := handler.NewAuthHandler(authSvc)
	usuarioH := handler.NewUsuarioHandler(authSvc)
	hospitalH := handler.NewHospitalHandler(hospitalSvc)
	materialH := handler.NewMaterialHandler(materialSvc)
	pedidoH := handler.NewPedidoHandler(pedidoSvc)
	documentoH := handler.NewDocumentoHandler(documentoSvc)
	filaH := handler.NewFilaHandler(deps.Redis, deps.Logger)

	r.GET("/health", healthH.Check)
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authH.Login)
			auth.POST("/refresh", authH.Refresh)
			auth.GET("/me", middleware.JWTAuth(deps.Config.JWTSecret), authH.Me)
		}

		autenticado := v1.Group("")
		autenticado.Use(middleware.JWTAuth(deps.Config.JWTSecret))
		{
			admin := autenticado.Group("")
			admin.Use(middleware.RequireRole("administrador"))
			{
				admin.POST("/usuarios", usuarioH.Criar)
				admin.GET("/usuarios", usuarioH.Listar)
				admin.PUT("/usuarios/:id", usuarioH.Atualizar)
				admin.DELETE("/usuarios/:id", usuarioH.Desativar)
				admin.POST("/usuarios/:id/reativar", usuarioH.Reativar)

				admin.POST("/hospitais", hospitalH.Criar)
				admin.PUT("/hospitais/:id", hospitalH.Atualizar)
				admin.DELETE("/hospitais/:id", hospitalH.Desativar)

				admin.DELETE("/materiais/:id", materialH.Excluir)

				admin.GET("/filas/dlq", filaH.ListarDLQ)
				admin.POST("/filas/:fila/dlq/reprocessar", filaH.ReprocessarDLQ)
			}

			autenticado.GET("/hospitais", hospitalH.Listar)
			autenticado.GET("/hospitais/:id", hospitalH.Obter)

			autenticado.POST("/materiais", materialH.Criar)
			autenticado.GET("/materiais", materialH.Listar)
			autenticado.GET("/materiais/:id", materialH.Obter)
			autenticado.PUT("/materiais/:id", materialH.Atualizar)

			autenticado.POST("/pedidos", pedidoH.Criar)
			autenticado.GET("/pedidos", pedidoH.Listar)
			autenticado.GET("/pedidos/:id", pedidoH.Obter)
			autenticado.POST("/pedidos/:id/documentos", pedidoH.AdicionarDocumento)
			autenticado.POST("/pedidos/:id/processar", pedidoH.Processar)
			autenticado.POST("/pedidos/:id/reprocessar", pedidoH.Reprocessar)
			autenticado.POST("/pedidos/:id/agregar", pedidoH.Agregar)
			autenticado.POST("/pedidos/:id/concluir", pedidoH.Concluir)
			autenticado.GET("/pedidos/:id/pdf", pedidoH.BaixarPDF)

			autenticado.GET("/documentos/:id", documentoH.Obter)
			autenticado.PUT("/documentos/:id", documentoH.Corrigir)
		}
	}

	return r
}
