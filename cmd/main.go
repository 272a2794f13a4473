package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cortestock/config"
	"cortestock/internal/pkg/cache"
	"cortestock/internal/pkg/database"
	"cortestock/internal/pkg/fiscal"
	"cortestock/internal/pkg/logger"
	"cortestock/internal/pkg/token"

	"cortestock/internal/api/corte"
	"cortestock/internal/api/dashboard"
	"cortestock/internal/api/estoque"
	"cortestock/internal/api/faccao"
	"cortestock/internal/api/regra"
	"cortestock/internal/api/router"
	"cortestock/internal/api/user"
	"cortestock/internal/repository/corterepo"
	"cortestock/internal/repository/defeitorepo"
	"cortestock/internal/repository/estoquerepo"
	"cortestock/internal/repository/faccaorepo"
	"cortestock/internal/repository/regrarepo"
	"cortestock/internal/repository/userrepo"
	"cortestock/internal/service/corteservice"
	"cortestock/internal/service/dashboardservice"
	"cortestock/internal/service/estoqueservice"
	"cortestock/internal/service/faccaoservice"
	"cortestock/internal/service/regraservice"
	"cortestock/internal/service/syncservice"
	"cortestock/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	stdlog.Println("⚡ Inicializando serviço CorteStock...")
	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Cliente do registro fiscal (consulta CNPJ)
	fiscalClient := fiscal.NewClient(cfg.FiscalAPIBaseURL, cfg.FiscalAPITimeout)

	// D. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Repository -> Service -> Handler)

	corteRepo := corterepo.NewCorteRepository(db, cacheClient, cfg.DBTimeout, log)
	estoqueRepo := estoquerepo.NewEstoqueRepository(db, cfg.DBTimeout, log)
	faccaoRepo := faccaorepo.NewFaccaoRepository(db, cfg.DBTimeout, log)
	defeitoRepo := defeitorepo.NewDefeitoRepository(db, cfg.DBTimeout)
	regraRepo := regrarepo.NewRegraRepository(db, cfg.DBTimeout)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	corteSvc := corteservice.NewService(corteRepo, faccaoRepo, defeitoRepo, log)
	syncSvc := syncservice.NewService(corteRepo, estoqueRepo, log)
	estoqueSvc := estoqueservice.NewService(estoqueRepo, log)
	faccaoSvc := faccaoservice.NewService(faccaoRepo, fiscalClient, log)
	regraSvc := regraservice.NewService(regraRepo, log)
	dashboardSvc := dashboardservice.NewService(corteRepo, cacheClient, cfg.CacheTimeout, log)
	userSvc := userservice.NewService(userRepo, tokenSvc)
	log.Debug("Serviços inicializados.", nil)

	corteHandler := corte.NewHandler(corteSvc, syncSvc, log)
	faccaoHandler := faccao.NewHandler(faccaoSvc, log)
	estoqueHandler := estoque.NewHandler(estoqueSvc, log)
	regraHandler := regra.NewHandler(regraSvc, log)
	dashboardHandler := dashboard.NewHandler(dashboardSvc, log)
	userHandler := user.NewHandler(userSvc, log)
	log.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(router.Deps{
		CorteHandler:     corteHandler,
		FaccaoHandler:    faccaoHandler,
		EstoqueHandler:   estoqueHandler,
		RegraHandler:     regraHandler,
		DashboardHandler: dashboardHandler,
		UserHandler:      userHandler,
		TokenSvc:         tokenSvc,
		CacheClient:      cacheClient,
		RateLimitMax:     cfg.RateLimitMaxRequests,
		RateLimitJanela:  cfg.RateLimitPeriod,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor CorteStock ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
