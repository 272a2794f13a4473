package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"cortestock/internal/api/corte"
	"cortestock/internal/api/dashboard"
	"cortestock/internal/api/estoque"
	"cortestock/internal/api/faccao"
	"cortestock/internal/api/regra"
	"cortestock/internal/api/user"
	"cortestock/internal/domain"
	"cortestock/internal/pkg/cache"
	"cortestock/internal/pkg/middleware"
)

// Deps agrupa os Handlers e serviços de infraestrutura que o roteador liga.
type Deps struct {
	CorteHandler     *corte.Handler
	FaccaoHandler    *faccao.Handler
	EstoqueHandler   *estoque.Handler
	RegraHandler     *regra.Handler
	DashboardHandler *dashboard.Handler
	UserHandler      *user.Handler

	TokenSvc        middleware.TokenService
	CacheClient     cache.Client
	RateLimitMax    int
	RateLimitJanela time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(deps Deps) http.Handler {
	// ServeMux padrão do net/http; os Handlers fazem o despacho fino por
	// método e sub-rota.
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(deps.TokenSvc)
	admin := middleware.PermissionMiddleware(domain.RoleAdmin)

	// --- 1. Rotas públicas ---
	mux.HandleFunc("/ping", PingHandler)
	mux.HandleFunc("/v1/register", deps.UserHandler.RegisterUserHandler)
	mux.HandleFunc("/v1/login", deps.UserHandler.LoginUserHandler)
	mux.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// --- 2. Cortes ---
	mux.HandleFunc("/v1/cortes", auth(deps.CorteHandler.CortesHandler))
	mux.HandleFunc("/v1/cortes/", auth(deps.CorteHandler.CortePorIDHandler))
	mux.HandleFunc("/v1/defeitos", auth(deps.CorteHandler.TiposDefeitoHandler))

	// --- 3. Facções ---
	mux.HandleFunc("/v1/faccoes", auth(deps.FaccaoHandler.FaccoesHandler))
	mux.HandleFunc("/v1/faccoes/", auth(deps.FaccaoHandler.FaccaoPorIDHandler))

	// --- 4. Estoque ---
	// Ajustes manuais exigem o papel ADMIN; a consulta de histórico não.
	mux.HandleFunc("/v1/estoque/ajustes", auth(admin(deps.EstoqueHandler.AjustarEstoqueHandler)))
	mux.HandleFunc("/v1/estoque/movimentacoes/", auth(deps.EstoqueHandler.MovimentacoesHandler))

	// --- 5. Regras de consumo e planejamento ---
	mux.HandleFunc("/v1/regras", auth(deps.RegraHandler.RegrasHandler))
	mux.HandleFunc("/v1/regras/", auth(deps.RegraHandler.RegraPorIDHandler))
	mux.HandleFunc("/v1/planejamento", auth(deps.RegraHandler.PlanejamentoHandler))

	// --- 6. Dashboard ---
	mux.HandleFunc("/v1/dashboard/metricas", auth(deps.DashboardHandler.MetricasHandler))

	// --- 7. Middleware global: rate limit por IP ---
	return middleware.RateLimiter(deps.CacheClient, deps.RateLimitMax, deps.RateLimitJanela)(mux)
}

// PingHandler é a função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
