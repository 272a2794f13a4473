package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
)

// DashboardService define o contrato que o Handler espera da camada de Serviço.
type DashboardService interface {
	Metricas(ctx context.Context) (domain.DashboardMetrics, error)
}

// Handler agrupa os métodos de Handler do painel.
type Handler struct {
	Service DashboardService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc DashboardService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// MetricasHandler lida com GET /v1/dashboard/metricas.
// @Summary Indicadores consolidados do painel
// @Description Volumes de cortes e peças mais o percentual geral de defeitos. Resultado cacheado.
// @Tags dashboard
// @Produce json
// @Success 200 {object} domain.DashboardMetrics "Indicadores"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /dashboard/metricas [get]
func (h *Handler) MetricasHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	metricas, err := h.Service.Metricas(r.Context())
	if err != nil {
		status, category, message := apperror.MapToHTTPStatus(err)
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":     status,
			"category": category,
			"message":  message,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(metricas)
}
