package estoque

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
)

// EstoqueService define o contrato que o Handler espera da camada de Serviço.
type EstoqueService interface {
	AjustarEstoque(ctx context.Context, ajuste domain.AjusteEstoqueRequest) (domain.Sku, error)
	HistoricoMovimentacoes(ctx context.Context, skuID string) ([]domain.MovimentacaoEstoque, error)
}

// Handler agrupa todos os métodos de Handler de estoque.
type Handler struct {
	Service EstoqueService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc EstoqueService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// AjustarEstoqueHandler lida com a requisição POST /v1/estoque/ajustes.
// @Summary Aplica um ajuste manual de estoque
// @Description Ajusta o saldo disponível de um SKU com um delta positivo ou negativo.
// @Tags estoque
// @Accept json
// @Produce json
// @Param ajuste body domain.AjusteEstoqueRequest true "Ajuste a aplicar"
// @Success 200 {object} domain.Sku "SKU com o saldo atualizado"
// @Failure 400 {object} domain.ErrorResponse "Payload ou saldo resultante inválido"
// @Failure 409 {object} domain.ErrorResponse "Conflito de concorrência"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /estoque/ajustes [post]
func (h *Handler) AjustarEstoqueHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var ajuste domain.AjusteEstoqueRequest
	if err := json.NewDecoder(r.Body).Decode(&ajuste); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	sku, err := h.Service.AjustarEstoque(r.Context(), ajuste)
	h.handleServiceResponse(w, r, sku, err, http.StatusOK)
}

// MovimentacoesHandler lida com GET /v1/estoque/movimentacoes/{skuId}.
// @Summary Lista o histórico de movimentações de um SKU
// @Tags estoque
// @Produce json
// @Param skuId path string true "ID do SKU"
// @Success 200 {array} domain.MovimentacaoEstoque "Histórico, mais recentes primeiro"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /estoque/movimentacoes/{skuId} [get]
func (h *Handler) MovimentacoesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	skuID := strings.TrimPrefix(r.URL.Path, "/v1/estoque/movimentacoes/")
	movs, err := h.Service.HistoricoMovimentacoes(r.Context(), skuID)
	h.handleServiceResponse(w, r, movs, err, http.StatusOK)
}
