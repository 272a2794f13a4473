package regra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
)

// RegraService define o contrato que o Handler espera da camada de Serviço.
type RegraService interface {
	Criar(ctx context.Context, regra domain.RegraConsumo) (domain.RegraConsumo, error)
	BuscarPorID(ctx context.Context, id string) (domain.RegraConsumo, error)
	Listar(ctx context.Context) ([]domain.RegraConsumo, error)
	Atualizar(ctx context.Context, regra domain.RegraConsumo) (domain.RegraConsumo, error)
	Excluir(ctx context.Context, id string) error
	PlanejarCorte(ctx context.Context, referencia string, qtdPecas int) (domain.PlanejamentoCorte, error)
}

// Handler agrupa todos os métodos de Handler de regras de consumo.
type Handler struct {
	Service RegraService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc RegraService, log logger.Logger) *Handler {
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

// RegrasHandler lida com a coleção /v1/regras (listagem e cadastro).
// @Summary Lista ou cadastra regras de consumo
// @Tags regras
// @Accept json
// @Produce json
// @Success 200 {array} domain.RegraConsumo "Lista de regras"
// @Success 201 {object} domain.RegraConsumo "Regra cadastrada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /regras [get]
func (h *Handler) RegrasHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		regras, err := h.Service.Listar(r.Context())
		h.handleServiceResponse(w, r, regras, err, http.StatusOK)
	case http.MethodPost:
		var regra domain.RegraConsumo
		if err := json.NewDecoder(r.Body).Decode(&regra); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		created, err := h.Service.Criar(r.Context(), regra)
		h.handleServiceResponse(w, r, created, err, http.StatusCreated)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// RegraPorIDHandler lida com /v1/regras/{id}.
// @Summary Opera sobre uma regra específica
// @Tags regras
// @Accept json
// @Produce json
// @Param id path string true "ID da Regra"
// @Success 200 {object} domain.RegraConsumo "Regra"
// @Failure 404 {object} domain.ErrorResponse "Regra não encontrada"
// @Security ApiKeyAuth
// @Router /regras/{id} [get]
func (h *Handler) RegraPorIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/regras/")
	if id == "" {
		http.Error(w, "ID da regra ausente", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		regra, err := h.Service.BuscarPorID(r.Context(), id)
		h.handleServiceResponse(w, r, regra, err, http.StatusOK)
	case http.MethodPut:
		var regra domain.RegraConsumo
		if err := json.NewDecoder(r.Body).Decode(&regra); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		regra.ID = id
		updated, err := h.Service.Atualizar(r.Context(), regra)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)
	case http.MethodDelete:
		err := h.Service.Excluir(r.Context(), id)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// PlanejamentoHandler lida com GET /v1/planejamento?referencia=X&qtd=N.
// @Summary Calcula a necessidade de material para um corte
// @Tags regras
// @Produce json
// @Param referencia query string true "Referência do produto"
// @Param qtd query int true "Quantidade de peças a cortar"
// @Success 200 {object} domain.PlanejamentoCorte "Necessidade de tecido e custo estimado"
// @Failure 400 {object} domain.ErrorResponse "Parâmetros inválidos"
// @Failure 404 {object} domain.ErrorResponse "Nenhuma regra para a referência"
// @Security ApiKeyAuth
// @Router /planejamento [get]
func (h *Handler) PlanejamentoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	referencia := r.URL.Query().Get("referencia")
	qtd, err := strconv.Atoi(r.URL.Query().Get("qtd"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Parâmetro qtd deve ser um número inteiro."), http.StatusOK)
		return
	}

	plano, svcErr := h.Service.PlanejarCorte(r.Context(), referencia, qtd)
	h.handleServiceResponse(w, r, plano, svcErr, http.StatusOK)
}
