package corte

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
)

// CorteService define o contrato que o Handler espera do ciclo de vida.
type CorteService interface {
	EnviarCorte(ctx context.Context, req domain.EnvioCorteRequest) (domain.Corte, error)
	ReceberCorte(ctx context.Context, id string, req domain.RecebimentoCorteRequest) (domain.Corte, error)
	BuscarPorID(ctx context.Context, id string) (domain.Corte, error)
	Listar(ctx context.Context, filter domain.CorteFilter) ([]domain.Corte, error)
	ListarTiposDefeito(ctx context.Context) ([]domain.TipoDefeito, error)
	ExcluirCorte(ctx context.Context, id string) error
}

// SyncService define o contrato da sincronia com o estoque.
type SyncService interface {
	SincronizarCorte(ctx context.Context, corteID string) (domain.SyncResult, error)
	EstornarCorte(ctx context.Context, corteID string) (domain.SyncResult, error)
}

// Handler agrupa todos os métodos de Handler de cortes.
type Handler struct {
	Service CorteService
	Sync    SyncService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando os Services e o Logger.
func NewHandler(svc CorteService, sync SyncService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Sync:    sync,
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

	// O sinal de confirmação carrega a observação sugerida, que o frontend
	// usa para pré-preencher o campo antes de reenviar.
	if confErr, ok := err.(*apperror.ConfirmationRequiredError); ok {
		errorResponse["observacaoSugerida"] = confErr.ObservacaoSugerida
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// CortesHandler lida com a coleção /v1/cortes (listagem e envio).
// @Summary Lista ou envia cortes
// @Description GET lista cortes com filtros; POST registra o envio de um novo corte.
// @Tags cortes
// @Accept json
// @Produce json
// @Param referencia query string false "Filtro por referência (substring)"
// @Param data_inicio query string false "Data de envio mínima (YYYY-MM-DD)"
// @Param data_fim query string false "Data de envio máxima (YYYY-MM-DD)"
// @Success 200 {array} domain.Corte "Lista de cortes"
// @Success 201 {object} domain.Corte "Corte enviado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /cortes [get]
func (h *Handler) CortesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listarCortes(w, r)
	case http.MethodPost:
		h.enviarCorte(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listarCortes(w http.ResponseWriter, r *http.Request) {
	filter := domain.CorteFilter{
		Referencia: strings.TrimSpace(r.URL.Query().Get("referencia")),
	}
	if v := r.URL.Query().Get("data_inicio"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("data_inicio inválida. Use o formato YYYY-MM-DD."), http.StatusOK)
			return
		}
		filter.DataInicio = &t
	}
	if v := r.URL.Query().Get("data_fim"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("data_fim inválida. Use o formato YYYY-MM-DD."), http.StatusOK)
			return
		}
		filter.DataFim = &t
	}

	cortes, err := h.Service.Listar(r.Context(), filter)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, cortes, nil, http.StatusOK)
}

func (h *Handler) enviarCorte(w http.ResponseWriter, r *http.Request) {
	var req domain.EnvioCorteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	corte, err := h.Service.EnviarCorte(r.Context(), req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, corte, nil, http.StatusCreated)
}

// CortePorIDHandler lida com /v1/cortes/{id} e as ações aninhadas
// {id}/recebimento, {id}/sincronizar e {id}/estorno.
// @Summary Opera sobre um corte específico
// @Description GET busca, DELETE exclui; POST nas sub-rotas registra recebimento, sincroniza ou estorna.
// @Tags cortes
// @Accept json
// @Produce json
// @Param id path string true "ID do Corte"
// @Success 200 {object} domain.Corte "Corte"
// @Failure 404 {object} domain.ErrorResponse "Corte não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Estado inválido para a operação"
// @Failure 422 {object} domain.ErrorResponse "Confirmação de divergência necessária"
// @Security ApiKeyAuth
// @Router /cortes/{id} [get]
func (h *Handler) CortePorIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/cortes/")
	id, acao, _ := strings.Cut(rest, "/")
	if id == "" {
		http.Error(w, "ID do corte ausente", http.StatusBadRequest)
		return
	}

	switch acao {
	case "":
		switch r.Method {
		case http.MethodGet:
			corte, err := h.Service.BuscarPorID(r.Context(), id)
			h.handleServiceResponse(w, r, corte, err, http.StatusOK)
		case http.MethodDelete:
			err := h.Service.ExcluirCorte(r.Context(), id)
			h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
		default:
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		}
	case "recebimento":
		if r.Method != http.MethodPost {
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
			return
		}
		h.receberCorte(w, r, id)
	case "sincronizar":
		if r.Method != http.MethodPost {
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
			return
		}
		result, err := h.Sync.SincronizarCorte(r.Context(), id)
		h.handleServiceResponse(w, r, result, err, http.StatusOK)
	case "estorno":
		if r.Method != http.MethodPost {
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
			return
		}
		result, err := h.Sync.EstornarCorte(r.Context(), id)
		h.handleServiceResponse(w, r, result, err, http.StatusOK)
	default:
		http.Error(w, "Rota não encontrada", http.StatusNotFound)
	}
}

func (h *Handler) receberCorte(w http.ResponseWriter, r *http.Request, id string) {
	var req domain.RecebimentoCorteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	corte, err := h.Service.ReceberCorte(r.Context(), id, req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, corte, nil, http.StatusOK)
}

// TiposDefeitoHandler lida com GET /v1/defeitos.
// @Summary Lista o catálogo de tipos de defeito
// @Tags cortes
// @Produce json
// @Success 200 {array} domain.TipoDefeito "Catálogo de defeitos"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /defeitos [get]
func (h *Handler) TiposDefeitoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	tipos, err := h.Service.ListarTiposDefeito(r.Context())
	h.handleServiceResponse(w, r, tipos, err, http.StatusOK)
}
