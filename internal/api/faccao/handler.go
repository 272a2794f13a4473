package faccao

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

// FaccaoService define o contrato que o Handler espera da camada de Serviço.
type FaccaoService interface {
	Criar(ctx context.Context, faccao domain.Faccao) (domain.Faccao, error)
	BuscarPorID(ctx context.Context, id string) (domain.Faccao, error)
	Listar(ctx context.Context) ([]domain.Faccao, error)
	Atualizar(ctx context.Context, faccao domain.Faccao) (domain.Faccao, error)
	Excluir(ctx context.Context, id string) error
	ConsultarCNPJ(ctx context.Context, cnpj string) (domain.FichaCadastral, error)
}

// Handler agrupa todos os métodos de Handler de facções.
type Handler struct {
	Service FaccaoService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc FaccaoService, log logger.Logger) *Handler {
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

// FaccoesHandler lida com a coleção /v1/faccoes (listagem e cadastro).
// @Summary Lista ou cadastra facções
// @Tags faccoes
// @Accept json
// @Produce json
// @Success 200 {array} domain.Faccao "Lista de facções"
// @Success 201 {object} domain.Faccao "Facção cadastrada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /faccoes [get]
func (h *Handler) FaccoesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		faccoes, err := h.Service.Listar(r.Context())
		h.handleServiceResponse(w, r, faccoes, err, http.StatusOK)
	case http.MethodPost:
		var faccao domain.Faccao
		if err := json.NewDecoder(r.Body).Decode(&faccao); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		created, err := h.Service.Criar(r.Context(), faccao)
		h.handleServiceResponse(w, r, created, err, http.StatusCreated)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// FaccaoPorIDHandler lida com /v1/faccoes/{id} e a consulta
// /v1/faccoes/cnpj/{cnpj}.
// @Summary Opera sobre uma facção específica
// @Tags faccoes
// @Accept json
// @Produce json
// @Param id path string true "ID da Facção"
// @Success 200 {object} domain.Faccao "Facção"
// @Failure 404 {object} domain.ErrorResponse "Facção não encontrada"
// @Security ApiKeyAuth
// @Router /faccoes/{id} [get]
func (h *Handler) FaccaoPorIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/faccoes/")

	if cnpj, ok := strings.CutPrefix(rest, "cnpj/"); ok {
		if r.Method != http.MethodGet {
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
			return
		}
		ficha, err := h.Service.ConsultarCNPJ(r.Context(), cnpj)
		h.handleServiceResponse(w, r, ficha, err, http.StatusOK)
		return
	}

	id := rest
	if id == "" {
		http.Error(w, "ID da facção ausente", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		faccao, err := h.Service.BuscarPorID(r.Context(), id)
		h.handleServiceResponse(w, r, faccao, err, http.StatusOK)
	case http.MethodPut:
		var faccao domain.Faccao
		if err := json.NewDecoder(r.Body).Decode(&faccao); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		faccao.ID = id
		updated, err := h.Service.Atualizar(r.Context(), faccao)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)
	case http.MethodDelete:
		err := h.Service.Excluir(r.Context(), id)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
