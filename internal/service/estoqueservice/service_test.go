package estoqueservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
	"cortestock/internal/service/estoqueservice"
)

// MockEstoqueRepository é um mock da interface EstoqueRepository
type MockEstoqueRepository struct {
	mock.Mock
}

func (m *MockEstoqueRepository) FindSkuPorChave(ctx context.Context, produtoID, corID, tamanhoID string) (domain.Sku, error) {
	args := m.Called(ctx, produtoID, corID, tamanhoID)
	return args.Get(0).(domain.Sku), args.Error(1)
}

func (m *MockEstoqueRepository) AjustarSaldo(ctx context.Context, ajuste domain.AjusteEstoqueRequest) (domain.Sku, error) {
	args := m.Called(ctx, ajuste)
	return args.Get(0).(domain.Sku), args.Error(1)
}

func (m *MockEstoqueRepository) ListarMovimentacoes(ctx context.Context, skuID string) ([]domain.MovimentacaoEstoque, error) {
	args := m.Called(ctx, skuID)
	return args.Get(0).([]domain.MovimentacaoEstoque), args.Error(1)
}

// TestAjustarEstoque_Success aplica um ajuste válido e devolve o SKU novo.
func TestAjustarEstoque_Success(t *testing.T) {
	mockRepo := new(MockEstoqueRepository)
	svc := estoqueservice.NewService(mockRepo, logger.NewLogger("error"))

	ajuste := domain.AjusteEstoqueRequest{
		SkuID:      "sku-1",
		Delta:      5,
		Tipo:       domain.AjustePositivo,
		Observacao: "Contagem de inventário",
	}
	mockRepo.On("AjustarSaldo", mock.Anything, ajuste).Return(domain.Sku{ID: "sku-1", SaldoDisponivel: 15, Version: 2}, nil)

	sku, err := svc.AjustarEstoque(context.Background(), ajuste)

	assert.NoError(t, err)
	assert.Equal(t, 15, sku.SaldoDisponivel)
	assert.Equal(t, 2, sku.Version)
	mockRepo.AssertExpectations(t)
}

// TestAjustarEstoque_Validacoes cobre as rejeições do ajuste manual.
func TestAjustarEstoque_Validacoes(t *testing.T) {
	casos := []struct {
		nome   string
		ajuste domain.AjusteEstoqueRequest
	}{
		{"delta zero", domain.AjusteEstoqueRequest{SkuID: "sku-1", Delta: 0, Tipo: domain.Ajuste, Observacao: "x"}},
		{"tipo invalido", domain.AjusteEstoqueRequest{SkuID: "sku-1", Delta: 5, Tipo: "SYNC_MAGICO", Observacao: "x"}},
		{"tipo de sincronia", domain.AjusteEstoqueRequest{SkuID: "sku-1", Delta: 5, Tipo: domain.EntradaProducao, Observacao: "x"}},
		{"sem observacao", domain.AjusteEstoqueRequest{SkuID: "sku-1", Delta: 5, Tipo: domain.Ajuste, Observacao: "  "}},
	}

	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			mockRepo := new(MockEstoqueRepository)
			svc := estoqueservice.NewService(mockRepo, logger.NewLogger("error"))

			_, err := svc.AjustarEstoque(context.Background(), c.ajuste)

			var vErr *apperror.ValidationError
			assert.ErrorAs(t, err, &vErr)
			mockRepo.AssertNotCalled(t, "AjustarSaldo", mock.Anything, mock.Anything)
		})
	}
}

// TestHistoricoMovimentacoes_Success repassa o histórico do repositório.
func TestHistoricoMovimentacoes_Success(t *testing.T) {
	mockRepo := new(MockEstoqueRepository)
	svc := estoqueservice.NewService(mockRepo, logger.NewLogger("error"))

	movs := []domain.MovimentacaoEstoque{
		{ID: "mov-2", SkuID: "sku-1", Tipo: domain.EntradaProducao, Quantidade: 18},
		{ID: "mov-1", SkuID: "sku-1", Tipo: domain.AjusteNegativo, Quantidade: -2},
	}
	mockRepo.On("ListarMovimentacoes", mock.Anything, "sku-1").Return(movs, nil)

	resultado, err := svc.HistoricoMovimentacoes(context.Background(), "sku-1")

	assert.NoError(t, err)
	assert.Equal(t, movs, resultado)
}

// TestHistoricoMovimentacoes_SkuVazio rejeita consulta sem id.
func TestHistoricoMovimentacoes_SkuVazio(t *testing.T) {
	mockRepo := new(MockEstoqueRepository)
	svc := estoqueservice.NewService(mockRepo, logger.NewLogger("error"))

	_, err := svc.HistoricoMovimentacoes(context.Background(), "  ")

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
