package syncservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
	"cortestock/internal/service/syncservice"
)

// MockCorteStore é um mock da interface CorteStore
type MockCorteStore struct {
	mock.Mock
}

func (m *MockCorteStore) FindByID(ctx context.Context, id string) (domain.Corte, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Corte), args.Error(1)
}

func (m *MockCorteStore) MarcarSincronizado(ctx context.Context, id string, quando time.Time) (bool, error) {
	args := m.Called(ctx, id, quando)
	return args.Bool(0), args.Error(1)
}

func (m *MockCorteStore) LimparSincronizado(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEstoqueStore é um mock da interface EstoqueStore
type MockEstoqueStore struct {
	mock.Mock
}

func (m *MockEstoqueStore) FindOrCreateProduto(ctx context.Context, referencia string) (domain.Produto, error) {
	args := m.Called(ctx, referencia)
	return args.Get(0).(domain.Produto), args.Error(1)
}

func (m *MockEstoqueStore) FindOrCreateCor(ctx context.Context, nome string) (domain.Cor, error) {
	args := m.Called(ctx, nome)
	return args.Get(0).(domain.Cor), args.Error(1)
}

func (m *MockEstoqueStore) FindOrCreateTamanho(ctx context.Context, nome string) (domain.Tamanho, error) {
	args := m.Called(ctx, nome)
	return args.Get(0).(domain.Tamanho), args.Error(1)
}

func (m *MockEstoqueStore) FindOrCreateSku(ctx context.Context, produtoID, corID, tamanhoID string) (domain.Sku, error) {
	args := m.Called(ctx, produtoID, corID, tamanhoID)
	return args.Get(0).(domain.Sku), args.Error(1)
}

func (m *MockEstoqueStore) FindProdutoPorReferencia(ctx context.Context, referencia string) (domain.Produto, error) {
	args := m.Called(ctx, referencia)
	return args.Get(0).(domain.Produto), args.Error(1)
}

func (m *MockEstoqueStore) FindCorPorNome(ctx context.Context, nome string) (domain.Cor, error) {
	args := m.Called(ctx, nome)
	return args.Get(0).(domain.Cor), args.Error(1)
}

func (m *MockEstoqueStore) FindTamanhoPorNome(ctx context.Context, nome string) (domain.Tamanho, error) {
	args := m.Called(ctx, nome)
	return args.Get(0).(domain.Tamanho), args.Error(1)
}

func (m *MockEstoqueStore) FindSkuPorChave(ctx context.Context, produtoID, corID, tamanhoID string) (domain.Sku, error) {
	args := m.Called(ctx, produtoID, corID, tamanhoID)
	return args.Get(0).(domain.Sku), args.Error(1)
}

func (m *MockEstoqueStore) AjustarSaldo(ctx context.Context, ajuste domain.AjusteEstoqueRequest) (domain.Sku, error) {
	args := m.Called(ctx, ajuste)
	return args.Get(0).(domain.Sku), args.Error(1)
}

func novoServico() (*syncservice.Service, *MockCorteStore, *MockEstoqueStore) {
	mockCortes := new(MockCorteStore)
	mockEstoque := new(MockEstoqueStore)
	svc := syncservice.NewService(mockCortes, mockEstoque, logger.NewLogger("error"))
	return svc, mockCortes, mockEstoque
}

// corteRecebido monta um corte pronto para sincronia: 100 recebidas em duas
// cores, 10 defeitos.
func corteRecebido() domain.Corte {
	return domain.Corte{
		ID:               "corte-1",
		Referencia:       "CAM-001",
		Status:           domain.CorteRecebido,
		QtdTotalRecebida: 100,
		QtdTotalDefeitos: 10,
		Itens: []domain.ItemCorte{
			{Cor: "Azul", GradeRecebida: []domain.TamanhoQuantidade{
				{Tamanho: "P", Quantidade: 20}, {Tamanho: "M", Quantidade: 40},
			}},
			{Cor: "Preto", GradeRecebida: []domain.TamanhoQuantidade{
				{Tamanho: "G", Quantidade: 40},
			}},
		},
	}
}

// montarEstoque prepara o caminho feliz do find-or-create para o corte de
// teste: um SKU por célula da grade.
func montarEstoque(m *MockEstoqueStore) {
	m.On("FindOrCreateProduto", mock.Anything, "CAM-001").Return(domain.Produto{ID: "prod-1"}, nil)
	m.On("FindOrCreateCor", mock.Anything, "Azul").Return(domain.Cor{ID: "cor-azul"}, nil)
	m.On("FindOrCreateCor", mock.Anything, "Preto").Return(domain.Cor{ID: "cor-preto"}, nil)
	m.On("FindOrCreateTamanho", mock.Anything, "P").Return(domain.Tamanho{ID: "tam-p"}, nil)
	m.On("FindOrCreateTamanho", mock.Anything, "M").Return(domain.Tamanho{ID: "tam-m"}, nil)
	m.On("FindOrCreateTamanho", mock.Anything, "G").Return(domain.Tamanho{ID: "tam-g"}, nil)
	m.On("FindOrCreateSku", mock.Anything, "prod-1", "cor-azul", "tam-p").Return(domain.Sku{ID: "sku-p"}, nil)
	m.On("FindOrCreateSku", mock.Anything, "prod-1", "cor-azul", "tam-m").Return(domain.Sku{ID: "sku-m"}, nil)
	m.On("FindOrCreateSku", mock.Anything, "prod-1", "cor-preto", "tam-g").Return(domain.Sku{ID: "sku-g"}, nil)
}

// TestSincronizarCorte_Success credita as 90 peças boas (100 - 10 defeitos)
// com um movimento por SKU referenciando o corte.
func TestSincronizarCorte_Success(t *testing.T) {
	svc, mockCortes, mockEstoque := novoServico()

	mockCortes.On("FindByID", mock.Anything, "corte-1").Return(corteRecebido(), nil)
	mockCortes.On("MarcarSincronizado", mock.Anything, "corte-1", mock.Anything).Return(true, nil)
	montarEstoque(mockEstoque)

	var deltas []int
	mockEstoque.On("AjustarSaldo", mock.Anything, mock.MatchedBy(func(a domain.AjusteEstoqueRequest) bool {
		return a.Tipo == domain.EntradaProducao &&
			a.Documento == "corte-1" &&
			a.Observacao == "Sync Manual Corte CAM-001"
	})).Run(func(args mock.Arguments) {
		deltas = append(deltas, args.Get(1).(domain.AjusteEstoqueRequest).Delta)
	}).Return(domain.Sku{}, nil)

	result, err := svc.SincronizarCorte(context.Background(), "corte-1")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Sincronizado com sucesso! 90 peças adicionadas.", result.Message)
	assert.Equal(t, []int{18, 36, 36}, deltas)
	mockCortes.AssertExpectations(t)
	mockEstoque.AssertExpectations(t)
}

// TestSincronizarCorte_JaSincronizado devolve a mensagem informativa com a
// data, sem tocar o estoque.
func TestSincronizarCorte_JaSincronizado(t *testing.T) {
	svc, mockCortes, mockEstoque := novoServico()

	quando := time.Date(2025, 6, 9, 14, 0, 0, 0, time.UTC)
	corte := corteRecebido()
	corte.SincronizadoEm = &quando
	mockCortes.On("FindByID", mock.Anything, "corte-1").Return(corte, nil)

	result, err := svc.SincronizarCorte(context.Background(), "corte-1")

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Corte já sincronizado em 09/06/2025.", result.Message)
	mockEstoque.AssertNotCalled(t, "AjustarSaldo", mock.Anything, mock.Anything)
}

// TestSincronizarCorte_EstadoInvalido rejeita cortes que ainda não voltaram.
func TestSincronizarCorte_EstadoInvalido(t *testing.T) {
	svc, mockCortes, _ := novoServico()

	corte := corteRecebido()
	corte.Status = domain.CorteEnviado
	mockCortes.On("FindByID", mock.Anything, "corte-1").Return(corte, nil)

	_, err := svc.SincronizarCorte(context.Background(), "corte-1")

	var stateErr *apperror.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

// TestSincronizarCorte_TodasDefeituosas marca o corte como sincronizado sem
// nenhum movimento de estoque.
func TestSincronizarCorte_TodasDefeituosas(t *testing.T) {
	svc, mockCortes, mockEstoque := novoServico()

	corte := corteRecebido()
	corte.QtdTotalDefeitos = 100
	mockCortes.On("FindByID", mock.Anything, "corte-1").Return(corte, nil)
	mockCortes.On("MarcarSincronizado", mock.Anything, "corte-1", mock.Anything).Return(true, nil)

	result, err := svc.SincronizarCorte(context.Background(), "corte-1")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Todas as peças são defeituosas. Nada a processar no estoque.", result.Message)
	mockEstoque.AssertNotCalled(t, "AjustarSaldo", mock.Anything, mock.Anything)
	mockCortes.AssertExpectations(t)
}

// TestSincronizarCorte_RetryPulaLinhasJaCreditadas simula o retry após uma
// falha parcial: a linha já creditada devolve conflito e é pulada; só as
// restantes contam na mensagem.
func TestSincronizarCorte_RetryPulaLinhasJaCreditadas(t *testing.T) {
	svc, mockCortes, mockEstoque := novoServico()

	mockCortes.On("FindByID", mock.Anything, "corte-1").Return(corteRecebido(), nil)
	mockCortes.On("MarcarSincronizado", mock.Anything, "corte-1", mock.Anything).Return(true, nil)
	montarEstoque(mockEstoque)

	// Primeira linha (sku-p) já creditada na tentativa anterior.
	mockEstoque.On("AjustarSaldo", mock.Anything, mock.MatchedBy(func(a domain.AjusteEstoqueRequest) bool {
		return a.SkuID == "sku-p"
	})).Return(domain.Sku{}, apperror.NewConflictError("movimento já registrado"))
	mockEstoque.On("AjustarSaldo", mock.Anything, mock.MatchedBy(func(a domain.AjusteEstoqueRequest) bool {
		return a.SkuID != "sku-p"
	})).Return(domain.Sku{}, nil)

	result, err := svc.SincronizarCorte(context.Background(), "corte-1")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Sincronizado com sucesso! 72 peças adicionadas.", result.Message)
	mockCortes.AssertExpectations(t)
}

// TestSincronizarCorte_FalhaParcialNaoMarca garante que uma falha de
// infraestrutura no meio da sincronia aborta sem gravar o marcador (o corte
// segue elegível para retry) e que o resultado relata as peças já creditadas
// antes do erro.
func TestSincronizarCorte_FalhaParcialNaoMarca(t *testing.T) {
	svc, mockCortes, mockEstoque := novoServico()

	mockCortes.On("FindByID", mock.Anything, "corte-1").Return(corteRecebido(), nil)
	montarEstoque(mockEstoque)

	// A primeira linha (sku-p, 18 peças) entra; a segunda (sku-m) falha.
	mockEstoque.On("AjustarSaldo", mock.Anything, mock.MatchedBy(func(a domain.AjusteEstoqueRequest) bool {
		return a.SkuID == "sku-m"
	})).Return(domain.Sku{}, apperror.NewDBError("conexão perdida", assert.AnError))
	mockEstoque.On("AjustarSaldo", mock.Anything, mock.Anything).Return(domain.Sku{}, nil)

	result, err := svc.SincronizarCorte(context.Background(), "corte-1")

	assert.Error(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Falha na sincronia: 18 peças adicionadas antes do erro. Tente novamente para completar.", result.Message)
	mockCortes.AssertNotCalled(t, "MarcarSincronizado", mock.Anything, mock.Anything, mock.Anything)
}

// TestEstornarCorte_Success debita a grade recebida integral e limpa o
// marcador de sincronia.
func TestEstornarCorte_Success(t *testing.T) {
	svc, mockCortes, mockEstoque := novoServico()

	quando := time.Now()
	corte := corteRecebido()
	corte.SincronizadoEm = &quando
	mockCortes.On("FindByID", mock.Anything, "corte-1").Return(corte, nil)
	mockCortes.On("LimparSincronizado", mock.Anything, "corte-1").Return(nil)

	mockEstoque.On("FindProdutoPorReferencia", mock.Anything, "CAM-001").Return(domain.Produto{ID: "prod-1"}, nil)
	mockEstoque.On("FindCorPorNome", mock.Anything, "Azul").Return(domain.Cor{ID: "cor-azul"}, nil)
	mockEstoque.On("FindCorPorNome", mock.Anything, "Preto").Return(domain.Cor{ID: "cor-preto"}, nil)
	mockEstoque.On("FindTamanhoPorNome", mock.Anything, "P").Return(domain.Tamanho{ID: "tam-p"}, nil)
	mockEstoque.On("FindTamanhoPorNome", mock.Anything, "M").Return(domain.Tamanho{ID: "tam-m"}, nil)
	mockEstoque.On("FindTamanhoPorNome", mock.Anything, "G").Return(domain.Tamanho{ID: "tam-g"}, nil)
	mockEstoque.On("FindSkuPorChave", mock.Anything, "prod-1", "cor-azul", "tam-p").Return(domain.Sku{ID: "sku-p"}, nil)
	mockEstoque.On("FindSkuPorChave", mock.Anything, "prod-1", "cor-azul", "tam-m").Return(domain.Sku{ID: "sku-m"}, nil)
	mockEstoque.On("FindSkuPorChave", mock.Anything, "prod-1", "cor-preto", "tam-g").Return(domain.Sku{ID: "sku-g"}, nil)

	var deltas []int
	mockEstoque.On("AjustarSaldo", mock.Anything, mock.MatchedBy(func(a domain.AjusteEstoqueRequest) bool {
		return a.Tipo == domain.AjusteNegativo &&
			a.Observacao == "Estorno Recebimento Corte CAM-001"
	})).Run(func(args mock.Arguments) {
		deltas = append(deltas, args.Get(1).(domain.AjusteEstoqueRequest).Delta)
	}).Return(domain.Sku{}, nil)

	result, err := svc.EstornarCorte(context.Background(), "corte-1")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Estorno realizado com sucesso.", result.Message)
	assert.Equal(t, []int{-20, -40, -40}, deltas)
	mockCortes.AssertExpectations(t)
}

// TestEstornarCorte_NaoSincronizado rejeita estorno sem sincronia prévia.
func TestEstornarCorte_NaoSincronizado(t *testing.T) {
	svc, mockCortes, _ := novoServico()

	mockCortes.On("FindByID", mock.Anything, "corte-1").Return(corteRecebido(), nil)

	_, err := svc.EstornarCorte(context.Background(), "corte-1")

	var stateErr *apperror.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
	mockCortes.AssertNotCalled(t, "LimparSincronizado", mock.Anything, mock.Anything)
}

// TestEstornarCorte_PulaSkuAusente não aborta quando um SKU sumiu: debita o
// que encontrar, relata as linhas puladas na mensagem e limpa o marcador
// mesmo assim.
func TestEstornarCorte_PulaSkuAusente(t *testing.T) {
	svc, mockCortes, mockEstoque := novoServico()

	quando := time.Now()
	corte := corteRecebido()
	corte.SincronizadoEm = &quando
	mockCortes.On("FindByID", mock.Anything, "corte-1").Return(corte, nil)
	mockCortes.On("LimparSincronizado", mock.Anything, "corte-1").Return(nil)

	mockEstoque.On("FindProdutoPorReferencia", mock.Anything, "CAM-001").Return(domain.Produto{ID: "prod-1"}, nil)
	mockEstoque.On("FindCorPorNome", mock.Anything, "Azul").Return(domain.Cor{ID: "cor-azul"}, nil)
	mockEstoque.On("FindCorPorNome", mock.Anything, "Preto").Return(domain.Cor{ID: "cor-preto"}, nil)
	mockEstoque.On("FindTamanhoPorNome", mock.Anything, mock.Anything).Return(domain.Tamanho{ID: "tam-x"}, nil)

	// O SKU do preto sumiu; os dois do azul existem.
	mockEstoque.On("FindSkuPorChave", mock.Anything, "prod-1", "cor-preto", "tam-x").
		Return(domain.Sku{}, apperror.NewNotFoundError("SKU não encontrado"))
	mockEstoque.On("FindSkuPorChave", mock.Anything, "prod-1", "cor-azul", "tam-x").
		Return(domain.Sku{ID: "sku-azul"}, nil)
	mockEstoque.On("AjustarSaldo", mock.Anything, mock.Anything).Return(domain.Sku{}, nil)

	result, err := svc.EstornarCorte(context.Background(), "corte-1")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Estorno realizado com sucesso. Linhas da grade não debitadas: 1.", result.Message)
	mockEstoque.AssertNumberOfCalls(t, "AjustarSaldo", 2)
	mockCortes.AssertExpectations(t)
}
