package corteservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
	"cortestock/internal/service/corteservice"
)

// MockCorteRepository é uma implementação mock da interface CorteRepository
type MockCorteRepository struct {
	mock.Mock
}

func (m *MockCorteRepository) Save(ctx context.Context, corte domain.Corte) (domain.Corte, error) {
	args := m.Called(ctx, corte)
	return args.Get(0).(domain.Corte), args.Error(1)
}

func (m *MockCorteRepository) FindByID(ctx context.Context, id string) (domain.Corte, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Corte), args.Error(1)
}

func (m *MockCorteRepository) FindAll(ctx context.Context, filter domain.CorteFilter) ([]domain.Corte, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Corte), args.Error(1)
}

func (m *MockCorteRepository) RegistrarRecebimento(ctx context.Context, corte domain.Corte) error {
	args := m.Called(ctx, corte)
	return args.Error(0)
}

func (m *MockCorteRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFaccaoFinder é um mock da interface FaccaoFinder
type MockFaccaoFinder struct {
	mock.Mock
}

func (m *MockFaccaoFinder) FindByID(ctx context.Context, id string) (domain.Faccao, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Faccao), args.Error(1)
}

// MockDefeitoCatalogo é um mock da interface DefeitoCatalogo
type MockDefeitoCatalogo struct {
	mock.Mock
}

func (m *MockDefeitoCatalogo) FindAll(ctx context.Context) ([]domain.TipoDefeito, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.TipoDefeito), args.Error(1)
}

func novoServico() (*corteservice.Service, *MockCorteRepository, *MockFaccaoFinder) {
	mockRepo := new(MockCorteRepository)
	mockFaccoes := new(MockFaccaoFinder)
	mockDefeitos := new(MockDefeitoCatalogo)
	svc := corteservice.NewService(mockRepo, mockFaccoes, mockDefeitos, logger.NewLogger("error"))
	return svc, mockRepo, mockFaccoes
}

func faccaoAtiva(id string) domain.Faccao {
	return domain.Faccao{ID: id, Nome: "Costura Silva", Status: domain.FaccaoAtiva}
}

// TestEnviarCorte_Success verifica a criação do corte: totais calculados,
// status ENVIADO e previsão de recebimento 7 dias após o envio.
func TestEnviarCorte_Success(t *testing.T) {
	svc, mockRepo, mockFaccoes := novoServico()

	dataEnvio := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	req := domain.EnvioCorteRequest{
		Referencia: "CAM-001",
		FaccaoID:   "fac-1",
		DataEnvio:  dataEnvio,
		Itens: []domain.ItemEnvio{
			{Cor: "Azul", Grade: []domain.TamanhoQuantidade{{Tamanho: "P", Quantidade: 10}, {Tamanho: "M", Quantidade: 20}}},
			{Cor: "Preto", Grade: []domain.TamanhoQuantidade{{Tamanho: "G", Quantidade: 5}}},
		},
	}

	mockFaccoes.On("FindByID", mock.Anything, "fac-1").Return(faccaoAtiva("fac-1"), nil)
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(c domain.Corte) bool {
		return c.QtdTotalEnviada == 35 &&
			c.Status == domain.CorteEnviado &&
			c.DataPrevistaRecebimento.Equal(dataEnvio.AddDate(0, 0, 7)) &&
			c.Itens[0].QuantidadeTotalCor == 30 &&
			c.Itens[1].QuantidadeTotalCor == 5
	})).Return(domain.Corte{ID: "corte-1"}, nil)

	corte, err := svc.EnviarCorte(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, "corte-1", corte.ID)
	mockRepo.AssertExpectations(t)
	mockFaccoes.AssertExpectations(t)
}

// TestEnviarCorte_Validacoes cobre as rejeições de payload do envio.
func TestEnviarCorte_Validacoes(t *testing.T) {
	grade := []domain.TamanhoQuantidade{{Tamanho: "M", Quantidade: 1}}

	casos := []struct {
		nome string
		req  domain.EnvioCorteRequest
	}{
		{"referencia em branco", domain.EnvioCorteRequest{Referencia: "  ", FaccaoID: "fac-1", Itens: []domain.ItemEnvio{{Cor: "Azul", Grade: grade}}}},
		{"faccao ausente", domain.EnvioCorteRequest{Referencia: "CAM-001", Itens: []domain.ItemEnvio{{Cor: "Azul", Grade: grade}}}},
		{"sem itens", domain.EnvioCorteRequest{Referencia: "CAM-001", FaccaoID: "fac-1"}},
	}

	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			svc, _, mockFaccoes := novoServico()
			mockFaccoes.On("FindByID", mock.Anything, mock.Anything).Return(faccaoAtiva("fac-1"), nil).Maybe()

			_, err := svc.EnviarCorte(context.Background(), c.req)

			var vErr *apperror.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

// TestEnviarCorte_GradeZerada rejeita cortes sem nenhuma peça.
func TestEnviarCorte_GradeZerada(t *testing.T) {
	svc, _, mockFaccoes := novoServico()
	mockFaccoes.On("FindByID", mock.Anything, "fac-1").Return(faccaoAtiva("fac-1"), nil)

	_, err := svc.EnviarCorte(context.Background(), domain.EnvioCorteRequest{
		Referencia: "CAM-001",
		FaccaoID:   "fac-1",
		Itens:      []domain.ItemEnvio{{Cor: "Azul", Grade: []domain.TamanhoQuantidade{{Tamanho: "P", Quantidade: 0}}}},
	})

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

// TestEnviarCorte_FaccaoInativa rejeita envio para facção inativa.
func TestEnviarCorte_FaccaoInativa(t *testing.T) {
	svc, _, mockFaccoes := novoServico()
	mockFaccoes.On("FindByID", mock.Anything, "fac-1").Return(
		domain.Faccao{ID: "fac-1", Nome: "Parada", Status: domain.FaccaoInativa}, nil)

	_, err := svc.EnviarCorte(context.Background(), domain.EnvioCorteRequest{
		Referencia: "CAM-001",
		FaccaoID:   "fac-1",
		Itens:      []domain.ItemEnvio{{Cor: "Azul", Grade: []domain.TamanhoQuantidade{{Tamanho: "P", Quantidade: 5}}}},
	})

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func corteEnviado() domain.Corte {
	return domain.Corte{
		ID:              "corte-1",
		Referencia:      "CAM-001",
		FaccaoID:        "fac-1",
		Status:          domain.CorteEnviado,
		QtdTotalEnviada: 100,
		Itens: []domain.ItemCorte{
			{Cor: "Azul", QuantidadeTotalCor: 60, Grade: []domain.TamanhoQuantidade{
				{Tamanho: "P", Quantidade: 20}, {Tamanho: "M", Quantidade: 40},
			}},
			{Cor: "Preto", QuantidadeTotalCor: 40, Grade: []domain.TamanhoQuantidade{
				{Tamanho: "G", Quantidade: 40},
			}},
		},
	}
}

// TestReceberCorte_Integral verifica o recebimento da quantidade exata: a
// grade recebida espelha a enviada e nenhuma observação é exigida.
func TestReceberCorte_Integral(t *testing.T) {
	svc, mockRepo, _ := novoServico()
	mockRepo.On("FindByID", mock.Anything, "corte-1").Return(corteEnviado(), nil)
	mockRepo.On("RegistrarRecebimento", mock.Anything, mock.MatchedBy(func(c domain.Corte) bool {
		return c.Status == domain.CorteRecebido &&
			c.QtdTotalRecebida == 100 &&
			c.QtdTotalDefeitos == 0 &&
			len(c.Itens[0].GradeRecebida) == 2
	})).Return(nil)

	corte, err := svc.ReceberCorte(context.Background(), "corte-1", domain.RecebimentoCorteRequest{
		DataRecebimento: time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.CorteRecebido, corte.Status)
	assert.Equal(t, 100, corte.QtdTotalRecebida)
	mockRepo.AssertExpectations(t)
}

// TestReceberCorte_EstadoInvalido rejeita o recebimento de um corte que já
// saiu de ENVIADO, sem alterar nada.
func TestReceberCorte_EstadoInvalido(t *testing.T) {
	svc, mockRepo, _ := novoServico()
	recebido := corteEnviado()
	recebido.Status = domain.CorteRecebido
	mockRepo.On("FindByID", mock.Anything, "corte-1").Return(recebido, nil)

	_, err := svc.ReceberCorte(context.Background(), "corte-1", domain.RecebimentoCorteRequest{})

	var stateErr *apperror.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
	mockRepo.AssertNotCalled(t, "RegistrarRecebimento", mock.Anything, mock.Anything)
}

// TestReceberCorte_RecebidoMaiorQueEnviado rejeita quantidades acima do envio.
func TestReceberCorte_RecebidoMaiorQueEnviado(t *testing.T) {
	svc, mockRepo, _ := novoServico()
	mockRepo.On("FindByID", mock.Anything, "corte-1").Return(corteEnviado(), nil)

	_, err := svc.ReceberCorte(context.Background(), "corte-1", domain.RecebimentoCorteRequest{
		Itens: []domain.ItemRecebimento{
			{Cor: "Azul", GradeRecebida: []domain.TamanhoQuantidade{{Tamanho: "M", Quantidade: 50}}},
		},
	})

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
	mockRepo.AssertNotCalled(t, "RegistrarRecebimento", mock.Anything, mock.Anything)
}

// TestReceberCorte_DivergenciaSemObservacao devolve o sinal de confirmação
// com a observação sugerida no formato exato, sem persistir nada.
func TestReceberCorte_DivergenciaSemObservacao(t *testing.T) {
	svc, mockRepo, _ := novoServico()
	mockRepo.On("FindByID", mock.Anything, "corte-1").Return(corteEnviado(), nil)

	// Recebe 95 de 100: falta observação.
	_, err := svc.ReceberCorte(context.Background(), "corte-1", domain.RecebimentoCorteRequest{
		Itens: []domain.ItemRecebimento{
			{Cor: "Preto", GradeRecebida: []domain.TamanhoQuantidade{{Tamanho: "G", Quantidade: 35}}},
		},
	})

	var confErr *apperror.ConfirmationRequiredError
	assert.ErrorAs(t, err, &confErr)
	assert.Equal(t,
		"[DIVERGÊNCIA] Recebido 95 de 100 peças enviadas. Defeito/Falta de 5 peças.",
		confErr.ObservacaoSugerida)
	mockRepo.AssertNotCalled(t, "RegistrarRecebimento", mock.Anything, mock.Anything)
}

// TestReceberCorte_DivergenciaComObservacao aceita o recebimento parcial
// quando a observação vem preenchida.
func TestReceberCorte_DivergenciaComObservacao(t *testing.T) {
	svc, mockRepo, _ := novoServico()
	mockRepo.On("FindByID", mock.Anything, "corte-1").Return(corteEnviado(), nil)
	mockRepo.On("RegistrarRecebimento", mock.Anything, mock.MatchedBy(func(c domain.Corte) bool {
		return c.QtdTotalRecebida == 95 && c.ObservacoesRecebimento != ""
	})).Return(nil)

	corte, err := svc.ReceberCorte(context.Background(), "corte-1", domain.RecebimentoCorteRequest{
		Itens: []domain.ItemRecebimento{
			{Cor: "Preto", GradeRecebida: []domain.TamanhoQuantidade{{Tamanho: "G", Quantidade: 35}}},
		},
		Observacoes: "[DIVERGÊNCIA] Recebido 95 de 100 peças enviadas. Defeito/Falta de 5 peças.",
	})

	assert.NoError(t, err)
	assert.Equal(t, 95, corte.QtdTotalRecebida)
	mockRepo.AssertExpectations(t)
}

// TestReceberCorte_DefeitosAcimaDoRecebido rejeita mais defeitos que peças.
func TestReceberCorte_DefeitosAcimaDoRecebido(t *testing.T) {
	svc, mockRepo, _ := novoServico()
	mockRepo.On("FindByID", mock.Anything, "corte-1").Return(corteEnviado(), nil)

	_, err := svc.ReceberCorte(context.Background(), "corte-1", domain.RecebimentoCorteRequest{
		DefeitosPadrao: map[string]int{"Mancha": 101},
		Observacoes:    "lote com problema",
	})

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

// TestReceberCorte_DefeitosSemObservacao exige observação quando há defeitos.
func TestReceberCorte_DefeitosSemObservacao(t *testing.T) {
	svc, mockRepo, _ := novoServico()
	mockRepo.On("FindByID", mock.Anything, "corte-1").Return(corteEnviado(), nil)

	_, err := svc.ReceberCorte(context.Background(), "corte-1", domain.RecebimentoCorteRequest{
		DefeitosPadrao: map[string]int{"Mancha": 3},
	})

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
	mockRepo.AssertNotCalled(t, "RegistrarRecebimento", mock.Anything, mock.Anything)
}

// TestReceberCorte_CorForaDaGradeEnviada rejeita ajustes para uma cor que
// não faz parte do corte: um nome digitado errado não pode ser ignorado.
func TestReceberCorte_CorForaDaGradeEnviada(t *testing.T) {
	svc, mockRepo, _ := novoServico()
	mockRepo.On("FindByID", mock.Anything, "corte-1").Return(corteEnviado(), nil)

	_, err := svc.ReceberCorte(context.Background(), "corte-1", domain.RecebimentoCorteRequest{
		Itens: []domain.ItemRecebimento{
			{Cor: "Verde", GradeRecebida: []domain.TamanhoQuantidade{{Tamanho: "P", Quantidade: 10}}},
		},
	})

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
	mockRepo.AssertNotCalled(t, "RegistrarRecebimento", mock.Anything, mock.Anything)
}

// TestReceberCorte_TamanhoForaDaGradeEnviada rejeita ajustes para um tamanho
// que a cor não tem na grade de envio: "GG" no lugar de "G" não pode reverter
// a célula silenciosamente para a quantidade enviada.
func TestReceberCorte_TamanhoForaDaGradeEnviada(t *testing.T) {
	svc, mockRepo, _ := novoServico()
	mockRepo.On("FindByID", mock.Anything, "corte-1").Return(corteEnviado(), nil)

	_, err := svc.ReceberCorte(context.Background(), "corte-1", domain.RecebimentoCorteRequest{
		Itens: []domain.ItemRecebimento{
			{Cor: "Preto", GradeRecebida: []domain.TamanhoQuantidade{{Tamanho: "GG", Quantidade: 35}}},
		},
	})

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
	mockRepo.AssertNotCalled(t, "RegistrarRecebimento", mock.Anything, mock.Anything)
}

// TestReceberCorte_GradeParcialPorTamanho verifica que os ajustes por
// tamanho substituem só as células informadas, casando cor e tamanho sem
// distinção de caixa.
func TestReceberCorte_GradeParcialPorTamanho(t *testing.T) {
	svc, mockRepo, _ := novoServico()
	mockRepo.On("FindByID", mock.Anything, "corte-1").Return(corteEnviado(), nil)

	var gravado domain.Corte
	mockRepo.On("RegistrarRecebimento", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		gravado = args.Get(1).(domain.Corte)
	}).Return(nil)

	_, err := svc.ReceberCorte(context.Background(), "corte-1", domain.RecebimentoCorteRequest{
		Itens: []domain.ItemRecebimento{
			{Cor: "azul", GradeRecebida: []domain.TamanhoQuantidade{{Tamanho: "m", Quantidade: 38}}},
		},
		Observacoes: "faltaram 2 no M azul",
	})

	assert.NoError(t, err)
	// Azul: P mantém 20 (não informado), M cai para 38. Preto: grade integral.
	assert.Equal(t, 20, gravado.Itens[0].GradeRecebida[0].Quantidade)
	assert.Equal(t, 38, gravado.Itens[0].GradeRecebida[1].Quantidade)
	assert.Equal(t, 40, gravado.Itens[1].GradeRecebida[0].Quantidade)
	assert.Equal(t, 98, gravado.QtdTotalRecebida)
}
