package regraservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
)

// RegraRepository define o contrato que o Serviço de Regras de Consumo
// espera da camada de Persistência.
type RegraRepository interface {
	Save(ctx context.Context, regra domain.RegraConsumo) (domain.RegraConsumo, error)
	FindByID(ctx context.Context, id string) (domain.RegraConsumo, error)
	FindByReferencia(ctx context.Context, referencia string) ([]domain.RegraConsumo, error)
	FindAll(ctx context.Context) ([]domain.RegraConsumo, error)
	Update(ctx context.Context, regra domain.RegraConsumo) error
	Delete(ctx context.Context, id string) error
}

// Service implementa o cadastro de regras de consumo de material e o
// planejamento de corte baseado nelas.
type Service struct {
	repo   RegraRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Regras.
func NewService(repo RegraRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Criar cadastra uma nova regra de consumo.
func (s *Service) Criar(ctx context.Context, regra domain.RegraConsumo) (domain.RegraConsumo, error) {
	if strings.TrimSpace(regra.Referencia) == "" {
		return domain.RegraConsumo{}, apperror.NewValidationError("A referência da regra é obrigatória.")
	}
	if regra.ConsumoUnitario.LessThanOrEqual(decimal.Zero) {
		return domain.RegraConsumo{}, apperror.NewValidationError("O consumo unitário deve ser maior que zero.")
	}
	if regra.TecidoCusto.IsNegative() {
		return domain.RegraConsumo{}, apperror.NewValidationError("O custo do tecido não pode ser negativo.")
	}

	regra.ID = uuid.NewString()
	regra.CreatedAt = time.Now()

	saved, err := s.repo.Save(ctx, regra)
	if err != nil {
		return domain.RegraConsumo{}, err
	}

	s.logger.Info("Regra de consumo cadastrada.", map[string]interface{}{
		"regra_id": saved.ID, "referencia": saved.Referencia,
	})
	return saved, nil
}

// BuscarPorID devolve uma regra pelo ID.
func (s *Service) BuscarPorID(ctx context.Context, id string) (domain.RegraConsumo, error) {
	return s.repo.FindByID(ctx, id)
}

// Listar devolve todas as regras cadastradas.
func (s *Service) Listar(ctx context.Context) ([]domain.RegraConsumo, error) {
	return s.repo.FindAll(ctx)
}

// Atualizar altera uma regra de consumo existente.
func (s *Service) Atualizar(ctx context.Context, regra domain.RegraConsumo) (domain.RegraConsumo, error) {
	if regra.ConsumoUnitario.LessThanOrEqual(decimal.Zero) {
		return domain.RegraConsumo{}, apperror.NewValidationError("O consumo unitário deve ser maior que zero.")
	}
	if regra.TecidoCusto.IsNegative() {
		return domain.RegraConsumo{}, apperror.NewValidationError("O custo do tecido não pode ser negativo.")
	}
	if err := s.repo.Update(ctx, regra); err != nil {
		return domain.RegraConsumo{}, err
	}
	return s.repo.FindByID(ctx, regra.ID)
}

// Excluir remove uma regra de consumo.
func (s *Service) Excluir(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// PlanejarCorte calcula a necessidade de material para cortar uma quantidade
// de peças de uma referência. Usa a regra geral da referência (sem tamanho);
// regras por tamanho refinam o consumo quando existirem, mas o planejamento
// por grade completa fica no frontend.
func (s *Service) PlanejarCorte(ctx context.Context, referencia string, qtdPecas int) (domain.PlanejamentoCorte, error) {
	if qtdPecas <= 0 {
		return domain.PlanejamentoCorte{}, apperror.NewValidationError("A quantidade de peças deve ser maior que zero.")
	}

	regras, err := s.repo.FindByReferencia(ctx, referencia)
	if err != nil {
		return domain.PlanejamentoCorte{}, err
	}
	if len(regras) == 0 {
		return domain.PlanejamentoCorte{}, apperror.NewNotFoundError(
			"Nenhuma regra de consumo cadastrada para a referência " + strings.ToUpper(strings.TrimSpace(referencia)) + ".")
	}

	// A primeira regra é a geral (tamanho nulo ordena primeiro).
	regra := regras[0]
	pecas := decimal.NewFromInt(int64(qtdPecas))
	tecido := regra.ConsumoUnitario.Mul(pecas)
	custo := tecido.Mul(regra.TecidoCusto)

	return domain.PlanejamentoCorte{
		Referencia:       regra.Referencia,
		QtdPecas:         qtdPecas,
		TecidoNecessario: tecido,
		CustoEstimado:    custo,
	}, nil
}
