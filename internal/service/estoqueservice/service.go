package estoqueservice

import (
	"context"
	"strings"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
)

// EstoqueRepository define o contrato que o Serviço de Estoque espera da
// camada de Persistência.
type EstoqueRepository interface {
	FindSkuPorChave(ctx context.Context, produtoID, corID, tamanhoID string) (domain.Sku, error)
	AjustarSaldo(ctx context.Context, ajuste domain.AjusteEstoqueRequest) (domain.Sku, error)
	ListarMovimentacoes(ctx context.Context, skuID string) ([]domain.MovimentacaoEstoque, error)
}

// Service implementa os ajustes manuais e a consulta de histórico de estoque.
// As entradas de produção vindas de cortes passam pelo syncservice, não por
// aqui.
type Service struct {
	repo   EstoqueRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo EstoqueRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// tiposAjusteManual são os tipos aceitos num ajuste feito pelo operador.
var tiposAjusteManual = map[domain.TipoMovimentacao]bool{
	domain.EntradaCompra:    true,
	domain.EntradaDevolucao: true,
	domain.SaidaVenda:       true,
	domain.AjustePositivo:   true,
	domain.AjusteNegativo:   true,
	domain.Ajuste:           true,
}

// AjustarEstoque aplica um ajuste manual ao saldo de um SKU.
func (s *Service) AjustarEstoque(ctx context.Context, ajuste domain.AjusteEstoqueRequest) (domain.Sku, error) {
	if ajuste.Delta == 0 {
		return domain.Sku{}, apperror.NewValidationError("O ajuste de estoque (delta) não pode ser zero.")
	}
	if !tiposAjusteManual[ajuste.Tipo] {
		return domain.Sku{}, apperror.NewValidationError("Tipo de movimentação inválido para ajuste manual.")
	}
	if strings.TrimSpace(ajuste.Observacao) == "" {
		return domain.Sku{}, apperror.NewValidationError("A observação do ajuste manual é obrigatória.")
	}

	sku, err := s.repo.AjustarSaldo(ctx, ajuste)
	if err != nil {
		s.logger.Error("Falha ao ajustar estoque no repositório.", err)
		return domain.Sku{}, err
	}

	s.logger.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"sku_id": sku.ID, "novo_saldo": sku.SaldoDisponivel, "version": sku.Version,
	})
	return sku, nil
}

// HistoricoMovimentacoes devolve os movimentos de um SKU, mais recentes
// primeiro. SKU inexistente devolve histórico vazio.
func (s *Service) HistoricoMovimentacoes(ctx context.Context, skuID string) ([]domain.MovimentacaoEstoque, error) {
	if strings.TrimSpace(skuID) == "" {
		return nil, apperror.NewValidationError("O id do SKU é obrigatório.")
	}
	return s.repo.ListarMovimentacoes(ctx, skuID)
}
