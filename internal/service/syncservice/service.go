package syncservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
)

// CorteStore é a fatia do repositório de cortes que a sincronia usa.
type CorteStore interface {
	FindByID(ctx context.Context, id string) (domain.Corte, error)
	MarcarSincronizado(ctx context.Context, id string, quando time.Time) (bool, error)
	LimparSincronizado(ctx context.Context, id string) error
}

// EstoqueStore é a fatia do repositório de estoque que a sincronia usa.
// A sincronia cria dimensões ausentes (find-or-create); o estorno apenas
// busca, nunca cria.
type EstoqueStore interface {
	FindOrCreateProduto(ctx context.Context, referencia string) (domain.Produto, error)
	FindOrCreateCor(ctx context.Context, nome string) (domain.Cor, error)
	FindOrCreateTamanho(ctx context.Context, nome string) (domain.Tamanho, error)
	FindOrCreateSku(ctx context.Context, produtoID, corID, tamanhoID string) (domain.Sku, error)

	FindProdutoPorReferencia(ctx context.Context, referencia string) (domain.Produto, error)
	FindCorPorNome(ctx context.Context, nome string) (domain.Cor, error)
	FindTamanhoPorNome(ctx context.Context, nome string) (domain.Tamanho, error)
	FindSkuPorChave(ctx context.Context, produtoID, corID, tamanhoID string) (domain.Sku, error)

	AjustarSaldo(ctx context.Context, ajuste domain.AjusteEstoqueRequest) (domain.Sku, error)
}

// Service sincroniza cortes recebidos com o estoque e executa estornos.
type Service struct {
	cortes  CorteStore
	estoque EstoqueStore
	logger  logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Sincronia.
func NewService(cortes CorteStore, estoque EstoqueStore, logger logger.Logger) *Service {
	return &Service{cortes: cortes, estoque: estoque, logger: logger}
}

// SincronizarCorte credita as peças boas de um corte recebido no estoque.
//
// A operação é idempotente em duas camadas: o marcador sincronizado_em
// barra repetições no caminho feliz, e cada movimento de entrada carrega o
// id do corte como documento único por SKU, de modo que um retry após falha
// parcial credita apenas as linhas que faltaram. Linhas já creditadas
// aparecem como conflito e são puladas.
//
// O marcador só é gravado depois de todas as linhas aplicadas: uma falha no
// meio deixa o corte não sincronizado e elegível para retry.
func (s *Service) SincronizarCorte(ctx context.Context, corteID string) (domain.SyncResult, error) {
	corte, err := s.cortes.FindByID(ctx, corteID)
	if err != nil {
		return domain.SyncResult{}, err
	}
	if corte.Status != domain.CorteRecebido {
		return domain.SyncResult{}, apperror.NewInvalidStateError(
			fmt.Sprintf("Corte %s está %s; apenas cortes RECEBIDOS podem ser sincronizados.", corte.Referencia, corte.Status))
	}
	if corte.SincronizadoEm != nil {
		return domain.SyncResult{
			Success: false,
			Message: fmt.Sprintf("Corte já sincronizado em %s.", corte.SincronizadoEm.Format("02/01/2006")),
		}, nil
	}

	boas := corte.QtdTotalRecebida - corte.QtdTotalDefeitos
	if boas <= 0 {
		// Lote 100% defeituoso ainda conta como sincronizado: não há nada
		// a creditar e o estorno do recebimento continua possível.
		s.marcarSincronizado(ctx, corte.ID)
		return domain.SyncResult{
			Success: true,
			Message: "Todas as peças são defeituosas. Nada a processar no estoque.",
		}, nil
	}

	plano := PlanoDistribuicao(corte.Itens, corte.QtdTotalRecebida, boas)
	if len(plano) == 0 {
		return domain.SyncResult{}, apperror.NewInternalError(
			fmt.Sprintf("Corte %s recebido sem grade de recebimento; impossível distribuir.", corte.Referencia), nil)
	}

	produto, err := s.estoque.FindOrCreateProduto(ctx, corte.Referencia)
	if err != nil {
		return domain.SyncResult{}, err
	}

	observacao := fmt.Sprintf("Sync Manual Corte %s", corte.Referencia)
	adicionadas := 0
	// Relata o progresso parcial quando uma linha falha no meio: o chamador
	// precisa saber quantas peças já entraram antes do erro.
	parcial := func() domain.SyncResult {
		return domain.SyncResult{
			Success: false,
			Message: fmt.Sprintf("Falha na sincronia: %d peças adicionadas antes do erro. Tente novamente para completar.", adicionadas),
		}
	}
	for _, linha := range plano {
		if linha.Quantidade == 0 {
			continue
		}

		cor, err := s.estoque.FindOrCreateCor(ctx, linha.Cor)
		if err != nil {
			return parcial(), err
		}
		tamanho, err := s.estoque.FindOrCreateTamanho(ctx, linha.Tamanho)
		if err != nil {
			return parcial(), err
		}
		sku, err := s.estoque.FindOrCreateSku(ctx, produto.ID, cor.ID, tamanho.ID)
		if err != nil {
			return parcial(), err
		}

		_, err = s.estoque.AjustarSaldo(ctx, domain.AjusteEstoqueRequest{
			SkuID:      sku.ID,
			Delta:      linha.Quantidade,
			Tipo:       domain.EntradaProducao,
			Observacao: observacao,
			Documento:  corte.ID,
		})
		if err != nil {
			var conflictErr *apperror.ConflictError
			if errors.As(err, &conflictErr) {
				// Linha creditada por uma tentativa anterior; segue.
				s.logger.Info("Linha de sincronia já aplicada, pulando.", map[string]interface{}{
					"corte_id": corte.ID, "sku_id": sku.ID,
				})
				continue
			}
			s.logger.Error("Falha ao creditar linha da sincronia; corte segue elegível para retry.", err)
			return parcial(), err
		}
		adicionadas += linha.Quantidade
	}

	s.marcarSincronizado(ctx, corte.ID)

	s.logger.Info("Corte sincronizado com o estoque.", map[string]interface{}{
		"corte_id": corte.ID, "referencia": corte.Referencia, "pecas": adicionadas,
	})
	return domain.SyncResult{
		Success: true,
		Message: fmt.Sprintf("Sincronizado com sucesso! %d peças adicionadas.", adicionadas),
	}, nil
}

// marcarSincronizado grava o marcador de idempotência. Falha aqui não desfaz
// os créditos já aplicados: a deduplicação por documento protege um retry.
func (s *Service) marcarSincronizado(ctx context.Context, corteID string) {
	ok, err := s.cortes.MarcarSincronizado(ctx, corteID, time.Now())
	if err != nil {
		s.logger.Warn("Falha ao gravar marcador de sincronia; retry é seguro pela deduplicação.", map[string]interface{}{
			"corte_id": corteID, "erro": err.Error(),
		})
		return
	}
	if !ok {
		s.logger.Info("Marcador de sincronia já gravado por outra chamada.", map[string]interface{}{"corte_id": corteID})
	}
}

// EstornarCorte desfaz a sincronia de um corte: debita do estoque as
// quantidades da grade recebida e limpa o marcador, devolvendo o corte ao
// estado "recebido, não sincronizado".
//
// O estorno é tolerante: SKUs que não existem mais ou saldos que ficariam
// negativos são pulados com aviso, nunca abortam a operação. O marcador é
// limpo sempre.
func (s *Service) EstornarCorte(ctx context.Context, corteID string) (domain.SyncResult, error) {
	corte, err := s.cortes.FindByID(ctx, corteID)
	if err != nil {
		return domain.SyncResult{}, err
	}
	if corte.SincronizadoEm == nil {
		return domain.SyncResult{}, apperror.NewInvalidStateError(
			fmt.Sprintf("Corte %s não está sincronizado; nada a estornar.", corte.Referencia))
	}

	produto, err := s.estoque.FindProdutoPorReferencia(ctx, corte.Referencia)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			// Produto removido depois da sincronia: nada a debitar.
			s.logger.Warn("Produto do corte não existe mais; estorno limpa apenas o marcador.", map[string]interface{}{
				"corte_id": corte.ID, "referencia": corte.Referencia,
			})
			if err := s.cortes.LimparSincronizado(ctx, corte.ID); err != nil {
				return domain.SyncResult{}, err
			}
			return domain.SyncResult{Success: true, Message: "Estorno realizado com sucesso."}, nil
		}
		return domain.SyncResult{}, err
	}

	observacao := fmt.Sprintf("Estorno Recebimento Corte %s", corte.Referencia)
	puladas := 0
	for _, item := range corte.Itens {
		for _, tq := range item.GradeRecebida {
			if tq.Quantidade <= 0 {
				continue
			}
			pulada, err := s.estornarLinha(ctx, produto.ID, item.Cor, tq.Tamanho, tq.Quantidade, observacao)
			if err != nil {
				return domain.SyncResult{}, err
			}
			if pulada {
				puladas++
			}
		}
	}

	if err := s.cortes.LimparSincronizado(ctx, corte.ID); err != nil {
		return domain.SyncResult{}, err
	}

	s.logger.Info("Sincronia de corte estornada.", map[string]interface{}{
		"corte_id": corte.ID, "referencia": corte.Referencia, "linhas_puladas": puladas,
	})
	mensagem := "Estorno realizado com sucesso."
	if puladas > 0 {
		mensagem = fmt.Sprintf("Estorno realizado com sucesso. Linhas da grade não debitadas: %d.", puladas)
	}
	return domain.SyncResult{Success: true, Message: mensagem}, nil
}

// estornarLinha debita uma célula da grade recebida. Ausências e saldos
// insuficientes viram aviso e devolvem pulada=true, para o chamador relatar;
// erros de infraestrutura abortam.
func (s *Service) estornarLinha(ctx context.Context, produtoID, cor, tamanho string, quantidade int, observacao string) (bool, error) {
	pular := func(motivo string) {
		s.logger.Warn("Linha de estorno pulada.", map[string]interface{}{
			"cor": cor, "tamanho": tamanho, "quantidade": quantidade, "motivo": motivo,
		})
	}

	corEnt, err := s.estoque.FindCorPorNome(ctx, cor)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			pular("cor não encontrada")
			return true, nil
		}
		return false, err
	}
	tamanhoEnt, err := s.estoque.FindTamanhoPorNome(ctx, tamanho)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			pular("tamanho não encontrado")
			return true, nil
		}
		return false, err
	}
	sku, err := s.estoque.FindSkuPorChave(ctx, produtoID, corEnt.ID, tamanhoEnt.ID)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			pular("SKU não encontrado")
			return true, nil
		}
		return false, err
	}

	_, err = s.estoque.AjustarSaldo(ctx, domain.AjusteEstoqueRequest{
		SkuID:      sku.ID,
		Delta:      -quantidade,
		Tipo:       domain.AjusteNegativo,
		Observacao: observacao,
	})
	if err != nil {
		var validationErr *apperror.ValidationError
		if errors.As(err, &validationErr) {
			pular("saldo insuficiente")
			return true, nil
		}
		return false, err
	}
	return false, nil
}
