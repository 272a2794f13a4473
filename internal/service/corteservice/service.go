package corteservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
)

// CorteRepository define o contrato que o Serviço de Cortes espera da camada
// de Persistência.
type CorteRepository interface {
	Save(ctx context.Context, corte domain.Corte) (domain.Corte, error)
	FindByID(ctx context.Context, id string) (domain.Corte, error)
	FindAll(ctx context.Context, filter domain.CorteFilter) ([]domain.Corte, error)
	RegistrarRecebimento(ctx context.Context, corte domain.Corte) error
	Delete(ctx context.Context, id string) error
}

// FaccaoFinder resolve a facção de destino no envio.
type FaccaoFinder interface {
	FindByID(ctx context.Context, id string) (domain.Faccao, error)
}

// DefeitoCatalogo lista os tipos de defeito pré-definidos do recebimento.
type DefeitoCatalogo interface {
	FindAll(ctx context.Context) ([]domain.TipoDefeito, error)
}

// Service implementa o ciclo de vida do Corte: envio, recebimento, listagem
// e exclusão. A sincronia com o estoque fica no syncservice.
type Service struct {
	repo     CorteRepository
	faccoes  FaccaoFinder
	defeitos DefeitoCatalogo
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Cortes.
func NewService(repo CorteRepository, faccoes FaccaoFinder, defeitos DefeitoCatalogo, logger logger.Logger) *Service {
	return &Service{repo: repo, faccoes: faccoes, defeitos: defeitos, logger: logger}
}

// EnviarCorte registra um novo lote enviado para costura. A previsão de
// recebimento é calculada aqui (envio + prazo padrão) e o status nasce
// ENVIADO. A referência não é única: lotes repetidos são permitidos.
func (s *Service) EnviarCorte(ctx context.Context, req domain.EnvioCorteRequest) (domain.Corte, error) {
	referencia := strings.TrimSpace(req.Referencia)
	if referencia == "" {
		return domain.Corte{}, apperror.NewValidationError("A referência do corte é obrigatória.")
	}
	if strings.TrimSpace(req.FaccaoID) == "" {
		return domain.Corte{}, apperror.NewValidationError("A facção de destino é obrigatória.")
	}
	if len(req.Itens) == 0 {
		return domain.Corte{}, apperror.NewValidationError("O corte deve ter ao menos uma cor com grade.")
	}

	faccao, err := s.faccoes.FindByID(ctx, req.FaccaoID)
	if err != nil {
		return domain.Corte{}, err
	}
	if faccao.Status != domain.FaccaoAtiva {
		return domain.Corte{}, apperror.NewValidationError(fmt.Sprintf("A facção %s está inativa e não pode receber cortes.", faccao.Nome))
	}

	itens := make([]domain.ItemCorte, 0, len(req.Itens))
	total := 0
	for _, item := range req.Itens {
		cor := strings.TrimSpace(item.Cor)
		if cor == "" {
			return domain.Corte{}, apperror.NewValidationError("Cada item do corte deve informar a cor.")
		}

		totalCor := 0
		grade := make([]domain.TamanhoQuantidade, 0, len(item.Grade))
		for _, tq := range item.Grade {
			if strings.TrimSpace(tq.Tamanho) == "" {
				return domain.Corte{}, apperror.NewValidationError(fmt.Sprintf("Grade da cor %s contém tamanho em branco.", cor))
			}
			if tq.Quantidade < 0 {
				return domain.Corte{}, apperror.NewValidationError(fmt.Sprintf("Quantidade negativa na grade da cor %s.", cor))
			}
			grade = append(grade, domain.TamanhoQuantidade{
				Tamanho:    strings.TrimSpace(tq.Tamanho),
				Quantidade: tq.Quantidade,
			})
			totalCor += tq.Quantidade
		}

		itens = append(itens, domain.ItemCorte{
			Cor:                cor,
			Grade:              grade,
			QuantidadeTotalCor: totalCor,
		})
		total += totalCor
	}
	if total == 0 {
		return domain.Corte{}, apperror.NewValidationError("O corte deve ter ao menos uma peça na grade.")
	}

	dataEnvio := req.DataEnvio
	if dataEnvio.IsZero() {
		dataEnvio = time.Now()
	}

	now := time.Now()
	corte := domain.Corte{
		ID:                      uuid.NewString(),
		Referencia:              referencia,
		FaccaoID:                req.FaccaoID,
		DataEnvio:               dataEnvio,
		DataPrevistaRecebimento: DataPrevistaRecebimento(dataEnvio),
		Status:                  domain.CorteEnviado,
		Itens:                   itens,
		QtdTotalEnviada:         total,
		ObservacoesEnvio:        strings.TrimSpace(req.Observacoes),
		DefeitosPorTipo:         map[string]int{},
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	saved, err := s.repo.Save(ctx, corte)
	if err != nil {
		s.logger.Error("Falha ao salvar corte enviado.", err)
		return domain.Corte{}, err
	}

	s.logger.Info("Corte enviado para a facção.", map[string]interface{}{
		"corte_id": saved.ID, "referencia": saved.Referencia, "qtd_total": saved.QtdTotalEnviada,
	})
	return saved, nil
}

// ReceberCorte registra a volta do lote. A ordem das verificações importa:
//
//  1. recebido acima do enviado é rejeitado;
//  2. recebido abaixo do enviado sem observação devolve o sinal de
//     confirmação com a observação de divergência sugerida, sem persistir;
//  3. defeitos acima do recebido são rejeitados;
//  4. defeitos sem observação são rejeitados.
//
// A transição de estado em si é protegida pelo update condicional do
// repositório: dois recebimentos concorrentes resultam num único vencedor.
func (s *Service) ReceberCorte(ctx context.Context, id string, req domain.RecebimentoCorteRequest) (domain.Corte, error) {
	corte, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Corte{}, err
	}
	if corte.Status != domain.CorteEnviado {
		return domain.Corte{}, apperror.NewInvalidStateError(
			fmt.Sprintf("Corte %s está %s; apenas cortes ENVIADOS podem ser recebidos.", corte.Referencia, corte.Status))
	}

	itens, totalRecebido, err := aplicarGradeRecebida(corte.Itens, req.Itens)
	if err != nil {
		return domain.Corte{}, err
	}

	observacoes := strings.TrimSpace(req.Observacoes)

	if totalRecebido > corte.QtdTotalEnviada {
		return domain.Corte{}, apperror.NewValidationError(
			fmt.Sprintf("Quantidade recebida (%d) maior que a enviada (%d).", totalRecebido, corte.QtdTotalEnviada))
	}

	if totalRecebido < corte.QtdTotalEnviada && observacoes == "" {
		faltam := corte.QtdTotalEnviada - totalRecebido
		sugerida := fmt.Sprintf("[DIVERGÊNCIA] Recebido %d de %d peças enviadas. Defeito/Falta de %d peças.",
			totalRecebido, corte.QtdTotalEnviada, faltam)
		return domain.Corte{}, apperror.NewConfirmationRequiredError(
			"A quantidade recebida é menor que a enviada. Confirme a divergência com uma observação.", sugerida)
	}

	defeitos := CombinarDefeitos(req.DefeitosPadrao, req.DefeitosManuais)
	totalDefeitos := TotalDefeitos(defeitos)

	if totalDefeitos > totalRecebido {
		return domain.Corte{}, apperror.NewValidationError(
			fmt.Sprintf("Total de defeitos (%d) maior que o total recebido (%d).", totalDefeitos, totalRecebido))
	}
	if totalDefeitos > 0 && observacoes == "" {
		return domain.Corte{}, apperror.NewValidationError("Observação é obrigatória quando há defeitos registrados.")
	}

	dataRecebimento := req.DataRecebimento
	if dataRecebimento.IsZero() {
		dataRecebimento = time.Now()
	}

	corte.Status = domain.CorteRecebido
	corte.DataRecebimento = &dataRecebimento
	corte.Itens = itens
	corte.QtdTotalRecebida = totalRecebido
	corte.QtdTotalDefeitos = totalDefeitos
	corte.DefeitosPorTipo = defeitos
	corte.ObservacoesRecebimento = observacoes

	if err := s.repo.RegistrarRecebimento(ctx, corte); err != nil {
		return domain.Corte{}, err
	}

	s.logger.Info("Recebimento de corte registrado.", map[string]interface{}{
		"corte_id": corte.ID, "recebido": totalRecebido, "defeitos": totalDefeitos,
	})
	return corte, nil
}

// aplicarGradeRecebida monta a grade recebida de cada cor: parte da grade de
// envio e aplica os ajustes informados, casados por cor e tamanho sem
// distinção de caixa. Cores omitidas no pedido assumem a grade enviada
// integral. Cores ou tamanhos que não existem na grade enviada são rejeitados:
// um ajuste digitado errado não pode reverter silenciosamente para a
// quantidade de envio.
func aplicarGradeRecebida(itens []domain.ItemCorte, recebidos []domain.ItemRecebimento) ([]domain.ItemCorte, int, error) {
	coresEnvio := map[string]bool{}
	for _, item := range itens {
		coresEnvio[chave(item.Cor)] = true
	}

	porCor := map[string][]domain.TamanhoQuantidade{}
	for _, rec := range recebidos {
		if !coresEnvio[chave(rec.Cor)] {
			return nil, 0, apperror.NewValidationError(
				fmt.Sprintf("Cor %s não faz parte da grade enviada deste corte.", rec.Cor))
		}
		porCor[chave(rec.Cor)] = rec.GradeRecebida
	}

	resultado := make([]domain.ItemCorte, len(itens))
	total := 0
	for i, item := range itens {
		grade := make([]domain.TamanhoQuantidade, len(item.Grade))
		copy(grade, item.Grade)

		if ajustes, ok := porCor[chave(item.Cor)]; ok {
			tamanhosEnvio := map[string]bool{}
			for _, tq := range item.Grade {
				tamanhosEnvio[chave(tq.Tamanho)] = true
			}

			porTamanho := map[string]int{}
			for _, tq := range ajustes {
				if tq.Quantidade < 0 {
					return nil, 0, apperror.NewValidationError(
						fmt.Sprintf("Quantidade recebida negativa na cor %s, tamanho %s.", item.Cor, tq.Tamanho))
				}
				if !tamanhosEnvio[chave(tq.Tamanho)] {
					return nil, 0, apperror.NewValidationError(
						fmt.Sprintf("Tamanho %s não existe na grade enviada da cor %s.", tq.Tamanho, item.Cor))
				}
				porTamanho[chave(tq.Tamanho)] = tq.Quantidade
			}
			for j := range grade {
				if qtd, ok := porTamanho[chave(grade[j].Tamanho)]; ok {
					grade[j].Quantidade = qtd
				}
			}
		}

		item.GradeRecebida = grade
		resultado[i] = item
		for _, tq := range grade {
			total += tq.Quantidade
		}
	}
	return resultado, total, nil
}

func chave(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// BuscarPorID devolve um corte pelo ID.
func (s *Service) BuscarPorID(ctx context.Context, id string) (domain.Corte, error) {
	return s.repo.FindByID(ctx, id)
}

// Listar devolve os cortes filtrados por referência e período de envio.
func (s *Service) Listar(ctx context.Context, filter domain.CorteFilter) ([]domain.Corte, error) {
	return s.repo.FindAll(ctx, filter)
}

// ListarTiposDefeito devolve o catálogo de defeitos usado no recebimento.
func (s *Service) ListarTiposDefeito(ctx context.Context) ([]domain.TipoDefeito, error) {
	return s.defeitos.FindAll(ctx)
}

// ExcluirCorte remove um corte definitivamente, em qualquer estado.
func (s *Service) ExcluirCorte(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Corte excluído.", map[string]interface{}{"corte_id": id})
	return nil
}
