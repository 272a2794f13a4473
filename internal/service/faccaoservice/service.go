package faccaoservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cortestock/internal/domain"
	apperror "cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
)

// FaccaoRepository define o contrato que o Serviço de Facções espera da
// camada de Persistência.
type FaccaoRepository interface {
	Save(ctx context.Context, faccao domain.Faccao) (domain.Faccao, error)
	FindByID(ctx context.Context, id string) (domain.Faccao, error)
	FindAll(ctx context.Context) ([]domain.Faccao, error)
	Update(ctx context.Context, faccao domain.Faccao) error
	Delete(ctx context.Context, id string) error
}

// RegistroFiscal consulta a ficha cadastral de um CNPJ.
type RegistroFiscal interface {
	ConsultarCNPJ(ctx context.Context, cnpj string) (domain.FichaCadastral, error)
}

// Service implementa o cadastro de facções.
type Service struct {
	repo   FaccaoRepository
	fiscal RegistroFiscal
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Facções.
func NewService(repo FaccaoRepository, fiscal RegistroFiscal, logger logger.Logger) *Service {
	return &Service{repo: repo, fiscal: fiscal, logger: logger}
}

// Criar cadastra uma nova facção, ativa por padrão.
func (s *Service) Criar(ctx context.Context, faccao domain.Faccao) (domain.Faccao, error) {
	faccao.Nome = strings.TrimSpace(faccao.Nome)
	if faccao.Nome == "" {
		return domain.Faccao{}, apperror.NewValidationError("O nome da facção é obrigatório.")
	}

	faccao.ID = uuid.NewString()
	faccao.CreatedAt = time.Now()
	if faccao.Status == "" {
		faccao.Status = domain.FaccaoAtiva
	}

	saved, err := s.repo.Save(ctx, faccao)
	if err != nil {
		return domain.Faccao{}, err
	}

	s.logger.Info("Facção cadastrada.", map[string]interface{}{"faccao_id": saved.ID, "nome": saved.Nome})
	return saved, nil
}

// BuscarPorID devolve uma facção pelo ID.
func (s *Service) BuscarPorID(ctx context.Context, id string) (domain.Faccao, error) {
	return s.repo.FindByID(ctx, id)
}

// Listar devolve todas as facções.
func (s *Service) Listar(ctx context.Context) ([]domain.Faccao, error) {
	return s.repo.FindAll(ctx)
}

// Atualizar altera os dados cadastrais e o status de uma facção.
func (s *Service) Atualizar(ctx context.Context, faccao domain.Faccao) (domain.Faccao, error) {
	faccao.Nome = strings.TrimSpace(faccao.Nome)
	if faccao.Nome == "" {
		return domain.Faccao{}, apperror.NewValidationError("O nome da facção é obrigatório.")
	}
	if faccao.Status != domain.FaccaoAtiva && faccao.Status != domain.FaccaoInativa {
		return domain.Faccao{}, apperror.NewValidationError("Status de facção inválido.")
	}

	if err := s.repo.Update(ctx, faccao); err != nil {
		return domain.Faccao{}, err
	}
	return s.repo.FindByID(ctx, faccao.ID)
}

// Excluir remove uma facção do cadastro.
func (s *Service) Excluir(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// ConsultarCNPJ busca a ficha cadastral no registro fiscal para
// pré-preencher o formulário de cadastro.
func (s *Service) ConsultarCNPJ(ctx context.Context, cnpj string) (domain.FichaCadastral, error) {
	ficha, err := s.fiscal.ConsultarCNPJ(ctx, cnpj)
	if err != nil {
		s.logger.Warn("Consulta de CNPJ falhou.", map[string]interface{}{"cnpj": cnpj, "erro": err.Error()})
		return domain.FichaCadastral{}, err
	}
	return ficha, nil
}
