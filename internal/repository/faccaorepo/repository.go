package faccaorepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cortestock/internal/domain"
	"cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
)

// FaccaoRepository persiste os parceiros de costura.
type FaccaoRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewFaccaoRepository cria e retorna uma nova instância do Repositório de Facções.
func NewFaccaoRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *FaccaoRepository {
	return &FaccaoRepository{DB: db, DBTimeout: dbTimeout, logger: logger}
}

const faccaoColumns = `id, nome, COALESCE(cnpj, ''), COALESCE(telefone, ''),
	COALESCE(cidade, ''), COALESCE(estado, ''), COALESCE(observacoes, ''), status, created_at`

func scanFaccao(row interface{ Scan(...interface{}) error }) (domain.Faccao, error) {
	var f domain.Faccao
	err := row.Scan(&f.ID, &f.Nome, &f.CNPJ, &f.Telefone, &f.Cidade, &f.Estado,
		&f.Observacoes, &f.Status, &f.CreatedAt)
	return f, err
}

// Save persiste uma nova facção.
func (r *FaccaoRepository) Save(ctx context.Context, faccao domain.Faccao) (domain.Faccao, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		INSERT INTO faccoes (id, nome, cnpj, telefone, cidade, estado, observacoes, status, created_at)
		VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),NULLIF($5,''),NULLIF($6,''),NULLIF($7,''),$8,$9)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		faccao.ID, faccao.Nome, faccao.CNPJ, faccao.Telefone, faccao.Cidade,
		faccao.Estado, faccao.Observacoes, faccao.Status, faccao.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir facção no DB.", err)
		return domain.Faccao{}, errors.NewDBError("Falha ao inserir facção", err)
	}
	return faccao, nil
}

// FindByID busca uma facção pelo ID.
func (r *FaccaoRepository) FindByID(ctx context.Context, id string) (domain.Faccao, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + faccaoColumns + ` FROM faccoes WHERE id = $1`
	f, err := scanFaccao(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Faccao{}, errors.NewNotFoundError(fmt.Sprintf("Facção %s não encontrada.", id))
	}
	if err != nil {
		return domain.Faccao{}, errors.NewDBError("Falha ao buscar facção", err)
	}
	return f, nil
}

// FindAll lista todas as facções por ordem de nome.
func (r *FaccaoRepository) FindAll(ctx context.Context) ([]domain.Faccao, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + faccaoColumns + ` FROM faccoes ORDER BY nome`
	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar facções", err)
	}
	defer rows.Close()

	faccoes := []domain.Faccao{}
	for rows.Next() {
		f, err := scanFaccao(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao mapear facção", err)
		}
		faccoes = append(faccoes, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar facções", err)
	}
	return faccoes, nil
}

// Update atualiza os dados cadastrais e o status de uma facção.
func (r *FaccaoRepository) Update(ctx context.Context, faccao domain.Faccao) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		UPDATE faccoes
		SET nome = $1, cnpj = NULLIF($2,''), telefone = NULLIF($3,''),
		    cidade = NULLIF($4,''), estado = NULLIF($5,''),
		    observacoes = NULLIF($6,''), status = $7
		WHERE id = $8`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		faccao.Nome, faccao.CNPJ, faccao.Telefone, faccao.Cidade,
		faccao.Estado, faccao.Observacoes, faccao.Status, faccao.ID,
	)
	if err != nil {
		return errors.NewDBError("Falha ao atualizar facção", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Facção %s não encontrada.", faccao.ID))
	}
	return nil
}

// Delete remove uma facção.
func (r *FaccaoRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM faccoes WHERE id = $1`, id)
	if err != nil {
		return errors.NewDBError("Falha ao excluir facção", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Facção %s não encontrada.", id))
	}
	return nil
}
