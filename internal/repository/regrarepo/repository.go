package regrarepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cortestock/internal/domain"
	"cortestock/internal/errors"
)

// RegraRepository persiste as regras de consumo de material por referência.
type RegraRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
}

// NewRegraRepository cria e retorna uma nova instância do Repositório de Regras.
func NewRegraRepository(db *sql.DB, dbTimeout time.Duration) *RegraRepository {
	return &RegraRepository{DB: db, DBTimeout: dbTimeout}
}

const regraColumns = `id, referencia, COALESCE(tamanho_id, ''), consumo_unitario,
	COALESCE(tecido_nome, ''), COALESCE(tecido_composicao, ''), COALESCE(tecido_largura, ''),
	COALESCE(tecido_fornecedor, ''), tecido_custo, COALESCE(acessorios, ''), created_at`

func scanRegra(row interface{ Scan(...interface{}) error }) (domain.RegraConsumo, error) {
	var regra domain.RegraConsumo
	err := row.Scan(&regra.ID, &regra.Referencia, &regra.TamanhoID, &regra.ConsumoUnitario,
		&regra.TecidoNome, &regra.TecidoComposicao, &regra.TecidoLargura,
		&regra.TecidoFornecedor, &regra.TecidoCusto, &regra.Acessorios, &regra.CreatedAt)
	return regra, err
}

// Save persiste uma nova regra de consumo. A referência é normalizada em
// maiúsculas para casar com a busca do planejamento.
func (r *RegraRepository) Save(ctx context.Context, regra domain.RegraConsumo) (domain.RegraConsumo, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	regra.Referencia = strings.ToUpper(strings.TrimSpace(regra.Referencia))

	const query = `
		INSERT INTO regras_consumo
			(id, referencia, tamanho_id, consumo_unitario, tecido_nome, tecido_composicao,
			 tecido_largura, tecido_fornecedor, tecido_custo, acessorios, created_at)
		VALUES ($1,$2,NULLIF($3,''),$4,NULLIF($5,''),NULLIF($6,''),NULLIF($7,''),NULLIF($8,''),$9,NULLIF($10,''),$11)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		regra.ID, regra.Referencia, regra.TamanhoID, regra.ConsumoUnitario,
		regra.TecidoNome, regra.TecidoComposicao, regra.TecidoLargura,
		regra.TecidoFornecedor, regra.TecidoCusto, regra.Acessorios, regra.CreatedAt,
	)
	if err != nil {
		return domain.RegraConsumo{}, errors.NewDBError("Falha ao inserir regra de consumo", err)
	}
	return regra, nil
}

// FindByID busca uma regra pelo ID.
func (r *RegraRepository) FindByID(ctx context.Context, id string) (domain.RegraConsumo, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + regraColumns + ` FROM regras_consumo WHERE id = $1`
	regra, err := scanRegra(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.RegraConsumo{}, errors.NewNotFoundError(fmt.Sprintf("Regra de consumo %s não encontrada.", id))
	}
	if err != nil {
		return domain.RegraConsumo{}, errors.NewDBError("Falha ao buscar regra de consumo", err)
	}
	return regra, nil
}

// FindByReferencia lista as regras de uma referência (geral e por tamanho).
func (r *RegraRepository) FindByReferencia(ctx context.Context, referencia string) ([]domain.RegraConsumo, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + regraColumns + ` FROM regras_consumo
		WHERE referencia = UPPER(TRIM($1)) ORDER BY tamanho_id NULLS FIRST`
	rows, err := r.DB.QueryContext(ctxTimeout, query, referencia)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar regras de consumo", err)
	}
	defer rows.Close()

	regras := []domain.RegraConsumo{}
	for rows.Next() {
		regra, err := scanRegra(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao mapear regra de consumo", err)
		}
		regras = append(regras, regra)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar regras de consumo", err)
	}
	return regras, nil
}

// FindAll lista todas as regras por referência.
func (r *RegraRepository) FindAll(ctx context.Context) ([]domain.RegraConsumo, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + regraColumns + ` FROM regras_consumo ORDER BY referencia, tamanho_id NULLS FIRST`
	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar regras de consumo", err)
	}
	defer rows.Close()

	regras := []domain.RegraConsumo{}
	for rows.Next() {
		regra, err := scanRegra(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao mapear regra de consumo", err)
		}
		regras = append(regras, regra)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar regras de consumo", err)
	}
	return regras, nil
}

// Update atualiza uma regra de consumo existente.
func (r *RegraRepository) Update(ctx context.Context, regra domain.RegraConsumo) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		UPDATE regras_consumo
		SET consumo_unitario = $1, tecido_nome = NULLIF($2,''), tecido_composicao = NULLIF($3,''),
		    tecido_largura = NULLIF($4,''), tecido_fornecedor = NULLIF($5,''),
		    tecido_custo = $6, acessorios = NULLIF($7,'')
		WHERE id = $8`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		regra.ConsumoUnitario, regra.TecidoNome, regra.TecidoComposicao,
		regra.TecidoLargura, regra.TecidoFornecedor, regra.TecidoCusto,
		regra.Acessorios, regra.ID,
	)
	if err != nil {
		return errors.NewDBError("Falha ao atualizar regra de consumo", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Regra de consumo %s não encontrada.", regra.ID))
	}
	return nil
}

// Delete remove uma regra de consumo.
func (r *RegraRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM regras_consumo WHERE id = $1`, id)
	if err != nil {
		return errors.NewDBError("Falha ao excluir regra de consumo", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Regra de consumo %s não encontrada.", id))
	}
	return nil
}
