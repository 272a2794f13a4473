package defeitorepo

import (
	"context"
	"database/sql"
	"time"

	"cortestock/internal/domain"
	"cortestock/internal/errors"
)

// DefeitoRepository lê o catálogo de tipos de defeito. Dado de referência
// somente leitura; o core nunca o muta.
type DefeitoRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
}

// NewDefeitoRepository cria e retorna uma nova instância do Repositório de Defeitos.
func NewDefeitoRepository(db *sql.DB, dbTimeout time.Duration) *DefeitoRepository {
	return &DefeitoRepository{DB: db, DBTimeout: dbTimeout}
}

// FindAll lista o catálogo agrupável por categoria.
func (r *DefeitoRepository) FindAll(ctx context.Context) ([]domain.TipoDefeito, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, nome, categoria FROM tipos_defeito ORDER BY categoria, nome`
	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar tipos de defeito", err)
	}
	defer rows.Close()

	tipos := []domain.TipoDefeito{}
	for rows.Next() {
		var t domain.TipoDefeito
		if err := rows.Scan(&t.ID, &t.Nome, &t.Categoria); err != nil {
			return nil, errors.NewDBError("Falha ao mapear tipo de defeito", err)
		}
		tipos = append(tipos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar tipos de defeito", err)
	}
	return tipos, nil
}
