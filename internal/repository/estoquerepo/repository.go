package estoquerepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"cortestock/internal/domain"
	"cortestock/internal/errors"
	"cortestock/internal/pkg/logger"
)

// EstoqueRepository acessa as tabelas compartilhadas do módulo de estoque
// (produtos, cores, tamanhos, skus, movimentações). Essas tabelas também são
// mutadas por outros fluxos, então toda criação é find-or-create tolerante a
// corrida: INSERT e, em violação de chave única, re-consulta.
type EstoqueRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewEstoqueRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewEstoqueRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *EstoqueRepository {
	return &EstoqueRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// isUniqueViolation verifica o código 23505 do PostgreSQL.
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

// --- Produto ---

// FindProdutoPorReferencia busca um produto pela chave natural, sem criar.
// A comparação ignora caixa e espaços nas pontas.
func (r *EstoqueRepository) FindProdutoPorReferencia(ctx context.Context, referencia string) (domain.Produto, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		SELECT id, referencia, descricao, categoria, ativo, created_at
		FROM produtos
		WHERE UPPER(TRIM(referencia)) = UPPER(TRIM($1))`

	var p domain.Produto
	err := r.DB.QueryRowContext(ctxTimeout, query, referencia).Scan(
		&p.ID, &p.Referencia, &p.Descricao, &p.Categoria, &p.Ativo, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Produto{}, errors.NewNotFoundError(fmt.Sprintf("Produto com referência %s não encontrado.", referencia))
	}
	if err != nil {
		return domain.Produto{}, errors.NewDBError("Falha ao buscar produto", err)
	}
	return p, nil
}

// FindOrCreateProduto resolve o produto da referência, criando-o com
// descrição placeholder quando ausente. A referência criada é normalizada
// para maiúsculas, como no restante do catálogo.
func (r *EstoqueRepository) FindOrCreateProduto(ctx context.Context, referencia string) (domain.Produto, error) {
	if p, err := r.FindProdutoPorReferencia(ctx, referencia); err == nil {
		return p, nil
	} else if _, notFound := err.(*errors.NotFoundError); !notFound {
		return domain.Produto{}, err
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	ref := strings.ToUpper(strings.TrimSpace(referencia))
	const insert = `
		INSERT INTO produtos (id, referencia, descricao, categoria, ativo, created_at)
		VALUES ($1, $2, $3, 'GERAL', TRUE, $4)`

	_, err := r.DB.ExecContext(ctxTimeout, insert,
		uuid.New().String(), ref, fmt.Sprintf("Produto Importado (Ref: %s)", ref), time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Outro chamador criou a mesma referência; re-consulta.
			return r.FindProdutoPorReferencia(ctx, referencia)
		}
		return domain.Produto{}, errors.NewDBError("Falha ao criar produto", err)
	}

	r.logger.Info("Produto criado automaticamente na sincronia.", map[string]interface{}{"referencia": ref})
	return r.FindProdutoPorReferencia(ctx, referencia)
}

// --- Cor ---

// FindCorPorNome busca uma cor pelo nome, sem criar.
func (r *EstoqueRepository) FindCorPorNome(ctx context.Context, nome string) (domain.Cor, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, nome, COALESCE(hex, '') FROM cores WHERE LOWER(TRIM(nome)) = LOWER(TRIM($1))`

	var c domain.Cor
	err := r.DB.QueryRowContext(ctxTimeout, query, nome).Scan(&c.ID, &c.Nome, &c.Hex)
	if err == sql.ErrNoRows {
		return domain.Cor{}, errors.NewNotFoundError(fmt.Sprintf("Cor %s não encontrada.", nome))
	}
	if err != nil {
		return domain.Cor{}, errors.NewDBError("Falha ao buscar cor", err)
	}
	return c, nil
}

// FindOrCreateCor resolve a cor pelo nome, criando com o nome informado
// (aparado) quando ausente.
func (r *EstoqueRepository) FindOrCreateCor(ctx context.Context, nome string) (domain.Cor, error) {
	if c, err := r.FindCorPorNome(ctx, nome); err == nil {
		return c, nil
	} else if _, notFound := err.(*errors.NotFoundError); !notFound {
		return domain.Cor{}, err
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout,
		`INSERT INTO cores (id, nome) VALUES ($1, $2)`,
		uuid.New().String(), strings.TrimSpace(nome),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return r.FindCorPorNome(ctx, nome)
		}
		return domain.Cor{}, errors.NewDBError("Falha ao criar cor", err)
	}

	return r.FindCorPorNome(ctx, nome)
}

// --- Tamanho ---

// FindTamanhoPorNome busca um tamanho pelo nome, sem criar.
func (r *EstoqueRepository) FindTamanhoPorNome(ctx context.Context, nome string) (domain.Tamanho, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, nome, ordem FROM tamanhos WHERE UPPER(TRIM(nome)) = UPPER(TRIM($1))`

	var t domain.Tamanho
	err := r.DB.QueryRowContext(ctxTimeout, query, nome).Scan(&t.ID, &t.Nome, &t.Ordem)
	if err == sql.ErrNoRows {
		return domain.Tamanho{}, errors.NewNotFoundError(fmt.Sprintf("Tamanho %s não encontrado.", nome))
	}
	if err != nil {
		return domain.Tamanho{}, errors.NewDBError("Falha ao buscar tamanho", err)
	}
	return t, nil
}

// FindOrCreateTamanho resolve o tamanho pelo nome; criações automáticas
// entram em maiúsculas com a ordem padrão 99 (fim da grade).
func (r *EstoqueRepository) FindOrCreateTamanho(ctx context.Context, nome string) (domain.Tamanho, error) {
	if t, err := r.FindTamanhoPorNome(ctx, nome); err == nil {
		return t, nil
	} else if _, notFound := err.(*errors.NotFoundError); !notFound {
		return domain.Tamanho{}, err
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout,
		`INSERT INTO tamanhos (id, nome, ordem) VALUES ($1, $2, 99)`,
		uuid.New().String(), strings.ToUpper(strings.TrimSpace(nome)),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return r.FindTamanhoPorNome(ctx, nome)
		}
		return domain.Tamanho{}, errors.NewDBError("Falha ao criar tamanho", err)
	}

	return r.FindTamanhoPorNome(ctx, nome)
}

// --- SKU ---

const skuColumns = `
	id, produto_id, cor_id, tamanho_id, saldo_disponivel, saldo_reservado,
	saldo_fisico, estoque_minimo, estoque_alvo, version, created_at, updated_at`

func scanSku(row interface{ Scan(...interface{}) error }) (domain.Sku, error) {
	var s domain.Sku
	err := row.Scan(
		&s.ID, &s.ProdutoID, &s.CorID, &s.TamanhoID, &s.SaldoDisponivel,
		&s.SaldoReservado, &s.SaldoFisico, &s.EstoqueMinimo, &s.EstoqueAlvo,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// FindSkuPorChave busca o SKU da tripla (produto, cor, tamanho), sem criar.
func (r *EstoqueRepository) FindSkuPorChave(ctx context.Context, produtoID, corID, tamanhoID string) (domain.Sku, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + skuColumns + ` FROM skus WHERE produto_id = $1 AND cor_id = $2 AND tamanho_id = $3`
	s, err := scanSku(r.DB.QueryRowContext(ctxTimeout, query, produtoID, corID, tamanhoID))
	if err == sql.ErrNoRows {
		return domain.Sku{}, errors.NewNotFoundError("SKU não encontrado para a combinação produto/cor/tamanho.")
	}
	if err != nil {
		return domain.Sku{}, errors.NewDBError("Falha ao buscar SKU", err)
	}
	return s, nil
}

// FindOrCreateSku resolve o SKU da tripla, criando com saldos zerados
// quando ausente.
func (r *EstoqueRepository) FindOrCreateSku(ctx context.Context, produtoID, corID, tamanhoID string) (domain.Sku, error) {
	if s, err := r.FindSkuPorChave(ctx, produtoID, corID, tamanhoID); err == nil {
		return s, nil
	} else if _, notFound := err.(*errors.NotFoundError); !notFound {
		return domain.Sku{}, err
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now()
	const insert = `
		INSERT INTO skus (
			id, produto_id, cor_id, tamanho_id, saldo_disponivel,
			saldo_reservado, saldo_fisico, estoque_minimo, estoque_alvo,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,0,0,0,0,0,1,$5,$6)`

	_, err := r.DB.ExecContext(ctxTimeout, insert, uuid.New().String(), produtoID, corID, tamanhoID, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return r.FindSkuPorChave(ctx, produtoID, corID, tamanhoID)
		}
		return domain.Sku{}, errors.NewDBError("Falha ao criar SKU", err)
	}

	return r.FindSkuPorChave(ctx, produtoID, corID, tamanhoID)
}

// AjustarSaldo aplica um ajuste de saldo disponível a um SKU dentro de uma
// transação: trava a linha (FOR UPDATE), valida saldo resultante, grava o
// movimento e atualiza o saldo com OCC (coluna version).
//
// Movimentos ENTRADA_PRODUCAO com documento participam de um índice único
// parcial (sku, tipo, documento): a segunda tentativa de creditar o mesmo
// SKU pelo mesmo corte falha com ConflictError, sem tocar o saldo. É isso
// que torna a sincronia segura para retry e para chamadas concorrentes.
func (r *EstoqueRepository) AjustarSaldo(ctx context.Context, ajuste domain.AjusteEstoqueRequest) (domain.Sku, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Sku{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + skuColumns + ` FROM skus WHERE id = $1 FOR UPDATE`
	atual, err := scanSku(tx.QueryRowContext(ctxTimeout, query, ajuste.SkuID))
	if err == sql.ErrNoRows {
		return domain.Sku{}, errors.NewNotFoundError(fmt.Sprintf("SKU %s não encontrado.", ajuste.SkuID))
	}
	if err != nil {
		return domain.Sku{}, errors.NewDBError("Falha ao buscar SKU para ajuste", err)
	}

	novoSaldo := atual.SaldoDisponivel + ajuste.Delta
	if novoSaldo < 0 {
		r.logger.Warn("Ajuste resultaria em saldo negativo.", map[string]interface{}{
			"sku_id": ajuste.SkuID, "saldo": atual.SaldoDisponivel, "delta": ajuste.Delta,
		})
		return domain.Sku{}, errors.NewValidationError("Ajuste resultaria em saldo de estoque negativo.")
	}

	const insertMov = `
		INSERT INTO movimentacoes_estoque (
			id, sku_id, tipo, quantidade, data_movimentacao,
			referencia_documento, observacao
		) VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7)`

	_, err = tx.ExecContext(ctxTimeout, insertMov,
		uuid.New().String(), ajuste.SkuID, ajuste.Tipo, ajuste.Delta,
		time.Now(), ajuste.Documento, ajuste.Observacao,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Linha já creditada por uma sincronia anterior deste corte.
			return domain.Sku{}, errors.NewConflictError(
				fmt.Sprintf("Movimento %s do documento %s já registrado para o SKU %s.", ajuste.Tipo, ajuste.Documento, ajuste.SkuID))
		}
		return domain.Sku{}, errors.NewDBError("Falha ao registrar movimentação", err)
	}

	const updateSku = `
		UPDATE skus
		SET saldo_disponivel = $1, saldo_fisico = saldo_fisico + $2,
		    version = $3, updated_at = $4
		WHERE id = $5 AND version = $6`

	result, err := tx.ExecContext(ctxTimeout, updateSku,
		novoSaldo, ajuste.Delta, atual.Version+1, time.Now(), ajuste.SkuID, atual.Version,
	)
	if err != nil {
		return domain.Sku{}, errors.NewDBError("Falha ao atualizar saldo do SKU", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Sku{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if affected == 0 {
		// A linha está travada por FOR UPDATE, então isso não deveria
		// acontecer; mantido como rede de segurança do OCC.
		return domain.Sku{}, errors.NewConflictError("O estoque foi modificado por outra operação. Tente novamente.")
	}

	if err := tx.Commit(); err != nil {
		return domain.Sku{}, errors.NewDBError("Falha ao commitar ajuste de estoque", err)
	}

	atual.SaldoDisponivel = novoSaldo
	atual.SaldoFisico += ajuste.Delta
	atual.Version++
	atual.UpdatedAt = time.Now()
	return atual, nil
}

// ListarMovimentacoes devolve o histórico de movimentos de um SKU, mais
// recentes primeiro.
func (r *EstoqueRepository) ListarMovimentacoes(ctx context.Context, skuID string) ([]domain.MovimentacaoEstoque, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		SELECT id, sku_id, tipo, quantidade, data_movimentacao,
		       COALESCE(referencia_documento, ''), COALESCE(observacao, '')
		FROM movimentacoes_estoque
		WHERE sku_id = $1
		ORDER BY data_movimentacao DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, skuID)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar movimentações", err)
	}
	defer rows.Close()

	movs := []domain.MovimentacaoEstoque{}
	for rows.Next() {
		var m domain.MovimentacaoEstoque
		if err := rows.Scan(&m.ID, &m.SkuID, &m.Tipo, &m.Quantidade,
			&m.DataMovimentacao, &m.ReferenciaDocumento, &m.Observacao); err != nil {
			return nil, errors.NewDBError("Falha ao mapear movimentação", err)
		}
		movs = append(movs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar movimentações", err)
	}
	return movs, nil
}
