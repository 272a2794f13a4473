package corterepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cortestock/internal/domain"
	"cortestock/internal/errors"
	"cortestock/internal/pkg/cache"
	"cortestock/internal/pkg/logger"
)

// CorteRepository persiste os cortes no PostgreSQL. A grade (itens) e o
// mapa de defeitos são colunas JSONB, preservando o shape do dado legado.
type CorteRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewCorteRepository cria e retorna uma nova instância do Repositório de Cortes.
func NewCorteRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *CorteRepository {
	return &CorteRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const corteCacheKey = "corte:%s"

const corteColumns = `
	id, referencia, faccao_id, data_envio, data_prevista_recebimento,
	data_recebimento, status, itens, qtd_total_enviada, observacoes_envio,
	qtd_total_recebida, qtd_total_defeitos, defeitos_por_tipo,
	observacoes_recebimento, sincronizado_em, created_at, updated_at`

// scanCorte mapeia uma linha do DB para a entidade, desserializando as
// colunas JSONB.
func scanCorte(row interface{ Scan(...interface{}) error }) (domain.Corte, error) {
	var (
		c              domain.Corte
		itensJSON      []byte
		defeitosJSON   []byte
		dataReceb      sql.NullTime
		sincronizadoEm sql.NullTime
		obsEnvio       sql.NullString
		obsReceb       sql.NullString
	)

	err := row.Scan(
		&c.ID, &c.Referencia, &c.FaccaoID, &c.DataEnvio, &c.DataPrevistaRecebimento,
		&dataReceb, &c.Status, &itensJSON, &c.QtdTotalEnviada, &obsEnvio,
		&c.QtdTotalRecebida, &c.QtdTotalDefeitos, &defeitosJSON,
		&obsReceb, &sincronizadoEm, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Corte{}, err
	}

	if err := json.Unmarshal(itensJSON, &c.Itens); err != nil {
		return domain.Corte{}, fmt.Errorf("itens jsonb inválido: %w", err)
	}
	if len(defeitosJSON) > 0 {
		if err := json.Unmarshal(defeitosJSON, &c.DefeitosPorTipo); err != nil {
			return domain.Corte{}, fmt.Errorf("defeitos_por_tipo jsonb inválido: %w", err)
		}
	}
	if c.DefeitosPorTipo == nil {
		c.DefeitosPorTipo = map[string]int{}
	}
	if dataReceb.Valid {
		t := dataReceb.Time
		c.DataRecebimento = &t
	}
	if sincronizadoEm.Valid {
		t := sincronizadoEm.Time
		c.SincronizadoEm = &t
	}
	c.ObservacoesEnvio = obsEnvio.String
	c.ObservacoesRecebimento = obsReceb.String
	return c, nil
}

// Save persiste um novo Corte (operação de envio).
func (r *CorteRepository) Save(ctx context.Context, corte domain.Corte) (domain.Corte, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	itensJSON, err := json.Marshal(corte.Itens)
	if err != nil {
		return domain.Corte{}, errors.NewInternalError("Falha ao serializar itens do corte.", err)
	}
	defeitosJSON, err := json.Marshal(corte.DefeitosPorTipo)
	if err != nil {
		return domain.Corte{}, errors.NewInternalError("Falha ao serializar defeitos do corte.", err)
	}

	const query = `
		INSERT INTO cortes (
			id, referencia, faccao_id, data_envio, data_prevista_recebimento,
			status, itens, qtd_total_enviada, observacoes_envio,
			qtd_total_recebida, qtd_total_defeitos, defeitos_por_tipo,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`

	_, err = r.DB.ExecContext(ctxTimeout, query,
		corte.ID, corte.Referencia, corte.FaccaoID, corte.DataEnvio,
		corte.DataPrevistaRecebimento, corte.Status, itensJSON,
		corte.QtdTotalEnviada, corte.ObservacoesEnvio,
		corte.QtdTotalRecebida, corte.QtdTotalDefeitos, defeitosJSON,
		corte.CreatedAt, corte.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir corte no DB.", err)
		return domain.Corte{}, errors.NewDBError("Falha ao inserir corte", err)
	}

	return corte, nil
}

// FindByID busca um corte pelo ID, com estratégia Cache-Aside.
func (r *CorteRepository) FindByID(ctx context.Context, id string) (domain.Corte, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(corteCacheKey, id)

	// Cache HIT: devolve direto do Redis.
	if cached, err := r.Cache.Get(ctxTimeout, key); err == nil {
		var c domain.Corte
		if json.Unmarshal([]byte(cached), &c) == nil {
			return c, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao ler corte do cache, seguindo para o DB.", map[string]interface{}{"id": id})
	}

	query := `SELECT ` + corteColumns + ` FROM cortes WHERE id = $1`
	corte, err := scanCorte(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Corte{}, errors.NewNotFoundError(fmt.Sprintf("Corte %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar corte no DB.", err)
		return domain.Corte{}, errors.NewDBError("Falha ao buscar corte", err)
	}

	// Popula o cache (WRITE) com TTL curto; falha de cache não é fatal.
	if payload, err := json.Marshal(corte); err == nil {
		_ = r.Cache.Set(ctxTimeout, key, string(payload), 60*time.Second)
	}

	return corte, nil
}

// FindAll lista cortes filtrando por referência (substring) e intervalo de
// data de envio, mais recentes primeiro.
func (r *CorteRepository) FindAll(ctx context.Context, filter domain.CorteFilter) ([]domain.Corte, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + corteColumns + ` FROM cortes WHERE 1=1`
	args := []interface{}{}

	if filter.Referencia != "" {
		args = append(args, "%"+filter.Referencia+"%")
		query += fmt.Sprintf(" AND referencia ILIKE $%d", len(args))
	}
	if filter.DataInicio != nil {
		args = append(args, *filter.DataInicio)
		query += fmt.Sprintf(" AND data_envio >= $%d", len(args))
	}
	if filter.DataFim != nil {
		args = append(args, *filter.DataFim)
		query += fmt.Sprintf(" AND data_envio <= $%d", len(args))
	}
	query += " ORDER BY data_envio DESC, created_at DESC"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar cortes", err)
	}
	defer rows.Close()

	cortes := []domain.Corte{}
	for rows.Next() {
		c, err := scanCorte(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao mapear corte", err)
		}
		cortes = append(cortes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar cortes", err)
	}

	return cortes, nil
}

// RegistrarRecebimento aplica a transição ENVIADO -> RECEBIDO com um update
// condicional: a cláusula WHERE status='ENVIADO' é o guard de estado. Zero
// linhas afetadas significa que o corte não existe ou já saiu de ENVIADO.
func (r *CorteRepository) RegistrarRecebimento(ctx context.Context, corte domain.Corte) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	itensJSON, err := json.Marshal(corte.Itens)
	if err != nil {
		return errors.NewInternalError("Falha ao serializar itens do corte.", err)
	}
	defeitosJSON, err := json.Marshal(corte.DefeitosPorTipo)
	if err != nil {
		return errors.NewInternalError("Falha ao serializar defeitos do corte.", err)
	}

	const query = `
		UPDATE cortes SET
			status = $1, data_recebimento = $2, itens = $3,
			qtd_total_recebida = $4, qtd_total_defeitos = $5,
			defeitos_por_tipo = $6, observacoes_recebimento = $7,
			updated_at = $8
		WHERE id = $9 AND status = 'ENVIADO'`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		domain.CorteRecebido, corte.DataRecebimento, itensJSON,
		corte.QtdTotalRecebida, corte.QtdTotalDefeitos, defeitosJSON,
		corte.ObservacoesRecebimento, time.Now(), corte.ID,
	)
	if err != nil {
		r.logger.Error("Falha ao registrar recebimento no DB.", err)
		return errors.NewDBError("Falha ao registrar recebimento", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if affected == 0 {
		return errors.NewInvalidStateError(fmt.Sprintf("Corte %s não está ENVIADO; recebimento rejeitado.", corte.ID))
	}

	r.invalidate(ctxTimeout, corte.ID)
	return nil
}

// MarcarSincronizado grava o token de idempotência da sincronia. O update é
// condicional (sincronizado_em IS NULL): devolve false quando outro chamador
// já marcou o corte, sem erro.
func (r *CorteRepository) MarcarSincronizado(ctx context.Context, id string, quando time.Time) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		UPDATE cortes SET sincronizado_em = $1, updated_at = $2
		WHERE id = $3 AND sincronizado_em IS NULL AND status = 'RECEBIDO'`

	result, err := r.DB.ExecContext(ctxTimeout, query, quando, time.Now(), id)
	if err != nil {
		return false, errors.NewDBError("Falha ao marcar corte como sincronizado", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	r.invalidate(ctxTimeout, id)
	return affected == 1, nil
}

// LimparSincronizado remove o marcador de sincronia (estorno).
func (r *CorteRepository) LimparSincronizado(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `UPDATE cortes SET sincronizado_em = NULL, updated_at = $1 WHERE id = $2`
	if _, err := r.DB.ExecContext(ctxTimeout, query, time.Now(), id); err != nil {
		return errors.NewDBError("Falha ao limpar marcador de sincronia", err)
	}

	r.invalidate(ctxTimeout, id)
	return nil
}

// Delete remove o corte definitivamente. Não há guarda contra sincronia
// prévia: a exclusão após sync deixa os movimentos de estoque órfãos, por
// decisão do operador.
func (r *CorteRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM cortes WHERE id = $1`, id)
	if err != nil {
		return errors.NewDBError("Falha ao excluir corte", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Corte %s não encontrado.", id))
	}

	r.invalidate(ctxTimeout, id)
	return nil
}

// Metricas agrega os indicadores do painel numa única consulta.
func (r *CorteRepository) Metricas(ctx context.Context) (domain.DashboardMetrics, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		SELECT
			(SELECT COUNT(*) FROM faccoes),
			COUNT(*) FILTER (WHERE status = 'ENVIADO'),
			COUNT(*) FILTER (WHERE status = 'RECEBIDO'),
			COALESCE(SUM(qtd_total_recebida), 0),
			COALESCE(SUM(qtd_total_defeitos), 0)
		FROM cortes`

	var m domain.DashboardMetrics
	err := r.DB.QueryRowContext(ctxTimeout, query).Scan(
		&m.TotalFaccoes, &m.CortesEnviados, &m.CortesRecebidos,
		&m.PecasRecebidas, &m.PecasDefeito,
	)
	if err != nil {
		return domain.DashboardMetrics{}, errors.NewDBError("Falha ao agregar métricas", err)
	}
	if m.PecasRecebidas > 0 {
		m.PercentualGeralDefeito = float64(m.PecasDefeito) / float64(m.PecasRecebidas) * 100
	}
	return m, nil
}

// invalidate descarta a entrada de cache de um corte após escrita.
func (r *CorteRepository) invalidate(ctx context.Context, id string) {
	if err := r.Cache.Delete(ctx, fmt.Sprintf(corteCacheKey, id)); err != nil {
		r.logger.Warn("Falha ao invalidar cache do corte.", map[string]interface{}{"id": id})
	}
}
