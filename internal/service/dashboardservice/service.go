package dashboardservice

import (
	"context"
	"encoding/json"
	"time"

	"cortestock/internal/domain"
	"cortestock/internal/pkg/cache"
	"cortestock/internal/pkg/logger"
)

// MetricasRepository agrega os indicadores direto do banco.
type MetricasRepository interface {
	Metricas(ctx context.Context) (domain.DashboardMetrics, error)
}

// Service serve os indicadores do painel com cache curto em Redis: o painel
// é consultado com frequência e tolera dados com alguns segundos de atraso.
type Service struct {
	repo   MetricasRepository
	cache  cache.Client
	ttl    time.Duration
	logger logger.Logger
}

const metricasCacheKey = "dashboard:metricas"

// NewService cria e retorna uma nova instância do Serviço de Dashboard.
func NewService(repo MetricasRepository, cacheClient cache.Client, ttl time.Duration, logger logger.Logger) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Service{repo: repo, cache: cacheClient, ttl: ttl, logger: logger}
}

// Metricas devolve os indicadores consolidados, preferindo o cache.
func (s *Service) Metricas(ctx context.Context) (domain.DashboardMetrics, error) {
	if cached, err := s.cache.Get(ctx, metricasCacheKey); err == nil {
		var m domain.DashboardMetrics
		if json.Unmarshal([]byte(cached), &m) == nil {
			return m, nil
		}
	} else if err != cache.ErrCacheMiss {
		s.logger.Warn("Falha ao ler métricas do cache, seguindo para o DB.", nil)
	}

	m, err := s.repo.Metricas(ctx)
	if err != nil {
		return domain.DashboardMetrics{}, err
	}

	if payload, err := json.Marshal(m); err == nil {
		_ = s.cache.Set(ctx, metricasCacheKey, string(payload), s.ttl)
	}
	return m, nil
}
