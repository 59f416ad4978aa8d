package health

import (
	"context"
	"time"

	"github.com/arenalab/promptarena/internal/cache"
	"github.com/arenalab/promptarena/internal/models"
	"github.com/sirupsen/logrus"
)

// StrategySource reports which model identifiers have a backing strategy.
type StrategySource interface {
	Registered() []string
}

// Checker probes the service's collaborators.
type Checker struct {
	history    models.HistoryRepository
	cache      *cache.ResponseCache
	strategies StrategySource
	logger     *logrus.Logger
}

func NewChecker(history models.HistoryRepository, responseCache *cache.ResponseCache, strategies StrategySource, logger *logrus.Logger) *Checker {
	return &Checker{
		history:    history,
		cache:      responseCache,
		strategies: strategies,
		logger:     logger,
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

// CheckHistoryStore exercises a minimal read against the history store.
func (h *Checker) CheckHistoryStore(ctx context.Context) ServiceHealth {
	start := time.Now()
	_, _, err := h.history.Query(ctx, "health-probe", models.QueryOptions{Page: 1, Limit: 1})
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("History store health check failed")
	}

	return ServiceHealth{
		Name:         "history_store",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
	}
}

// CheckCache pings Redis. A missing cache reports degraded, not unhealthy,
// because the service runs without it.
func (h *Checker) CheckCache(ctx context.Context) ServiceHealth {
	start := time.Now()
	err := h.cache.Ping(ctx)
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "degraded"
		errorMsg = err.Error()
	}

	return ServiceHealth{
		Name:         "response_cache",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
	}
}

// CheckModelStrategies verifies at least one model has a dedicated
// strategy. An empty registry means composition went wrong.
func (h *Checker) CheckModelStrategies() ServiceHealth {
	ids := h.strategies.Registered()

	status := "healthy"
	errorMsg := ""
	if len(ids) == 0 {
		status = "unhealthy"
		errorMsg = "no model strategies registered"
		h.logger.Error("Model strategy health check failed: none registered")
	}

	return ServiceHealth{
		Name:   "model_strategies",
		Status: status,
		Error:  errorMsg,
	}
}

// Overall aggregates all checks; any unhealthy collaborator makes the
// whole service unhealthy.
func (h *Checker) Overall(ctx context.Context) (string, []ServiceHealth) {
	checks := []ServiceHealth{
		h.CheckHistoryStore(ctx),
		h.CheckModelStrategies(),
		h.CheckCache(ctx),
	}

	status := "healthy"
	for _, check := range checks {
		if check.Status == "unhealthy" {
			status = "unhealthy"
			break
		}
		if check.Status == "degraded" {
			status = "degraded"
		}
	}

	return status, checks
}
