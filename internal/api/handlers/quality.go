package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/loadaudit/internal/audit"
	"github.com/wonny/loadaudit/internal/store"
	"github.com/wonny/loadaudit/pkg/logger"
	"github.com/wonny/loadaudit/pkg/redis"
)

// QualityHandler handles audit-related API endpoints
// ⭐ SSOT: 품질 API 핸들러는 이 구조체에서만
type QualityHandler struct {
	auditRepo *store.AuditRepository
	cache     *redis.Cache
	runner    *audit.Runner
	logger    *logger.Logger
}

// NewQualityHandler creates a new quality handler
func NewQualityHandler(
	auditRepo *store.AuditRepository,
	cache *redis.Cache,
	runner *audit.Runner,
	log *logger.Logger,
) *QualityHandler {
	return &QualityHandler{
		auditRepo: auditRepo,
		cache:     cache,
		runner:    runner,
		logger:    log,
	}
}

// GetReport returns the latest audit report
// GET /api/quality/report
func (h *QualityHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Cache first, store as fallback
	var cached map[string]interface{}
	found, err := h.cache.Get(ctx, audit.CacheKeyLatestReport, &cached)
	if err == nil && found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	report, err := h.auditRepo.GetLatestRun(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest report")
		respondError(w, http.StatusNotFound, "No audit report available")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// ListRuns returns the latest audit runs
// GET /api/quality/runs?limit=20
func (h *QualityHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			respondError(w, http.StatusBadRequest, "limit must be an integer between 1 and 500")
			return
		}
		limit = parsed
	}

	runs, err := h.auditRepo.ListRuns(ctx, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}

// TriggerRun starts an audit run in the background
// POST /api/quality/run
func (h *QualityHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	go func() {
		// Detached from the request: batch runs outlive the HTTP exchange
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if _, err := h.runner.RunOnce(ctx); err != nil {
			h.logger.WithError(err).Error("Triggered audit run failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}
