package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_ledger/config"
	"github.com/mmdatafocus/pos_ledger/middlewares"
	"github.com/mmdatafocus/pos_ledger/models"
	"github.com/mmdatafocus/pos_ledger/utils"
	"github.com/mmdatafocus/pos_ledger/workflow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type rebuildRunner interface {
	TriggerManual(ctx context.Context) (models.RunStats, error)
	RebuildParty(ctx context.Context, ref models.PartyRef) (decimal.Decimal, error)
	Status() models.RebuildStatus
}

type reconciler interface {
	Reconcile(ctx context.Context, opts workflow.ReconcileOptions) *models.ReconciliationReport
}

type integrityValidator interface {
	Validate(ctx context.Context, opts workflow.ValidateOptions) *models.IntegrityReport
}

type adminHandlers struct {
	rebuild   rebuildRunner
	reconcile reconciler
	integrity integrityValidator
	logger    *logrus.Logger
}

func newAdminHandlers(svc *workflow.LedgerServices, logger *logrus.Logger) *adminHandlers {
	return &adminHandlers{
		rebuild:   svc.Scheduler,
		reconcile: svc.Auditor,
		integrity: svc.Validator,
		logger:    logger,
	}
}

// registerAdminRoutes resolves the handlers per request, so routes can be mounted before
// the database is connected.
func registerAdminRoutes(r gin.IRouter, resolve func() *adminHandlers) {
	with := func(handle func(*adminHandlers, *gin.Context)) gin.HandlerFunc {
		return func(c *gin.Context) {
			h := resolve()
			if h == nil {
				c.AbortWithStatus(http.StatusServiceUnavailable)
				return
			}
			handle(h, c)
		}
	}
	admin := r.Group("/admin", middlewares.AdminOnly())
	admin.POST("/balances/rebuild", with((*adminHandlers).triggerRebuild))
	admin.POST("/balances/rebuild/:role/:id", with((*adminHandlers).rebuildParty))
	admin.GET("/balances/status", with((*adminHandlers).rebuildStatus))
	admin.POST("/reconcile", with((*adminHandlers).runReconcile))
	admin.GET("/ledger/integrity", with((*adminHandlers).ledgerIntegrity))
}

// Runs outlive the request: a dropped client must not cancel a rebuild half way.
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func (h *adminHandlers) triggerRebuild(c *gin.Context) {
	stats, err := h.rebuild.TriggerManual(detached(c))
	if err != nil {
		var running *utils.AlreadyRunningError
		if errors.As(err, &running) {
			c.JSON(http.StatusConflict, gin.H{"error": running.Error()})
			return
		}
		config.LogError(h.logger, "adminHandlers.go", "triggerRebuild", "Manual rebuild", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *adminHandlers) rebuildParty(c *gin.Context) {
	role := models.PartyRole(strings.ToLower(c.Param("role")))
	id, err := strconv.Atoi(c.Param("id"))
	if !role.IsValid() || err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be customer or supplier and id a positive integer"})
		return
	}
	ref := models.PartyRef{Role: role, RefId: id}
	balance, err := h.rebuild.RebuildParty(utils.SetSkipTenantScopeInContext(detached(c), true), ref)
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": ref.String() + " not found"})
		return
	}
	if err != nil {
		config.LogError(h.logger, "adminHandlers.go", "rebuildParty", "Rebuilding party balance", ref.String(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"party": ref, "balance": balance})
}

func (h *adminHandlers) rebuildStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.rebuild.Status())
}

func (h *adminHandlers) runReconcile(c *gin.Context) {
	fix := false
	if v := c.Query("fix"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fix must be true or false"})
			return
		}
		fix = parsed
	}
	report := h.reconcile.Reconcile(detached(c), workflow.ReconcileOptions{
		Fix:        fix,
		BusinessId: strings.TrimSpace(c.Query("business_id")),
	})
	c.JSON(http.StatusOK, report)
}

func (h *adminHandlers) ledgerIntegrity(c *gin.Context) {
	report := h.integrity.Validate(detached(c), workflow.ValidateOptions{
		BusinessId: strings.TrimSpace(c.Query("business_id")),
	})
	c.JSON(http.StatusOK, report)
}
