// Package api exposes the onboarding operations over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Proton-105/socialpulse-onboarding/internal/domain"
	apperrors "github.com/Proton-105/socialpulse-onboarding/internal/errors"
	"github.com/Proton-105/socialpulse-onboarding/internal/health"
	"github.com/Proton-105/socialpulse-onboarding/internal/lifecycle"
	"github.com/Proton-105/socialpulse-onboarding/internal/onboarding"
)

// Onboarding is the part of the orchestrator the gateway calls.
type Onboarding interface {
	Advance(ctx context.Context, req onboarding.AdvanceRequest) (*onboarding.StepResult, error)
	UpdateDecisions(ctx context.Context, req onboarding.DecisionsRequest) (*onboarding.StepResult, error)
	GetAccount(ctx context.Context, accountID int64) (*domain.Account, error)
}

// Handler serves the onboarding and probe endpoints.
type Handler struct {
	onboarding Onboarding
	errors     *apperrors.Handler
	checker    *health.Checker
	probes     lifecycle.HealthChecker
}

// NewHandler creates a new API handler. checker and probes may be nil.
func NewHandler(svc Onboarding, errs *apperrors.Handler, checker *health.Checker, probes lifecycle.HealthChecker) *Handler {
	if errs == nil {
		errs = apperrors.NewHandler(nil, false)
	}

	return &Handler{
		onboarding: svc,
		errors:     errs,
		checker:    checker,
		probes:     probes,
	}
}

// preferencesPayload is the step 1 body: the account id plus the preferences.
type preferencesPayload struct {
	AccountID int64 `json:"account_id"`
	onboarding.Preferences
}

// CreateStep handles POST /onboarding?step=0|1.
func (h *Handler) CreateStep(c *gin.Context) {
	step, err := queryInt(c, "step")
	if err != nil {
		h.respondError(c, err)
		return
	}

	req := onboarding.AdvanceRequest{Step: int(step), Method: onboarding.MethodCreate}
	status := http.StatusOK

	switch step {
	case 0:
		var body onboarding.NewAccount
		if err := c.ShouldBindJSON(&body); err != nil {
			h.respondError(c, invalidBody(err))
			return
		}
		req.Account = &body
		status = http.StatusCreated
	case 1:
		var body preferencesPayload
		if err := c.ShouldBindJSON(&body); err != nil {
			h.respondError(c, invalidBody(err))
			return
		}
		req.AccountID = body.AccountID
		req.Preferences = &body.Preferences
	}

	result, err := h.onboarding.Advance(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(status, result)
}

// ReadStep handles GET /onboarding?step=2|3&account_id=N.
func (h *Handler) ReadStep(c *gin.Context) {
	step, err := queryInt(c, "step")
	if err != nil {
		h.respondError(c, err)
		return
	}
	accountID, err := queryInt(c, "account_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.onboarding.Advance(c.Request.Context(), onboarding.AdvanceRequest{
		Step:      int(step),
		Method:    onboarding.MethodRead,
		AccountID: accountID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if step == 2 {
		// the pending list is always present, even when empty
		c.JSON(http.StatusOK, gin.H{
			"step":            result.Step,
			"next_step":       result.NextStep,
			"account":         result.Account,
			"recommendations": nonNil(result.Recommendations),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateDecisions handles PUT /onboarding/decisions.
func (h *Handler) UpdateDecisions(c *gin.Context) {
	var body onboarding.DecisionsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, invalidBody(err))
		return
	}

	result, err := h.onboarding.UpdateDecisions(c.Request.Context(), body)
	if err != nil {
		appErr := h.errors.Handle(c.Request.Context(), err)
		payload := errorBody(appErr)
		if result != nil && result.Decisions != nil {
			payload["decisions"] = result.Decisions
		}
		c.JSON(statusFor(appErr), payload)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccount handles GET /accounts/:id.
func (h *Handler) GetAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.respondError(c, apperrors.NewValidationError("id must be an integer"))
		return
	}

	account, err := h.onboarding.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// Health handles GET /healthz with per-component results.
func (h *Handler) Health(c *gin.Context) {
	results := map[string]string{}
	if h.checker != nil {
		results = h.checker.Check(c.Request.Context())
	}

	status := http.StatusOK
	overall := "ok"
	if !health.Healthy(results) {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{"status": overall, "components": results})
}

// Live handles GET /livez.
func (h *Handler) Live(c *gin.Context) {
	h.probe(c, func(ctx context.Context) error {
		if h.probes == nil {
			return nil
		}
		return h.probes.Liveness(ctx)
	})
}

// Ready handles GET /readyz.
func (h *Handler) Ready(c *gin.Context) {
	h.probe(c, func(ctx context.Context) error {
		if h.probes == nil {
			return nil
		}
		return h.probes.Readiness(ctx)
	})
}

func (h *Handler) probe(c *gin.Context, check func(context.Context) error) {
	if err := check(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func queryInt(c *gin.Context, name string) (int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return 0, apperrors.NewValidationError(name + " query parameter is required")
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(name + " must be an integer")
	}
	return value, nil
}

func invalidBody(err error) error {
	return apperrors.NewValidationError("invalid request body: " + err.Error())
}

func nonNil(recs []domain.Recommendation) []domain.Recommendation {
	if recs == nil {
		return []domain.Recommendation{}
	}
	return recs
}
