package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IngCuriel/MariamPos-sub000/internal/apierror"
	"github.com/IngCuriel/MariamPos-sub000/internal/dto"
	"github.com/IngCuriel/MariamPos-sub000/internal/repository"
	"github.com/IngCuriel/MariamPos-sub000/internal/service"
)

type ShiftHandler struct {
	svc    service.ShiftService
	report service.ReportService
}

func NewShiftHandler(svc service.ShiftService, report service.ReportService) *ShiftHandler {
	return &ShiftHandler{svc: svc, report: report}
}

// Open handles POST /v1/shifts/open
func (h *ShiftHandler) Open(c *gin.Context) {
	var req dto.OpenShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close handles POST /v1/shifts/close
func (h *ShiftHandler) Close(c *gin.Context) {
	var req dto.CloseShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel handles POST /v1/shifts/cancel
func (h *ShiftHandler) Cancel(c *gin.Context) {
	var req dto.CancelShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetActive handles GET /v1/shifts/active?branch=...&register=...
func (h *ShiftHandler) GetActive(c *gin.Context) {
	branch := c.Query("branch")
	register, err := strconv.Atoi(c.Query("register"))
	if branch == "" || err != nil || register < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("branch and register query params are required"))
		return
	}
	resp, err := h.svc.GetActive(c.Request.Context(), branch, register)
	if err != nil {
		respondError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("no open shift on this register"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/shifts/:id
func (h *ShiftHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid shift id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Summary handles GET /v1/shifts/:id/summary
func (h *ShiftHandler) Summary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid shift id"))
		return
	}
	resp, err := h.report.ShiftSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List handles GET /v1/shifts?branch=&register=&status=&page=&limit=
func (h *ShiftHandler) List(c *gin.Context) {
	register, _ := strconv.Atoi(c.Query("register"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.report.ListShifts(c.Request.Context(), repository.ShiftFilter{
		Branch:   c.Query("branch"),
		Register: register,
		Status:   c.Query("status"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordMovement handles POST /v1/shifts/movements
func (h *ShiftHandler) RecordMovement(c *gin.Context) {
	var req dto.CashMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordCashMovement(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DeleteMovement handles DELETE /v1/shifts/movements/:id
func (h *ShiftHandler) DeleteMovement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid movement id"))
		return
	}
	if err := h.svc.DeleteCashMovement(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voided": true})
}

// ListMovements handles GET /v1/shifts/:id/movements
func (h *ShiftHandler) ListMovements(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid shift id"))
		return
	}
	resp, err := h.svc.ListCashMovements(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
