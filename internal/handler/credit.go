package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IngCuriel/MariamPos-sub000/internal/apierror"
	"github.com/IngCuriel/MariamPos-sub000/internal/dto"
	"github.com/IngCuriel/MariamPos-sub000/internal/service"
)

type CreditHandler struct {
	svc service.CreditService
}

func NewCreditHandler(svc service.CreditService) *CreditHandler { return &CreditHandler{svc: svc} }

// Pay handles POST /v1/credits/payments
func (h *CreditHandler) Pay(c *gin.Context) {
	var req dto.CreditPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Pay(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Summary handles GET /v1/credits/clients/:id?credit_limit=...
// The credit limit lives with the client record, which is outside this
// service; the caller passes the resolved limit.
func (h *CreditHandler) Summary(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid client id"))
		return
	}
	limit := decimal.Zero
	if raw := c.Query("credit_limit"); raw != "" {
		limit, err = decimal.NewFromString(raw)
		if err != nil || limit.IsNegative() {
			c.JSON(http.StatusBadRequest, apierror.New("invalid credit_limit"))
			return
		}
	}
	resp, err := h.svc.Summary(c.Request.Context(), clientID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
