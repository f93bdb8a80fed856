package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// HistoryHandler serves cashback history and the range-bounded combined history.
type HistoryHandler struct {
	cashback  ports.CashbackService
	analytics ports.AnalyticsService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(cashback ports.CashbackService, analytics ports.AnalyticsService) *HistoryHandler {
	return &HistoryHandler{cashback: cashback, analytics: analytics}
}

// GetCashbackHistory handles GET /api/v1/cashback/history.
func (h *HistoryHandler) GetCashbackHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	items, err := h.cashback.GetCashbackHistory(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.CashbackHistoryResponse{Items: items})
}

// GetCombinedHistory handles POST /api/v1/charts/history.
func (h *HistoryHandler) GetCombinedHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.HistoryRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrInvalidArgument(err.Error()))
		return
	}

	items, err := h.analytics.GetCombinedHistory(c.Request.Context(), userID, *req.Start, *req.End)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.HistoryResponse{Items: items})
}
