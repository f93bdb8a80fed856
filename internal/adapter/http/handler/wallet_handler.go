package handler

import (
	"errors"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles the wallet endpoints of the authenticated user.
type WalletHandler struct {
	ledger  ports.LedgerService
	users   ports.UserService
	session ports.SessionHistoryService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger ports.LedgerService, users ports.UserService, session ports.SessionHistoryService) *WalletHandler {
	return &WalletHandler{
		ledger:  ledger,
		users:   users,
		session: session,
	}
}

// Recharge handles POST /api/v1/wallet/recharge.
func (h *WalletHandler) Recharge(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	rec, err := h.ledger.Recharge(c.Request.Context(), userID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// Transfer handles POST /api/v1/wallet/transfer.
func (h *WalletHandler) Transfer(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	recipient, err := h.users.GetByUsername(c.Request.Context(), req.RecipientUsername)
	if errors.Is(err, apperror.ErrUserNotFound()) {
		response.Error(c, apperror.ErrWalletNotFound(req.RecipientUsername))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	recs, err := h.ledger.Transfer(c.Request.Context(), userID, recipient.ID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.TransferResponse{Transactions: recs})
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.ledger.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BalanceResponse{UserID: userID, Balance: balance})
}

// GetStatement handles GET /api/v1/wallet/statement?page=&size=.
func (h *WalletHandler) GetStatement(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var q dto.StatementQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.ErrInvalidArgument(err.Error()))
		return
	}

	items, err := h.ledger.GetStatement(c.Request.Context(), userID, q.Page, q.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.StatementResponse{Page: q.Page, Size: q.Size, Items: items})
}

// AddSessionHistory handles POST /api/v1/wallet/session-history.
func (h *WalletHandler) AddSessionHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SessionHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.session.Add(userID, req.Entries); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetSessionHistory handles GET /api/v1/wallet/session-history.
func (h *WalletHandler) GetSessionHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	entries := h.session.Get(userID)
	if entries == nil {
		entries = []domain.SessionEntry{}
	}
	response.OK(c, dto.SessionHistoryResponse{Entries: entries})
}
