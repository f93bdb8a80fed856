package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func auditRouter(history *mocks.MockSessionHistoryService, status int) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(CtxUserID, "u1")
		c.Next()
	})
	r.Use(SessionAudit(history))
	handler := func(c *gin.Context) { c.Status(status) }
	r.POST("/api/v1/wallet/recharge", handler)
	r.POST("/api/v1/wallet/transfer", handler)
	r.GET("/api/v1/wallet/balance", handler)
	r.POST("/api/v1/other", handler)
	return r
}

func TestSessionAudit_RecordsSuccessfulWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := mocks.NewMockSessionHistoryService(ctrl)

	history.EXPECT().Add("u1", gomock.Any()).DoAndReturn(
		func(_ string, entries []domain.SessionEntry) error {
			require.Len(t, entries, 1)
			assert.Equal(t, "transfer", entries[0][domain.SessionKeyAction])
			assert.Equal(t, http.MethodPost, entries[0][domain.SessionKeyMethod])
			assert.Equal(t, http.StatusCreated, entries[0][domain.SessionKeyStatus])
			return nil
		})

	r := auditRouter(history, http.StatusCreated)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/wallet/transfer", nil))
}

func TestSessionAudit_Skips(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"reads", http.MethodGet, "/api/v1/wallet/balance", http.StatusOK},
		{"failed writes", http.MethodPost, "/api/v1/wallet/recharge", http.StatusBadRequest},
		{"unmapped routes", http.MethodPost, "/api/v1/other", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			history := mocks.NewMockSessionHistoryService(ctrl)
			// No Add expected.
			r := auditRouter(history, tt.status)
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))
		})
	}
}

func TestSessionAudit_AnonymousIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := mocks.NewMockSessionHistoryService(ctrl)

	r := gin.New()
	r.Use(SessionAudit(history))
	r.POST("/api/v1/wallet/recharge", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/wallet/recharge", nil))
}
