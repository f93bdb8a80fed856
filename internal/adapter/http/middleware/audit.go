package middleware

import (
	"net/http"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// SessionAudit appends an entry to the caller's session history after every
// successful authenticated write it recognises.
func SessionAudit(history ports.SessionHistoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		userID, ok := UserID(c)
		if !ok {
			return
		}
		action := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		_ = history.Add(userID, []domain.SessionEntry{{
			domain.SessionKeyAction: action,
			domain.SessionKeyMethod: c.Request.Method,
			domain.SessionKeyPath:   c.Request.URL.Path,
			domain.SessionKeyStatus: status,
			domain.SessionKeyAt:     time.Now().UTC().Format(time.RFC3339),
		}})
	}
}

func mapRouteToAction(route, method string) string {
	switch {
	case route == "/api/v1/wallet/recharge" && method == http.MethodPost:
		return "recharge"
	case route == "/api/v1/wallet/transfer" && method == http.MethodPost:
		return "transfer"
	case route == "/api/v1/users/me" && method == http.MethodDelete:
		return "delete_account"
	}
	return ""
}
