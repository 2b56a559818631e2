package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AccountHeader carries the authenticated tenant identifier. Authentication
// itself is handled upstream; this engine only scopes queries to the tenant.
const AccountHeader = "X-Account-ID"

// AccountContextMiddleware extracts the tenant account ID set by the upstream
// authentication layer and stores it in the request context. Requests without
// one are rejected: every export and report is tenant-scoped.
func AccountContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetHeader(AccountHeader)
		if accountID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing account identification"})
			return
		}
		c.Request = c.Request.WithContext(WithAccountID(c.Request.Context(), accountID))
		c.Next()
	}
}
