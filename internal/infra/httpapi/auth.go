package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/domain"

	"github.com/gin-gonic/gin"
)

const adminAPIKeyHeader = "X-Admin-Api-Key"

func (s *Server) requireAdminAuth(c *gin.Context) {
	if s.cfg.AdminAPIKey == "" {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{
			Code:    domain.ErrCodeInternal,
			Message: "admin API is not configured",
		})
		return
	}

	provided := c.GetHeader(adminAPIKeyHeader)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(s.cfg.AdminAPIKey)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
			Code:    domain.ErrCodeInvalidRequest,
			Message: "invalid or missing admin API key",
		})
		return
	}
	c.Next()
}
