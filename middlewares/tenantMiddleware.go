package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/insights_backend/utils"
)

// TenantMiddleware scopes every request to one business. Authentication
// itself lives upstream (API gateway); by the time a request reaches this
// service the headers are trusted.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId := strings.TrimSpace(c.GetHeader("X-Business-Id"))
		if businessId == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-Business-Id header is required"})
			return
		}
		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)

		if storeId := strings.TrimSpace(c.GetHeader("X-Store-Id")); storeId != "" {
			ctx = utils.SetStoreIdInContext(ctx, storeId)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
