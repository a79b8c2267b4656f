package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/giftnest-dev/giftnest/db"
	"github.com/giftnest-dev/giftnest/internal/models"
	"github.com/giftnest-dev/giftnest/internal/types"
)

// FamilyMiddleware resolves the caller's single family membership and stores
// the family id in the request context. Runs after AuthMiddleware on every
// family-scoped route.
func FamilyMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, ok := value.(AuthenticatedUser)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var membership models.FamilyMembership

		if err := db.DB.Where("user_id = ?", user.ID).First(&membership).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not in a family"})
			return
		}

		ctx.Set(types.ContextFamilyKey, membership.FamilyID)
		ctx.Set(types.ContextRoleKey, membership.Role)
		ctx.Next()
	}
}
