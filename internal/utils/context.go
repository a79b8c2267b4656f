package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/giftnest-dev/giftnest/internal/middleware"
	"github.com/giftnest-dev/giftnest/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("user not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

func GetFamilyID(ctx *gin.Context) (uint, error) {
	value, exists := ctx.Get(types.ContextFamilyKey)

	if !exists {
		return 0, fmt.Errorf("no family in context")
	}

	familyID, ok := value.(uint)

	if !ok {
		return 0, fmt.Errorf("invalid family id type in context")
	}

	return familyID, nil
}
