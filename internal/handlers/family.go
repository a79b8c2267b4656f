package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/giftnest-dev/giftnest/internal/metrics"
	"github.com/giftnest-dev/giftnest/internal/models"
	"github.com/giftnest-dev/giftnest/internal/services"
	"github.com/giftnest-dev/giftnest/internal/utils"
	"github.com/sirupsen/logrus"
)

type FamilyHandler struct {
	Svc *services.FamilyService
	Log *logrus.Logger
}

type CreateFamilyRequest struct {
	Name string `json:"name" binding:"required"`
}

type JoinFamilyRequest struct {
	Code string `json:"code" binding:"required"`
}

type FamilyResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	InviteCode string `json:"invite_code"`
}

func familyResponse(f *models.Family) FamilyResponse {
	return FamilyResponse{ID: f.ID, Name: f.Name, InviteCode: f.InviteCode}
}

func (h *FamilyHandler) Create(ctx *gin.Context) {
	var req CreateFamilyRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	family, err := h.Svc.CreateFamily(ctx.Request.Context(), userID, req.Name)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	metrics.FamiliesCreatedTotal.Inc()
	ctx.JSON(http.StatusCreated, familyResponse(family))
}

func (h *FamilyHandler) Join(ctx *gin.Context) {
	var req JoinFamilyRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	family, err := h.Svc.JoinFamily(ctx.Request.Context(), userID, req.Code)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, familyResponse(family))
}

func (h *FamilyHandler) RotateInviteCode(ctx *gin.Context) {
	familyID, err := utils.GetFamilyID(ctx)

	if err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "not in a family"})
		return
	}

	family, err := h.Svc.RotateInviteCode(ctx.Request.Context(), familyID)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, familyResponse(family))
}

func (h *FamilyHandler) Members(ctx *gin.Context) {
	familyID, err := utils.GetFamilyID(ctx)

	if err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "not in a family"})
		return
	}

	members, err := h.Svc.ListMembers(ctx.Request.Context(), familyID)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, members)
}

// Me returns the caller's family, or a null body when they have none.
func (h *FamilyHandler) Me(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	family, err := h.Svc.CallerFamily(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	if family == nil {
		ctx.JSON(http.StatusOK, nil)
		return
	}

	ctx.JSON(http.StatusOK, familyResponse(family))
}
