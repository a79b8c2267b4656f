package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/giftnest-dev/giftnest/internal/events"
	"github.com/giftnest-dev/giftnest/internal/metrics"
	"github.com/giftnest-dev/giftnest/internal/services"
	"github.com/giftnest-dev/giftnest/internal/utils"
	"github.com/sirupsen/logrus"
)

type WishlistHandler struct {
	Svc *services.WishlistService
	Vis *services.VisibilityService
	Hub *events.Hub
	Log *logrus.Logger
}

func pathUint(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(value), true
}

func callerAndFamily(ctx *gin.Context) (uint, uint, bool) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, 0, false
	}

	familyID, err := utils.GetFamilyID(ctx)
	if err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "not in a family"})
		return 0, 0, false
	}

	return userID, familyID, true
}

// Own returns the caller's wishlist and items. No reservation data on this
// path, ever.
func (h *WishlistHandler) Own(ctx *gin.Context) {
	userID, familyID, ok := callerAndFamily(ctx)
	if !ok {
		return
	}

	wishlist, items, err := h.Svc.ListOwnItems(ctx.Request.Context(), userID, familyID)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"wishlist": wishlist, "items": items})
}

func (h *WishlistHandler) AddItem(ctx *gin.Context) {
	userID, familyID, ok := callerAndFamily(ctx)
	if !ok {
		return
	}

	var fields services.ItemFields

	if err := ctx.BindJSON(&fields); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	item, err := h.Svc.AddItem(ctx.Request.Context(), userID, familyID, fields)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	metrics.ItemsCreatedTotal.Inc()

	if user, uerr := utils.GetCurrentUser(ctx); uerr == nil {
		h.Hub.Publish(familyID, events.Event{
			Type:      events.TypeItemAdded,
			ItemID:    item.ID,
			ActorName: user.Name,
		})
	}

	ctx.JSON(http.StatusCreated, item)
}

func (h *WishlistHandler) UpdateItem(ctx *gin.Context) {
	userID, familyID, ok := callerAndFamily(ctx)
	if !ok {
		return
	}

	itemID, ok := pathUint(ctx, "id")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var fields services.ItemFields

	if err := ctx.BindJSON(&fields); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	item, err := h.Svc.UpdateItem(ctx.Request.Context(), userID, familyID, itemID, fields)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, item)
}

func (h *WishlistHandler) DeleteItem(ctx *gin.Context) {
	userID, familyID, ok := callerAndFamily(ctx)
	if !ok {
		return
	}

	itemID, ok := pathUint(ctx, "id")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	if err := h.Svc.DeleteItem(ctx.Request.Context(), userID, familyID, itemID); err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *WishlistHandler) Publish(ctx *gin.Context) {
	userID, familyID, ok := callerAndFamily(ctx)
	if !ok {
		return
	}

	wishlist, err := h.Svc.Publish(ctx.Request.Context(), userID, familyID)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	metrics.WishlistsPublishedTotal.Inc()

	if user, uerr := utils.GetCurrentUser(ctx); uerr == nil {
		h.Hub.Publish(familyID, events.Event{
			Type:      events.TypeWishlistPublished,
			ActorName: user.Name,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"wishlist": wishlist})
}

func (h *WishlistHandler) Unpublish(ctx *gin.Context) {
	userID, familyID, ok := callerAndFamily(ctx)
	if !ok {
		return
	}

	wishlist, err := h.Svc.Unpublish(ctx.Request.Context(), userID, familyID)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"wishlist": wishlist})
}

// Public serves the unauthenticated published page data.
func (h *WishlistHandler) Public(ctx *gin.Context) {
	slug := ctx.Param("slug")

	view, err := h.Svc.PublicWishlist(ctx.Request.Context(), slug)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, view)
}

// ListOthers lists the other family members' wishlists, gated on the
// caller's own contribution count.
func (h *WishlistHandler) ListOthers(ctx *gin.Context) {
	userID, familyID, ok := callerAndFamily(ctx)
	if !ok {
		return
	}

	rows, err := h.Vis.ListOtherWishlists(ctx.Request.Context(), userID, familyID)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, rows)
}

// ViewMember returns one member's wishlist with reservation state visible.
func (h *WishlistHandler) ViewMember(ctx *gin.Context) {
	userID, familyID, ok := callerAndFamily(ctx)
	if !ok {
		return
	}

	targetID, ok := pathUint(ctx, "user_id")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	view, err := h.Vis.MemberWishlist(ctx.Request.Context(), userID, familyID, targetID)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, view)
}
