package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/giftnest-dev/giftnest/internal/apperr"
	"github.com/giftnest-dev/giftnest/internal/events"
	"github.com/giftnest-dev/giftnest/internal/metrics"
	"github.com/giftnest-dev/giftnest/internal/services"
	"github.com/giftnest-dev/giftnest/internal/utils"
	"github.com/sirupsen/logrus"
)

type ReservationHandler struct {
	Svc *services.ReservationService
	Hub *events.Hub
	Log *logrus.Logger
}

func (h *ReservationHandler) Reserve(ctx *gin.Context) {
	userID, familyID, ok := callerAndFamily(ctx)
	if !ok {
		return
	}

	itemID, ok := pathUint(ctx, "id")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	reservation, err := h.Svc.Reserve(ctx.Request.Context(), userID, familyID, itemID)

	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindConflict:
			metrics.ReservationsTotal.WithLabelValues("conflict").Inc()
		case apperr.KindValidation:
			metrics.ReservationsTotal.WithLabelValues("rejected").Inc()
		}
		respondError(ctx, h.Log, err)
		return
	}

	metrics.ReservationsTotal.WithLabelValues("reserved").Inc()
	h.publishExceptOwner(ctx, familyID, itemID, events.TypeItemReserved)

	ctx.JSON(http.StatusCreated, reservation)
}

func (h *ReservationHandler) Unreserve(ctx *gin.Context) {
	userID, _, ok := callerAndFamily(ctx)
	if !ok {
		return
	}

	itemID, ok := pathUint(ctx, "id")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	if err := h.Svc.Unreserve(ctx.Request.Context(), userID, itemID); err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ReservationHandler) Purchase(ctx *gin.Context) {
	userID, familyID, ok := callerAndFamily(ctx)
	if !ok {
		return
	}

	itemID, ok := pathUint(ctx, "id")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	reservation, err := h.Svc.Purchase(ctx.Request.Context(), userID, itemID)

	if err != nil {
		respondError(ctx, h.Log, err)
		return
	}

	h.publishExceptOwner(ctx, familyID, itemID, events.TypeItemPurchased)

	ctx.JSON(http.StatusOK, reservation)
}

// publishExceptOwner emits a feed event for reservation activity, routed
// around the item's owner. When the owner cannot be resolved the event is
// dropped entirely rather than risk a spoiler.
func (h *ReservationHandler) publishExceptOwner(ctx *gin.Context, familyID, itemID uint, eventType string) {
	ownerID, err := h.Svc.ItemOwner(ctx.Request.Context(), familyID, itemID)
	if err != nil {
		return
	}

	actor := ""
	if user, uerr := utils.GetCurrentUser(ctx); uerr == nil {
		actor = user.Name
	}

	h.Hub.PublishExcept(familyID, ownerID, events.Event{
		Type:      eventType,
		ItemID:    itemID,
		ActorName: actor,
	})
}
