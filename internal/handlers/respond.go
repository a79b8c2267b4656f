package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/giftnest-dev/giftnest/internal/apperr"
	"github.com/giftnest-dev/giftnest/internal/utils"
	"github.com/sirupsen/logrus"
)

// respondError maps a service error onto the wire. Unexpected errors are
// logged with full context and the caller only sees a generic message;
// everything else carries its stable code and public message.
func respondError(ctx *gin.Context, log *logrus.Logger, err error) {
	if apperr.KindOf(err) == apperr.KindUnexpected {
		fields := logrus.Fields{
			"route": ctx.FullPath(),
			"cause": err.Error(),
		}
		if userID, uerr := utils.GetCurrentUserID(ctx); uerr == nil {
			fields["user_id"] = userID
		}
		log.WithFields(fields).Error("request failed")
	}

	ctx.JSON(apperr.Status(err), gin.H{
		"error": apperr.Public(err),
		"code":  apperr.Code(err),
	})
}
