package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kalougata/klgt-portal/services"
	"github.com/kalougata/klgt-portal/utils"
)

// AdminRequired lets the request through only while the admin gate is unlocked.
func AdminRequired(gate *services.AdminGate) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		open, err := gate.IsUnlocked(ctx.Request.Context())
		if err != nil {
			utils.Logger.Error("read admin gate", zap.Error(err))
			utils.Abort(ctx, http.StatusInternalServerError, 50001, "internal error")
			return
		}
		if !open {
			utils.Abort(ctx, http.StatusForbidden, 40301, "admin access is locked")
			return
		}
		ctx.Next()
	}
}
