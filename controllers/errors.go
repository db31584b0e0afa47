package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kalougata/klgt-portal/services"
	"github.com/kalougata/klgt-portal/utils"
)

// respondError maps a service error kind onto the HTTP status and envelope code.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40001, services.Message(err))
	case errors.Is(err, services.ErrAuth):
		utils.Error(ctx, http.StatusUnauthorized, 40101, services.Message(err))
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, services.Message(err))
	case errors.Is(err, services.ErrConflict):
		utils.Error(ctx, http.StatusConflict, 40901, services.Message(err))
	default:
		utils.Logger.Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
	}
}

func badRequest(ctx *gin.Context, err error) {
	utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request body: "+err.Error())
}
