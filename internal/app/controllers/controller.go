// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
	"github.com/yigit/agora/internal/pkg/helpers"
)

// requireActor returns the authenticated caller or answers 401
func requireActor(ctx *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
	}
	return actor, ok
}

// pathID reads a positive id path parameter or answers 400
func pathID(ctx *gin.Context, name, label string) (int64, bool) {
	id, ok := helpers.ParseIDParam(ctx, name)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" ID").
			WithField(name).
			WithDetails(label + " ID must be a positive number")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
	}
	return id, ok
}

// intQuery reads an optional integer query parameter, 0 when absent
func intQuery(ctx *gin.Context, name string) (int, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameter").
			WithField(name).
			WithDetails(name + " must be a non-negative integer")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return v, true
}

func respondOK(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(data))
}

func respondCreated(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(data))
}

func respondMessage(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(message))
}

func respondPage(ctx *gin.Context, items interface{}, total int64, page helpers.Page) {
	respondOK(ctx, helpers.NewPaginatedResponse(items, total, page))
}
