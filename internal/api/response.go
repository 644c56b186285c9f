package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Proton-105/socialpulse-onboarding/internal/errors"
)

func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := h.errors.Handle(c.Request.Context(), err)
	c.JSON(statusFor(appErr), errorBody(appErr))
}

func statusFor(appErr *apperrors.AppError) int {
	switch appErr.Kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(appErr *apperrors.AppError) gin.H {
	return gin.H{
		"error":   true,
		"code":    appErr.Code,
		"message": appErr.Message,
	}
}
