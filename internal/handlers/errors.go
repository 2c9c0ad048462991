package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"arogya-app-server/internal/services"
	"arogya-app-server/internal/session"
	"arogya-app-server/internal/store"
	"arogya-app-server/internal/utils"
)

// respondError maps service and store errors onto the response envelope
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, store.ErrStorageUnavailable):
		utils.ServiceUnavailable(c, "Local storage is unavailable; your changes were not saved")
	case errors.Is(err, store.ErrNotFound), errors.Is(err, services.ErrDoctorNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrSlotUnavailable),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, session.ErrInvalidProfile):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, services.ErrTurnInProgress),
		errors.Is(err, services.ErrSOSActive),
		errors.Is(err, services.ErrNoActiveCall):
		utils.Conflict(c, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		utils.Error(c, 499, "Request cancelled")
	default:
		utils.InternalServerError(c, err.Error())
	}
}
