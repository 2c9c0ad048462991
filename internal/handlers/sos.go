package handlers

import (
	"github.com/gin-gonic/gin"

	"arogya-app-server/internal/middleware"
	"arogya-app-server/internal/services"
	"arogya-app-server/internal/store"
	"arogya-app-server/internal/utils"
)

// EmergencyHandler serves the SOS countdown and the demo reset.
type EmergencyHandler struct {
	Emergency *services.Emergency
	Store     *store.Store
}

// NewEmergencyHandler creates a new EmergencyHandler.
func NewEmergencyHandler(emergency *services.Emergency, st *store.Store) *EmergencyHandler {
	return &EmergencyHandler{Emergency: emergency, Store: st}
}

// StartSOS begins the emergency countdown for the signed-in user.
func (h *EmergencyHandler) StartSOS(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not found in session")
		return
	}

	status, err := h.Emergency.Start(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "SOS countdown started", status)
}

// GetSOS returns the countdown state and the last dispatched alert.
func (h *EmergencyHandler) GetSOS(c *gin.Context) {
	utils.Success(c, "SOS status fetched successfully", h.Emergency.Status())
}

// CancelSOS stops the countdown before dispatch.
func (h *EmergencyHandler) CancelSOS(c *gin.Context) {
	if !h.Emergency.Cancel() {
		utils.Conflict(c, "No SOS countdown to cancel")
		return
	}
	utils.Success(c, "SOS cancelled", h.Emergency.Status())
}

// ResetDemo clears every collection but the profile.
func (h *EmergencyHandler) ResetDemo(c *gin.Context) {
	if err := h.Store.ResetAll(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Demo data reset", nil)
}
