package handlers

import (
	"github.com/gin-gonic/gin"

	"arogya-app-server/internal/services"
	"arogya-app-server/internal/store"
	"arogya-app-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Store  *store.Store
	Finder *services.DoctorFinder
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(st *store.Store, finder *services.DoctorFinder) *AppointmentHandler {
	return &AppointmentHandler{Store: st, Finder: finder}
}

// BookAppointmentRequest represents the request body for booking a slot.
type BookAppointmentRequest struct {
	Slot string `json:"slot" binding:"required"`
}

// GetAppointments lists booked appointments.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	appts, err := h.Store.Appointments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appts)
}

// BookAppointment confirms a consultation with the doctor in the URL.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Finder.Book(c.Request.Context(), c.Param("id"), req.Slot)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Appointment booked successfully", appt)
}
