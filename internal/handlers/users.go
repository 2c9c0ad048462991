package handlers

import (
	"github.com/gin-gonic/gin"

	"arogya-app-server/internal/services"
	"arogya-app-server/internal/utils"
)

// DoctorHandler serves the doctor finder.
type DoctorHandler struct {
	Finder *services.DoctorFinder
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(finder *services.DoctorFinder) *DoctorHandler {
	return &DoctorHandler{Finder: finder}
}

// GetDoctors lists doctors matching the optional ?q= query.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	utils.Success(c, "Doctors fetched successfully", h.Finder.Search(c.Query("q")))
}

// GetDoctorByID returns one doctor.
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	doctor, err := h.Finder.Doctor(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}
