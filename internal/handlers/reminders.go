package handlers

import (
	"github.com/gin-gonic/gin"

	"arogya-app-server/internal/services"
	"arogya-app-server/internal/utils"
)

// ReminderHandler handles the medication list.
type ReminderHandler struct {
	Medications *services.Medications
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(medications *services.Medications) *ReminderHandler {
	return &ReminderHandler{Medications: medications}
}

// CreateReminderRequest represents the request body for adding a reminder.
type CreateReminderRequest struct {
	Title  string `json:"title" binding:"required"`
	Time   string `json:"time" binding:"required,datetime=15:04"`
	Dosage string `json:"dosage"`
}

// GetReminders lists reminders.
func (h *ReminderHandler) GetReminders(c *gin.Context) {
	reminders, err := h.Medications.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Reminders fetched successfully", reminders)
}

// CreateReminder adds a reminder and returns the updated list.
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req CreateReminderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	reminders, err := h.Medications.Add(c.Request.Context(), req.Title, req.Time, req.Dosage)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Reminder added successfully", reminders)
}

// ToggleReminder flips the taken flag. Unknown ids leave the list unchanged.
func (h *ReminderHandler) ToggleReminder(c *gin.Context) {
	reminders, err := h.Medications.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Reminder updated successfully", reminders)
}
