package handlers

import (
	"github.com/gin-gonic/gin"

	"arogya-app-server/internal/services"
	"arogya-app-server/internal/utils"
)

// CareHandler serves the AI-backed insight and medicine screens.
type CareHandler struct {
	Insights   *services.InsightGenerator
	Identifier *services.MedicineIdentifier
	Scanner    *services.Scanner
}

// NewCareHandler creates a new CareHandler.
func NewCareHandler(insights *services.InsightGenerator, identifier *services.MedicineIdentifier, scanner *services.Scanner) *CareHandler {
	return &CareHandler{Insights: insights, Identifier: identifier, Scanner: scanner}
}

// IdentifyMedicineRequest represents the request body for a medicine lookup.
type IdentifyMedicineRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetInsights returns predictive insights for the current vitals.
func (h *CareHandler) GetInsights(c *gin.Context) {
	insights, stats := h.Insights.ForCurrentVitals(c.Request.Context())
	utils.Success(c, "Insights generated", gin.H{"stats": stats, "insights": insights})
}

// Scan simulates a camera scan and identifies the medicine found.
func (h *CareHandler) Scan(c *gin.Context) {
	result, err := h.Scanner.Scan(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Medicine identified", result)
}

// IdentifyMedicine looks up a medicine by name.
func (h *CareHandler) IdentifyMedicine(c *gin.Context) {
	var req IdentifyMedicineRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	utils.Success(c, "Medicine identified", h.Identifier.Identify(c.Request.Context(), req.Name))
}
