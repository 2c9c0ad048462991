package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"arogya-app-server/internal/models"
	"arogya-app-server/internal/store"
	"arogya-app-server/internal/utils"
	"arogya-app-server/internal/vitals"
)

// VitalsHandler serves the heart-rate series and the sampler controls.
type VitalsHandler struct {
	Store     *store.Store
	Sampler   *vitals.Sampler
	Dashboard *Dashboard
}

// NewVitalsHandler creates a new VitalsHandler.
func NewVitalsHandler(st *store.Store, sampler *vitals.Sampler, dashboard *Dashboard) *VitalsHandler {
	return &VitalsHandler{Store: st, Sampler: sampler, Dashboard: dashboard}
}

// SamplerRequest represents the request body for controlling the sampler.
type SamplerRequest struct {
	Action string `json:"action" binding:"required,oneof=start pause"`
}

// VitalsResponse is the series plus the live flag.
type VitalsResponse struct {
	Live    bool                 `json:"live"`
	Samples []models.VitalSample `json:"samples"`
}

// GetVitals returns the stored series.
func (h *VitalsHandler) GetVitals(c *gin.Context) {
	series, err := h.Store.Vitals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Vitals fetched successfully", VitalsResponse{Live: h.Sampler.Running(), Samples: series})
}

// ControlSampler starts or pauses the live feed.
func (h *VitalsHandler) ControlSampler(c *gin.Context) {
	var req SamplerRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	switch req.Action {
	case "start":
		h.Dashboard.Mounted()
	case "pause":
		h.Sampler.Pause()
	}
	utils.Success(c, "Sampler updated", gin.H{"live": h.Sampler.Running()})
}

// StreamVitals pushes the series as a "vitals" server-sent event after every
// tick until the client disconnects.
func (h *VitalsHandler) StreamVitals(c *gin.Context) {
	updates, unsubscribe := h.Sampler.Subscribe(4)
	defer unsubscribe()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case series, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("vitals", series)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
