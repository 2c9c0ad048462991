package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"arogya-app-server/internal/config"
	"arogya-app-server/internal/middleware"
	"arogya-app-server/internal/models"
	"arogya-app-server/internal/session"
	"arogya-app-server/internal/utils"
)

// SessionHandler drives the splash -> login -> dashboard flow.
type SessionHandler struct {
	Router    *session.Router
	Dashboard *Dashboard
	Cfg       *config.Config
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(router *session.Router, dashboard *Dashboard, cfg *config.Config) *SessionHandler {
	return &SessionHandler{Router: router, Dashboard: dashboard, Cfg: cfg}
}

// LoginRequest represents the request body of a completed login form.
type LoginRequest struct {
	Method  string         `json:"method" binding:"required,oneof=google mobile"`
	Mobile  string         `json:"mobile"`
	OTP     string         `json:"otp"`
	Profile ProfileDetails `json:"profile"`
}

// ProfileDetails is the details step of the login form. Blank fields keep the
// prefilled values.
type ProfileDetails struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email" binding:"omitempty,email"`
	DOB              string `json:"dob"`
	Gender           string `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	BloodGroup       string `json:"bloodGroup"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergencyContact"`
	PhotoURL         string `json:"photoUrl"`
}

func (d ProfileDetails) toProfile() models.UserProfile {
	return models.UserProfile{
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Email:            d.Email,
		DOB:              d.DOB,
		Gender:           models.Gender(d.Gender),
		BloodGroup:       d.BloodGroup,
		Address:          d.Address,
		EmergencyContact: d.EmergencyContact,
		PhotoURL:         d.PhotoURL,
	}
}

// SessionResponse is the current screen and, on the dashboard, a session token.
type SessionResponse struct {
	Screen session.Screen `json:"screen"`
	Token  string         `json:"token,omitempty"`
}

// GetSession returns the current screen.
func (h *SessionHandler) GetSession(c *gin.Context) {
	utils.Success(c, "Session fetched successfully", SessionResponse{Screen: h.Router.Current()})
}

// CompleteSplash dismisses the splash screen.
func (h *SessionHandler) CompleteSplash(c *gin.Context) {
	screen, err := h.Router.CompleteSplash(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondScreen(c, "Splash completed", screen)
}

// Login captures the profile, persists it and mounts the dashboard.
func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	capture := session.NewCapture()
	switch session.LoginMethod(req.Method) {
	case session.MethodGoogle:
		capture.ChooseGoogle()
	case session.MethodMobile:
		if strings.TrimSpace(req.Mobile) == "" || strings.TrimSpace(req.OTP) == "" {
			utils.BadRequest(c, "Mobile number and OTP are required for mobile login")
			return
		}
		capture.ChooseMobile(req.Mobile)
		if err := capture.VerifyOTP(req.OTP); err != nil {
			respondError(c, err)
			return
		}
	}

	profile, err := capture.Complete(req.Profile.toProfile(), nil)
	if err != nil {
		respondError(c, err)
		return
	}

	screen, err := h.Router.LoginSucceeded(c.Request.Context(), profile)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondScreen(c, "Login successful", screen)
}

// Logout clears the session and returns to login.
func (h *SessionHandler) Logout(c *gin.Context) {
	screen, err := h.Router.Logout(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.Dashboard.Unmounted()
	utils.Success(c, "Logged out successfully", SessionResponse{Screen: screen})
}

// GetProfile returns the signed-in profile.
func (h *SessionHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not found in session")
		return
	}
	utils.Success(c, "Profile fetched successfully", user)
}

func (h *SessionHandler) respondScreen(c *gin.Context, message string, screen session.Screen) {
	resp := SessionResponse{Screen: screen}
	if screen.State == session.StateDashboard && screen.User != nil {
		ttl := time.Duration(h.Cfg.SessionTTLHours) * time.Hour
		token, err := utils.GenerateSessionToken(screen.User.ArogyaID, h.Cfg.SessionSecret, ttl)
		if err != nil {
			utils.InternalServerError(c, "Failed to issue session token: "+err.Error())
			return
		}
		resp.Token = token
		h.Dashboard.Mounted()
	}
	utils.Success(c, message, resp)
}
