package session

import (
	"fmt"
	"math/rand"
	"strings"

	"arogya-app-server/internal/models"
)

// LoginMethod is how the user started signup
type LoginMethod string

const (
	MethodGoogle LoginMethod = "google"
	MethodMobile LoginMethod = "mobile"
)

// DefaultMobile is used when the user skipped the mobile number
const DefaultMobile = "9876543210"

// CaptureStep is one step of the login form
type CaptureStep string

const (
	StepMethod  CaptureStep = "method"
	StepOTP     CaptureStep = "otp"
	StepDetails CaptureStep = "details"
)

// Capture walks the method -> (otp) -> details login form. OTP entry is
// simulated and accepts any code.
type Capture struct {
	Step    CaptureStep
	Method  LoginMethod
	Profile models.UserProfile
}

// NewCapture starts a capture at the method step with form defaults
func NewCapture() *Capture {
	return &Capture{
		Step:    StepMethod,
		Profile: models.UserProfile{Gender: models.GenderMale, BloodGroup: "O+"},
	}
}

// ChooseGoogle prefills the details step from the Google account
func (c *Capture) ChooseGoogle() {
	c.Method = MethodGoogle
	c.Profile = models.UserProfile{
		FirstName:  "Rahul",
		LastName:   "Sharma",
		Email:      "rahul.s@example.com",
		Gender:     models.GenderMale,
		DOB:        "1990-05-15",
		BloodGroup: c.Profile.BloodGroup,
	}
	c.Step = StepDetails
}

// ChooseMobile moves to OTP entry
func (c *Capture) ChooseMobile(mobile string) {
	c.Method = MethodMobile
	c.Profile.Mobile = strings.TrimSpace(mobile)
	c.Step = StepOTP
}

// VerifyOTP accepts the code and moves to the details step
func (c *Capture) VerifyOTP(string) error {
	if c.Step != StepOTP {
		return fmt.Errorf("%w: otp verified at %s step", ErrInvalidTransition, c.Step)
	}
	c.Step = StepDetails
	return nil
}

// Complete merges the submitted details and assigns a fresh Arogya ID.
func (c *Capture) Complete(details models.UserProfile, rng *rand.Rand) (models.UserProfile, error) {
	if c.Step != StepDetails {
		return models.UserProfile{}, fmt.Errorf("%w: details submitted at %s step", ErrInvalidTransition, c.Step)
	}
	profile := mergeProfile(c.Profile, details)
	return FinalizeProfile(profile, rng), nil
}

// FinalizeProfile assigns the Arogya ID and the mobile fallback
func FinalizeProfile(profile models.UserProfile, rng *rand.Rand) models.UserProfile {
	profile.ArogyaID = NewArogyaID(rng)
	if profile.Mobile == "" {
		profile.Mobile = DefaultMobile
	}
	return profile
}

// NewArogyaID returns an identifier of the form AP-123456
func NewArogyaID(rng *rand.Rand) string {
	var n int
	if rng != nil {
		n = rng.Intn(900000)
	} else {
		n = rand.Intn(900000)
	}
	return fmt.Sprintf("AP-%d", 100000+n)
}

func mergeProfile(base, details models.UserProfile) models.UserProfile {
	pick := func(a, b string) string {
		if b != "" {
			return b
		}
		return a
	}
	return models.UserProfile{
		FirstName:        pick(base.FirstName, details.FirstName),
		LastName:         pick(base.LastName, details.LastName),
		Email:            pick(base.Email, details.Email),
		Mobile:           pick(base.Mobile, details.Mobile),
		DOB:              pick(base.DOB, details.DOB),
		Gender:           models.Gender(pick(string(base.Gender), string(details.Gender))),
		BloodGroup:       pick(base.BloodGroup, details.BloodGroup),
		Address:          pick(base.Address, details.Address),
		EmergencyContact: pick(base.EmergencyContact, details.EmergencyContact),
		PhotoURL:         pick(base.PhotoURL, details.PhotoURL),
	}
}
