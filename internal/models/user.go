package models

// Gender enum
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// UserProfile represents the signed-in user of the device.
// ArogyaID is assigned once at signup completion.
type UserProfile struct {
	FirstName        string `json:"firstName" validate:"required"`
	LastName         string `json:"lastName" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Mobile           string `json:"mobile"`
	DOB              string `json:"dob" validate:"required,datetime=2006-01-02"`
	Gender           Gender `json:"gender" validate:"required,oneof=Male Female Other"`
	ArogyaID         string `json:"arogyaId" validate:"required,startswith=AP-"`
	BloodGroup       string `json:"bloodGroup,omitempty"`
	Address          string `json:"address,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
	PhotoURL         string `json:"photoUrl,omitempty"`
}

// FullName returns the display name of the profile.
func (u *UserProfile) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
