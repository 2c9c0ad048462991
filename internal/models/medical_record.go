package models

// MedicalReport represents an uploaded or seeded medical document.
type MedicalReport struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Hospital string `json:"hospital"`
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"` // text fed to report analysis
}
