package models

// MedicineForm enum
type MedicineForm string

const (
	FormPill      MedicineForm = "pill"
	FormLiquid    MedicineForm = "liquid"
	FormInjection MedicineForm = "injection"
)

// Reminder represents a medication entry on the dashboard
type Reminder struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Time   string       `json:"time"` // HH:MM
	Dosage string       `json:"dosage"`
	Type   MedicineForm `json:"type"`
	Taken  bool         `json:"taken"`
}
