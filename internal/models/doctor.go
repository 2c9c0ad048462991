package models

// Doctor is static reference data for the doctor finder
type Doctor struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Specialty      string   `json:"specialty"`
	Hospital       string   `json:"hospital"`
	Rating         float64  `json:"rating"`
	Experience     int      `json:"experience"`
	Fee            int      `json:"fee"`
	Image          string   `json:"image"`
	Location       string   `json:"location"`
	AvailableSlots []string `json:"availableSlots"`
}

// HasSlot reports whether slot is one of the doctor's available slots
func (d *Doctor) HasSlot(slot string) bool {
	for _, s := range d.AvailableSlots {
		if s == slot {
			return true
		}
	}
	return false
}
