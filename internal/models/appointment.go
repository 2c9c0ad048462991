package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusUpcoming  AppointmentStatus = "upcoming"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentType represents how the consultation takes place
type AppointmentType string

const (
	AppointmentVideo    AppointmentType = "video"
	AppointmentInPerson AppointmentType = "in-person"
)

// Appointment represents a booked consultation. Doctor fields are denormalized
// at booking time.
type Appointment struct {
	ID         string            `json:"id"`
	DoctorID   string            `json:"doctorId"`
	DoctorName string            `json:"doctorName"`
	Specialty  string            `json:"specialty"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
	Status     AppointmentStatus `json:"status"`
	Type       AppointmentType   `json:"type"`
}
