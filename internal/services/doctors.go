package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"arogya-app-server/internal/models"
)

// DateLayout is the calendar date format stored on records
const DateLayout = "2006-01-02"

var (
	// ErrDoctorNotFound is returned for unknown doctor ids
	ErrDoctorNotFound = errors.New("doctor not found")
	// ErrSlotUnavailable is returned when the slot is not one the doctor offers
	ErrSlotUnavailable = errors.New("slot unavailable")
)

// AppointmentStore is the slice of the local store booking uses
type AppointmentStore interface {
	Doctors() []models.Doctor
	BookAppointment(ctx context.Context, appt models.Appointment) ([]models.Appointment, error)
}

// DoctorFinder searches the doctor directory and books consultations
type DoctorFinder struct {
	store AppointmentStore
	now   func() time.Time
}

// NewDoctorFinder creates a new DoctorFinder
func NewDoctorFinder(store AppointmentStore) *DoctorFinder {
	return &DoctorFinder{store: store, now: time.Now}
}

// Search matches query against doctor name and specialty, ignoring case. An
// empty query returns every doctor.
func (f *DoctorFinder) Search(query string) []models.Doctor {
	doctors := f.store.Doctors()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return doctors
	}

	matches := make([]models.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if strings.Contains(strings.ToLower(d.Name), q) || strings.Contains(strings.ToLower(d.Specialty), q) {
			matches = append(matches, d)
		}
	}
	return matches
}

// Doctor returns a doctor by id
func (f *DoctorFinder) Doctor(id string) (models.Doctor, error) {
	for _, d := range f.store.Doctors() {
		if d.ID == id {
			return d, nil
		}
	}
	return models.Doctor{}, fmt.Errorf("%w: %s", ErrDoctorNotFound, id)
}

// Book confirms a video consultation with doctorID at slot, dated today
func (f *DoctorFinder) Book(ctx context.Context, doctorID, slot string) (models.Appointment, error) {
	doctor, err := f.Doctor(doctorID)
	if err != nil {
		return models.Appointment{}, err
	}
	if !doctor.HasSlot(slot) {
		return models.Appointment{}, fmt.Errorf("%w: %s with %s", ErrSlotUnavailable, slot, doctor.Name)
	}

	appt := models.Appointment{
		ID:         uuid.NewString(),
		DoctorID:   doctor.ID,
		DoctorName: doctor.Name,
		Specialty:  doctor.Specialty,
		Date:       f.now().UTC().Format(DateLayout),
		Time:       slot,
		Status:     models.StatusUpcoming,
		Type:       models.AppointmentVideo,
	}
	if _, err := f.store.BookAppointment(ctx, appt); err != nil {
		return models.Appointment{}, err
	}
	return appt, nil
}
