package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"arogya-app-server/internal/models"
)

// DefaultDosage is used when a reminder is added without one
const DefaultDosage = "As prescribed"

// ReminderStore is the slice of the local store the medication list uses
type ReminderStore interface {
	Reminders(ctx context.Context) ([]models.Reminder, error)
	AddReminder(ctx context.Context, r models.Reminder) ([]models.Reminder, error)
	ToggleReminder(ctx context.Context, id string) ([]models.Reminder, error)
}

// Medications manages the reminder list
type Medications struct {
	store ReminderStore
}

// NewMedications creates a new Medications
func NewMedications(store ReminderStore) *Medications {
	return &Medications{store: store}
}

// List returns the reminders, seeding defaults on first use
func (m *Medications) List(ctx context.Context) ([]models.Reminder, error) {
	return m.store.Reminders(ctx)
}

// Add appends a pill reminder and returns the updated list
func (m *Medications) Add(ctx context.Context, title, at, dosage string) ([]models.Reminder, error) {
	dosage = strings.TrimSpace(dosage)
	if dosage == "" {
		dosage = DefaultDosage
	}
	return m.store.AddReminder(ctx, models.Reminder{
		ID:     uuid.NewString(),
		Title:  strings.TrimSpace(title),
		Time:   at,
		Dosage: dosage,
		Type:   models.FormPill,
	})
}

// Toggle flips the taken flag of one reminder
func (m *Medications) Toggle(ctx context.Context, id string) ([]models.Reminder, error) {
	return m.store.ToggleReminder(ctx, id)
}
