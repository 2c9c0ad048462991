// Package store persists the app's client-local collections. Every mutation is
// a whole-collection read-modify-write.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"arogya-app-server/internal/logger"
	"arogya-app-server/internal/models"
)

// Collection names one independently persisted group of records
type Collection string

const (
	CollectionUser         Collection = "user"
	CollectionAppointments Collection = "appointments"
	CollectionReminders    Collection = "reminders"
	CollectionReports      Collection = "reports"
	CollectionVitals       Collection = "vitals"
)

// storage key suffixes, kept compatible with the device's existing keys
var collectionKeys = map[Collection]string{
	CollectionUser:         "user",
	CollectionAppointments: "appts",
	CollectionReminders:    "meds",
	CollectionReports:      "reports",
	CollectionVitals:       "vitals",
}

const (
	// MaxVitalSamples caps the stored vitals series.
	MaxVitalSamples = 50
	// VitalsRetention drops samples older than this on read.
	VitalsRetention = time.Hour

	vitalsSeedSize = 20
)

var (
	// ErrStorageUnavailable wraps any backend failure. Callers should treat it
	// as recoverable and keep their previous state.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrUnknownCollection is returned for collection names the store does not own.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrNotFound is returned when a record id is not in its collection.
	ErrNotFound = errors.New("record not found")
)

// Store is the typed persistence surface over a Backend
type Store struct {
	backend Backend
	prefix  string
	now     func() time.Time
	rng     *rand.Rand
	log     *logger.Logger

	mu sync.Mutex
}

// Option configures a Store
type Option func(*Store)

// WithKeyPrefix sets the prefix prepended to every storage key
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRand overrides the random source used for the vitals seed
func WithRand(rng *rand.Rand) Option {
	return func(s *Store) { s.rng = rng }
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a Store over backend
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		prefix:  "arogya_",
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key of a collection
func (s *Store) Key(c Collection) string {
	return s.prefix + collectionKeys[c]
}

// Get returns the current value of a collection, seeding defaults where the
// collection defines them.
func (s *Store) Get(ctx context.Context, c Collection) (any, error) {
	switch c {
	case CollectionUser:
		return s.User(ctx)
	case CollectionAppointments:
		return s.Appointments(ctx)
	case CollectionReminders:
		return s.Reminders(ctx)
	case CollectionReports:
		return s.Reports(ctx)
	case CollectionVitals:
		return s.Vitals(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
}

// Set overwrites a whole collection
func (s *Store) Set(ctx context.Context, c Collection, value any) error {
	if _, ok := collectionKeys[c]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, c, value)
}

// User returns the persisted profile, or nil when nobody is signed in
func (s *Store) User(ctx context.Context) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user models.UserProfile
	ok, err := s.read(ctx, CollectionUser, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

// SaveUser persists the profile
func (s *Store) SaveUser(ctx context.Context, user models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, CollectionUser, user)
}

// Logout deletes the persisted profile only
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(ctx, CollectionUser)
}

// Doctors returns the static doctor directory
func (s *Store) Doctors() []models.Doctor {
	return Doctors()
}

// Appointments returns the booked appointments
func (s *Store) Appointments(ctx context.Context) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadOrSeed(ctx, s, CollectionAppointments, noSeed[models.Appointment])
}

// BookAppointment appends appt and returns the updated collection
func (s *Store) BookAppointment(ctx context.Context, appt models.Appointment) ([]models.Appointment, error) {
	return mutate(ctx, s, CollectionAppointments, noSeed[models.Appointment], func(cur []models.Appointment) []models.Appointment {
		return append(cur, appt)
	})
}

// Reminders returns the medication reminders, seeding and persisting the
// default set on first access.
func (s *Store) Reminders(ctx context.Context) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadOrSeed(ctx, s, CollectionReminders, defaultReminders)
}

// AddReminder appends a reminder
func (s *Store) AddReminder(ctx context.Context, r models.Reminder) ([]models.Reminder, error) {
	return mutate(ctx, s, CollectionReminders, defaultReminders, func(cur []models.Reminder) []models.Reminder {
		return append(cur, r)
	})
}

// ToggleReminder flips Taken on the reminder with id. Unknown ids leave the
// collection unchanged and nothing is written.
func (s *Store) ToggleReminder(ctx context.Context, id string) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := loadOrSeed(ctx, s, CollectionReminders, defaultReminders)
	if err != nil {
		return nil, err
	}
	matched := false
	for i := range current {
		if current[i].ID == id {
			current[i].Taken = !current[i].Taken
			matched = true
		}
	}
	if !matched {
		return current, nil
	}
	if err := s.write(ctx, CollectionReminders, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Reports returns the medical reports, newest first
func (s *Store) Reports(ctx context.Context) ([]models.MedicalReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadOrSeed(ctx, s, CollectionReports, defaultReports)
}

// AddReport prepends a report
func (s *Store) AddReport(ctx context.Context, r models.MedicalReport) ([]models.MedicalReport, error) {
	return mutate(ctx, s, CollectionReports, defaultReports, func(cur []models.MedicalReport) []models.MedicalReport {
		return append([]models.MedicalReport{r}, cur...)
	})
}

// Report looks up one report by id
func (s *Store) Report(ctx context.Context, id string) (*models.MedicalReport, error) {
	reports, err := s.Reports(ctx)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if reports[i].ID == id {
			return &reports[i], nil
		}
	}
	return nil, fmt.Errorf("report %q: %w", id, ErrNotFound)
}

// Vitals returns the samples inside the retention window. When nothing is
// stored a synthetic seed series is returned without being persisted.
func (s *Store) Vitals(ctx context.Context) ([]models.VitalSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vitals(ctx)
}

// AddVitalSample appends value stamped with the current time, keeps the newest
// MaxVitalSamples and returns the stored series.
func (s *Store) AddVitalSample(ctx context.Context, value float64) ([]models.VitalSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, err := s.vitals(ctx)
	if err != nil {
		return nil, err
	}

	ts := s.now().UnixMilli()
	if n := len(series); n > 0 && series[n-1].Timestamp > ts {
		ts = series[n-1].Timestamp
	}
	series = append(series, models.VitalSample{Timestamp: ts, Value: value})
	if len(series) > MaxVitalSamples {
		series = series[len(series)-MaxVitalSamples:]
	}

	if err := s.write(ctx, CollectionVitals, series); err != nil {
		return nil, err
	}
	return series, nil
}

// ResetAll deletes every collection except the user profile
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, c := range []Collection{CollectionReminders, CollectionAppointments, CollectionReports, CollectionVitals} {
		if err := s.remove(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) vitals(ctx context.Context) ([]models.VitalSample, error) {
	var stored []models.VitalSample
	ok, err := s.read(ctx, CollectionVitals, &stored)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !ok {
		return s.seedVitals(now), nil
	}

	cutoff := now.Add(-VitalsRetention).UnixMilli()
	fresh := make([]models.VitalSample, 0, len(stored))
	for _, v := range stored {
		if v.Timestamp > cutoff {
			fresh = append(fresh, v)
		}
	}
	return fresh, nil
}

func (s *Store) seedVitals(now time.Time) []models.VitalSample {
	series := make([]models.VitalSample, vitalsSeedSize)
	for i := range series {
		series[i] = models.VitalSample{
			Timestamp: now.Add(-time.Duration(vitalsSeedSize-i) * time.Second).UnixMilli(),
			Value:     70 + s.rng.Float64()*10,
		}
	}
	return series
}

// read decodes the stored collection into dst. Undecodable data is logged and
// reported as absent.
func (s *Store) read(ctx context.Context, c Collection, dst any) (bool, error) {
	key := s.Key(c)
	raw, ok, err := s.backend.Load(ctx, key)
	if err != nil {
		s.log.Storage("load", key, err)
		return false, fmt.Errorf("load %s: %w: %w", key, ErrStorageUnavailable, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.WithComponent("store").WithField("key", key).WithError(err).Warn("Discarding corrupted collection")
		return false, nil
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, c Collection, value any) error {
	key := s.Key(c)
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Save(ctx, key, raw); err != nil {
		s.log.Storage("save", key, err)
		return fmt.Errorf("save %s: %w: %w", key, ErrStorageUnavailable, err)
	}
	s.log.Storage("save", key, nil)
	return nil
}

func (s *Store) remove(ctx context.Context, c Collection) error {
	key := s.Key(c)
	if err := s.backend.Remove(ctx, key); err != nil {
		s.log.Storage("remove", key, err)
		return fmt.Errorf("remove %s: %w: %w", key, ErrStorageUnavailable, err)
	}
	return nil
}

func noSeed[T any]() []T { return []T{} }

// loadOrSeed must be called with s.mu held. An empty seed means the
// collection has no persisted default.
func loadOrSeed[T any](ctx context.Context, s *Store, c Collection, seed func() []T) ([]T, error) {
	var items []T
	ok, err := s.read(ctx, c, &items)
	if err != nil {
		return nil, err
	}
	if ok {
		if items == nil {
			items = []T{}
		}
		return items, nil
	}

	items = seed()
	if len(items) == 0 {
		return items, nil
	}
	if err := s.write(ctx, c, items); err != nil {
		return nil, err
	}
	return items, nil
}

func mutate[T any](ctx context.Context, s *Store, c Collection, seed func() []T, apply func([]T) []T) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := loadOrSeed(ctx, s, c, seed)
	if err != nil {
		return nil, err
	}
	updated := apply(current)
	if err := s.write(ctx, c, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
