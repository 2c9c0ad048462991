// Package session holds the view state machine that decides which top-level
// screen is mounted and who the signed-in user is.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"arogya-app-server/internal/logger"
	"arogya-app-server/internal/models"
	"arogya-app-server/internal/utils"
)

// State is one top-level view
type State string

const (
	StateSplash    State = "SPLASH"
	StateLogin     State = "LOGIN"
	StateDashboard State = "DASHBOARD"
)

var (
	// ErrInvalidTransition is returned when an event is not valid in the current state
	ErrInvalidTransition = errors.New("invalid view transition")
	// ErrInvalidProfile is returned when a captured profile fails validation
	ErrInvalidProfile = errors.New("invalid user profile")
)

// UserStore is the slice of the local store the router depends on
type UserStore interface {
	User(ctx context.Context) (*models.UserProfile, error)
	SaveUser(ctx context.Context, user models.UserProfile) error
	Logout(ctx context.Context) error
}

// Screen is a snapshot of the router. User is non-nil exactly when State is
// StateDashboard.
type Screen struct {
	State State               `json:"view"`
	User  *models.UserProfile `json:"user,omitempty"`
}

// Router is the splash -> login -> dashboard state machine
type Router struct {
	users UserStore
	log   *logger.Logger

	mu      sync.Mutex
	state   State
	user    *models.UserProfile
	mounted bool
	// stored is the profile found at mount time; the branch on it happens
	// later when the splash is dismissed.
	stored *models.UserProfile
}

// NewRouter creates a router in the splash state
func NewRouter(users UserStore, log *logger.Logger) *Router {
	if log == nil {
		log = logger.Discard()
	}
	return &Router{users: users, log: log, state: StateSplash}
}

// Mount checks once for a persisted session. Later calls are no-ops.
func (r *Router) Mount(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.mount(ctx)
}

func (r *Router) mount(ctx context.Context) error {
	if r.mounted {
		return nil
	}
	user, err := r.users.User(ctx)
	if err != nil {
		return fmt.Errorf("check stored session: %w", err)
	}
	r.stored = user
	r.mounted = true
	return nil
}

// CompleteSplash leaves the splash for the dashboard when a stored profile
// was found at mount, otherwise for login.
func (r *Router) CompleteSplash(ctx context.Context) (Screen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateSplash {
		return r.screen(), fmt.Errorf("%w: splash completed in %s", ErrInvalidTransition, r.state)
	}
	if err := r.mount(ctx); err != nil {
		return r.screen(), err
	}

	if r.stored != nil {
		r.enterDashboard(*r.stored)
	} else {
		r.enterLogin()
	}
	return r.screen(), nil
}

// LoginSucceeded persists the captured profile and enters the dashboard.
// The profile is validated first; a failed save leaves the router on login.
func (r *Router) LoginSucceeded(ctx context.Context, profile models.UserProfile) (Screen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateLogin {
		return r.screen(), fmt.Errorf("%w: login completed in %s", ErrInvalidTransition, r.state)
	}
	if err := utils.Validate(profile); err != nil {
		return r.screen(), fmt.Errorf("%w: %s", ErrInvalidProfile, utils.FormatValidationError(err))
	}
	if err := r.users.SaveUser(ctx, profile); err != nil {
		return r.screen(), fmt.Errorf("persist profile: %w", err)
	}

	r.enterDashboard(profile)
	return r.screen(), nil
}

// Logout clears the persisted and in-memory session and returns to login.
func (r *Router) Logout(ctx context.Context) (Screen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateDashboard {
		return r.screen(), fmt.Errorf("%w: logout in %s", ErrInvalidTransition, r.state)
	}
	if err := r.users.Logout(ctx); err != nil {
		return r.screen(), fmt.Errorf("clear profile: %w", err)
	}

	r.stored = nil
	r.enterLogin()
	return r.screen(), nil
}

// Current returns the current screen
func (r *Router) Current() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen()
}

// User returns the signed-in profile when the dashboard is mounted
func (r *Router) User() (models.UserProfile, bool) {
	screen := r.Current()
	if screen.State != StateDashboard {
		return models.UserProfile{}, false
	}
	return *screen.User, true
}

func (r *Router) enterDashboard(profile models.UserProfile) {
	r.user = &profile
	r.state = StateDashboard
	r.log.WithComponent("session").WithField("arogya_id", profile.ArogyaID).Info("Dashboard mounted")
}

func (r *Router) enterLogin() {
	r.user = nil
	r.state = StateLogin
}

// screen must be called with r.mu held. A dashboard without a user is forced
// back to login.
func (r *Router) screen() Screen {
	if r.state == StateDashboard && r.user == nil {
		r.log.WithComponent("session").Error("Dashboard reached without a user, forcing login")
		r.enterLogin()
	}
	s := Screen{State: r.state}
	if r.user != nil {
		u := *r.user
		s.User = &u
	}
	return s
}
