// Package session owns the view state: the configuration being edited, the
// latest predictions and which view is showing.
//
// Handlers never share the state directly. They read immutable snapshots and
// change the state only through Session methods.
package session

import (
	"context"
	"sync"

	"github.com/kartoza/boolnet-studio/internal/form"
	"github.com/kartoza/boolnet-studio/internal/models"
	"k8s.io/klog/v2"
)

// View is the screen currently shown
type View string

const (
	// Configuring shows the form. It is the initial view.
	Configuring View = "configuring"
	// Viewing shows the result plot
	Viewing View = "viewing"
)

// Dispatcher sends a configuration to the training service
type Dispatcher interface {
	Dispatch(ctx context.Context, cfg form.NetworkConfiguration) ([]models.ScatterPoint, error)
}

// State is an immutable snapshot of the session
type State struct {
	View   View                      `json:"view"`
	Config form.NetworkConfiguration `json:"config"`
	Points []models.ScatterPoint     `json:"points"`
}

// Session is the single view state of the application
type Session struct {
	dispatcher Dispatcher

	mu     sync.Mutex
	view   View
	config form.NetworkConfiguration
	points []models.ScatterPoint
}

// New creates a session showing the form with the default configuration
func New(d Dispatcher) *Session {
	return &Session{
		dispatcher: d,
		view:       Configuring,
		config:     form.Default(),
	}
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	points := make([]models.ScatterPoint, len(s.points))
	copy(points, s.points)
	return State{
		View:   s.view,
		Config: s.config.Clone(),
		Points: points,
	}
}

// Update applies one form edit to the configuration
func (s *Session) Update(edit func(*form.NetworkConfiguration)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	edit(&s.config)
	return s.snapshotLocked()
}

// Submit sends the current configuration to the training service.
//
// The request runs without holding the lock, so edits and other submits may
// proceed meanwhile; whichever response arrives last replaces the points. On
// failure the error is logged and returned, and the state is left as it was.
func (s *Session) Submit(ctx context.Context) (State, error) {
	cfg := s.Snapshot().Config

	points, err := s.dispatcher.Dispatch(ctx, cfg)
	if err != nil {
		klog.Errorf("Training request failed: %+v", err)
		return s.Snapshot(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = points
	s.view = Viewing
	klog.V(1).Infof("Showing %d points", len(points))
	return s.snapshotLocked(), nil
}

// Home returns to the form. The points are discarded; the configuration
// keeps the values last used.
func (s *Session) Home() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = Configuring
	s.points = nil
	return s.snapshotLocked()
}
