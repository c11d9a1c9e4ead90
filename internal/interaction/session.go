package interaction

import (
	"errors"
	"fmt"

	"sprintdash/internal/views"
	"sprintdash/pkg/contracts/domain"
)

// EventType names a control change.
type EventType string

const (
	EventSelectDevelopers EventType = "select_developers"
	EventSetYRange        EventType = "set_y_range"
	EventShowAll          EventType = "show_all"
	EventHideAll          EventType = "hide_all"
)

var (
	// ErrUnknownEvent is returned for an unrecognised event type.
	ErrUnknownEvent = errors.New("unknown event type")
	// ErrMissingRange is returned for a set_y_range event without a range.
	ErrMissingRange = errors.New("set_y_range requires y_range")
)

// Event is one atomic control change.
type Event struct {
	Type       EventType      `json:"type" validate:"required,oneof=select_developers set_y_range show_all hide_all"`
	Developers []string       `json:"developers,omitempty" validate:"omitempty,dive,required"`
	YRange     *domain.YRange `json:"y_range,omitempty"`
}

// Dependents returns the views that must be recomputed after the event.
func (t EventType) Dependents() views.View {
	switch t {
	case EventSelectDevelopers:
		return views.AllViews
	case EventSetYRange, EventShowAll, EventHideAll:
		return views.ViewChart
	default:
		return 0
	}
}

// Session is a viewer's filter state. The zero value is not useful; use
// NewSession.
type Session struct {
	state  domain.FilterState
	bounds domain.YRange
}

// NewSession starts from initial, clamping its range into bounds.
func NewSession(initial domain.FilterState, bounds domain.YRange) Session {
	initial.SelectedDevelopers = cloneStrings(initial.SelectedDevelopers)
	initial.YRange = views.NormalizeRange(initial.YRange, bounds)
	return Session{state: initial, bounds: bounds}
}

// State returns a copy of the filter state.
func (s Session) State() domain.FilterState {
	st := s.state
	st.SelectedDevelopers = cloneStrings(s.state.SelectedDevelopers)
	return st
}

// Apply returns the session after ev and the views that depend on it. The
// receiver is left unchanged.
func (s Session) Apply(ev Event) (Session, views.View, error) {
	next := Session{state: s.State(), bounds: s.bounds}

	switch ev.Type {
	case EventSelectDevelopers:
		next.state.SelectedDevelopers = cloneStrings(ev.Developers)
	case EventSetYRange:
		if ev.YRange == nil {
			return s, 0, ErrMissingRange
		}
		next.state.YRange = views.NormalizeRange(*ev.YRange, s.bounds)
	case EventShowAll:
		next.state.ShowClicks++
	case EventHideAll:
		next.state.HideClicks++
	default:
		return s, 0, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}

	return next, ev.Type.Dependents(), nil
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
