package interaction

import (
	"context"
	"time"

	"sprintdash/internal/views"
	"sprintdash/pkg/contracts/domain"
)

// RecordSource supplies the read-only long-form records.
type RecordSource interface {
	Records() []domain.LongRecord
}

// Update is the result of dispatching one event.
type Update struct {
	Event   EventType             `json:"event,omitempty"`
	Changed []string              `json:"changed"`
	State   domain.FilterState    `json:"state"`
	Views   domain.DashboardViews `json:"views"`
}

// Observer is told about every dispatched event.
type Observer func(ctx context.Context, event EventType, changed views.View, elapsed time.Duration)

// Dispatcher recomputes exactly the views an event affects.
type Dispatcher struct {
	engine   *views.Engine
	source   RecordSource
	observer Observer
}

// NewDispatcher creates a dispatcher. observer may be nil.
func NewDispatcher(engine *views.Engine, source RecordSource, observer Observer) *Dispatcher {
	return &Dispatcher{engine: engine, source: source, observer: observer}
}

// NewSession starts a session at the engine's default state.
func (d *Dispatcher) NewSession() Session {
	return NewSession(d.engine.DefaultState(), d.engine.Options().Bounds)
}

// Initial computes every view for a fresh session.
func (d *Dispatcher) Initial(ctx context.Context, s Session) (Update, error) {
	state := s.State()
	v, err := d.engine.Snapshot(ctx, d.source.Records(), state)
	if err != nil {
		return Update{}, err
	}
	return Update{Changed: views.AllViews.Names(), State: state, Views: v}, nil
}

// Dispatch applies ev and recomputes its dependent views. On error the
// original session is returned unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, s Session, ev Event) (Session, Update, error) {
	start := time.Now()

	next, changed, err := s.Apply(ev)
	if err != nil {
		return s, Update{}, err
	}

	state := next.State()
	v, err := d.engine.Compute(ctx, d.source.Records(), state, changed)
	if err != nil {
		return s, Update{}, err
	}

	if d.observer != nil {
		d.observer(ctx, ev.Type, changed, time.Since(start))
	}

	return next, Update{
		Event:   ev.Type,
		Changed: changed.Names(),
		State:   state,
		Views:   v,
	}, nil
}
