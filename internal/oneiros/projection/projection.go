// Package projection implements the projection engine: named consumers
// of a bounded set of event types that materialize relational views
// from the event log, and the two predefined projection lists (system,
// brain). Grounded on oneiros-service/src/projections.rs — the
// "authoritative" projection module the Open Question resolutions in
// DESIGN.md chose over the vestigial duplicate.
package projection

import (
	"database/sql"

	"github.com/oneiros/oneiros/internal/oneiros/errs"
	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/store"
)

// Projection is a named consumer of a bounded set of event types (spec
// §4.2). Apply must be idempotent: applying the same event twice must
// leave the view in the same state.
type Projection struct {
	Name   string
	Events []event.Type
	Apply  func(db *sql.DB, ev event.Event) error
	Reset  func(db *sql.DB) error
}

func (p Projection) handles(t event.Type) bool {
	for _, e := range p.Events {
		if e == t {
			return true
		}
	}
	return false
}

// Project dispatches a single event to every projection in list order
// whose Events set contains the event's type. Order matters: earlier
// projections may populate rows later ones depend on.
func Project(db *sql.DB, projections []Projection, ev event.Event) error {
	for _, p := range projections {
		if !p.handles(ev.Envelope.Type) {
			continue
		}
		if err := p.Apply(db, ev); err != nil {
			return &errs.ProjectionError{Name: p.Name, Cause: err}
		}
	}
	return nil
}

// Dispatcher adapts a fixed projection list into a store.Dispatcher, for
// passing to Store.Append.
func Dispatcher(projections []Projection) store.Dispatcher {
	return func(db *sql.DB, ev event.Event) error {
		return Project(db, projections, ev)
	}
}

// Rebuild drops every projection's view (in reverse list order, so
// dependent views drop before the views they depend on), then replays
// the entire event log from s forward through the projections in list
// order. The result is observationally equivalent to never having
// written anything but the event log (spec §4.2).
func Rebuild(db *sql.DB, s *store.Store, projections []Projection) error {
	for i := len(projections) - 1; i >= 0; i-- {
		p := projections[i]
		if err := p.Reset(db); err != nil {
			return &errs.ProjectionError{Name: p.Name, Cause: err}
		}
	}

	rows, err := s.Events(nil)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := Project(db, projections, row.Event); err != nil {
			return err
		}
	}
	return nil
}
