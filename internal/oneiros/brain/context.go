// Package brain assembles the event store, the brain projection list,
// the search projection, and the dream collector behind the single
// contract spec §6 names for external collaborators: a Context exposing
// append, read_events, rebuild, collect_dream, and search. Nothing here
// is itself new engineering — it is the wiring the HTTP layer and CLI
// both sit on top of, grounded on the way the teacher's cmd/wasm entry
// point assembles a single store handle behind a narrow surface before
// handing it to its callers.
package brain

import (
	"database/sql"

	"github.com/oneiros/oneiros/internal/oneiros/dream"
	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/model"
	"github.com/oneiros/oneiros/internal/oneiros/projection"
	"github.com/oneiros/oneiros/internal/oneiros/search"
	"github.com/oneiros/oneiros/internal/oneiros/store"
)

// Context is one brain's live handle: its store plus the fixed
// projection list dispatched on every append.
type Context struct {
	Name        string
	store       *store.Store
	projections []projection.Projection
}

// Projections returns the brain projection list plus the search
// projection, in the dependency order spec §4.3 and §4.5 require.
func Projections() []projection.Projection {
	return append(projection.BrainProjections(), search.SearchProjection())
}

// Open wires a Context around an already-opened brain Store, ensuring
// the brain schema and search index exist.
func Open(name string, s *store.Store) (*Context, error) {
	if err := s.EnsureSchema(projection.BrainSchema()); err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(search.Schema()); err != nil {
		return nil, err
	}
	return &Context{Name: name, store: s, projections: Projections()}, nil
}

// Store exposes the underlying event store for callers (the CLI's
// brain replay command) that need it directly.
func (c *Context) Store() *store.Store { return c.store }

// Append inserts ev and dispatches it through the brain projection
// list, implementing spec §6's `append`.
func (c *Context) Append(ev event.Event) (int64, error) {
	return c.store.Append(ev, projection.Dispatcher(c.projections))
}

// ReadEvents returns the full log, optionally filtered by type,
// implementing spec §6's `read_events`.
func (c *Context) ReadEvents(filter *event.Type) ([]store.EventRow, error) {
	return c.store.Events(filter)
}

// Rebuild drops and re-derives every projection's view from the event
// log, implementing spec §6's `rebuild`.
func (c *Context) Rebuild() error {
	return c.store.WithLock(func(db *sql.DB) error {
		return projection.Rebuild(db, c.store, c.projections)
	})
}

// CollectDream assembles the named agent's recall context, implementing
// spec §6's `collect_dream`.
func (c *Context) CollectDream(agentName model.AgentName, cfg dream.Config) (*dream.Context, error) {
	return dream.Collect(c.store.DB(), agentName, cfg)
}

// Search runs a full-text query against the expressions index,
// optionally scoped to one agent, implementing spec §6's `search`.
func (c *Context) Search(query string, agentName string, limit int) ([]search.Result, error) {
	return search.Query(c.store.DB(), query, agentName, limit)
}

// ActivityEntry is one row of the brain_activity feed: a lifecycle,
// introspection, reflection, dream, or sensed event with no identity
// beyond its kind, an optional note, and when it occurred.
type ActivityEntry struct {
	Kind       string `json:"kind"`
	Note       string `json:"note,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// Activity returns the most recent brain_activity rows, newest first,
// read back from the table; there is no broadcast channel that pushes
// appended events to subscribers.
func (c *Context) Activity(limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.store.DB().Query(
		`SELECT kind, note, occurred_at FROM brain_activity ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.Kind, &e.Note, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
