// Package replay implements the import/rewrite pipeline (spec §4.7): it
// consumes a legacy event log whose entity ids are surrogate UUIDs and
// rewrites it, in log order, into one addressed by content Links,
// preserving cross-references via an in-memory id→link map built up as
// creation events are encountered. Grounded on oneiros-service's
// replay.rs migration tool, translated from the teacher's store-level
// Export/Import pair (internal/store/sqlite_store.go) which already
// separates "read everything" from "write everything back" the way a
// rewrite pass needs.
package replay

import (
	"fmt"
	"log/slog"

	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/link"
)

// idMap accumulates old surrogate id -> new link text as creation
// events are encountered, in log order. Lookups for an id never seen
// (an unmapped reference) pass through unchanged — the pipeline is
// best-effort on references it does not understand (spec §4.7,
// "Determinism").
type idMap map[string]string

func (m idMap) rewrite(oldID string) string {
	if oldID == "" {
		return oldID
	}
	if newID, ok := m[oldID]; ok {
		return newID
	}
	return oldID
}

func (m idMap) record(oldID, newLink string) {
	if oldID == "" {
		return
	}
	m[oldID] = newLink
}

// RewriteEvents applies the spec §4.7 step-3 dispatch table to every
// event in log order, returning a new slice (the input is never
// mutated). Running this twice on the same input yields byte-equal
// output, since the map is rebuilt fresh from empty and every step is a
// pure function of (map-state-so-far, event).
func RewriteEvents(logger *slog.Logger, events []event.Event) ([]event.Event, error) {
	ids := make(idMap)
	out := make([]event.Event, len(events))

	for i, ev := range events {
		rewritten, err := rewriteOne(logger, ids, ev)
		if err != nil {
			return nil, fmt.Errorf("replay: event %d (%s): %w", i, ev.Envelope.Type, err)
		}
		out[i] = rewritten
	}
	return out, nil
}

func rewriteOne(logger *slog.Logger, ids idMap, ev event.Event) (event.Event, error) {
	switch ev.Envelope.Type {
	case event.AgentCreated:
		return rewriteAgentCreated(ids, ev)
	case event.AgentUpdated:
		return rewriteAgentUpdated(ids, ev)
	case event.CognitionAdded:
		return rewriteCognitionAdded(ids, ev)
	case event.MemoryAdded:
		return rewriteMemoryAdded(ids, ev)
	case event.ExperienceCreated:
		return rewriteExperienceCreated(ids, ev)
	case event.ConnectionCreated:
		return rewriteConnectionCreated(ids, ev)
	case event.ConnectionRemoved:
		return rewriteConnectionRemoved(ids, ev)
	case event.ExperienceRefAdded:
		return rewriteExperienceRefAdded(ids, ev)
	case event.ExperienceDescriptionUpdated:
		return rewriteExperienceDescriptionUpdated(ids, ev)
	default:
		// Vocabulary set/remove, lifecycle, storage, tenant/actor/
		// brain/ticket, prompts: pass through unchanged (spec §4.7
		// step 3, "Everything else").
		return ev, nil
	}
}

func reencode(ev event.Event, t event.Type, payload any) (event.Event, error) {
	return event.New(t, ev.Timestamp, payload)
}

func rewriteAgentCreated(ids idMap, ev event.Event) (event.Event, error) {
	var p event.AgentCreatedPayload
	if err := ev.Decode(&p); err != nil {
		return event.Event{}, err
	}
	l := link.New("agent", link.String(p.Name), link.String(p.Persona))
	ids.record(p.ID, l.String())
	p.ID = l.String()
	return reencode(ev, event.AgentCreated, p)
}

func rewriteAgentUpdated(ids idMap, ev event.Event) (event.Event, error) {
	var p event.AgentUpdatedPayload
	if err := ev.Decode(&p); err != nil {
		return event.Event{}, err
	}
	l := link.New("agent", link.String(p.Name), link.String(p.Persona))
	ids.record(p.ID, l.String())
	p.ID = l.String()
	return reencode(ev, event.AgentUpdated, p)
}

func rewriteCognitionAdded(ids idMap, ev event.Event) (event.Event, error) {
	var p event.CognitionAddedPayload
	if err := ev.Decode(&p); err != nil {
		return event.Event{}, err
	}
	l := link.New("cognition", link.String(p.Texture), link.String(p.Content))
	ids.record(p.ID, l.String())
	p.ID = l.String()
	p.AgentID = ids.rewrite(p.AgentID)
	return reencode(ev, event.CognitionAdded, p)
}

func rewriteMemoryAdded(ids idMap, ev event.Event) (event.Event, error) {
	var p event.MemoryAddedPayload
	if err := ev.Decode(&p); err != nil {
		return event.Event{}, err
	}
	l := link.New("memory", link.String(p.Level), link.String(p.Content))
	ids.record(p.ID, l.String())
	p.ID = l.String()
	p.AgentID = ids.rewrite(p.AgentID)
	return reencode(ev, event.MemoryAdded, p)
}

func rewriteExperienceCreated(ids idMap, ev event.Event) (event.Event, error) {
	var p event.ExperienceCreatedPayload
	if err := ev.Decode(&p); err != nil {
		return event.Event{}, err
	}
	l := link.New("experience", link.String(p.Sensation), link.String(p.Description))
	ids.record(p.ID, l.String())
	p.ID = l.String()
	p.AgentID = ids.rewrite(p.AgentID)
	return reencode(ev, event.ExperienceCreated, p)
}

// rewriteConnectionCreated parses the already-link-text from_link/
// to_link fields (a legacy connection-created event names its endpoints
// by link, never by surrogate id — spec §4.7 step 3) and computes the
// connection's own content-addressed id from them.
func rewriteConnectionCreated(ids idMap, ev event.Event) (event.Event, error) {
	var p event.ConnectionCreatedPayload
	if err := ev.Decode(&p); err != nil {
		return event.Event{}, err
	}
	fromLink, err := link.Parse(p.FromLink)
	if err != nil {
		return event.Event{}, fmt.Errorf("parse from_link: %w", err)
	}
	toLink, err := link.Parse(p.ToLink)
	if err != nil {
		return event.Event{}, fmt.Errorf("parse to_link: %w", err)
	}
	l := link.New("connection", link.String(p.Nature), link.Nested(fromLink), link.Nested(toLink))
	ids.record(p.ID, l.String())
	p.ID = l.String()
	return reencode(ev, event.ConnectionCreated, p)
}

func rewriteConnectionRemoved(ids idMap, ev event.Event) (event.Event, error) {
	var p event.ConnectionRemovedPayload
	if err := ev.Decode(&p); err != nil {
		return event.Event{}, err
	}
	p.ID = ids.rewrite(p.ID)
	return reencode(ev, event.ConnectionRemoved, p)
}

// rewriteExperienceRefAdded maps experience_id, maps record_ref's
// resource.id if present, and backfills created_at from
// the envelope timestamp when the legacy payload omitted it (spec
// §4.7 step 3, "Experience-ref-added").
func rewriteExperienceRefAdded(ids idMap, ev event.Event) (event.Event, error) {
	var p event.ExperienceRefAddedPayload
	if err := ev.Decode(&p); err != nil {
		return event.Event{}, err
	}
	p.ExperienceID = ids.rewrite(p.ExperienceID)
	if p.RecordRef.Resource.ID != "" {
		p.RecordRef.Resource.ID = ids.rewrite(p.RecordRef.Resource.ID)
	}
	if p.CreatedAt == nil {
		backfilled := ev.Timestamp.UTC().Format("2006-01-02T15:04:05.999999999Z07:00")
		p.CreatedAt = &backfilled
	}
	return reencode(ev, event.ExperienceRefAdded, p)
}

func rewriteExperienceDescriptionUpdated(ids idMap, ev event.Event) (event.Event, error) {
	var p event.ExperienceDescriptionUpdatedPayload
	if err := ev.Decode(&p); err != nil {
		return event.Event{}, err
	}
	p.ID = ids.rewrite(p.ID)
	return reencode(ev, event.ExperienceDescriptionUpdated, p)
}
