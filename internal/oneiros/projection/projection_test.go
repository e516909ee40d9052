package projection_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/projection"
	"github.com/oneiros/oneiros/internal/oneiros/store"
)

const (
	agentID1 = "11111111-1111-1111-1111-111111111111"
	cogID1   = "22222222-2222-2222-2222-222222222222"
	tenantID = "33333333-3333-3333-3333-333333333333"
	actorID  = "44444444-4444-4444-4444-444444444444"
	brainID  = "55555555-5555-5555-5555-555555555555"
)

func openBrain(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(projection.BrainSchema()))
	t.Cleanup(func() { s.Close() })
	return s
}

func openSystem(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(projection.SystemSchema()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAgentProjectionAppliesOnAppend(t *testing.T) {
	s := openBrain(t)
	projections := projection.BrainProjections()
	dispatch := projection.Dispatcher(projections)

	ev, err := event.New(event.AgentCreated, time.Now().UTC(),
		event.AgentCreatedPayload{ID: agentID1, Name: "architect", Persona: "planner", Description: "d", Prompt: "p"})
	require.NoError(t, err)

	_, err = s.Append(ev, dispatch)
	require.NoError(t, err)

	var name string
	row := s.DB().QueryRow(`SELECT name FROM agents WHERE id = ?`, agentID1)
	require.NoError(t, row.Scan(&name))
	assert.Equal(t, "architect", name)
}

func TestVocabSetAndRemove(t *testing.T) {
	s := openBrain(t)
	projections := projection.BrainProjections()
	dispatch := projection.Dispatcher(projections)

	set, err := event.New(event.TextureSet, time.Now().UTC(), event.VocabSetPayload{Name: "insight", Description: "a flash"})
	require.NoError(t, err)
	_, err = s.Append(set, dispatch)
	require.NoError(t, err)

	var desc string
	require.NoError(t, s.DB().QueryRow(`SELECT description FROM vocab_texture WHERE name = ?`, "insight").Scan(&desc))
	assert.Equal(t, "a flash", desc)

	removed, err := event.New(event.TextureRemoved, time.Now().UTC(), event.VocabRemovedPayload{Name: "insight"})
	require.NoError(t, err)
	_, err = s.Append(removed, dispatch)
	require.NoError(t, err)

	err = s.DB().QueryRow(`SELECT description FROM vocab_texture WHERE name = ?`, "insight").Scan(&desc)
	assert.Error(t, err, "expected no row after removal")
}

func TestRebuildReplaysFullHistory(t *testing.T) {
	s := openBrain(t)
	projections := projection.BrainProjections()
	dispatch := projection.Dispatcher(projections)

	events := []struct {
		ty      event.Type
		payload any
	}{
		{event.PersonaSet, event.VocabSetPayload{Name: "planner", Description: "plans"}},
		{event.AgentCreated, event.AgentCreatedPayload{ID: agentID1, Name: "architect", Persona: "planner"}},
		{event.CognitionAdded, event.CognitionAddedPayload{ID: cogID1, AgentID: agentID1, Texture: "insight", Content: "hello", CreatedAt: "2026-01-01T00:00:00Z"}},
	}
	for _, e := range events {
		ev, err := event.New(e.ty, time.Now().UTC(), e.payload)
		require.NoError(t, err)
		_, err = s.Append(ev, dispatch)
		require.NoError(t, err)
	}

	require.NoError(t, projection.Rebuild(s.DB(), s, projections))

	var agentCount, cogCount int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM agents`).Scan(&agentCount))
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM cognitions`).Scan(&cogCount))
	assert.Equal(t, 1, agentCount)
	assert.Equal(t, 1, cogCount)
}

func TestBrainActivityProjectionRecordsLifecycleEvents(t *testing.T) {
	s := openBrain(t)
	projections := projection.BrainProjections()
	dispatch := projection.Dispatcher(projections)

	woke, err := event.New(event.Woke, time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC), event.ActivityPayload{Note: "daily cycle"})
	require.NoError(t, err)
	_, err = s.Append(woke, dispatch)
	require.NoError(t, err)

	dreamBegun, err := event.New(event.DreamBegun, time.Date(2026, 1, 1, 8, 5, 0, 0, time.UTC), event.ActivityPayload{})
	require.NoError(t, err)
	_, err = s.Append(dreamBegun, dispatch)
	require.NoError(t, err)

	var count int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM brain_activity`).Scan(&count))
	assert.Equal(t, 2, count)

	var kind, note string
	require.NoError(t, s.DB().QueryRow(`SELECT kind, note FROM brain_activity ORDER BY rowid ASC LIMIT 1`).Scan(&kind, &note))
	assert.Equal(t, "woke", kind)
	assert.Equal(t, "daily cycle", note)
}

func TestSystemProjectionsTenantActorBrain(t *testing.T) {
	s := openSystem(t)
	projections := projection.SystemProjections()
	dispatch := projection.Dispatcher(projections)

	tenantEv, _ := event.New(event.TenantCreated, time.Now().UTC(), event.TenantCreatedPayload{ID: tenantID, Name: "acme"})
	actorEv, _ := event.New(event.ActorCreated, time.Now().UTC(), event.ActorCreatedPayload{ID: actorID, TenantID: tenantID, Name: "ops"})
	brainEv, _ := event.New(event.BrainCreated, time.Now().UTC(), event.BrainCreatedPayload{ID: brainID, ActorID: actorID, Name: "primary"})

	for _, ev := range []event.Event{tenantEv, actorEv, brainEv} {
		_, err := s.Append(ev, dispatch)
		require.NoError(t, err)
	}

	var tenantName, actorName, brainName string
	require.NoError(t, s.DB().QueryRow(`SELECT name FROM tenants WHERE id = ?`, tenantID).Scan(&tenantName))
	require.NoError(t, s.DB().QueryRow(`SELECT name FROM actors WHERE id = ?`, actorID).Scan(&actorName))
	require.NoError(t, s.DB().QueryRow(`SELECT name FROM brains WHERE id = ?`, brainID).Scan(&brainName))
	assert.Equal(t, "acme", tenantName)
	assert.Equal(t, "ops", actorName)
	assert.Equal(t, "primary", brainName)
}
