package dream_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiros/oneiros/internal/oneiros/dream"
	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/model"
	"github.com/oneiros/oneiros/internal/oneiros/projection"
	"github.com/oneiros/oneiros/internal/oneiros/store"
)

const (
	agentID    = "11111111-1111-1111-1111-111111111111"
	coreMemID  = "22222222-2222-2222-2222-222222222222"
	projMemID  = "33333333-3333-3333-3333-333333333333"
	archMemID  = "44444444-4444-4444-4444-444444444444"
	cogID      = "55555555-5555-5555-5555-555555555555"
	expID      = "66666666-6666-6666-6666-666666666666"
	connID     = "77777777-7777-7777-7777-777777777777"
	createdISO = "2026-01-01T00:00:00Z"
)

func openBrain(t *testing.T) (*store.Store, []projection.Projection) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(projection.BrainSchema()))
	t.Cleanup(func() { s.Close() })
	return s, projection.BrainProjections()
}

func appendEvent(t *testing.T, s *store.Store, dispatch store.Dispatcher, ty event.Type, payload any, ts time.Time) {
	t.Helper()
	ev, err := event.New(ty, ts, payload)
	require.NoError(t, err)
	_, err = s.Append(ev, dispatch)
	require.NoError(t, err)
}

func TestCollectFiltersMemoriesByLevelAndTraversesConnections(t *testing.T) {
	s, projections := openBrain(t)
	dispatch := projection.Dispatcher(projections)
	now := time.Now().UTC()

	appendEvent(t, s, dispatch, event.PersonaSet, event.VocabSetPayload{Name: "planner", Description: "plans ahead"}, now)
	appendEvent(t, s, dispatch, event.AgentCreated,
		event.AgentCreatedPayload{ID: agentID, Name: "architect", Persona: "planner", Description: "d", Prompt: "p"}, now)

	appendEvent(t, s, dispatch, event.MemoryAdded,
		event.MemoryAddedPayload{ID: coreMemID, AgentID: agentID, Level: "core", Content: "core fact", CreatedAt: createdISO}, now)
	appendEvent(t, s, dispatch, event.MemoryAdded,
		event.MemoryAddedPayload{ID: projMemID, AgentID: agentID, Level: "project", Content: "project fact", CreatedAt: createdISO}, now)
	appendEvent(t, s, dispatch, event.MemoryAdded,
		event.MemoryAddedPayload{ID: archMemID, AgentID: agentID, Level: "archival", Content: "archival fact", CreatedAt: createdISO}, now)

	appendEvent(t, s, dispatch, event.CognitionAdded,
		event.CognitionAddedPayload{ID: cogID, AgentID: agentID, Texture: "insight", Content: "insight one", CreatedAt: createdISO}, now)
	appendEvent(t, s, dispatch, event.ExperienceCreated,
		event.ExperienceCreatedPayload{ID: expID, AgentID: agentID, Sensation: "wonder", Description: "first wonder", CreatedAt: createdISO}, now)

	projectMemoryLink := model.Memory{Level: "project", HasContent: model.HasContent{Content: "project fact"}}.Addr().String()
	cognitionLink := model.Cognition{Texture: "insight", HasContent: model.HasContent{Content: "insight one"}}.Addr().String()

	appendEvent(t, s, dispatch, event.ConnectionCreated,
		event.ConnectionCreatedPayload{ID: connID, Nature: "relates", FromLink: projectMemoryLink, ToLink: cognitionLink, CreatedAt: createdISO}, now)

	ctx, err := dream.Collect(s.DB(), "architect", dream.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "architect", ctx.Agent.Name.String())
	assert.Equal(t, "plans ahead", ctx.Persona.Description)

	require.Len(t, ctx.Memories, 2)
	contents := []string{ctx.Memories[0].Content, ctx.Memories[1].Content}
	assert.Contains(t, contents, "core fact")
	assert.Contains(t, contents, "project fact")
	assert.NotContains(t, contents, "archival fact")

	require.Len(t, ctx.Cognitions, 1)
	assert.Equal(t, "insight one", ctx.Cognitions[0].Content)

	require.Len(t, ctx.Experiences, 1)
	assert.Equal(t, "first wonder", ctx.Experiences[0].Description)

	require.Len(t, ctx.Connections, 1)
	assert.Equal(t, model.NatureName("relates"), ctx.Connections[0].Nature)
}

func TestCollectZeroDepthStopsAtSeedConnections(t *testing.T) {
	s, projections := openBrain(t)
	dispatch := projection.Dispatcher(projections)
	now := time.Now().UTC()

	appendEvent(t, s, dispatch, event.PersonaSet, event.VocabSetPayload{Name: "planner", Description: "plans ahead"}, now)
	appendEvent(t, s, dispatch, event.AgentCreated,
		event.AgentCreatedPayload{ID: agentID, Name: "architect", Persona: "planner"}, now)
	appendEvent(t, s, dispatch, event.MemoryAdded,
		event.MemoryAddedPayload{ID: projMemID, AgentID: agentID, Level: "project", Content: "project fact", CreatedAt: createdISO}, now)
	appendEvent(t, s, dispatch, event.CognitionAdded,
		event.CognitionAddedPayload{ID: cogID, AgentID: agentID, Texture: "insight", Content: "insight one", CreatedAt: createdISO}, now)

	projectMemoryLink := model.Memory{Level: "project", HasContent: model.HasContent{Content: "project fact"}}.Addr().String()
	cognitionLink := model.Cognition{Texture: "insight", HasContent: model.HasContent{Content: "insight one"}}.Addr().String()
	appendEvent(t, s, dispatch, event.ConnectionCreated,
		event.ConnectionCreatedPayload{ID: connID, Nature: "relates", FromLink: projectMemoryLink, ToLink: cognitionLink, CreatedAt: createdISO}, now)

	zero := 0
	cfg := dream.DefaultConfig()
	cfg.DreamDepth = &zero

	ctx, err := dream.Collect(s.DB(), "architect", cfg)
	require.NoError(t, err)

	// The connection touching a seed is recorded at depth 0 regardless of
	// the depth gate (the gate only stops the walk from enqueuing the far
	// endpoint and discovering more by traversal). The cognition still
	// ends up in the context because selectCognitions also merges in the
	// agent's recent-window cognitions independent of BFS discovery, so
	// it is in the kept set; with both the connection's endpoints (the
	// project memory and the cognition) in that set, spec §4.6 step 8
	// keeps the connection too.
	require.Len(t, ctx.Cognitions, 1)
	require.Len(t, ctx.Connections, 1)
}

func TestCollectUnknownAgentReturnsNotFound(t *testing.T) {
	s, _ := openBrain(t)
	_, err := dream.Collect(s.DB(), "ghost", dream.DefaultConfig())
	assert.Error(t, err)
}
