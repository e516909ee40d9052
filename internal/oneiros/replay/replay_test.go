package replay_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/link"
	"github.com/oneiros/oneiros/internal/oneiros/replay"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Concrete scenario from spec §8: "Content-addressed agent." An
// agent-created event's id is rewritten to the link text computed from
// (name, persona).
func TestRewriteAgentCreated(t *testing.T) {
	ev, err := event.New(event.AgentCreated, epoch, event.AgentCreatedPayload{
		ID: "u1", Name: "architect", Persona: "expert", Description: "d", Prompt: "p",
	})
	require.NoError(t, err)

	out, err := replay.RewriteEvents(nil, []event.Event{ev})
	require.NoError(t, err)
	require.Len(t, out, 1)

	var p event.AgentCreatedPayload
	require.NoError(t, out[0].Decode(&p))

	want := link.New("agent", link.String("architect"), link.String("expert"))
	assert.Equal(t, want.String(), p.ID)
}

// Concrete scenario from spec §8: "Cognition agent_id rewrite."
func TestRewriteCognitionAgentIDRewrite(t *testing.T) {
	agentCreated, err := event.New(event.AgentCreated, epoch, event.AgentCreatedPayload{
		ID: "u1", Name: "a", Persona: "p",
	})
	require.NoError(t, err)
	cognitionAdded, err := event.New(event.CognitionAdded, epoch, event.CognitionAddedPayload{
		ID: "u2", AgentID: "u1", Texture: "t", Content: "c",
	})
	require.NoError(t, err)

	out, err := replay.RewriteEvents(nil, []event.Event{agentCreated, cognitionAdded})
	require.NoError(t, err)
	require.Len(t, out, 2)

	var c event.CognitionAddedPayload
	require.NoError(t, out[1].Decode(&c))

	wantAgentLink := link.New("agent", link.String("a"), link.String("p"))
	assert.Equal(t, wantAgentLink.String(), c.AgentID)

	wantCognitionLink := link.New("cognition", link.String("t"), link.String("c"))
	assert.Equal(t, wantCognitionLink.String(), c.ID)
}

// Concrete scenario from spec §8: "Experience-ref legacy migration."
func TestRewriteExperienceRefLegacyMigration(t *testing.T) {
	experienceCreated, err := event.New(event.ExperienceCreated, epoch, event.ExperienceCreatedPayload{
		ID: "U", AgentID: "agentU", Sensation: "s", Description: "d",
	})
	require.NoError(t, err)
	cognitionAdded, err := event.New(event.CognitionAdded, epoch, event.CognitionAddedPayload{
		ID: "V", AgentID: "agentU", Texture: "t", Content: "c",
	})
	require.NoError(t, err)

	refTimestamp := epoch.Add(time.Hour)
	refAdded, err := event.New(event.ExperienceRefAdded, refTimestamp, event.ExperienceRefAddedPayload{
		ExperienceID: "U",
		RecordRef:    event.RawRef{Version: 0, Resource: event.RawRes{Kind: "cognition", ID: "V"}},
		Role:         strPtr("origin"),
	})
	require.NoError(t, err)

	out, err := replay.RewriteEvents(nil, []event.Event{experienceCreated, cognitionAdded, refAdded})
	require.NoError(t, err)
	require.Len(t, out, 3)

	var p event.ExperienceRefAddedPayload
	require.NoError(t, out[2].Decode(&p))

	wantExperienceLink := link.New("experience", link.String("s"), link.String("d"))
	assert.Equal(t, wantExperienceLink.String(), p.ExperienceID)

	wantCognitionLink := link.New("cognition", link.String("t"), link.String("c"))
	assert.Equal(t, wantCognitionLink.String(), p.RecordRef.Resource.ID)

	require.NotNil(t, p.CreatedAt)
	assert.Equal(t, refTimestamp.UTC().Format(time.RFC3339Nano), *p.CreatedAt)
}

// Spec §8 testable property 10: rewriting the same log twice produces
// byte-equal output.
func TestRewriteIsDeterministic(t *testing.T) {
	agentCreated, err := event.New(event.AgentCreated, epoch, event.AgentCreatedPayload{
		ID: "u1", Name: "a", Persona: "p",
	})
	require.NoError(t, err)
	memoryAdded, err := event.New(event.MemoryAdded, epoch, event.MemoryAddedPayload{
		ID: "u2", AgentID: "u1", Level: "core", Content: "remember this",
	})
	require.NoError(t, err)
	input := []event.Event{agentCreated, memoryAdded}

	firstPass, err := replay.RewriteEvents(nil, input)
	require.NoError(t, err)
	secondPass, err := replay.RewriteEvents(nil, input)
	require.NoError(t, err)

	require.Len(t, firstPass, len(secondPass))
	for i := range firstPass {
		_, firstData, err := firstPass[i].MarshalStored()
		require.NoError(t, err)
		_, secondData, err := secondPass[i].MarshalStored()
		require.NoError(t, err)
		assert.Equal(t, firstData, secondData)
	}
}

// Unmapped ids (a reference to an id no creation event in this log
// produced) pass through unchanged.
func TestRewritePassesThroughUnmappedIDs(t *testing.T) {
	cognitionAdded, err := event.New(event.CognitionAdded, epoch, event.CognitionAddedPayload{
		ID: "u2", AgentID: "never-seen", Texture: "t", Content: "c",
	})
	require.NoError(t, err)

	out, err := replay.RewriteEvents(nil, []event.Event{cognitionAdded})
	require.NoError(t, err)

	var p event.CognitionAddedPayload
	require.NoError(t, out[0].Decode(&p))
	assert.Equal(t, "never-seen", p.AgentID)
}

func strPtr(s string) *string { return &s }
