package brain_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiros/oneiros/internal/oneiros/brain"
	"github.com/oneiros/oneiros/internal/oneiros/dream"
	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/model"
)

func TestManagerOpensBrainAndAppendsThroughProjections(t *testing.T) {
	mgr, err := brain.NewManager(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	ctx, err := mgr.Brain("dev-box")
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ev, err := event.New(event.AgentCreated, now, event.AgentCreatedPayload{
		ID: "11111111-1111-1111-1111-111111111111", Name: "architect", Persona: "expert", Description: "d", Prompt: "p",
	})
	require.NoError(t, err)

	_, err = ctx.Append(ev)
	require.NoError(t, err)

	rows, err := ctx.ReadEvents(nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, event.AgentCreated, rows[0].Event.Envelope.Type)

	results, err := ctx.Search("expert", "", 10)
	require.NoError(t, err)
	assert.Empty(t, results) // agent-created indexes description/prompt, not persona
}

func TestManagerReusesOpenBrain(t *testing.T) {
	mgr, err := brain.NewManager(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	first, err := mgr.Brain("shared")
	require.NoError(t, err)
	second, err := mgr.Brain("shared")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestManagerBrainPathIsUnderDataDirBrains(t *testing.T) {
	dir := t.TempDir()
	mgr, err := brain.NewManager(dir)
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	assert.Equal(t, filepath.Join(dir, "brains", "dev-box.db"), mgr.BrainPath("dev-box"))
}

func TestCollectDreamAfterRebuild(t *testing.T) {
	mgr, err := brain.NewManager(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	ctx, err := mgr.Brain("dev-box")
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	const agentID = "11111111-1111-1111-1111-111111111111"
	const memoryID = "22222222-2222-2222-2222-222222222222"
	agentCreated, err := event.New(event.AgentCreated, now, event.AgentCreatedPayload{
		ID: agentID, Name: "architect", Persona: "expert",
	})
	require.NoError(t, err)
	_, err = ctx.Append(agentCreated)
	require.NoError(t, err)

	memoryAdded, err := event.New(event.MemoryAdded, now.Add(time.Minute), event.MemoryAddedPayload{
		ID: memoryID, AgentID: agentID, Level: "core", Content: "remember the launch date", CreatedAt: now.Add(time.Minute).Format(time.RFC3339Nano),
	})
	require.NoError(t, err)
	_, err = ctx.Append(memoryAdded)
	require.NoError(t, err)

	require.NoError(t, ctx.Rebuild())

	dctx, err := ctx.CollectDream(model.AgentName("architect"), dream.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, dctx.Memories, 1)
	assert.Equal(t, "remember the launch date", dctx.Memories[0].Content)
}
