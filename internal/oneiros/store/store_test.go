package store_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/store"
)

func open(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndEvents(t *testing.T) {
	s := open(t)

	ev, err := event.New(event.AgentCreated, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		event.AgentCreatedPayload{ID: "agent-1", Name: "architect", Persona: "planner"})
	require.NoError(t, err)

	rowID, err := s.Append(ev, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rowID)

	rows, err := s.Events(nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, event.AgentCreated, rows[0].Event.Envelope.Type)

	n, err := s.EventCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAppendDispatchFailureKeepsEventRow(t *testing.T) {
	s := open(t)
	ev, err := event.New(event.AgentRemoved, time.Now().UTC(), event.AgentRemovedPayload{Name: "architect"})
	require.NoError(t, err)

	boom := assert.AnError
	_, err = s.Append(ev, func(db *sql.DB, e event.Event) error { return boom })
	require.Error(t, err)

	n, err := s.EventCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n, "event row must survive a projection failure")
}

func TestEventsFilterByType(t *testing.T) {
	s := open(t)
	now := time.Now().UTC()

	agentEv, _ := event.New(event.AgentCreated, now, event.AgentCreatedPayload{ID: "a", Name: "n", Persona: "p"})
	tenantEv, _ := event.New(event.TenantCreated, now, event.TenantCreatedPayload{ID: "t", Name: "acme"})
	_, err := s.Append(agentEv, nil)
	require.NoError(t, err)
	_, err = s.Append(tenantEv, nil)
	require.NoError(t, err)

	filter := event.TenantCreated
	rows, err := s.Events(&filter)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, event.TenantCreated, rows[0].Event.Envelope.Type)
}

func TestImportEventSkipsDispatch(t *testing.T) {
	s := open(t)
	ev, err := event.New(event.Woke, time.Now().UTC(), event.ActivityPayload{Note: "agent a woke"})
	require.NoError(t, err)

	_, err = s.ImportEvent(ev)
	require.NoError(t, err)

	n, err := s.EventCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := open(t)
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	ev1, _ := event.New(event.TenantCreated, now, event.TenantCreatedPayload{ID: "t1", Name: "acme"})
	ev2, _ := event.New(event.ActorCreated, now.Add(time.Second), event.ActorCreatedPayload{ID: "a1", TenantID: "t1", Name: "ops"})
	_, err := src.Append(ev1, nil)
	require.NoError(t, err)
	_, err = src.Append(ev2, nil)
	require.NoError(t, err)

	blob, err := src.Export()
	require.NoError(t, err)

	dst := open(t)
	require.NoError(t, dst.Import(blob))

	rows, err := dst.Events(nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, event.TenantCreated, rows[0].Event.Envelope.Type)
	assert.Equal(t, event.ActorCreated, rows[1].Event.Envelope.Type)
}

func TestImportEmptyBlobClearsLog(t *testing.T) {
	s := open(t)
	ev, _ := event.New(event.Sensed, time.Now().UTC(), event.ActivityPayload{Note: "noticed"})
	_, err := s.Append(ev, nil)
	require.NoError(t, err)

	require.NoError(t, s.Import(nil))

	n, err := s.EventCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
