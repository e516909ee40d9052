package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oneiros/oneiros/internal/oneiros/brain"
	"github.com/oneiros/oneiros/internal/oneiros/dream"
	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/model"
	"github.com/oneiros/oneiros/internal/oneiros/projection"
	"github.com/oneiros/oneiros/internal/oneiros/store"
)

// eventRowWire renders a store.EventRow in the event_row shape spec §6
// pins: { rowid, timestamp: RFC3339-utc, data: {type, data} }.
type eventRowWire struct {
	RowID     int64          `json:"rowid"`
	Timestamp string         `json:"timestamp"`
	Data      event.Envelope `json:"data"`
}

func wireRows(rows []store.EventRow) []eventRowWire {
	out := make([]eventRowWire, len(rows))
	for i, r := range rows {
		out[i] = eventRowWire{
			RowID:     r.RowID,
			Timestamp: r.Event.Timestamp.UTC().Format(time.RFC3339Nano),
			Data:      r.Event.Envelope,
		}
	}
	return out
}

// NewRouter builds the gin engine exposing the core's Context contract
// over HTTP. One *brain.Manager backs every route; brain databases are
// opened lazily by name on first request.
func NewRouter(mgr *brain.Manager) *gin.Engine {
	r := gin.Default()

	system := r.Group("/system")
	{
		system.POST("/events", appendSystemEvent(mgr))
		system.GET("/events", readSystemEvents(mgr))
	}

	brains := r.Group("/brains/:brain")
	{
		brains.POST("/events", appendBrainEvent(mgr))
		brains.GET("/events", readBrainEvents(mgr))
		brains.POST("/rebuild", rebuildBrain(mgr))
		brains.GET("/dream", collectDream(mgr))
		brains.GET("/search", searchBrain(mgr))
		brains.GET("/activity", readActivity(mgr))
	}

	return r
}

// eventRequest is the wire shape clients POST to append an event: the
// kebab-case type discriminant, its payload, and an optional caller-
// supplied timestamp (defaulting to now if omitted).
type eventRequest struct {
	Type      string          `json:"type" binding:"required"`
	Data      json.RawMessage `json:"data" binding:"required"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}

func (r eventRequest) toEvent() event.Event {
	ts := time.Now().UTC()
	if r.Timestamp != nil {
		ts = r.Timestamp.UTC()
	}
	return event.Event{
		Timestamp: ts,
		Envelope:  event.Envelope{Type: event.Type(r.Type), Data: r.Data},
	}
}

func appendSystemEvent(mgr *brain.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req eventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s, projections, err := mgr.System()
		if err != nil {
			fail(c, err)
			return
		}
		rowID, err := s.Append(req.toEvent(), projection.Dispatcher(projections))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"rowid": rowID})
	}
}

func readSystemEvents(mgr *brain.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, _, err := mgr.System()
		if err != nil {
			fail(c, err)
			return
		}
		rows, err := s.Events(typeFilter(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, wireRows(rows))
	}
}

func appendBrainEvent(mgr *brain.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req eventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx, err := mgr.Brain(c.Param("brain"))
		if err != nil {
			fail(c, err)
			return
		}
		rowID, err := ctx.Append(req.toEvent())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"rowid": rowID})
	}
}

func readBrainEvents(mgr *brain.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := mgr.Brain(c.Param("brain"))
		if err != nil {
			fail(c, err)
			return
		}
		rows, err := ctx.ReadEvents(typeFilter(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, wireRows(rows))
	}
}

func rebuildBrain(mgr *brain.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := mgr.Brain(c.Param("brain"))
		if err != nil {
			fail(c, err)
			return
		}
		if err := ctx.Rebuild(); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "rebuilt"})
	}
}

func collectDream(mgr *brain.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := mgr.Brain(c.Param("brain"))
		if err != nil {
			fail(c, err)
			return
		}
		agent := c.Query("agent")
		if agent == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "agent query parameter is required"})
			return
		}

		cfg := dream.DefaultConfig()
		if v := c.Query("recent_window"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.RecentWindow = n
			}
		}
		if v := c.Query("dream_depth"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.DreamDepth = &n
			}
		}
		if v := c.Query("cognition_size"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.CognitionSize = &n
			}
		}
		if v := c.Query("recollection_level"); v != "" {
			cfg.RecollectionLevel = model.LevelName(v)
		}
		if v := c.Query("recollection_size"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.RecollectionSize = &n
			}
		}
		if v := c.Query("experience_size"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.ExperienceSize = &n
			}
		}

		dctx, err := ctx.CollectDream(model.AgentName(agent), cfg)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dctx)
	}
}

func searchBrain(mgr *brain.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := mgr.Brain(c.Param("brain"))
		if err != nil {
			fail(c, err)
			return
		}
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusOK, gin.H{"results": []any{}})
			return
		}
		limit := 20
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		results, err := ctx.Search(query, c.Query("agent"), limit)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

func readActivity(mgr *brain.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := mgr.Brain(c.Param("brain"))
		if err != nil {
			fail(c, err)
			return
		}
		limit := 50
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		entries, err := ctx.Activity(limit)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"activity": entries})
	}
}

func typeFilter(c *gin.Context) *event.Type {
	if v := c.Query("type"); v != "" {
		t := event.Type(v)
		return &t
	}
	return nil
}
