package replay

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/projection"
	"github.com/oneiros/oneiros/internal/oneiros/store"
)

// Run implements spec §4.7 step 4: read every event out of legacy (in
// log order), rewrite it, write the rewritten log into fresh via the
// import path (which skips projections, per store.Store.ImportEvent),
// then run a full rebuild so the brain projections populate from the
// canonical, content-addressed form. Returns the number of events
// written.
func Run(logger *slog.Logger, legacy, fresh *store.Store, projections []projection.Projection) (int, error) {
	rows, err := legacy.Events(nil)
	if err != nil {
		return 0, fmt.Errorf("replay: read legacy log: %w", err)
	}

	events := make([]event.Event, len(rows))
	for i, r := range rows {
		events[i] = r.Event
	}

	rewritten, err := RewriteEvents(logger, events)
	if err != nil {
		return 0, err
	}

	for i, ev := range rewritten {
		if _, err := fresh.ImportEvent(ev); err != nil {
			return i, fmt.Errorf("replay: import event %d: %w", i, err)
		}
	}

	if err := fresh.WithLock(func(db *sql.DB) error {
		return projection.Rebuild(db, fresh, projections)
	}); err != nil {
		return len(rewritten), fmt.Errorf("replay: rebuild: %w", err)
	}

	if logger != nil {
		logger.Info("replay complete", "events", len(rewritten))
	}
	return len(rewritten), nil
}
