package search

import (
	"database/sql"
	"log"

	"github.com/robfig/cron/v3"
)

// Reindexer periodically rebuilds the FTS tables from a fresh catalog
// snapshot. Between rebuilds the index may lag the store.
type Reindexer struct {
	db       *sql.DB
	snapshot func() (Snapshot, error)
	cron     *cron.Cron
}

// NewReindexer creates a reindexer; snapshot is called on every rebuild to
// capture the current catalog contents.
func NewReindexer(db *sql.DB, snapshot func() (Snapshot, error)) *Reindexer {
	return &Reindexer{db: db, snapshot: snapshot}
}

// Rebuild captures a snapshot and swaps the index tables.
func (r *Reindexer) Rebuild() error {
	snap, err := r.snapshot()
	if err != nil {
		return err
	}
	_, err = BuildIndex(r.db, snap)
	return err
}

// Start schedules periodic rebuilds using a cron expression.
func (r *Reindexer) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := r.Rebuild(); err != nil {
			log.Printf("Search reindex failed: %v", err)
		} else {
			log.Printf("Search index rebuilt")
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	r.cron = c
	return nil
}

// Stop halts scheduled rebuilds. A rebuild already in flight completes.
func (r *Reindexer) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}
