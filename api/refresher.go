/*
refresher.go - Background employee-count refresher

PURPOSE:
  The matching employee count cached on a batch configuration goes stale
  as the roster changes underneath it (hires, terminations, transfers).
  The refresher periodically recomputes the cache for unlocked Draft
  batches so list views show accurate counts without a manual edit.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Only touches Draft, unlocked batches: anything past Draft has been
    dispatched with its count frozen at dispatch time
  - Never changes status or dispatches actions

CONFIGURATION:
  - CheckInterval: How often to refresh (default: 15 minutes)
  - Enabled: Whether the refresher is active (default: true)

USAGE:
  refresher := NewCountRefresher(store)
  refresher.Start()
  // ... later
  refresher.Stop()

SEE ALSO:
  - payroll/filter.go: The matching computation being cached
  - handlers.go: The same recomputation on every config command
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// CountRefresher keeps Draft batches' employee-count caches current.
type CountRefresher struct {
	Store         *sqlite.Store
	CheckInterval time.Duration
	Enabled       bool

	ticker  *time.Ticker
	stop    chan bool
	stopped bool
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// NewCountRefresher creates a refresher over the given store.
func NewCountRefresher(store *sqlite.Store) *CountRefresher {
	return &CountRefresher{
		Store:         store,
		CheckInterval: 15 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the refresher.
func (cr *CountRefresher) Start() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if !cr.Enabled {
		log.Println("[Refresher] Disabled, not starting")
		return
	}

	cr.ticker = time.NewTicker(cr.CheckInterval)
	cr.wg.Add(1)

	go cr.run()

	log.Printf("[Refresher] Started with check interval: %v", cr.CheckInterval)
}

// Stop stops the refresher.
func (cr *CountRefresher) Stop() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.ticker != nil && !cr.stopped {
		cr.stopped = true
		cr.ticker.Stop()
		close(cr.stop)
		cr.wg.Wait()
		log.Println("[Refresher] Stopped")
	}
}

func (cr *CountRefresher) run() {
	defer cr.wg.Done()

	// Run immediately on start
	cr.refreshAll()

	for {
		select {
		case <-cr.ticker.C:
			cr.refreshAll()
		case <-cr.stop:
			return
		}
	}
}

func (cr *CountRefresher) refreshAll() {
	ctx := context.Background()

	batches, err := cr.Store.ListBatches(ctx)
	if err != nil {
		log.Printf("[Refresher] Error listing batches: %v", err)
		return
	}

	roster, err := cr.Store.ListEmployees(ctx)
	if err != nil {
		log.Printf("[Refresher] Error loading roster: %v", err)
		return
	}

	refreshed := 0
	for _, batch := range batches {
		if batch.Status != payroll.StatusDraft || batch.Locked {
			continue
		}

		count := batch.Config.MatchingCount(roster)
		if count == batch.Config.EmployeeCount {
			continue
		}

		cfg := batch.Config.WithEmployeeCount(count)
		if err := cr.Store.UpdateConfig(ctx, batch.ID, cfg); err != nil {
			log.Printf("[Refresher] Error updating batch %s: %v", batch.ID, err)
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		log.Printf("[Refresher] Refreshed %d batch count(s)", refreshed)
	}
}

// RunNow triggers an immediate refresh (for testing/admin).
func (cr *CountRefresher) RunNow() {
	cr.refreshAll()
}
