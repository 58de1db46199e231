// Package scheduler provides automated catalog refresh scheduling and health
// monitoring for the products API. It handles cron-based feed updates and
// coordinates data refresh operations with the data container using
// dependency injection.
package scheduler

import (
	"fmt"
	"time"

	"github.com/beaverkiria/uptech-api/data"
	"github.com/beaverkiria/uptech-api/interfaces"
	"github.com/beaverkiria/uptech-api/logging"
	"github.com/beaverkiria/uptech-api/metrics"
	"github.com/beaverkiria/uptech-api/validation"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles catalog updates and health monitoring using dependency injection
type Scheduler struct {
	dataStore interfaces.DataStore
	parser    interfaces.Parser
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, parser interfaces.Parser) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		parser:    parser,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start initializes the scheduler with catalog updates and health monitoring
func (s *Scheduler) Start() error {
	// Initial load
	if err := s.updateData(); err != nil {
		logging.Error("Failed to perform initial catalog load", "error", err)
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	// Schedule updates at 06:00 and 18:00 daily
	_, err := s.scheduler.Every(1).Days().At("06:00;18:00").Do(func() {
		if err := s.updateData(); err != nil {
			logging.Error("Failed to update catalog", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule updates", "error", err)
		return fmt.Errorf("failed to schedule updates: %w", err)
	}

	s.scheduler.StartAsync()

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// updateData performs a complete catalog refresh using injected dependencies
func (s *Scheduler) updateData() error {
	// Prevent concurrent updates
	if !s.dataStore.BeginUpdate() {
		logging.Info("Update already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info(fmt.Sprintf("Starting catalog update at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	newProducts, snapshotID, err := s.parser.ParseAllProducts()
	if err != nil {
		metrics.CatalogRefreshFailures.Inc()
		logging.Error("Failed to parse products feed", "error", err)
		return fmt.Errorf("failed to parse products feed: %w", err)
	}

	newProductsMap := data.BuildProductsMap(newProducts)

	validator := validation.NewDataValidator()
	report := validator.ReportDataQuality(newProducts)

	if len(report.DuplicateSberIDs) > 0 {
		logging.Warn("Duplicate sber product ids detected",
			"total", len(report.DuplicateSberIDs),
			"id_list", report.DuplicateSberIDs,
		)
	}

	if len(report.DanglingAnalogueIDs) > 0 {
		logging.Warn("Analogue references to unknown products",
			"total", len(report.DanglingAnalogueIDs),
			"id_list", report.DanglingAnalogueIDs,
		)
	}

	if len(report.SelfReferencingProducts) > 0 {
		logging.Warn("Products listing themselves as analogues",
			"total", len(report.SelfReferencingProducts),
			"id_list", report.SelfReferencingProducts,
		)
	}

	if report.ProductsWithoutPrice > 0 || report.ProductsWithoutScore > 0 {
		logging.Info("Products with missing rating data",
			"without_price", report.ProductsWithoutPrice,
			"without_score", report.ProductsWithoutScore,
			"without_medsis_id", report.ProductsWithoutMedsisID,
		)
	}

	// Atomic snapshot swap
	s.dataStore.UpdateData(newProducts, newProductsMap, snapshotID)

	elapsed := time.Since(start)
	metrics.CatalogRefreshDuration.Observe(elapsed.Seconds())
	metrics.CatalogProductsTotal.Set(float64(len(newProducts)))
	logging.Info("Catalog update completed",
		"duration", elapsed.String(),
		"product_count", len(newProducts),
		"snapshot_id", snapshotID)

	return nil
}

// startHealthMonitoring monitors the freshness of the catalog
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.dataStore.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Catalog hasn't been updated in over 25 hours")
			}
		}
	}()
}
