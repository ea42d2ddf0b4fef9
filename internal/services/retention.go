package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/datalyr/foresight-go/internal/config"
	"github.com/datalyr/foresight-go/internal/database"
)

// RetentionConfig controls how long saved forecasts are kept and how often
// the sweep runs.
type RetentionConfig = config.RetentionConfig

// RetentionService periodically deletes saved forecasts older than the
// retention window.
type RetentionService struct {
	forecasts *database.ForecastRepository
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewRetentionService creates a new retention service.
func NewRetentionService(forecasts *database.ForecastRepository) *RetentionService {
	ctx, cancel := context.WithCancel(context.Background())
	return &RetentionService{
		forecasts: forecasts,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the retention sweep. An initial run happens shortly after
// startup, then on every interval tick.
func (r *RetentionService) Start(config RetentionConfig) {
	if config.ForecastRetentionDays <= 0 {
		config.ForecastRetentionDays = 90
	}
	if config.CleanupIntervalMinutes <= 0 {
		config.CleanupIntervalMinutes = 360
	}

	log.Printf("Starting retention service (retention: %d days, interval: %d minutes)",
		config.ForecastRetentionDays, config.CleanupIntervalMinutes)

	go func() {
		select {
		case <-time.After(1 * time.Minute):
			if err := r.runCleanup(config); err != nil {
				log.Printf("Initial retention sweep failed: %v", err)
			}
		case <-r.ctx.Done():
		}
	}()

	go func() {
		ticker := time.NewTicker(time.Duration(config.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := r.runCleanup(config); err != nil {
					log.Printf("Retention sweep failed: %v", err)
				}
			case <-r.ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the retention sweeps.
func (r *RetentionService) Stop() {
	r.cancel()
	log.Println("Retention service stopped")
}

// RunCleanup triggers one sweep immediately.
func (r *RetentionService) RunCleanup(config RetentionConfig) error {
	return r.runCleanup(config)
}

func (r *RetentionService) runCleanup(config RetentionConfig) error {
	start := time.Now()

	deleted, err := r.forecasts.DeleteExpiredForecasts(r.ctx, config.ForecastRetentionDays)
	if err != nil {
		return fmt.Errorf("failed to delete expired forecasts: %w", err)
	}
	if deleted > 0 {
		log.Printf("Retention sweep removed %d forecasts older than %d days in %v",
			deleted, config.ForecastRetentionDays, time.Since(start))
	}

	return nil
}
