// Package background runs the periodic sweeps that keep stored subscription
// state close to what check-on-read would compute anyway: expiry flips,
// browse-counter rollovers and the monthly usage report.
package background

import (
	"context"
	"log"
	"sync"
	"time"

	"edumart/internal/entitlement"
	"edumart/internal/reports"
	"edumart/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the background sweeps. The sweeps are an optimization
// for reporting accuracy; the lazy checks on every read remain authoritative,
// so a missed run never changes what a user is allowed to do.
type JobScheduler struct {
	scheduler gocron.Scheduler
	userRepo  repositories.UserRepository
	reportSvc reports.ReportService
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(userRepo repositories.UserRepository, reportSvc reports.ReportService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		userRepo:  userRepo,
		reportSvc: reportSvc,
		jobs:      make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Expiry sweep - every hour
	expiryJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.expireLapsedSubscriptions),
		gocron.WithName("subscription-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create expiry sweep job: %v", err)
	} else {
		js.jobs["expiry-sweep"] = expiryJob
	}

	// Browse rollover sweep - daily
	rolloverJob, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.rolloverBrowseCounts),
		gocron.WithName("browse-rollover-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create rollover sweep job: %v", err)
	} else {
		js.jobs["rollover-sweep"] = rolloverJob
	}

	// Usage report - first of each month
	if js.reportSvc != nil {
		reportJob, err := js.scheduler.NewJob(
			gocron.MonthlyJob(1,
				gocron.NewDaysOfTheMonth(1),
				gocron.NewAtTimes(gocron.NewAtTime(2, 0, 0)),
			),
			gocron.NewTask(js.generateUsageReport),
			gocron.WithName("monthly-usage-report"),
		)
		if err != nil {
			log.Printf("Failed to create usage report job: %v", err)
		} else {
			js.jobs["usage-report"] = reportJob
		}
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) expireLapsedSubscriptions() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	count, err := js.userRepo.ExpireLapsed(ctx, time.Now())
	if err != nil {
		log.Printf("Expiry sweep failed: %v", err)
		return err
	}
	if count > 0 {
		log.Printf("Expiry sweep marked %d subscriptions expired", count)
	}
	return nil
}

func (js *JobScheduler) rolloverBrowseCounts() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-entitlement.BrowseResetInterval)
	count, err := js.userRepo.ResetStaleBrowseCounts(ctx, cutoff)
	if err != nil {
		log.Printf("Browse rollover sweep failed: %v", err)
		return err
	}
	if count > 0 {
		log.Printf("Browse rollover sweep reset %d counters", count)
	}
	return nil
}

func (js *JobScheduler) generateUsageReport() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	object, err := js.reportSvc.GenerateUsageReport(ctx, time.Now())
	if err != nil {
		log.Printf("Usage report generation failed: %v", err)
		return err
	}
	log.Printf("Usage report uploaded: %s", object)
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}

	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       names,
	}
}
