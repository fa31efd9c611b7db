package background

import (
	"context"
	"log"
	"sync"
	"time"

	"rentledger/internal/analytics"
	"rentledger/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler runs the daily billing lifecycle. The sweeps themselves are
// idempotent, so an overlapping or repeated run is harmless; singleton
// mode just avoids wasting the round trips.
type JobScheduler struct {
	scheduler    gocron.Scheduler
	billingSvc   services.BillingService
	arrearsSvc   services.ArrearsService
	noticeSvc    services.NoticeService
	analyticsSvc *analytics.AnalyticsService
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

func NewJobScheduler(
	billingSvc services.BillingService,
	arrearsSvc services.ArrearsService,
	noticeSvc services.NoticeService,
	analyticsSvc *analytics.AnalyticsService,
) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		billingSvc:   billingSvc,
		arrearsSvc:   arrearsSvc,
		noticeSvc:    noticeSvc,
		analyticsSvc: analyticsSvc,
		jobs:         make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Rent generation - daily at 08:00
	rentJob, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(8, 0, 0))),
		gocron.NewTask(js.runRentGeneration, context.Background()),
		gocron.WithName("rent-generation"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create rent generation job: %v", err)
	} else {
		js.jobs["rent-generation"] = rentJob
	}

	// Arrears sweep - daily at 09:00, after rent generation
	arrearsJob, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(9, 0, 0))),
		gocron.NewTask(js.runArrearsSweep, context.Background()),
		gocron.WithName("arrears-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create arrears sweep job: %v", err)
	} else {
		js.jobs["arrears-sweep"] = arrearsJob
	}

	// Eligibility report export - daily at 09:30, after the sweep
	exportJob, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(9, 30, 0))),
		gocron.NewTask(js.exportEligibilityReport, context.Background()),
		gocron.WithName("eligibility-export"),
	)
	if err != nil {
		log.Printf("Failed to create eligibility export job: %v", err)
	} else {
		js.jobs["eligibility-export"] = exportJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) runRentGeneration(ctx context.Context) error {
	log.Printf("Starting scheduled rent generation")

	result, err := js.billingSvc.RunDailySweep(ctx)
	if err != nil {
		log.Printf("Rent generation failed: %v", err)
		return err
	}

	if err := js.analyticsSvc.InvalidateArrearsSummary(ctx); err != nil {
		log.Printf("Failed to invalidate arrears summary cache: %v", err)
	}

	log.Printf("Rent generation completed: %d created, %d skipped, %d failed", result.Created, result.Skipped, result.Failed)
	return nil
}

func (js *JobScheduler) runArrearsSweep(ctx context.Context) error {
	log.Printf("Starting scheduled arrears sweep")

	result, err := js.arrearsSvc.RunDailySweep(ctx)
	if err != nil {
		log.Printf("Arrears sweep failed: %v", err)
		return err
	}

	if err := js.analyticsSvc.InvalidateArrearsSummary(ctx); err != nil {
		log.Printf("Failed to invalidate arrears summary cache: %v", err)
	}

	log.Printf("Arrears sweep completed: %d marked late, %d reminded, %d failed", result.MarkedLate, result.Reminded, result.Failed)
	return nil
}

func (js *JobScheduler) exportEligibilityReport(ctx context.Context) error {
	url, err := js.noticeSvc.ExportReport(ctx)
	if err != nil {
		log.Printf("Eligibility report export failed: %v", err)
		return err
	}
	log.Printf("Eligibility report exported: %s", url)
	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobs)
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	status["jobs"] = names

	return status
}
