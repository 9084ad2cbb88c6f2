package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orrn/printq/internal/db"
	"github.com/orrn/printq/internal/metrics"
)

const (
	UnknownPrinterName = "Unknown printer"
	UnknownUserName    = "Unknown user"

	WarningLowStock = "low_stock"
)

type JobInput struct {
	Name                string
	ArtifactLink        string
	DurationMinutes     int
	PrinterID           int64
	FilamentID          *int64
	EstimatedUsageGrams *float64
}

// Warning is advisory; it never blocks the operation that raised it.
type Warning struct {
	Code           string  `json:"code"`
	Message        string  `json:"message"`
	FilamentID     int64   `json:"filament_id"`
	AvailableGrams float64 `json:"available_grams"`
	RequestedGrams float64 `json:"requested_grams"`
}

// JobView is a job as presented to callers, with names resolved and the
// remaining time computed for the current instant.
type JobView struct {
	db.PrintJob
	PrinterName      string `json:"printer_name"`
	CreatorName      string `json:"created_by_name"`
	RemainingMinutes *int   `json:"remaining_minutes,omitempty"`
}

type CreateJobResult struct {
	Job      *JobView  `json:"job"`
	Warnings []Warning `json:"warnings"`
}

type TransitionResult struct {
	Job        *JobView          `json:"job"`
	Adjustment *WeightAdjustment `json:"filament_adjustment,omitempty"`
}

type JobQuery struct {
	Status    string
	PrinterID int64
	CreatedBy int64
	Limit     int
	Offset    int
}

type QueueStats struct {
	Pending   int64 `json:"pending"`
	Printing  int64 `json:"printing"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Total     int64 `json:"total"`
}

type JobEngineConfig struct {
	// DeductEstimateOnCompletion charges the estimated usage to the spool
	// when a job finishes on its own.
	DeductEstimateOnCompletion bool
}

type JobEngine struct {
	store     *db.Store
	filaments *FilamentInventory
	audit     *AuditTrail
	logger    *zap.Logger
	metrics   *metrics.Metrics
	clock     Clock
	cfg       JobEngineConfig
}

func NewJobEngine(store *db.Store, filaments *FilamentInventory, audit *AuditTrail, logger *zap.Logger, m *metrics.Metrics, clock Clock, cfg JobEngineConfig) *JobEngine {
	return &JobEngine{
		store:     store,
		filaments: filaments,
		audit:     audit,
		logger:    logger.Named("jobs"),
		metrics:   m,
		clock:     clock,
		cfg:       cfg,
	}
}

// Create queues a pending job. Occupancy and stock are left untouched.
func (e *JobEngine) Create(ctx context.Context, caller Caller, in JobInput) (*CreateJobResult, error) {
	if err := caller.RequireApproved(); err != nil {
		return nil, err
	}
	if err := validateJobInput(&in); err != nil {
		return nil, err
	}

	var result *CreateJobResult
	err := e.store.InTx(ctx, func(tx *db.Store) error {
		printer, err := getPrinter(ctx, tx, in.PrinterID)
		if err != nil {
			return err
		}

		var warnings []Warning
		if in.FilamentID != nil {
			fil, err := getFilament(ctx, tx, *in.FilamentID)
			if err != nil {
				return err
			}
			// Checked against the live diameters, not the cached list.
			if !supportsDiameter(printer.SupportedDiameters, fil.DiameterMM) {
				return validationf("filament %d (%.2f mm) is not compatible with printer %d",
					fil.ID, fil.DiameterMM, printer.ID)
			}
			warnings = stockWarnings(fil, in.EstimatedUsageGrams)
		}

		job := &db.PrintJob{
			Name:                in.Name,
			ArtifactLink:        in.ArtifactLink,
			DurationMinutes:     in.DurationMinutes,
			Status:              string(JobStatusPending),
			PrinterID:           printer.ID,
			FilamentID:          in.FilamentID,
			EstimatedUsageGrams: in.EstimatedUsageGrams,
			CreatedBy:           caller.UserID,
			CreatedAt:           e.clock.Now(),
		}
		if err := tx.Jobs.CreateJob(ctx, job); err != nil {
			return err
		}

		view, err := e.viewOne(ctx, tx, job)
		if err != nil {
			return err
		}
		if warnings == nil {
			warnings = []Warning{}
		}
		result = &CreateJobResult{Job: view, Warnings: warnings}

		e.audit.record(ctx, tx, caller, "job.create", "job", job.ID, map[string]any{
			"printer_id": job.PrinterID,
			"warnings":   len(warnings),
		})
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	for range result.Warnings {
		e.metrics.LowStock("create")
	}
	e.logger.Info("job created",
		zap.Int64("job_id", result.Job.ID),
		zap.Int64("printer_id", result.Job.PrinterID),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// CheckStock evaluates the low-stock policy for a prospective job without
// creating anything.
func (e *JobEngine) CheckStock(ctx context.Context, caller Caller, filamentID int64, estimatedGrams float64) ([]Warning, error) {
	if err := caller.RequireApproved(); err != nil {
		return nil, err
	}
	if math.IsNaN(estimatedGrams) || math.IsInf(estimatedGrams, 0) || estimatedGrams <= 0 {
		return nil, validationf("estimated usage must be a positive number")
	}
	fil, err := getFilament(ctx, e.store, filamentID)
	if err != nil {
		return nil, storageErr(err)
	}
	return stockWarnings(fil, &estimatedGrams), nil
}

// Start moves a pending job to printing and takes its printer. The printer
// compare-and-set is the last write, so a lost race rolls the job back.
func (e *JobEngine) Start(ctx context.Context, caller Caller, id int64) (*TransitionResult, error) {
	if err := caller.RequireApproved(); err != nil {
		return nil, err
	}
	// A finished but unsettled job would still hold the printer.
	if _, err := e.CompleteDue(ctx); err != nil {
		return nil, err
	}

	var view *JobView
	err := e.store.InTx(ctx, func(tx *db.Store) error {
		job, err := getJob(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkTransition(id, JobStatus(job.Status), JobStatusPrinting); err != nil {
			return err
		}
		if _, err := getPrinter(ctx, tx, job.PrinterID); err != nil {
			return err
		}

		now := e.clock.Now()
		ok, err := tx.Jobs.MarkPrinting(ctx, id, now)
		if db.IsUniqueViolation(err) {
			return conflictf("printer %d is already printing another job", job.PrinterID)
		}
		if err != nil {
			return err
		}
		if !ok {
			return conflictf("job %d is no longer pending", id)
		}

		acquired, err := tx.Printers.AcquireOccupancy(ctx, job.PrinterID)
		if err != nil {
			return err
		}
		if !acquired {
			return conflictf("printer %d is occupied", job.PrinterID)
		}

		job.Status = string(JobStatusPrinting)
		job.StartedAt = &now
		job.CompletedAt = nil
		view, err = e.viewOne(ctx, tx, job)
		if err != nil {
			return err
		}

		e.audit.record(ctx, tx, caller, "job.start", "job", id, map[string]any{
			"printer_id": job.PrinterID,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			e.metrics.StartConflict()
		}
		return nil, storageErr(err)
	}

	e.metrics.JobTransition(string(JobStatusPending), string(JobStatusPrinting))
	e.RecordOccupancy(ctx)
	e.logger.Info("job started", zap.Int64("job_id", id), zap.Int64("printer_id", view.PrinterID))
	return &TransitionResult{Job: view}, nil
}

// Stop ends a printing job early as failed. The printer is released before
// the job row changes; actualGrams, when given, is charged to the spool.
func (e *JobEngine) Stop(ctx context.Context, caller Caller, id int64, actualGrams *float64) (*TransitionResult, error) {
	if err := caller.RequireApproved(); err != nil {
		return nil, err
	}
	if err := validateActual(actualGrams); err != nil {
		return nil, err
	}

	result := &TransitionResult{}
	err := e.store.InTx(ctx, func(tx *db.Store) error {
		job, err := getJob(ctx, tx, id)
		if err != nil {
			return err
		}
		if JobStatus(job.Status) != JobStatusPrinting {
			return conflictf("job %d is %s, only printing jobs can be stopped", id, job.Status)
		}

		if err := tx.Printers.ReleaseOccupancy(ctx, job.PrinterID); err != nil {
			return err
		}

		now := e.clock.Now()
		ok, err := tx.Jobs.FinishJob(ctx, id, string(JobStatusPrinting), string(JobStatusFailed), now, actualGrams)
		if err != nil {
			return err
		}
		if !ok {
			return conflictf("job %d is no longer printing", id)
		}

		adj, err := e.deduct(ctx, tx, job, actualGrams, UsageReasonStop)
		if err != nil {
			return err
		}
		result.Adjustment = adj

		job.Status = string(JobStatusFailed)
		job.CompletedAt = &now
		if actualGrams != nil {
			job.ActualUsageGrams = actualGrams
		}
		result.Job, err = e.viewOne(ctx, tx, job)
		if err != nil {
			return err
		}

		e.audit.record(ctx, tx, caller, "job.stop", "job", id, usageDetails(actualGrams, adj))
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	e.metrics.JobTransition(string(JobStatusPrinting), string(JobStatusFailed))
	e.RecordOccupancy(ctx)
	e.logger.Info("job stopped", zap.Int64("job_id", id), zap.Int64("printer_id", result.Job.PrinterID))
	return result, nil
}

// MarkFailed flags a completed job as failed after the fact. Occupancy is
// not touched; the printer was freed at completion.
func (e *JobEngine) MarkFailed(ctx context.Context, caller Caller, id int64, actualGrams *float64) (*TransitionResult, error) {
	if err := caller.RequireApproved(); err != nil {
		return nil, err
	}
	if err := validateActual(actualGrams); err != nil {
		return nil, err
	}

	result := &TransitionResult{}
	err := e.store.InTx(ctx, func(tx *db.Store) error {
		job, err := getJob(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := caller.RequireOwnerOrAdmin(job.CreatedBy); err != nil {
			return err
		}
		if JobStatus(job.Status) != JobStatusCompleted {
			return conflictf("job %d is %s, only completed jobs can be marked failed", id, job.Status)
		}

		now := e.clock.Now()
		ok, err := tx.Jobs.FinishJob(ctx, id, string(JobStatusCompleted), string(JobStatusFailed), now, actualGrams)
		if err != nil {
			return err
		}
		if !ok {
			return conflictf("job %d is no longer completed", id)
		}

		adj, err := e.deduct(ctx, tx, job, actualGrams, UsageReasonMarkFailed)
		if err != nil {
			return err
		}
		result.Adjustment = adj

		job.Status = string(JobStatusFailed)
		if job.CompletedAt == nil {
			job.CompletedAt = &now
		}
		if actualGrams != nil {
			job.ActualUsageGrams = actualGrams
		}
		result.Job, err = e.viewOne(ctx, tx, job)
		if err != nil {
			return err
		}

		e.audit.record(ctx, tx, caller, "job.mark_failed", "job", id, usageDetails(actualGrams, adj))
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	e.metrics.JobTransition(string(JobStatusCompleted), string(JobStatusFailed))
	e.logger.Info("job marked failed", zap.Int64("job_id", id))
	return result, nil
}

// Restart re-queues a failed job on the same printer and filament. Stock
// already deducted stays deducted.
func (e *JobEngine) Restart(ctx context.Context, caller Caller, id int64) (*TransitionResult, error) {
	if err := caller.RequireApproved(); err != nil {
		return nil, err
	}

	var view *JobView
	err := e.store.InTx(ctx, func(tx *db.Store) error {
		job, err := getJob(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkTransition(id, JobStatus(job.Status), JobStatusPending); err != nil {
			return err
		}

		ok, err := tx.Jobs.RestartJob(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return conflictf("job %d is no longer failed", id)
		}

		job.Status = string(JobStatusPending)
		job.StartedAt = nil
		job.CompletedAt = nil
		job.ActualUsageGrams = nil
		view, err = e.viewOne(ctx, tx, job)
		if err != nil {
			return err
		}

		e.audit.record(ctx, tx, caller, "job.restart", "job", id, nil)
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	e.metrics.JobTransition(string(JobStatusFailed), string(JobStatusPending))
	e.logger.Info("job restarted", zap.Int64("job_id", id))
	return &TransitionResult{Job: view}, nil
}

// Delete removes a job in any state. A printing job gives its printer back
// before the row goes away.
func (e *JobEngine) Delete(ctx context.Context, caller Caller, id int64) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}

	err := e.store.InTx(ctx, func(tx *db.Store) error {
		job, err := getJob(ctx, tx, id)
		if err != nil {
			return err
		}
		if JobStatus(job.Status) == JobStatusPrinting {
			if err := tx.Printers.ReleaseOccupancy(ctx, job.PrinterID); err != nil {
				return err
			}
		}
		if _, err := tx.Jobs.DeleteJob(ctx, id); err != nil {
			return err
		}
		e.audit.record(ctx, tx, caller, "job.delete", "job", id, map[string]any{
			"status":     job.Status,
			"printer_id": job.PrinterID,
		})
		return nil
	})
	if err != nil {
		return storageErr(err)
	}

	e.RecordOccupancy(ctx)
	e.logger.Info("job deleted", zap.Int64("job_id", id))
	return nil
}

// CompleteDue finishes every printing job whose duration has elapsed. Each
// job settles in its own transaction; failures are joined and returned
// after the rest were attempted.
func (e *JobEngine) CompleteDue(ctx context.Context) (int, error) {
	printing, err := e.store.Jobs.ListJobsByStatus(ctx, string(JobStatusPrinting))
	if err != nil {
		return 0, storageErr(err)
	}

	now := e.clock.Now()
	completed := 0
	var errs []error
	for _, job := range printing {
		if !isDue(job, now) {
			continue
		}
		done, err := e.complete(ctx, job)
		if err != nil {
			e.logger.Error("failed to complete job", zap.Int64("job_id", job.ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("job %d: %w", job.ID, err))
			continue
		}
		if done {
			completed++
		}
	}
	if completed > 0 {
		e.RecordOccupancy(ctx)
	}
	return completed, storageErr(errors.Join(errs...))
}

func (e *JobEngine) complete(ctx context.Context, job *db.PrintJob) (bool, error) {
	finishedAt := job.StartedAt.Add(time.Duration(job.DurationMinutes) * time.Minute)

	var charge *float64
	if e.cfg.DeductEstimateOnCompletion && job.FilamentID != nil && job.EstimatedUsageGrams != nil {
		charge = job.EstimatedUsageGrams
	}

	err := e.store.InTx(ctx, func(tx *db.Store) error {
		if err := tx.Printers.ReleaseOccupancy(ctx, job.PrinterID); err != nil {
			return err
		}
		ok, err := tx.Jobs.FinishJob(ctx, job.ID, string(JobStatusPrinting), string(JobStatusCompleted), finishedAt, nil)
		if err != nil {
			return err
		}
		if !ok {
			// Stopped or deleted since the scan; leave the printer as the
			// winning transition left it.
			return errJobMoved
		}
		if _, err := e.deduct(ctx, tx, job, charge, UsageReasonCompletion); err != nil {
			return err
		}
		e.audit.record(ctx, tx, Caller{Kind: CallerAnonymous}, "job.complete", "job", job.ID, map[string]any{
			"printer_id": job.PrinterID,
		})
		return nil
	})
	if errors.Is(err, errJobMoved) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	e.metrics.JobTransition(string(JobStatusPrinting), string(JobStatusCompleted))
	e.logger.Info("job completed",
		zap.Int64("job_id", job.ID),
		zap.Int64("printer_id", job.PrinterID),
		zap.Time("completed_at", finishedAt))
	return true, nil
}

var errJobMoved = errors.New("job moved")

// List settles due jobs, then returns the matching jobs newest first.
func (e *JobEngine) List(ctx context.Context, q JobQuery) ([]*JobView, error) {
	filter := db.JobFilter{
		PrinterID: q.PrinterID,
		CreatedBy: q.CreatedBy,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if q.Status != "" {
		st, err := ParseJobStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = string(st)
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if _, err := e.CompleteDue(ctx); err != nil {
		return nil, err
	}

	jobs, err := e.store.Jobs.ListJobs(ctx, filter)
	if err != nil {
		return nil, storageErr(err)
	}
	views, err := e.views(ctx, e.store, jobs)
	if err != nil {
		return nil, storageErr(err)
	}
	return views, nil
}

func (e *JobEngine) Get(ctx context.Context, id int64) (*JobView, error) {
	if _, err := e.CompleteDue(ctx); err != nil {
		return nil, err
	}
	job, err := getJob(ctx, e.store, id)
	if err != nil {
		return nil, storageErr(err)
	}
	view, err := e.viewOne(ctx, e.store, job)
	if err != nil {
		return nil, storageErr(err)
	}
	return view, nil
}

func (e *JobEngine) Stats(ctx context.Context) (*QueueStats, error) {
	counts, err := e.store.Jobs.CountByStatus(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	stats := &QueueStats{
		Pending:   counts[string(JobStatusPending)],
		Printing:  counts[string(JobStatusPrinting)],
		Completed: counts[string(JobStatusCompleted)],
		Failed:    counts[string(JobStatusFailed)],
	}
	stats.Total = stats.Pending + stats.Printing + stats.Completed + stats.Failed
	return stats, nil
}

// RecordOccupancy publishes the number of printing jobs to the occupancy gauge.
func (e *JobEngine) RecordOccupancy(ctx context.Context) {
	counts, err := e.store.Jobs.CountByStatus(ctx)
	if err != nil {
		e.logger.Warn("failed to count printing jobs", zap.Error(err))
		return
	}
	e.metrics.SetPrintersOccupied(int(counts[string(JobStatusPrinting)]))
}

// deduct charges grams to the job's spool. A job without a filament, or
// whose spool was deleted, is skipped.
func (e *JobEngine) deduct(ctx context.Context, tx *db.Store, job *db.PrintJob, grams *float64, reason string) (*WeightAdjustment, error) {
	if grams == nil || *grams <= 0 || job.FilamentID == nil {
		return nil, nil
	}
	adj, err := e.filaments.adjustWeight(ctx, tx, *job.FilamentID, -*grams, &job.ID, reason)
	if errors.Is(err, ErrNotFound) {
		e.logger.Warn("filament no longer exists, skipping deduction",
			zap.Int64("job_id", job.ID),
			zap.Int64("filament_id", *job.FilamentID))
		return nil, nil
	}
	return adj, err
}

func (e *JobEngine) viewOne(ctx context.Context, s *db.Store, job *db.PrintJob) (*JobView, error) {
	views, err := e.views(ctx, s, []*db.PrintJob{job})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (e *JobEngine) views(ctx context.Context, s *db.Store, jobs []*db.PrintJob) ([]*JobView, error) {
	out := make([]*JobView, 0, len(jobs))
	if len(jobs) == 0 {
		return out, nil
	}

	printers, err := s.Printers.ListPrinters(ctx)
	if err != nil {
		return nil, err
	}
	printerNames := make(map[int64]string, len(printers))
	for _, p := range printers {
		printerNames[p.ID] = p.Name
	}
	userNames, err := s.Users.UserNames(ctx)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	for _, j := range jobs {
		v := &JobView{
			PrintJob:         *j,
			PrinterName:      UnknownPrinterName,
			CreatorName:      UnknownUserName,
			RemainingMinutes: RemainingMinutes(j, now),
		}
		if name, ok := printerNames[j.PrinterID]; ok {
			v.PrinterName = name
		}
		if name, ok := userNames[j.CreatedBy]; ok {
			v.CreatorName = name
		}
		out = append(out, v)
	}
	return out, nil
}

// RemainingMinutes is max(duration - whole elapsed minutes, 0) for a printing
// job and nil otherwise.
func RemainingMinutes(job *db.PrintJob, now time.Time) *int {
	if JobStatus(job.Status) != JobStatusPrinting || job.StartedAt == nil {
		return nil
	}
	elapsed := int(now.Sub(*job.StartedAt) / time.Minute)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := job.DurationMinutes - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

func isDue(job *db.PrintJob, now time.Time) bool {
	if job.StartedAt == nil {
		return false
	}
	return now.Sub(*job.StartedAt) >= time.Duration(job.DurationMinutes)*time.Minute
}

func stockWarnings(fil *db.Filament, estimate *float64) []Warning {
	warnings := []Warning{}
	if estimate == nil || *estimate <= fil.WeightGrams {
		return warnings
	}
	return append(warnings, Warning{
		Code:           WarningLowStock,
		Message:        fmt.Sprintf("estimated usage %.1fg exceeds the %.1fg left on filament %d", *estimate, fil.WeightGrams, fil.ID),
		FilamentID:     fil.ID,
		AvailableGrams: fil.WeightGrams,
		RequestedGrams: *estimate,
	})
}

func getJob(ctx context.Context, s *db.Store, id int64) (*db.PrintJob, error) {
	job, err := s.Jobs.GetJobByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("job", id)
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func validateJobInput(in *JobInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.ArtifactLink = strings.TrimSpace(in.ArtifactLink)

	switch {
	case in.Name == "":
		return validationf("job name is required")
	case in.ArtifactLink == "":
		return validationf("artifact link is required")
	case in.DurationMinutes <= 0:
		return validationf("duration must be a positive number of minutes")
	case in.PrinterID <= 0:
		return validationf("printer is required")
	case in.FilamentID != nil && *in.FilamentID <= 0:
		return validationf("filament id must be positive")
	}
	if in.EstimatedUsageGrams != nil {
		g := *in.EstimatedUsageGrams
		if math.IsNaN(g) || math.IsInf(g, 0) || g <= 0 {
			return validationf("estimated usage must be a positive number of grams")
		}
	}
	return nil
}

func validateActual(grams *float64) error {
	if grams == nil {
		return nil
	}
	if math.IsNaN(*grams) || math.IsInf(*grams, 0) || *grams < 0 {
		return validationf("actual filament usage must be a non-negative number of grams")
	}
	return nil
}

func usageDetails(actual *float64, adj *WeightAdjustment) map[string]any {
	details := map[string]any{}
	if actual != nil {
		details["actual_usage_grams"] = *actual
	}
	if adj != nil {
		details["filament_id"] = adj.FilamentID
		details["deducted_grams"] = -adj.AppliedGrams
		details["clamped"] = adj.Clamped
	}
	return details
}
