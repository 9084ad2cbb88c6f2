package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type JobOperations struct {
	q Querier
}

func (o *JobOperations) CreateJob(ctx context.Context, j *PrintJob) error {
	result, err := o.q.ExecContext(ctx, InsertJob,
		j.Name, j.ArtifactLink, j.DurationMinutes, j.Status, j.PrinterID, j.FilamentID,
		j.EstimatedUsageGrams, j.CreatedBy, j.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get job id: %w", err)
	}
	j.ID = id
	return nil
}

func (o *JobOperations) GetJobByID(ctx context.Context, id int64) (*PrintJob, error) {
	j, err := scanJob(o.q.QueryRowContext(ctx, GetJobByID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

func (o *JobOperations) ListJobsByStatus(ctx context.Context, status string) ([]*PrintJob, error) {
	rows, err := o.q.QueryContext(ctx, ListJobsByStatus, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs by status: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

func (o *JobOperations) ListJobs(ctx context.Context, filter JobFilter) ([]*PrintJob, error) {
	var conditions []string
	var args []interface{}

	if filter.PrinterID > 0 {
		conditions = append(conditions, "printer_id = ?")
		args = append(args, filter.PrinterID)
	}
	if filter.FilamentID > 0 {
		conditions = append(conditions, "filament_id = ?")
		args = append(args, filter.FilamentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.CreatedBy > 0 {
		conditions = append(conditions, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}

	query := "SELECT " + jobColumns + " FROM print_jobs"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	limit := 100
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := o.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// MarkPrinting moves a pending job to printing. It reports false when the job
// is missing or no longer pending.
func (o *JobOperations) MarkPrinting(ctx context.Context, id int64, startedAt time.Time) (bool, error) {
	result, err := o.q.ExecContext(ctx, MarkJobPrinting, startedAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark job printing: %w", err)
	}
	return affectedOne(result)
}

// FinishJob moves a job from one status to a terminal one. completedAt is
// only written when the job has none yet; actual is only written when non-nil.
func (o *JobOperations) FinishJob(ctx context.Context, id int64, from, to string, completedAt time.Time, actual *float64) (bool, error) {
	result, err := o.q.ExecContext(ctx, FinishJob, to, completedAt, actual, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to finish job: %w", err)
	}
	return affectedOne(result)
}

func (o *JobOperations) RestartJob(ctx context.Context, id int64) (bool, error) {
	result, err := o.q.ExecContext(ctx, RestartJob, id)
	if err != nil {
		return false, fmt.Errorf("failed to restart job: %w", err)
	}
	return affectedOne(result)
}

func (o *JobOperations) DeleteJob(ctx context.Context, id int64) (bool, error) {
	result, err := o.q.ExecContext(ctx, DeleteJob, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}
	return affectedOne(result)
}

func (o *JobOperations) CountActiveByPrinter(ctx context.Context, printerID int64) (int64, error) {
	var count int64
	if err := o.q.QueryRowContext(ctx, CountActiveJobsByPrinter, printerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active jobs: %w", err)
	}
	return count, nil
}

func (o *JobOperations) CountPrintingByFilament(ctx context.Context, filamentID int64) (int64, error) {
	var count int64
	if err := o.q.QueryRowContext(ctx, CountPrintingJobsByFilament, filamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count printing jobs: %w", err)
	}
	return count, nil
}

// SumPendingEstimate totals the estimated grams of pending jobs on a spool.
func (o *JobOperations) SumPendingEstimate(ctx context.Context, filamentID int64) (float64, error) {
	var sum float64
	if err := o.q.QueryRowContext(ctx, SumPendingEstimateByFilament, filamentID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum pending estimates: %w", err)
	}
	return sum, nil
}

func (o *JobOperations) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := o.q.QueryContext(ctx, CountJobsGroupedByStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan job count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanJob(row rowScanner) (*PrintJob, error) {
	j := &PrintJob{}
	err := row.Scan(
		&j.ID, &j.Name, &j.ArtifactLink, &j.DurationMinutes, &j.Status,
		&j.PrinterID, &j.FilamentID, &j.EstimatedUsageGrams, &j.ActualUsageGrams,
		&j.CreatedBy, &j.CreatedAt, &j.StartedAt, &j.CompletedAt)
	if err != nil {
		return nil, err
	}
	return j, nil
}

func scanJobs(rows *sql.Rows) ([]*PrintJob, error) {
	var jobs []*PrintJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
