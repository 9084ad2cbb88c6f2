package core

import (
	"strings"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusPrinting  JobStatus = "printing"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

var jobStatuses = []JobStatus{
	JobStatusPending,
	JobStatusPrinting,
	JobStatusCompleted,
	JobStatusFailed,
}

// transitions lists every permitted status change.
var transitions = map[JobStatus][]JobStatus{
	JobStatusPending:   {JobStatusPrinting},
	JobStatusPrinting:  {JobStatusFailed, JobStatusCompleted},
	JobStatusCompleted: {JobStatusFailed},
	JobStatusFailed:    {JobStatusPending},
}

func ParseJobStatus(s string) (JobStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range jobStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", validationf("unknown job status %q", s)
}

func CanTransition(from, to JobStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(jobID int64, from, to JobStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return conflictf("job %d is %s and cannot become %s", jobID, from, to)
}

func (s JobStatus) String() string {
	return string(s)
}
