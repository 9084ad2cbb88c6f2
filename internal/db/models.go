package db

import (
	"time"
)

type Printer struct {
	ID                    int64     `json:"id"`
	Name                  string    `json:"name"`
	Location              string    `json:"location"`
	NozzleSizeMM          float64   `json:"nozzle_size_mm"`
	SupportedDiameters    []float64 `json:"supported_diameters"`
	Occupied              bool      `json:"occupied"`
	CompatibleFilamentIDs []int64   `json:"compatible_filament_ids"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type Filament struct {
	ID          int64     `json:"id"`
	Brand       string    `json:"brand"`
	Material    string    `json:"material"`
	Color       string    `json:"color"`
	DiameterMM  float64   `json:"diameter_mm"`
	WeightGrams float64   `json:"weight_grams"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PrintJob struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	ArtifactLink        string     `json:"artifact_link"`
	DurationMinutes     int        `json:"duration_minutes"`
	Status              string     `json:"status"`
	PrinterID           int64      `json:"printer_id"`
	FilamentID          *int64     `json:"filament_id"`
	EstimatedUsageGrams *float64   `json:"estimated_usage_grams"`
	ActualUsageGrams    *float64   `json:"actual_usage_grams"`
	CreatedBy           int64      `json:"created_by"`
	CreatedAt           time.Time  `json:"created_at"`
	StartedAt           *time.Time `json:"started_at"`
	CompletedAt         *time.Time `json:"completed_at"`
}

type User struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Rank         string    `json:"rank"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FilamentUsage is one ledger row per stock deduction.
type FilamentUsage struct {
	ID             int64     `json:"id"`
	FilamentID     int64     `json:"filament_id"`
	JobID          *int64    `json:"job_id"`
	RequestedGrams float64   `json:"requested_grams"`
	DeductedGrams  float64   `json:"deducted_grams"`
	Reason         string    `json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Encrypted bool      `json:"encrypted"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuditLog struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	ActorID     int64     `json:"actor_id"`
	DetailsJSON string    `json:"details_json"`
	IPAddress   string    `json:"ip_address"`
	CreatedAt   time.Time `json:"created_at"`
}

type JobFilter struct {
	PrinterID  int64
	FilamentID int64
	Status     string
	CreatedBy  int64
	Limit      int
	Offset     int
}

type AuditFilter struct {
	Action     string
	EntityType string
	EntityID   int64
	ActorID    int64
}
