package handlers

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"

	"github.com/orrn/printq/internal/core"
	"github.com/orrn/printq/internal/db"
)

type JobService interface {
	Create(ctx context.Context, caller core.Caller, in core.JobInput) (*core.CreateJobResult, error)
	CheckStock(ctx context.Context, caller core.Caller, filamentID int64, estimatedGrams float64) ([]core.Warning, error)
	Start(ctx context.Context, caller core.Caller, id int64) (*core.TransitionResult, error)
	Stop(ctx context.Context, caller core.Caller, id int64, actualGrams *float64) (*core.TransitionResult, error)
	MarkFailed(ctx context.Context, caller core.Caller, id int64, actualGrams *float64) (*core.TransitionResult, error)
	Restart(ctx context.Context, caller core.Caller, id int64) (*core.TransitionResult, error)
	Delete(ctx context.Context, caller core.Caller, id int64) error
	List(ctx context.Context, q core.JobQuery) ([]*core.JobView, error)
	Get(ctx context.Context, id int64) (*core.JobView, error)
	Stats(ctx context.Context) (*core.QueueStats, error)
}

type PrinterService interface {
	Create(ctx context.Context, caller core.Caller, in core.PrinterInput) (*db.Printer, error)
	Update(ctx context.Context, caller core.Caller, id int64, upd core.PrinterUpdate) (*db.Printer, error)
	Delete(ctx context.Context, caller core.Caller, id int64) error
	Get(ctx context.Context, id int64) (*db.Printer, error)
	List(ctx context.Context) ([]*db.Printer, error)
	CompatibleFilaments(ctx context.Context, printerID int64) ([]*db.Filament, error)
}

type FilamentService interface {
	Create(ctx context.Context, caller core.Caller, in core.FilamentInput) (*db.Filament, error)
	Get(ctx context.Context, id int64) (*db.Filament, error)
	List(ctx context.Context) ([]*db.Filament, error)
	Update(ctx context.Context, caller core.Caller, id int64, upd core.FilamentUpdate) (*db.Filament, error)
	Delete(ctx context.Context, caller core.Caller, id int64) error
	AdjustWeight(ctx context.Context, caller core.Caller, id int64, deltaGrams float64) (*core.WeightAdjustment, error)
	Usage(ctx context.Context, caller core.Caller, id int64, limit, offset int) ([]*db.FilamentUsage, error)
}

type UserService interface {
	List(ctx context.Context, caller core.Caller) ([]*db.User, error)
	ApplyAction(ctx context.Context, caller core.Caller, userID int64, action core.UserAction) (*db.User, error)
}

type AuditService interface {
	List(ctx context.Context, caller core.Caller, q core.AuditQuery) ([]*db.AuditLog, error)
}
