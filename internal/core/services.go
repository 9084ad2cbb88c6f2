package core

import (
	"go.uber.org/zap"

	"github.com/orrn/printq/internal/db"
	"github.com/orrn/printq/internal/metrics"
)

type Options struct {
	Store                      *db.Store
	Logger                     *zap.Logger
	Metrics                    *metrics.Metrics
	Clock                      Clock
	LowStockThresholdGrams     float64
	DeductEstimateOnCompletion bool
	BcryptCost                 int
}

// Services is the wired set of core components.
type Services struct {
	Printers  *PrinterRegistry
	Filaments *FilamentInventory
	Jobs      *JobEngine
	Users     *UserDirectory
	Audit     *AuditTrail
}

func NewServices(opts Options) *Services {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	audit := NewAuditTrail(opts.Store, logger)
	filaments := NewFilamentInventory(opts.Store, audit, logger, opts.Metrics, clock, opts.LowStockThresholdGrams)

	return &Services{
		Printers:  NewPrinterRegistry(opts.Store, audit, logger),
		Filaments: filaments,
		Jobs: NewJobEngine(opts.Store, filaments, audit, logger, opts.Metrics, clock, JobEngineConfig{
			DeductEstimateOnCompletion: opts.DeductEstimateOnCompletion,
		}),
		Users: NewUserDirectory(opts.Store, audit, logger, opts.BcryptCost),
		Audit: audit,
	}
}
