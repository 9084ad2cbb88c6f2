package core

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/orrn/printq/internal/db"
	"github.com/orrn/printq/internal/metrics"
)

// Ledger reasons for stock deductions.
const (
	UsageReasonStop       = "stop"
	UsageReasonMarkFailed = "mark_failed"
	UsageReasonCompletion = "completion"
	UsageReasonManual     = "manual"
)

type FilamentInput struct {
	Brand       string   `json:"brand"`
	Material    string   `json:"material"`
	Color       string   `json:"color"`
	DiameterMM  *float64 `json:"diameter_mm"`
	WeightGrams *float64 `json:"weight_grams"`
}

type FilamentUpdate struct {
	Brand       *string  `json:"brand"`
	Material    *string  `json:"material"`
	Color       *string  `json:"color"`
	DiameterMM  *float64 `json:"diameter_mm"`
	WeightGrams *float64 `json:"weight_grams"`
}

// WeightAdjustment describes one change to a spool's remaining weight.
type WeightAdjustment struct {
	FilamentID    int64   `json:"filament_id"`
	PreviousGrams float64 `json:"previous_grams"`
	NewGrams      float64 `json:"new_grams"`
	AppliedGrams  float64 `json:"applied_grams"`
	Clamped       bool    `json:"clamped"`
	LowStock      bool    `json:"low_stock"`
}

type FilamentInventory struct {
	store             *db.Store
	audit             *AuditTrail
	logger            *zap.Logger
	metrics           *metrics.Metrics
	clock             Clock
	lowStockThreshold float64
}

func NewFilamentInventory(store *db.Store, audit *AuditTrail, logger *zap.Logger, m *metrics.Metrics, clock Clock, lowStockThreshold float64) *FilamentInventory {
	return &FilamentInventory{
		store:             store,
		audit:             audit,
		logger:            logger.Named("filaments"),
		metrics:           m,
		clock:             clock,
		lowStockThreshold: lowStockThreshold,
	}
}

func (f *FilamentInventory) Create(ctx context.Context, caller Caller, in FilamentInput) (*db.Filament, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}

	fil := &db.Filament{
		Brand:    strings.TrimSpace(in.Brand),
		Material: strings.TrimSpace(in.Material),
		Color:    strings.TrimSpace(in.Color),
	}
	if in.DiameterMM == nil {
		return nil, validationf("diameter is required")
	}
	if in.WeightGrams == nil {
		return nil, validationf("weight is required")
	}
	fil.DiameterMM = *in.DiameterMM
	fil.WeightGrams = *in.WeightGrams
	if err := validateFilament(fil); err != nil {
		return nil, err
	}

	err := f.store.InTx(ctx, func(tx *db.Store) error {
		if err := tx.Filaments.CreateFilament(ctx, fil); err != nil {
			return err
		}
		if err := refreshCompatibility(ctx, tx); err != nil {
			return err
		}
		f.audit.record(ctx, tx, caller, "filament.create", "filament", fil.ID, map[string]any{
			"material":     fil.Material,
			"diameter_mm":  fil.DiameterMM,
			"weight_grams": fil.WeightGrams,
		})
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	f.logger.Info("filament created", zap.Int64("filament_id", fil.ID), zap.Float64("weight_grams", fil.WeightGrams))
	return fil, nil
}

func (f *FilamentInventory) Get(ctx context.Context, id int64) (*db.Filament, error) {
	fil, err := getFilament(ctx, f.store, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return fil, nil
}

func (f *FilamentInventory) List(ctx context.Context) ([]*db.Filament, error) {
	filaments, err := f.store.Filaments.ListFilaments(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	if filaments == nil {
		filaments = []*db.Filament{}
	}
	return filaments, nil
}

func (f *FilamentInventory) Update(ctx context.Context, caller Caller, id int64, upd FilamentUpdate) (*db.Filament, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}

	var fil *db.Filament
	err := f.store.InTx(ctx, func(tx *db.Store) error {
		var err error
		fil, err = getFilament(ctx, tx, id)
		if err != nil {
			return err
		}

		previousDiameter := fil.DiameterMM
		if upd.Brand != nil {
			fil.Brand = strings.TrimSpace(*upd.Brand)
		}
		if upd.Material != nil {
			fil.Material = strings.TrimSpace(*upd.Material)
		}
		if upd.Color != nil {
			fil.Color = strings.TrimSpace(*upd.Color)
		}
		if upd.DiameterMM != nil {
			fil.DiameterMM = *upd.DiameterMM
		}
		if upd.WeightGrams != nil {
			fil.WeightGrams = *upd.WeightGrams
		}
		if err := validateFilament(fil); err != nil {
			return err
		}

		if err := tx.Filaments.UpdateFilament(ctx, fil); err != nil {
			return err
		}
		if math.Abs(previousDiameter-fil.DiameterMM) >= diameterEpsilon {
			if err := refreshCompatibility(ctx, tx); err != nil {
				return err
			}
		}
		f.audit.record(ctx, tx, caller, "filament.update", "filament", fil.ID, nil)
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return fil, nil
}

// Delete removes a spool unless a printing job is consuming it.
func (f *FilamentInventory) Delete(ctx context.Context, caller Caller, id int64) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}

	err := f.store.InTx(ctx, func(tx *db.Store) error {
		if _, err := getFilament(ctx, tx, id); err != nil {
			return err
		}
		printing, err := tx.Jobs.CountPrintingByFilament(ctx, id)
		if err != nil {
			return err
		}
		if printing > 0 {
			return conflictf("filament %d is loaded in a printing job", id)
		}
		if _, err := tx.Filaments.DeleteFilament(ctx, id); err != nil {
			return err
		}
		if err := refreshCompatibility(ctx, tx); err != nil {
			return err
		}
		f.audit.record(ctx, tx, caller, "filament.delete", "filament", id, nil)
		return nil
	})
	if err != nil {
		return storageErr(err)
	}

	f.logger.Info("filament deleted", zap.Int64("filament_id", id))
	return nil
}

// AdjustWeight adds deltaGrams (negative to consume, positive to restock),
// never letting the remaining weight drop below zero.
func (f *FilamentInventory) AdjustWeight(ctx context.Context, caller Caller, id int64, deltaGrams float64) (*WeightAdjustment, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	if math.IsNaN(deltaGrams) || math.IsInf(deltaGrams, 0) {
		return nil, validationf("weight delta must be a finite number")
	}

	var adj *WeightAdjustment
	err := f.store.InTx(ctx, func(tx *db.Store) error {
		var err error
		adj, err = f.adjustWeight(ctx, tx, id, deltaGrams, nil, UsageReasonManual)
		if err != nil {
			return err
		}
		f.audit.record(ctx, tx, caller, "filament.adjust", "filament", id, map[string]any{
			"delta_grams": deltaGrams,
			"new_grams":   adj.NewGrams,
		})
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return adj, nil
}

// Usage returns the deduction ledger of one spool, newest first.
func (f *FilamentInventory) Usage(ctx context.Context, caller Caller, id int64, limit, offset int) ([]*db.FilamentUsage, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	if _, err := getFilament(ctx, f.store, id); err != nil {
		return nil, storageErr(err)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	usage, err := f.store.Usage.ListUsage(ctx, id, limit, offset)
	if err != nil {
		return nil, storageErr(err)
	}
	if usage == nil {
		usage = []*db.FilamentUsage{}
	}
	return usage, nil
}

// adjustWeight applies delta through tx and records a ledger row for
// deductions.
func (f *FilamentInventory) adjustWeight(ctx context.Context, tx *db.Store, id int64, delta float64, jobID *int64, reason string) (*WeightAdjustment, error) {
	fil, err := getFilament(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	previous := fil.WeightGrams
	next := math.Max(previous+delta, 0)
	if err := tx.Filaments.AdjustWeight(ctx, id, delta); err != nil {
		return nil, err
	}

	adj := &WeightAdjustment{
		FilamentID:    id,
		PreviousGrams: previous,
		NewGrams:      next,
		AppliedGrams:  next - previous,
		Clamped:       previous+delta < 0,
	}

	if delta < 0 {
		deducted := previous - next
		if err := tx.Usage.RecordUsage(ctx, &db.FilamentUsage{
			FilamentID:     id,
			JobID:          jobID,
			RequestedGrams: -delta,
			DeductedGrams:  deducted,
			Reason:         reason,
			CreatedAt:      f.clock.Now(),
		}); err != nil {
			return nil, err
		}
		f.metrics.FilamentDeducted(reason, deducted)
	}

	pending, err := tx.Jobs.SumPendingEstimate(ctx, id)
	if err != nil {
		return nil, err
	}
	adj.LowStock = next < f.lowStockThreshold || (pending > 0 && next < pending)

	if adj.Clamped {
		f.logger.Warn("filament deduction clamped at zero",
			zap.Int64("filament_id", id),
			zap.Float64("requested_grams", -delta),
			zap.Float64("available_grams", previous))
	}
	if adj.LowStock {
		f.metrics.LowStock("adjust")
		f.logger.Warn("filament low on stock",
			zap.Int64("filament_id", id),
			zap.Float64("remaining_grams", next),
			zap.Float64("pending_estimate_grams", pending))
	}
	return adj, nil
}

func getFilament(ctx context.Context, s *db.Store, id int64) (*db.Filament, error) {
	fil, err := s.Filaments.GetFilamentByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("filament", id)
	}
	if err != nil {
		return nil, err
	}
	return fil, nil
}

func validateFilament(f *db.Filament) error {
	switch {
	case f.Brand == "":
		return validationf("brand is required")
	case f.Material == "":
		return validationf("material is required")
	case f.Color == "":
		return validationf("color is required")
	case math.IsNaN(f.DiameterMM) || math.IsInf(f.DiameterMM, 0) || f.DiameterMM <= 0:
		return validationf("diameter must be a positive number")
	case math.IsNaN(f.WeightGrams) || math.IsInf(f.WeightGrams, 0) || f.WeightGrams < 0:
		return validationf("weight must be a non-negative number")
	}
	return nil
}
