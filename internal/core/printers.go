package core

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/orrn/printq/internal/db"
)

// Diameters closer than this are the same filament gauge.
const diameterEpsilon = 1e-6

// Legacy printer rows without these fields behave as 0.4 mm / 1.75 mm.
const (
	DefaultNozzleSizeMM = 0.4
	DefaultDiameterMM   = 1.75
)

type PrinterInput struct {
	Name               string    `json:"name"`
	Location           string    `json:"location"`
	NozzleSizeMM       *float64  `json:"nozzle_size_mm"`
	SupportedDiameters []float64 `json:"supported_diameters"`
}

// PrinterUpdate is a partial update; nil fields are left unchanged.
type PrinterUpdate struct {
	Name               *string    `json:"name"`
	Location           *string    `json:"location"`
	NozzleSizeMM       *float64   `json:"nozzle_size_mm"`
	SupportedDiameters *[]float64 `json:"supported_diameters"`
}

type PrinterRegistry struct {
	store  *db.Store
	audit  *AuditTrail
	logger *zap.Logger
}

func NewPrinterRegistry(store *db.Store, audit *AuditTrail, logger *zap.Logger) *PrinterRegistry {
	return &PrinterRegistry{
		store:  store,
		audit:  audit,
		logger: logger.Named("printers"),
	}
}

func (r *PrinterRegistry) Create(ctx context.Context, caller Caller, in PrinterInput) (*db.Printer, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("printer name is required")
	}
	if in.NozzleSizeMM == nil {
		return nil, validationf("nozzle size is required")
	}
	if err := validateNozzle(*in.NozzleSizeMM); err != nil {
		return nil, err
	}
	diameters, err := normalizeDiameters(in.SupportedDiameters)
	if err != nil {
		return nil, err
	}

	p := &db.Printer{
		Name:               name,
		Location:           strings.TrimSpace(in.Location),
		NozzleSizeMM:       *in.NozzleSizeMM,
		SupportedDiameters: diameters,
	}

	err = r.store.InTx(ctx, func(tx *db.Store) error {
		if err := tx.Printers.CreatePrinter(ctx, p); err != nil {
			return err
		}
		ids, err := r.deriveAndStore(ctx, tx, p)
		if err != nil {
			return err
		}
		p.CompatibleFilamentIDs = ids

		r.audit.record(ctx, tx, caller, "printer.create", "printer", p.ID, map[string]any{
			"name":                p.Name,
			"supported_diameters": p.SupportedDiameters,
		})
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	r.logger.Info("printer created", zap.Int64("printer_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (r *PrinterRegistry) Update(ctx context.Context, caller Caller, id int64, upd PrinterUpdate) (*db.Printer, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}

	var p *db.Printer
	err := r.store.InTx(ctx, func(tx *db.Store) error {
		var err error
		p, err = getPrinter(ctx, tx, id)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if name == "" {
				return validationf("printer name cannot be empty")
			}
			p.Name = name
		}
		if upd.Location != nil {
			p.Location = strings.TrimSpace(*upd.Location)
		}
		if upd.NozzleSizeMM != nil {
			if err := validateNozzle(*upd.NozzleSizeMM); err != nil {
				return err
			}
			p.NozzleSizeMM = *upd.NozzleSizeMM
		}

		diametersChanged := false
		if upd.SupportedDiameters != nil {
			diameters, err := normalizeDiameters(*upd.SupportedDiameters)
			if err != nil {
				return err
			}
			diametersChanged = !sameDiameters(p.SupportedDiameters, diameters)
			p.SupportedDiameters = diameters
		}

		if err := tx.Printers.UpdatePrinter(ctx, p); err != nil {
			return err
		}
		if diametersChanged {
			ids, err := r.deriveAndStore(ctx, tx, p)
			if err != nil {
				return err
			}
			p.CompatibleFilamentIDs = ids
		}

		r.audit.record(ctx, tx, caller, "printer.update", "printer", p.ID, map[string]any{
			"diameters_changed": diametersChanged,
		})
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return p, nil
}

// Delete removes a printer nobody is waiting on. Finished jobs keep their
// dangling printer reference.
func (r *PrinterRegistry) Delete(ctx context.Context, caller Caller, id int64) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}

	err := r.store.InTx(ctx, func(tx *db.Store) error {
		if _, err := getPrinter(ctx, tx, id); err != nil {
			return err
		}
		active, err := tx.Jobs.CountActiveByPrinter(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return conflictf("printer %d has %d pending or printing jobs", id, active)
		}
		if _, err := tx.Printers.DeletePrinter(ctx, id); err != nil {
			return err
		}
		r.audit.record(ctx, tx, caller, "printer.delete", "printer", id, nil)
		return nil
	})
	if err != nil {
		return storageErr(err)
	}

	r.logger.Info("printer deleted", zap.Int64("printer_id", id))
	return nil
}

// Get returns one printer with a freshly derived compatible filament list.
func (r *PrinterRegistry) Get(ctx context.Context, id int64) (*db.Printer, error) {
	var p *db.Printer
	err := r.store.InTx(ctx, func(tx *db.Store) error {
		var err error
		p, err = getPrinter(ctx, tx, id)
		if err != nil {
			return err
		}
		filaments, err := tx.Filaments.ListFilaments(ctx)
		if err != nil {
			return err
		}
		return r.refresh(ctx, tx, p, filaments)
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return p, nil
}

// List returns every printer, persisting any compatible lists that drifted
// from the current inventory.
func (r *PrinterRegistry) List(ctx context.Context) ([]*db.Printer, error) {
	var printers []*db.Printer
	err := r.store.InTx(ctx, func(tx *db.Store) error {
		var err error
		printers, err = tx.Printers.ListPrinters(ctx)
		if err != nil {
			return err
		}
		filaments, err := tx.Filaments.ListFilaments(ctx)
		if err != nil {
			return err
		}
		for _, p := range printers {
			if err := r.refresh(ctx, tx, p, filaments); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	if printers == nil {
		printers = []*db.Printer{}
	}
	return printers, nil
}

// CompatibleFilaments lists the spools a printer can load right now.
func (r *PrinterRegistry) CompatibleFilaments(ctx context.Context, printerID int64) ([]*db.Filament, error) {
	p, err := getPrinter(ctx, r.store, printerID)
	if err != nil {
		return nil, storageErr(err)
	}
	filaments, err := r.store.Filaments.ListFilaments(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	out := []*db.Filament{}
	for _, f := range filaments {
		if supportsDiameter(p.SupportedDiameters, f.DiameterMM) {
			out = append(out, f)
		}
	}
	return out, nil
}

// RefreshAll recomputes the cached compatible list of every printer.
func (r *PrinterRegistry) RefreshAll(ctx context.Context) error {
	return storageErr(r.store.InTx(ctx, func(tx *db.Store) error {
		return refreshCompatibility(ctx, tx)
	}))
}

func (r *PrinterRegistry) refresh(ctx context.Context, tx *db.Store, p *db.Printer, filaments []*db.Filament) error {
	fresh := compatibleFilamentIDs(p.SupportedDiameters, filaments)
	if !sameIDs(fresh, p.CompatibleFilamentIDs) {
		r.logger.Debug("compatible filaments drifted",
			zap.Int64("printer_id", p.ID),
			zap.Int64s("cached", p.CompatibleFilamentIDs),
			zap.Int64s("fresh", fresh))
		if err := tx.Printers.ReplaceCompatibleFilaments(ctx, p.ID, fresh); err != nil {
			return err
		}
	}
	p.CompatibleFilamentIDs = fresh
	return nil
}

func (r *PrinterRegistry) deriveAndStore(ctx context.Context, tx *db.Store, p *db.Printer) ([]int64, error) {
	filaments, err := tx.Filaments.ListFilaments(ctx)
	if err != nil {
		return nil, err
	}
	ids := compatibleFilamentIDs(p.SupportedDiameters, filaments)
	if err := tx.Printers.ReplaceCompatibleFilaments(ctx, p.ID, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// refreshCompatibility rebuilds every printer's cached list through tx. It is
// called after any write to the filament set.
func refreshCompatibility(ctx context.Context, tx *db.Store) error {
	printers, err := tx.Printers.ListPrinters(ctx)
	if err != nil {
		return err
	}
	filaments, err := tx.Filaments.ListFilaments(ctx)
	if err != nil {
		return err
	}
	for _, p := range printers {
		fresh := compatibleFilamentIDs(p.SupportedDiameters, filaments)
		if sameIDs(fresh, p.CompatibleFilamentIDs) {
			continue
		}
		if err := tx.Printers.ReplaceCompatibleFilaments(ctx, p.ID, fresh); err != nil {
			return err
		}
	}
	return nil
}

func getPrinter(ctx context.Context, s *db.Store, id int64) (*db.Printer, error) {
	p, err := s.Printers.GetPrinterByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("printer", id)
	}
	if err != nil {
		return nil, err
	}
	if p.NozzleSizeMM <= 0 {
		p.NozzleSizeMM = DefaultNozzleSizeMM
	}
	if len(p.SupportedDiameters) == 0 {
		p.SupportedDiameters = []float64{DefaultDiameterMM}
	}
	return p, nil
}

// compatibleFilamentIDs returns, in ascending order, the ids of filaments
// whose diameter is one of diameters.
func compatibleFilamentIDs(diameters []float64, filaments []*db.Filament) []int64 {
	ids := []int64{}
	for _, f := range filaments {
		if supportsDiameter(diameters, f.DiameterMM) {
			ids = append(ids, f.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func supportsDiameter(diameters []float64, d float64) bool {
	for _, s := range diameters {
		if math.Abs(s-d) < diameterEpsilon {
			return true
		}
	}
	return false
}

func normalizeDiameters(in []float64) ([]float64, error) {
	if len(in) == 0 {
		return nil, validationf("at least one supported filament diameter is required")
	}
	out := make([]float64, 0, len(in))
	for _, d := range in {
		if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
			return nil, validationf("filament diameter must be a positive number, got %v", d)
		}
		if !supportsDiameter(out, d) {
			out = append(out, d)
		}
	}
	sort.Float64s(out)
	return out, nil
}

func validateNozzle(size float64) error {
	if math.IsNaN(size) || math.IsInf(size, 0) || size <= 0 {
		return validationf("nozzle size must be a positive number, got %v", size)
	}
	return nil
}

func sameDiameters(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) >= diameterEpsilon {
			return false
		}
	}
	return true
}

func sameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
