package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

type rowScanner interface {
	Scan(dest ...any) error
}

type PrinterOperations struct {
	q Querier
}

func (o *PrinterOperations) CreatePrinter(ctx context.Context, p *Printer) error {
	diameters, err := encodeDiameters(p.SupportedDiameters)
	if err != nil {
		return err
	}
	result, err := o.q.ExecContext(ctx, InsertPrinter,
		p.Name, p.Location, p.NozzleSizeMM, diameters)
	if err != nil {
		return fmt.Errorf("failed to create printer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get printer id: %w", err)
	}
	p.ID = id
	p.Occupied = false
	return nil
}

func (o *PrinterOperations) GetPrinterByID(ctx context.Context, id int64) (*Printer, error) {
	p, err := scanPrinter(o.q.QueryRowContext(ctx, GetPrinterByID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get printer: %w", err)
	}

	ids, err := o.compatibleIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	p.CompatibleFilamentIDs = ids
	return p, nil
}

func (o *PrinterOperations) ListPrinters(ctx context.Context) ([]*Printer, error) {
	rows, err := o.q.QueryContext(ctx, ListPrinters)
	if err != nil {
		return nil, fmt.Errorf("failed to list printers: %w", err)
	}
	defer rows.Close()

	var printers []*Printer
	byID := make(map[int64]*Printer)
	for rows.Next() {
		p, err := scanPrinter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan printer: %w", err)
		}
		p.CompatibleFilamentIDs = []int64{}
		printers = append(printers, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list printers: %w", err)
	}
	rows.Close()

	links, err := o.q.QueryContext(ctx, ListAllCompatibleFilamentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list compatible filaments: %w", err)
	}
	defer links.Close()

	for links.Next() {
		var printerID, filamentID int64
		if err := links.Scan(&printerID, &filamentID); err != nil {
			return nil, fmt.Errorf("failed to scan compatible filament: %w", err)
		}
		if p, ok := byID[printerID]; ok {
			p.CompatibleFilamentIDs = append(p.CompatibleFilamentIDs, filamentID)
		}
	}
	return printers, links.Err()
}

func (o *PrinterOperations) UpdatePrinter(ctx context.Context, p *Printer) error {
	diameters, err := encodeDiameters(p.SupportedDiameters)
	if err != nil {
		return err
	}
	_, err = o.q.ExecContext(ctx, UpdatePrinter,
		p.Name, p.Location, p.NozzleSizeMM, diameters, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update printer: %w", err)
	}
	return nil
}

// AcquireOccupancy flips occupied from false to true. It reports false when
// the printer was already occupied or does not exist.
func (o *PrinterOperations) AcquireOccupancy(ctx context.Context, id int64) (bool, error) {
	result, err := o.q.ExecContext(ctx, AcquirePrinterOccupancy, id)
	if err != nil {
		return false, fmt.Errorf("failed to acquire printer: %w", err)
	}
	return affectedOne(result)
}

// ReleaseOccupancy clears the occupied flag. Releasing a free or missing
// printer is a no-op.
func (o *PrinterOperations) ReleaseOccupancy(ctx context.Context, id int64) error {
	if _, err := o.q.ExecContext(ctx, ReleasePrinterOccupancy, id); err != nil {
		return fmt.Errorf("failed to release printer: %w", err)
	}
	return nil
}

func (o *PrinterOperations) DeletePrinter(ctx context.Context, id int64) (bool, error) {
	result, err := o.q.ExecContext(ctx, DeletePrinter, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete printer: %w", err)
	}
	return affectedOne(result)
}

// ReplaceCompatibleFilaments rewrites the cached compatibility rows of one
// printer.
func (o *PrinterOperations) ReplaceCompatibleFilaments(ctx context.Context, printerID int64, filamentIDs []int64) error {
	if _, err := o.q.ExecContext(ctx, ClearCompatibleFilaments, printerID); err != nil {
		return fmt.Errorf("failed to clear compatible filaments: %w", err)
	}
	for _, fid := range filamentIDs {
		if _, err := o.q.ExecContext(ctx, InsertCompatibleFilament, printerID, fid); err != nil {
			return fmt.Errorf("failed to store compatible filament: %w", err)
		}
	}
	return nil
}

func (o *PrinterOperations) compatibleIDs(ctx context.Context, printerID int64) ([]int64, error) {
	rows, err := o.q.QueryContext(ctx, ListCompatibleFilamentIDs, printerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compatible filaments: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan compatible filament: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanPrinter(row rowScanner) (*Printer, error) {
	p := &Printer{}
	var diameters string
	if err := row.Scan(
		&p.ID, &p.Name, &p.Location, &p.NozzleSizeMM, &diameters,
		&p.Occupied, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(diameters), &p.SupportedDiameters); err != nil {
		return nil, fmt.Errorf("failed to decode supported diameters of printer %d: %w", p.ID, err)
	}
	return p, nil
}

func encodeDiameters(diameters []float64) (string, error) {
	if diameters == nil {
		diameters = []float64{}
	}
	data, err := json.Marshal(diameters)
	if err != nil {
		return "", fmt.Errorf("failed to encode supported diameters: %w", err)
	}
	return string(data), nil
}

type FilamentOperations struct {
	q Querier
}

func (o *FilamentOperations) CreateFilament(ctx context.Context, f *Filament) error {
	result, err := o.q.ExecContext(ctx, InsertFilament,
		f.Brand, f.Material, f.Color, f.DiameterMM, f.WeightGrams)
	if err != nil {
		return fmt.Errorf("failed to create filament: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get filament id: %w", err)
	}
	f.ID = id
	return nil
}

func (o *FilamentOperations) GetFilamentByID(ctx context.Context, id int64) (*Filament, error) {
	f, err := scanFilament(o.q.QueryRowContext(ctx, GetFilamentByID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get filament: %w", err)
	}
	return f, nil
}

func (o *FilamentOperations) ListFilaments(ctx context.Context) ([]*Filament, error) {
	rows, err := o.q.QueryContext(ctx, ListFilaments)
	if err != nil {
		return nil, fmt.Errorf("failed to list filaments: %w", err)
	}
	defer rows.Close()

	var filaments []*Filament
	for rows.Next() {
		f, err := scanFilament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan filament: %w", err)
		}
		filaments = append(filaments, f)
	}
	return filaments, rows.Err()
}

func (o *FilamentOperations) UpdateFilament(ctx context.Context, f *Filament) error {
	_, err := o.q.ExecContext(ctx, UpdateFilament,
		f.Brand, f.Material, f.Color, f.DiameterMM, f.WeightGrams, f.ID)
	if err != nil {
		return fmt.Errorf("failed to update filament: %w", err)
	}
	return nil
}

// AdjustWeight adds delta grams to the spool, flooring the result at zero.
func (o *FilamentOperations) AdjustWeight(ctx context.Context, id int64, delta float64) error {
	if _, err := o.q.ExecContext(ctx, AdjustFilamentWeight, delta, id); err != nil {
		return fmt.Errorf("failed to adjust filament weight: %w", err)
	}
	return nil
}

func (o *FilamentOperations) DeleteFilament(ctx context.Context, id int64) (bool, error) {
	result, err := o.q.ExecContext(ctx, DeleteFilament, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete filament: %w", err)
	}
	return affectedOne(result)
}

func scanFilament(row rowScanner) (*Filament, error) {
	f := &Filament{}
	err := row.Scan(
		&f.ID, &f.Brand, &f.Material, &f.Color, &f.DiameterMM,
		&f.WeightGrams, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

type SettingsOperations struct {
	q Querier
}

func (o *SettingsOperations) GetSetting(ctx context.Context, key string) (*Setting, error) {
	s := &Setting{Key: key}
	err := o.q.QueryRowContext(ctx, GetSetting, key).Scan(&s.Value, &s.Encrypted, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return s, nil
}

func (o *SettingsOperations) SetSetting(ctx context.Context, key, value string, encrypted bool) error {
	_, err := o.q.ExecContext(ctx, SetSetting, key, value, encrypted, value, encrypted)
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

// GetOrCreateSetting stores value under key unless a value already exists,
// and returns whichever value won.
func (o *SettingsOperations) GetOrCreateSetting(ctx context.Context, key, value string, encrypted bool) (string, error) {
	if _, err := o.q.ExecContext(ctx, InsertSettingIfAbsent, key, value, encrypted); err != nil {
		return "", fmt.Errorf("failed to seed setting: %w", err)
	}
	s, err := o.GetSetting(ctx, key)
	if err != nil {
		return "", err
	}
	return s.Value, nil
}

func (o *SettingsOperations) ListSettings(ctx context.Context) ([]*Setting, error) {
	rows, err := o.q.QueryContext(ctx, ListSettings)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var settings []*Setting
	for rows.Next() {
		s := &Setting{}
		if err := rows.Scan(&s.Key, &s.Value, &s.Encrypted, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (o *SettingsOperations) DeleteSetting(ctx context.Context, key string) error {
	_, err := o.q.ExecContext(ctx, DeleteSetting, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	return nil
}

type AuditOperations struct {
	q Querier
}

func (o *AuditOperations) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	if log.DetailsJSON == "" {
		log.DetailsJSON = "{}"
	}
	result, err := o.q.ExecContext(ctx, InsertAuditLog,
		log.Action, log.EntityType, log.EntityID, log.ActorID, log.DetailsJSON, log.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get audit log id: %w", err)
	}
	log.ID = id
	return nil
}

func (o *AuditOperations) ListAuditLogs(ctx context.Context, filter AuditFilter, limit, offset int) ([]*AuditLog, error) {
	var conditions []string
	var args []interface{}

	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, filter.EntityType)
	}
	if filter.EntityID > 0 {
		conditions = append(conditions, "entity_id = ?")
		args = append(args, filter.EntityID)
	}
	if filter.ActorID > 0 {
		conditions = append(conditions, "actor_id = ?")
		args = append(args, filter.ActorID)
	}

	query := "SELECT id, action, entity_type, entity_id, actor_id, details_json, ip_address, created_at FROM audit_log"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := o.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*AuditLog
	for rows.Next() {
		log := &AuditLog{}
		if err := rows.Scan(
			&log.ID, &log.Action, &log.EntityType, &log.EntityID, &log.ActorID,
			&log.DetailsJSON, &log.IPAddress, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func affectedOne(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}
