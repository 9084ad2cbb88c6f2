package db

const (
	GetAppliedMigrations = `SELECT version FROM schema_migrations`
)

const (
	InsertPrinter = `
		INSERT INTO printers (name, location, nozzle_size_mm, supported_diameters_json, occupied)
		VALUES (?, ?, ?, ?, 0)
	`

	GetPrinterByID = `
		SELECT id, name, location, nozzle_size_mm, supported_diameters_json, occupied, created_at, updated_at
		FROM printers WHERE id = ?
	`

	ListPrinters = `
		SELECT id, name, location, nozzle_size_mm, supported_diameters_json, occupied, created_at, updated_at
		FROM printers ORDER BY name ASC, id ASC
	`

	UpdatePrinter = `
		UPDATE printers SET
			name = ?, location = ?, nozzle_size_mm = ?, supported_diameters_json = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	AcquirePrinterOccupancy = `
		UPDATE printers SET occupied = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND occupied = 0
	`

	ReleasePrinterOccupancy = `
		UPDATE printers SET occupied = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND occupied = 1
	`

	DeletePrinter = `DELETE FROM printers WHERE id = ?`

	ListCompatibleFilamentIDs = `
		SELECT filament_id FROM printer_filaments WHERE printer_id = ? ORDER BY filament_id ASC
	`

	ListAllCompatibleFilamentIDs = `
		SELECT printer_id, filament_id FROM printer_filaments ORDER BY printer_id ASC, filament_id ASC
	`

	ClearCompatibleFilaments = `DELETE FROM printer_filaments WHERE printer_id = ?`

	InsertCompatibleFilament = `
		INSERT INTO printer_filaments (printer_id, filament_id) VALUES (?, ?)
	`
)

const (
	InsertFilament = `
		INSERT INTO filaments (brand, material, color, diameter_mm, weight_grams)
		VALUES (?, ?, ?, ?, ?)
	`

	GetFilamentByID = `
		SELECT id, brand, material, color, diameter_mm, weight_grams, created_at, updated_at
		FROM filaments WHERE id = ?
	`

	ListFilaments = `
		SELECT id, brand, material, color, diameter_mm, weight_grams, created_at, updated_at
		FROM filaments ORDER BY brand ASC, material ASC, color ASC, id ASC
	`

	UpdateFilament = `
		UPDATE filaments SET
			brand = ?, material = ?, color = ?, diameter_mm = ?, weight_grams = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	AdjustFilamentWeight = `
		UPDATE filaments SET weight_grams = MAX(weight_grams + ?, 0), updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	DeleteFilament = `DELETE FROM filaments WHERE id = ?`
)

const (
	InsertJob = `
		INSERT INTO print_jobs (
			name, artifact_link, duration_minutes, status, printer_id, filament_id,
			estimated_usage_grams, created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	jobColumns = `
		id, name, artifact_link, duration_minutes, status, printer_id, filament_id,
		estimated_usage_grams, actual_usage_grams, created_by, created_at, started_at, completed_at
	`

	GetJobByID = `SELECT ` + jobColumns + ` FROM print_jobs WHERE id = ?`

	ListJobsByStatus = `SELECT ` + jobColumns + ` FROM print_jobs WHERE status = ? ORDER BY started_at ASC, id ASC`

	// Guarded transitions: zero rows affected means the job left the source
	// state before the write landed.
	MarkJobPrinting = `
		UPDATE print_jobs SET status = 'printing', started_at = ?, completed_at = NULL
		WHERE id = ? AND status = 'pending'
	`

	FinishJob = `
		UPDATE print_jobs SET
			status = ?,
			completed_at = COALESCE(completed_at, ?),
			actual_usage_grams = COALESCE(?, actual_usage_grams)
		WHERE id = ? AND status = ?
	`

	RestartJob = `
		UPDATE print_jobs SET
			status = 'pending', started_at = NULL, completed_at = NULL, actual_usage_grams = NULL
		WHERE id = ? AND status = 'failed'
	`

	DeleteJob = `DELETE FROM print_jobs WHERE id = ?`

	CountActiveJobsByPrinter = `
		SELECT COUNT(*) FROM print_jobs WHERE printer_id = ? AND status IN ('pending', 'printing')
	`

	CountPrintingJobsByFilament = `
		SELECT COUNT(*) FROM print_jobs WHERE filament_id = ? AND status = 'printing'
	`

	SumPendingEstimateByFilament = `
		SELECT COALESCE(SUM(estimated_usage_grams), 0) FROM print_jobs
		WHERE filament_id = ? AND status = 'pending'
	`

	CountJobsGroupedByStatus = `SELECT status, COUNT(*) FROM print_jobs GROUP BY status`
)

const (
	InsertUser = `
		INSERT INTO users (uuid, name, email, password_hash, rank, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	userColumns = `id, uuid, name, email, password_hash, rank, status, created_at, updated_at`

	GetUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	GetUserByUUID = `SELECT ` + userColumns + ` FROM users WHERE uuid = ?`

	GetUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	ListUsers = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`

	UpdateUserRankStatus = `
		UPDATE users SET rank = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`

	ListUserNames = `SELECT id, name FROM users`
)

const (
	InsertFilamentUsage = `
		INSERT INTO filament_usage (filament_id, job_id, requested_grams, deducted_grams, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	ListFilamentUsage = `
		SELECT id, filament_id, job_id, requested_grams, deducted_grams, reason, created_at
		FROM filament_usage WHERE filament_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?
	`
)

const (
	GetSetting = `SELECT value, encrypted, updated_at FROM settings WHERE key = ?`

	SetSetting = `
		INSERT INTO settings (key, value, encrypted, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = ?, encrypted = ?, updated_at = CURRENT_TIMESTAMP
	`

	// InsertSettingIfAbsent keeps the first writer's value.
	InsertSettingIfAbsent = `
		INSERT INTO settings (key, value, encrypted) VALUES (?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`

	DeleteSetting = `DELETE FROM settings WHERE key = ?`

	ListSettings = `SELECT key, value, encrypted, updated_at FROM settings ORDER BY key ASC`
)

const (
	InsertAuditLog = `
		INSERT INTO audit_log (action, entity_type, entity_id, actor_id, details_json, ip_address)
		VALUES (?, ?, ?, ?, ?, ?)
	`
)
