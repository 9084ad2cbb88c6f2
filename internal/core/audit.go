package core

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/orrn/printq/internal/db"
)

// AuditTrail writes and reads the audit log.
type AuditTrail struct {
	store  *db.Store
	logger *zap.Logger
}

func NewAuditTrail(store *db.Store, logger *zap.Logger) *AuditTrail {
	return &AuditTrail{store: store, logger: logger.Named("audit")}
}

// record appends an entry through tx. A failed write is logged and does not
// abort the surrounding operation.
func (a *AuditTrail) record(ctx context.Context, tx *db.Store, caller Caller, action, entityType string, entityID int64, details map[string]any) {
	payload := "{}"
	if len(details) > 0 {
		data, err := json.Marshal(details)
		if err != nil {
			a.logger.Warn("failed to encode audit details", zap.String("action", action), zap.Error(err))
		} else {
			payload = string(data)
		}
	}

	entry := &db.AuditLog{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		ActorID:     caller.UserID,
		DetailsJSON: payload,
		IPAddress:   caller.RemoteAddr,
	}
	if err := tx.Audit.CreateAuditLog(ctx, entry); err != nil {
		a.logger.Warn("failed to write audit log",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.Int64("entity_id", entityID),
			zap.Error(err))
	}
}

type AuditQuery struct {
	Action     string
	EntityType string
	EntityID   int64
	ActorID    int64
	Limit      int
	Offset     int
}

func (a *AuditTrail) List(ctx context.Context, caller Caller, q AuditQuery) ([]*db.AuditLog, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	logs, err := a.store.Audit.ListAuditLogs(ctx, db.AuditFilter{
		Action:     q.Action,
		EntityType: q.EntityType,
		EntityID:   q.EntityID,
		ActorID:    q.ActorID,
	}, limit, offset)
	if err != nil {
		return nil, storageErr(err)
	}
	if logs == nil {
		logs = []*db.AuditLog{}
	}
	return logs, nil
}
