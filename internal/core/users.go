package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/orrn/printq/internal/db"
)

var emailPattern = regexp.MustCompile(`^[\w.+-]+@([\w-]+\.)+[\w-]{2,}$`)

const (
	minNameLength     = 3
	maxNameLength     = 50
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

type UserAction string

const (
	ActionApprove     UserAction = "approve"
	ActionReject      UserAction = "reject"
	ActionMakeAdmin   UserAction = "makeAdmin"
	ActionRevokeAdmin UserAction = "revokeAdmin"
)

type Registration struct {
	Name     string
	Email    string
	Password string
}

type UserDirectory struct {
	store      *db.Store
	audit      *AuditTrail
	logger     *zap.Logger
	bcryptCost int
}

func NewUserDirectory(store *db.Store, audit *AuditTrail, logger *zap.Logger, bcryptCost int) *UserDirectory {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserDirectory{
		store:      store,
		audit:      audit,
		logger:     logger.Named("users"),
		bcryptCost: bcryptCost,
	}
}

// Register creates a pending account that an admin has to approve before it
// can log in.
func (d *UserDirectory) Register(ctx context.Context, caller Caller, reg Registration) (*db.User, error) {
	name := strings.TrimSpace(reg.Name)
	email := strings.ToLower(strings.TrimSpace(reg.Email))

	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		return nil, validationf("name must be between %d and %d characters", minNameLength, maxNameLength)
	}
	if !emailPattern.MatchString(email) {
		return nil, validationf("email address is not valid")
	}
	if len(reg.Password) < minPasswordLength {
		return nil, validationf("password must be at least %d characters", minPasswordLength)
	}
	if len(reg.Password) > maxPasswordBytes {
		return nil, validationf("password must be at most %d bytes", maxPasswordBytes)
	}

	return d.create(ctx, caller, name, email, reg.Password, RankUser, UserStatusPending)
}

func (d *UserDirectory) create(ctx context.Context, caller Caller, name, email, password, rank, status string) (*db.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &db.User{
		UUID:         uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Rank:         rank,
		Status:       status,
	}

	err = d.store.InTx(ctx, func(tx *db.Store) error {
		if err := tx.Users.CreateUser(ctx, u); err != nil {
			if db.IsUniqueViolation(err) {
				return conflictf("email %s is already registered", email)
			}
			return err
		}
		d.audit.record(ctx, tx, caller, "user.register", "user", u.ID, map[string]any{
			"rank":   rank,
			"status": status,
		})
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	d.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("rank", rank), zap.String("status", status))
	return u, nil
}

// Authenticate checks credentials. Only approved accounts may log in.
func (d *UserDirectory) Authenticate(ctx context.Context, email, password string) (*db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := d.store.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err != nil {
		return nil, storageErr(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if u.Status != UserStatusApproved {
		return nil, fmt.Errorf("%w: account is %s", ErrUnauthorized, u.Status)
	}
	return u, nil
}

func (d *UserDirectory) ByUUID(ctx context.Context, id string) (*db.User, error) {
	u, err := d.store.Users.GetUserByUUID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return u, nil
}

func (d *UserDirectory) List(ctx context.Context, caller Caller) ([]*db.User, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	users, err := d.store.Users.ListUsers(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	if users == nil {
		users = []*db.User{}
	}
	return users, nil
}

// ApplyAction moderates an account. Admins cannot revoke their own rank.
func (d *UserDirectory) ApplyAction(ctx context.Context, caller Caller, userID int64, action UserAction) (*db.User, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}

	var u *db.User
	err := d.store.InTx(ctx, func(tx *db.Store) error {
		var err error
		u, err = tx.Users.GetUserByID(ctx, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("user", userID)
		}
		if err != nil {
			return err
		}

		switch action {
		case ActionApprove:
			u.Status = UserStatusApproved
		case ActionReject:
			if u.ID == caller.UserID {
				return conflictf("admins cannot reject their own account")
			}
			u.Status = UserStatusRejected
		case ActionMakeAdmin:
			u.Rank = RankAdmin
			u.Status = UserStatusApproved
		case ActionRevokeAdmin:
			if u.ID == caller.UserID {
				return conflictf("admins cannot revoke their own rank")
			}
			u.Rank = RankUser
		default:
			return validationf("unknown action %q", action)
		}

		if err := tx.Users.UpdateRankStatus(ctx, u.ID, u.Rank, u.Status); err != nil {
			return err
		}
		d.audit.record(ctx, tx, caller, "user."+string(action), "user", u.ID, map[string]any{
			"rank":   u.Rank,
			"status": u.Status,
		})
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	d.logger.Info("user moderated", zap.Int64("user_id", u.ID), zap.String("action", string(action)))
	return u, nil
}

// EnsureAdmin creates the configured bootstrap admin, or promotes the
// existing account with that email.
func (d *UserDirectory) EnsureAdmin(ctx context.Context, name, email, password string) (*db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name = strings.TrimSpace(name); name == "" {
		name = "Administrator"
	}
	system := Caller{Kind: CallerAdmin}

	existing, err := d.store.Users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return d.create(ctx, system, name, email, password, RankAdmin, UserStatusApproved)
	case err != nil:
		return nil, storageErr(err)
	}

	if existing.Rank == RankAdmin && existing.Status == UserStatusApproved {
		return existing, nil
	}
	if err := d.store.Users.UpdateRankStatus(ctx, existing.ID, RankAdmin, UserStatusApproved); err != nil {
		return nil, storageErr(err)
	}
	existing.Rank = RankAdmin
	existing.Status = UserStatusApproved
	d.logger.Info("bootstrap admin promoted", zap.Int64("user_id", existing.ID))
	return existing, nil
}

// CallerFor maps a stored account to the identity core operations check.
// Admin rank only counts while the account is approved.
func CallerFor(u *db.User, remoteAddr string) Caller {
	if u == nil {
		return Anonymous(remoteAddr)
	}
	kind := CallerUser
	if u.Rank == RankAdmin && u.Status == UserStatusApproved {
		kind = CallerAdmin
	}
	return Caller{Kind: kind, UserID: u.ID, Status: u.Status, RemoteAddr: remoteAddr}
}
