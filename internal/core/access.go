package core

import (
	"fmt"
)

type CallerKind string

const (
	CallerAnonymous CallerKind = "anonymous"
	CallerUser      CallerKind = "user"
	CallerAdmin     CallerKind = "admin"
)

const (
	UserStatusPending  = "pending"
	UserStatusApproved = "approved"
	UserStatusRejected = "rejected"

	RankUser  = "user"
	RankAdmin = "admin"
)

// Caller is the identity every core operation is evaluated against.
type Caller struct {
	Kind       CallerKind
	UserID     int64
	Status     string
	RemoteAddr string
}

func Anonymous(remoteAddr string) Caller {
	return Caller{Kind: CallerAnonymous, RemoteAddr: remoteAddr}
}

func (c Caller) IsAdmin() bool {
	return c.Kind == CallerAdmin
}

func (c Caller) IsAuthenticated() bool {
	return c.Kind == CallerUser || c.Kind == CallerAdmin
}

// RequireApproved admits admins and users whose account was approved.
func (c Caller) RequireApproved() error {
	switch {
	case c.Kind == CallerAdmin:
		return nil
	case c.Kind == CallerUser && c.Status == UserStatusApproved:
		return nil
	case c.Kind == CallerUser:
		return fmt.Errorf("%w: account is %s", ErrForbidden, c.Status)
	default:
		return fmt.Errorf("%w: login required", ErrUnauthorized)
	}
}

func (c Caller) RequireAdmin() error {
	switch c.Kind {
	case CallerAdmin:
		return nil
	case CallerUser:
		return ErrForbidden
	default:
		return fmt.Errorf("%w: login required", ErrUnauthorized)
	}
}

// RequireOwnerOrAdmin admits admins and the approved user identified by ownerID.
func (c Caller) RequireOwnerOrAdmin(ownerID int64) error {
	if err := c.RequireApproved(); err != nil {
		return err
	}
	if c.IsAdmin() || c.UserID == ownerID {
		return nil
	}
	return ErrForbidden
}
