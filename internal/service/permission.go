package service

import (
	"context"
	"transaction_system/internal/domain"
	"transaction_system/internal/store"
)

// PermissionGate decides whether a user may mutate transactions
type PermissionGate interface {
	CanWrite(ctx context.Context, userID string) (bool, error)
}

// RoleGate grants write access to a single write-capable role. It does not
// consult the advisory permission strings on the user record.
type RoleGate struct {
	users store.UserStore
	role  domain.UserRole
}

// NewRoleGate creates a gate that grants writes to admins only
func NewRoleGate(users store.UserStore) *RoleGate {
	return &RoleGate{users: users, role: domain.RoleAdmin}
}

// CanWrite reports whether the user holds the write-capable role.
// A missing user surfaces as ErrNotFound rather than a plain denial.
func (g *RoleGate) CanWrite(ctx context.Context, userID string) (bool, error) {
	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Role == g.role, nil
}
