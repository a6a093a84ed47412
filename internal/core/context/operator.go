// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"granel/internal/core/id"
)

// Role is the access level of the operator performing an operation.
// The surrounding auth layer validates it; the core only propagates it.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSeller  Role = "seller"
)

// OperatorContext carries the already-authenticated operator identity.
// Branch-scoped operators (manager, seller) have BranchID set; admins
// may act across branches.
type OperatorContext struct {
	OperatorID id.ID
	BranchID   *id.ID
	Name       string
	Role       Role
}

type operatorContextKey struct{}

// WithOperator adds OperatorContext to context.
func WithOperator(ctx context.Context, op *OperatorContext) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// GetOperator returns OperatorContext from context.
func GetOperator(ctx context.Context) *OperatorContext {
	if v, ok := ctx.Value(operatorContextKey{}).(*OperatorContext); ok {
		return v
	}
	return nil
}

// GetOperatorID returns the operator ID from context, or nil UUID.
func GetOperatorID(ctx context.Context) id.ID {
	if op := GetOperator(ctx); op != nil {
		return op.OperatorID
	}
	return id.Nil()
}

// GetBranchID returns the operator's branch from context, or nil.
func GetBranchID(ctx context.Context) *id.ID {
	if op := GetOperator(ctx); op != nil {
		return op.BranchID
	}
	return nil
}

// HasRole checks if the operator has the given role.
func HasRole(ctx context.Context, role Role) bool {
	op := GetOperator(ctx)
	return op != nil && op.Role == role
}

// CanActOnBranch reports whether the operator may mutate data belonging
// to the given branch. Admins always can; others only their own branch.
func CanActOnBranch(ctx context.Context, branchID id.ID) bool {
	op := GetOperator(ctx)
	if op == nil {
		return false
	}
	if op.Role == RoleAdmin {
		return true
	}
	return op.BranchID != nil && *op.BranchID == branchID
}
