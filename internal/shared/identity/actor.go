// Package identity carries the authenticated caller across bounded contexts.
package identity

import "context"

// Role is the authorization level of a caller.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Actor is the caller a use case runs on behalf of.
type Actor struct {
	UserID string
	Name   string
	Email  string
	Phone  string
	Role   Role
}

// IsAdmin reports whether the actor holds the elevated role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanAccess reports whether the actor owns a resource or is an admin.
func (a Actor) CanAccess(ownerID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == ownerID)
}

type actorKey struct{}

// WithActor stores the actor on ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// FromContext returns the actor stored by WithActor.
func FromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
