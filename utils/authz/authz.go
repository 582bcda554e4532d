// Package authz resolves whether an acting identity may perform an
// operation on an entity. Policies are boolean predicate trees built
// from ownership and group-membership checks; evaluation is pure and
// never touches the database.
package authz

import (
	"errors"

	"github.com/alexsergeyev/skillforge/model"
)

// ErrNoIdentity is returned when a policy is evaluated without an
// acting identity. This is malformed input, not a business DENY:
// protected routes must authenticate before consulting a policy.
var ErrNoIdentity = errors.New("authz: missing acting identity")

// Action is an operation on an entity.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Context is the evaluation input: who acts, what they do, and the
// owner of the target entity. OwnerID is nil for collection-level
// operations (create, list) and for ownerless rows.
type Context struct {
	User    *model.User
	Action  Action
	OwnerID *uint
}

// Predicate is a single authorization rule.
type Predicate interface {
	Allow(ctx Context) bool
}

// PredicateFunc adapts a function to the Predicate interface.
type PredicateFunc func(ctx Context) bool

func (f PredicateFunc) Allow(ctx Context) bool { return f(ctx) }

// And allows only when every predicate allows.
func And(preds ...Predicate) Predicate {
	return PredicateFunc(func(ctx Context) bool {
		for _, p := range preds {
			if !p.Allow(ctx) {
				return false
			}
		}
		return true
	})
}

// Or allows when at least one predicate allows.
func Or(preds ...Predicate) Predicate {
	return PredicateFunc(func(ctx Context) bool {
		for _, p := range preds {
			if p.Allow(ctx) {
				return true
			}
		}
		return false
	})
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return PredicateFunc(func(ctx Context) bool {
		return !p.Allow(ctx)
	})
}

// Authenticated allows any active identity.
var Authenticated = PredicateFunc(func(ctx Context) bool {
	return ctx.User != nil && ctx.User.IsActive
})

// Moderator allows members of the moderators group.
var Moderator = PredicateFunc(func(ctx Context) bool {
	return ctx.User != nil && ctx.User.IsModerator()
})

// ObjectOwner allows the user referenced by the entity's owner key.
var ObjectOwner = PredicateFunc(func(ctx Context) bool {
	return ctx.User != nil && ctx.OwnerID != nil && *ctx.OwnerID == ctx.User.ID
})

// MaterialPolicy is the per-action rule set shared by courses and
// lessons. Moderators may read and update everything but never create
// or delete material.
var MaterialPolicy = map[Action]Predicate{
	ActionCreate: And(Authenticated, Not(Moderator)),
	ActionRead:   Authenticated,
	ActionUpdate: And(Authenticated, Or(Moderator, ObjectOwner)),
	ActionDelete: And(Authenticated, ObjectOwner),
}

// CanMaterial evaluates the material policy. ownerID carries the
// target entity's owner for object-level actions and is nil otherwise.
func CanMaterial(user *model.User, action Action, ownerID *uint) (bool, error) {
	if user == nil {
		return false, ErrNoIdentity
	}
	policy, ok := MaterialPolicy[action]
	if !ok {
		return false, nil
	}
	return policy.Allow(Context{User: user, Action: action, OwnerID: ownerID}), nil
}

// SeesAllRows reports whether list results should be left unscoped for
// this user. Moderators and staff see every row; everyone else only
// their own.
func SeesAllRows(user *model.User) bool {
	if user == nil {
		return false
	}
	return user.IsModerator() || user.IsStaff || user.IsSuperuser
}
