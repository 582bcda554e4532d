package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexsergeyev/skillforge/model"
)

func uintPtr(v uint) *uint { return &v }

func regularUser(id uint) *model.User {
	return &model.User{ID: id, IsActive: true}
}

func moderator(id uint) *model.User {
	return &model.User{
		ID:       id,
		IsActive: true,
		Groups:   []model.Group{{Name: model.ModeratorGroupName}},
	}
}

func TestCombinators(t *testing.T) {
	yes := PredicateFunc(func(Context) bool { return true })
	no := PredicateFunc(func(Context) bool { return false })

	ctx := Context{}

	assert.True(t, And(yes, yes).Allow(ctx))
	assert.False(t, And(yes, no).Allow(ctx))
	assert.True(t, And().Allow(ctx))

	assert.True(t, Or(no, yes).Allow(ctx))
	assert.False(t, Or(no, no).Allow(ctx))
	assert.False(t, Or().Allow(ctx))

	assert.True(t, Not(no).Allow(ctx))
	assert.False(t, Not(yes).Allow(ctx))

	assert.True(t, And(yes, Or(no, Not(no))).Allow(ctx))
}

func TestMaterialPolicyTable(t *testing.T) {
	owner := regularUser(1)
	other := regularUser(2)
	mod := moderator(3)

	ownedBy1 := uintPtr(1)

	tests := []struct {
		name    string
		user    *model.User
		action  Action
		ownerID *uint
		allowed bool
	}{
		{"owner creates", owner, ActionCreate, nil, true},
		{"moderator cannot create", mod, ActionCreate, nil, false},
		{"owner reads", owner, ActionRead, ownedBy1, true},
		{"other user reads", other, ActionRead, ownedBy1, true},
		{"moderator reads", mod, ActionRead, ownedBy1, true},
		{"owner updates", owner, ActionUpdate, ownedBy1, true},
		{"moderator updates foreign object", mod, ActionUpdate, ownedBy1, true},
		{"other user cannot update", other, ActionUpdate, ownedBy1, false},
		{"owner deletes", owner, ActionDelete, ownedBy1, true},
		{"moderator cannot delete", mod, ActionDelete, ownedBy1, false},
		{"other user cannot delete", other, ActionDelete, ownedBy1, false},
		{"ownerless row cannot be deleted by anyone", owner, ActionDelete, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := CanMaterial(tt.user, tt.action, tt.ownerID)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestInactiveUserIsDenied(t *testing.T) {
	u := regularUser(1)
	u.IsActive = false

	for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
		allowed, err := CanMaterial(u, action, uintPtr(1))
		require.NoError(t, err)
		assert.False(t, allowed, "inactive user allowed to %s", action)
	}
}

func TestMissingIdentity(t *testing.T) {
	_, err := CanMaterial(nil, ActionRead, nil)
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestSeesAllRows(t *testing.T) {
	assert.True(t, SeesAllRows(moderator(1)))
	assert.False(t, SeesAllRows(regularUser(1)))
	assert.False(t, SeesAllRows(nil))

	staff := regularUser(2)
	staff.IsStaff = true
	assert.True(t, SeesAllRows(staff))

	admin := regularUser(3)
	admin.IsSuperuser = true
	assert.True(t, SeesAllRows(admin))
}

func TestUnknownActionDenied(t *testing.T) {
	allowed, err := CanMaterial(regularUser(1), Action("publish"), nil)
	require.NoError(t, err)
	assert.False(t, allowed)
}
