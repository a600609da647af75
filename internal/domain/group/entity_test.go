package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroup(t *testing.T) *Group {
	t.Helper()

	g, err := NewGroup(NewGroupParams{
		ID:      "group-1",
		Name:    "Четверговые настолки",
		OwnerID: "alice",
	})
	require.NoError(t, err)
	return g
}

func TestNewGroup_OwnerBecomesAdmin(t *testing.T) {
	g := newTestGroup(t)

	assert.True(t, g.IsMember("alice"))
	assert.True(t, g.IsAdmin("alice"))
	assert.Equal(t, 1, g.MemberCount())
}

func TestNewGroup_Validation(t *testing.T) {
	_, err := NewGroup(NewGroupParams{ID: "g", Name: "", OwnerID: "alice"})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NewGroup(NewGroupParams{ID: "g", Name: "ok", OwnerID: ""})
	assert.Error(t, err)
}

func TestGroup_AddMember(t *testing.T) {
	g := newTestGroup(t)

	require.NoError(t, g.AddMember("bob", RoleMember))
	assert.True(t, g.IsMember("bob"))
	assert.False(t, g.IsAdmin("bob"))

	assert.ErrorIs(t, g.AddMember("bob", RoleMember), ErrAlreadyMember)
	assert.ErrorIs(t, g.AddMember("carol", Role("owner")), ErrInvalidRole)
}

func TestGroup_RemoveMember_LastAdmin(t *testing.T) {
	g := newTestGroup(t)
	require.NoError(t, g.AddMember("bob", RoleMember))

	// Единственный админ не может уйти, пока в группе есть другие
	assert.ErrorIs(t, g.RemoveMember("alice"), ErrLastAdmin)

	require.NoError(t, g.ChangeRole("bob", RoleAdmin))
	require.NoError(t, g.RemoveMember("alice"))
	assert.False(t, g.IsMember("alice"))
}

func TestGroup_RemoveMember_SoleMemberMayLeave(t *testing.T) {
	g := newTestGroup(t)

	require.NoError(t, g.RemoveMember("alice"))
	assert.Equal(t, 0, g.MemberCount())
}

func TestGroup_ChangeRole_LastAdminDemotion(t *testing.T) {
	g := newTestGroup(t)
	require.NoError(t, g.AddMember("bob", RoleMember))

	assert.ErrorIs(t, g.ChangeRole("alice", RoleMember), ErrLastAdmin)
	assert.ErrorIs(t, g.ChangeRole("mallory", RoleAdmin), ErrNotMember)
}

func TestGroup_ContainsAll(t *testing.T) {
	g := newTestGroup(t)
	require.NoError(t, g.AddMember("bob", RoleMember))

	assert.True(t, g.ContainsAll([]string{"alice", "bob"}))
	assert.False(t, g.ContainsAll([]string{"alice", "mallory"}))
}

func TestGroup_Delete(t *testing.T) {
	g := newTestGroup(t)

	require.NoError(t, g.Delete())
	assert.ErrorIs(t, g.Delete(), ErrGroupDeleted)
	assert.ErrorIs(t, g.AddMember("bob", RoleMember), ErrGroupDeleted)
}

func TestGroup_Clone_IsIndependent(t *testing.T) {
	g := newTestGroup(t)
	clone := g.Clone()

	require.NoError(t, clone.AddMember("bob", RoleMember))
	assert.False(t, g.IsMember("bob"))
}
