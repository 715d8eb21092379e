package server

import (
	"testing"

	"familyhub/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicy(t *testing.T) {
	policy, err := NewPolicy(&types.Config{
		ContributionRoles: []string{"Admin", " treasurer ", "admin", ""},
		EventRoles:        []string{"secretary"},
	})
	require.NoError(t, err)

	assert.Equal(t, []types.Role{types.RoleAdmin, types.RoleTreasurer}, policy[entityContributions])
	assert.Empty(t, policy[entityDocuments])

	_, err = NewPolicy(&types.Config{DocumentRoles: []string{"admin", "janitor"}})
	assert.ErrorContains(t, err, `unknown role "janitor"`)
}

func TestAuthorize(t *testing.T) {
	policy := Policy{entityEvents: {types.RoleAdmin, types.RoleSecretary}}

	assert.ErrorIs(t, policy.Authorize(nil, entityEvents), types.ErrUnauthenticated)
	assert.NoError(t, policy.Authorize(&types.Actor{UserID: "s", Role: types.RoleSecretary}, entityEvents))
	assert.ErrorIs(t, policy.Authorize(&types.Actor{UserID: "t", Role: types.RoleTreasurer}, entityEvents), types.ErrForbidden)
	assert.ErrorIs(t, policy.Authorize(&types.Actor{UserID: "a", Role: types.RoleAdmin}, entityMembers), types.ErrForbidden)
}
