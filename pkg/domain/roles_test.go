package domain_test

import (
	"testing"

	"github.com/aretw0/act/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoles_Table(t *testing.T) {
	roles := domain.Roles()
	assert.Len(t, roles, 55)
	assert.Equal(t, domain.RoleHips, roles[0])
	assert.Equal(t, domain.RoleUpperChest, roles[len(roles)-1])

	for _, r := range roles {
		parsed, err := domain.ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
}

func TestRoles_Metadata(t *testing.T) {
	assert.True(t, domain.RoleLeftHand.IsHand())
	assert.True(t, domain.RoleRightHand.IsHand())
	assert.False(t, domain.RoleLeftIndexProximal.IsHand())
	assert.True(t, domain.RoleLeftIndexProximal.Info().Finger)
	assert.Equal(t, domain.SideRight, domain.RoleRightFoot.Info().Side)
	assert.Equal(t, domain.SideCenter, domain.RoleHead.Info().Side)
	assert.False(t, domain.HumanRole(200).Valid())
	assert.Equal(t, "HumanRole(200)", domain.HumanRole(200).String())
}

func TestRoles_Text(t *testing.T) {
	text, err := domain.RoleChest.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Chest", string(text))

	var r domain.HumanRole
	require.NoError(t, r.UnmarshalText([]byte("LeftToes")))
	assert.Equal(t, domain.RoleLeftToes, r)

	assert.Error(t, r.UnmarshalText([]byte("Tail")))
	_, err = domain.ParseRole("Tail")
	assert.Error(t, err)
}
