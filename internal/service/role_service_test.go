package service

import (
	"context"
	"testing"

	"cajachica/internal/model"
	"cajachica/internal/repository"
	"cajachica/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleServiceListRoles(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	roles := repository.NewRoleRepository(db)
	require.NoError(t, roles.Upsert(ctx, &model.Role{Name: model.RoleGeneralManager, DisplayName: "Gerente General", IsSystem: true}))
	require.NoError(t, roles.Upsert(ctx, &model.Role{Name: model.RoleAdminHead, DisplayName: "Jefe de Administración", IsSystem: true}))

	list, err := NewRoleService(roles).ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byName := map[string]RoleResponse{}
	for _, r := range list {
		byName[r.Name] = r
	}
	assert.Equal(t, "manager", byName[string(model.RoleGeneralManager)].Tier)
	assert.Equal(t, "admin", byName[string(model.RoleAdminHead)].Tier)
	assert.True(t, byName[string(model.RoleAdminHead)].IsSystem)
}
