package testutil

import (
	"fmt"
	"testing"

	"cajachica/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateArea inserts an area with the given name
func CreateArea(t *testing.T, db *gorm.DB, name string) *model.Area {
	t.Helper()
	area := &model.Area{Name: name}
	require.NoError(t, db.Create(area).Error)
	return area
}

// CreateUser inserts a user with the given role, optionally inside an area
func CreateUser(t *testing.T, db *gorm.DB, role model.RoleName, name string, area *model.Area) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		LastName: "Test",
		Email:    fmt.Sprintf("%s.%s@cajachica.test", name, uuid.NewString()[:8]),
		Password: "x",
		Role:     role,
	}
	if area != nil {
		user.AreaID = &area.ID
	}
	require.NoError(t, db.Omit("Area").Create(user).Error)
	return user
}
