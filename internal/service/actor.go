package service

import (
	"time"

	"cajachica/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated user on whose behalf an operation runs
type Actor struct {
	ID   uuid.UUID
	Role model.RoleName
}

func (a Actor) Tier() model.Tier {
	return a.Role.Tier()
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == model.RoleSuperAdmin
}

// Clock supplies timestamps for history rows and fund dates
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock
func SystemClock() Clock { return systemClock{} }
