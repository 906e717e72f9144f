package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleName is the closed set of role identifiers stored on users
type RoleName string

const (
	RoleSuperAdmin     RoleName = "super_admin"
	RoleGeneralManager RoleName = "gerente_general"
	RoleAdminHead      RoleName = "jefe_administracion"
	RoleAreaHead       RoleName = "jefe_area"
	RoleCollaborator   RoleName = "colaborador"
)

// AllRoles lists every known role, in seeding order
var AllRoles = []RoleName{RoleSuperAdmin, RoleGeneralManager, RoleAdminHead, RoleAreaHead, RoleCollaborator}

// Tier is the authority level a role carries in the approval workflow
type Tier int

const (
	TierNone Tier = iota
	TierArea
	TierAdmin
	TierManager
	TierSuperAdmin
)

func (t Tier) String() string {
	switch t {
	case TierArea:
		return "area"
	case TierAdmin:
		return "admin"
	case TierManager:
		return "manager"
	case TierSuperAdmin:
		return "super_admin"
	default:
		return "none"
	}
}

// Tier maps a role to its authority tier. Unknown roles carry no rights.
func (r RoleName) Tier() Tier {
	switch r {
	case RoleSuperAdmin:
		return TierSuperAdmin
	case RoleGeneralManager:
		return TierManager
	case RoleAdminHead:
		return TierAdmin
	case RoleAreaHead, RoleCollaborator:
		return TierArea
	default:
		return TierNone
	}
}

// IsAdminOrSuper reports whether the role reviews at the admin tier
func (r RoleName) IsAdminOrSuper() bool {
	t := r.Tier()
	return t == TierAdmin || t == TierSuperAdmin
}

func (r RoleName) Valid() bool {
	return r.Tier() != TierNone
}

// Role is the catalogue entry for a role name
type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        RoleName  `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	DisplayName string    `gorm:"type:varchar(100);not null" json:"display_name"`
	Description string    `gorm:"type:text" json:"description"`
	IsSystem    bool      `gorm:"default:false" json:"is_system"` // Prevent deletion of built-in roles
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
