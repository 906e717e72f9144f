package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Area is an organizational unit that owns requests and funds
type Area struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a *Area) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// User represents the central user entity for logic and database structure
type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	LastName   string         `gorm:"type:varchar(255)" json:"last_name"`
	Email      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role       RoleName       `gorm:"type:varchar(50);not null" json:"role"`
	Position   string         `gorm:"type:varchar(255)" json:"position"`
	AreaID     *uuid.UUID     `gorm:"type:uuid;index" json:"area_id"`
	Area       *Area          `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	AreaLeadID *uuid.UUID     `gorm:"type:uuid;index" json:"area_lead_id"` // the jefe_area this user reports to
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName joins name and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.LastName)
}
