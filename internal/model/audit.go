package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionSubmitFundRequest     = "SUBMIT_FUND_REQUEST"
	ActionTransitionFundRequest = "TRANSITION_FUND_REQUEST"
	ActionDeleteFundRequest     = "DELETE_FUND_REQUEST"

	// Fund lifecycle actions
	ActionCreateCashFund = "CREATE_CASH_FUND"
	ActionUpdateCashFund = "UPDATE_CASH_FUND"
	ActionCloseCashFund  = "CLOSE_CASH_FUND"
	ActionDeleteCashFund = "DELETE_CASH_FUND"
)

// AuditLog tracks Who, What, and When for every workflow and fund change
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"` // nil for system actions
	User       *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string         `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string         `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // request or fund code
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
