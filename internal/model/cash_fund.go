package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FundState string

const (
	FundActive FundState = "Activo"
	FundClosed FundState = "Cerrado"
)

// CashFund (fondo de efectivo) is the live petty-cash balance created from an
// approved Opening request. At most one fund exists per opening request.
type CashFund struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code              string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	ApprovedAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"approved_amount"`
	OpeningDate       time.Time       `gorm:"not null" json:"opening_date"`
	State             FundState       `gorm:"type:varchar(20);not null;default:'Activo';index" json:"state"`
	ClosureDate       *time.Time      `json:"closure_date"`
	ClosureReason     *string         `gorm:"type:text" json:"closure_reason"`
	OpeningRequestID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"opening_request_id"`
	ResponsibleUserID uuid.UUID       `gorm:"type:uuid;not null;index" json:"responsible_user_id"`
	ResponsibleUser   *User           `gorm:"foreignKey:ResponsibleUserID" json:"responsible_user,omitempty"`
	AreaID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"area_id"`
	Area              *Area           `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (f *CashFund) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (f *CashFund) IsActive() bool {
	return f.State == FundActive
}
