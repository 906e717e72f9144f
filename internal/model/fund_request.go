package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RequestType is what a fund request asks to do with a cash fund
type RequestType string

const (
	RequestOpening  RequestType = "Apertura"
	RequestIncrease RequestType = "Incremento"
	RequestDecrease RequestType = "Decremento"
	RequestClosure  RequestType = "Cierre"
)

func (t RequestType) Valid() bool {
	switch t {
	case RequestOpening, RequestIncrease, RequestDecrease, RequestClosure:
		return true
	}
	return false
}

// IsModification reports whether the request targets an existing fund
func (t RequestType) IsModification() bool {
	return t == RequestIncrease || t == RequestDecrease || t == RequestClosure
}

// ReducesFund is true for Decrease and Closure, the types routed by requester tier
func (t RequestType) ReducesFund() bool {
	return t == RequestDecrease || t == RequestClosure
}

// HasExpenseLines reports whether projected expense lines are required
func (t RequestType) HasExpenseLines() bool {
	return t != RequestClosure
}

type Priority string

const (
	PriorityLow    Priority = "Baja"
	PriorityMedium Priority = "Media"
	PriorityHigh   Priority = "Alta"
	PriorityUrgent Priority = "Urgente"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// RequestState labels are stored verbatim in fund_requests.state and in history rows.
type RequestState string

const (
	StateCreated                    RequestState = "Creada" // history only
	StatePendingAdminApproval       RequestState = "Pendiente Aprobación ADM"
	StateObservedByAdmin            RequestState = "Observada ADM"
	StateRebuttalSubmittedToAdmin   RequestState = "Descargo Enviado ADM"
	StateApprovedByAdmin            RequestState = "Aprobada ADM" // milestone, routed onward at once
	StatePendingManagerApproval     RequestState = "Pendiente Aprobación GRTE"
	StateObservedByManager          RequestState = "Observada GRTE"
	StateRebuttalSubmittedToManager RequestState = "Descargo Enviado GRTE"
	StateApproved                   RequestState = "Aprobada"
	StateFinalRejected              RequestState = "Rechazada Final"
)

// AllStates lists every label in workflow order
var AllStates = []RequestState{
	StateCreated,
	StatePendingAdminApproval,
	StateObservedByAdmin,
	StateRebuttalSubmittedToAdmin,
	StateApprovedByAdmin,
	StatePendingManagerApproval,
	StateObservedByManager,
	StateRebuttalSubmittedToManager,
	StateApproved,
	StateFinalRejected,
}

// TerminalStates can never be left
var TerminalStates = []RequestState{StateApproved, StateFinalRejected}

func (s RequestState) Valid() bool {
	for _, st := range AllStates {
		if st == s {
			return true
		}
	}
	return false
}

func (s RequestState) IsTerminal() bool {
	return s == StateApproved || s == StateFinalRejected
}

// IsLive reports whether a request can rest in this state. Created and
// ApprovedByAdmin only ever appear as history milestones.
func (s RequestState) IsLive() bool {
	return s.Valid() && s != StateCreated && s != StateApprovedByAdmin
}

// IsManagerTier reports whether the state belongs to the final review tier
func (s RequestState) IsManagerTier() bool {
	return s == StatePendingManagerApproval || s == StateObservedByManager || s == StateRebuttalSubmittedToManager
}

// FundRequest (solicitud de fondo) asks to open, increase, decrease or close a cash fund.
type FundRequest struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code                 string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	RequesterID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester            *User           `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	AreaID               uuid.UUID       `gorm:"type:uuid;not null;index" json:"area_id"`
	Area                 *Area           `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	RequestType          RequestType     `gorm:"type:varchar(20);not null;index" json:"request_type"`
	DetailReason         string          `gorm:"type:text;not null" json:"detail_reason"`
	RequestedAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"requested_amount"`
	Priority             Priority        `gorm:"type:varchar(10);not null;default:'Media'" json:"priority"`
	State                RequestState    `gorm:"type:varchar(40);not null;index" json:"state"`
	ObservationReason    *string         `gorm:"type:text" json:"observation_reason"`
	RebuttalReason       *string         `gorm:"type:text" json:"rebuttal_reason"`
	FinalRejectionReason *string         `gorm:"type:text" json:"final_rejection_reason"`
	AdminReviewerID      *uuid.UUID      `gorm:"type:uuid;index" json:"admin_reviewer_id"`
	AdminReviewer        *User           `gorm:"foreignKey:AdminReviewerID" json:"admin_reviewer,omitempty"`
	ManagerApproverID    *uuid.UUID      `gorm:"type:uuid;index" json:"manager_approver_id"`
	ManagerApprover      *User           `gorm:"foreignKey:ManagerApproverID" json:"manager_approver,omitempty"`
	OriginalRequestID    *uuid.UUID      `gorm:"type:uuid;index" json:"original_request_id"` // Opening request whose fund is modified
	OriginalRequest      *FundRequest    `gorm:"foreignKey:OriginalRequestID" json:"original_request,omitempty"`

	ExpenseLines []ProjectedExpenseLine `gorm:"foreignKey:FundRequestID" json:"expense_lines,omitempty"`
	History      []StateHistoryEntry    `gorm:"foreignKey:FundRequestID" json:"history,omitempty"`
	Fund         *CashFund              `gorm:"foreignKey:OpeningRequestID" json:"fund,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *FundRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ProjectedExpenseLine (detalle de gasto proyectado) is immutable once created.
type ProjectedExpenseLine struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FundRequestID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"fund_request_id"`
	Description     string          `gorm:"type:varchar(255);not null" json:"description"`
	EstimatedAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"estimated_amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (l *ProjectedExpenseLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// StateHistoryEntry is one append-only row of a request's state log.
// ActingUserID is nil for system-automatic transitions.
type StateHistoryEntry struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	FundRequestID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:ux_history_request_seq,priority:1" json:"fund_request_id"`
	Sequence      int           `gorm:"not null;uniqueIndex:ux_history_request_seq,priority:2" json:"sequence"`
	PreviousState *RequestState `gorm:"type:varchar(40)" json:"previous_state"`
	NewState      RequestState  `gorm:"type:varchar(40);not null" json:"new_state"`
	Notes         string        `gorm:"type:text" json:"notes"`
	ActingUserID  *uuid.UUID    `gorm:"type:uuid;index" json:"acting_user_id"`
	ActingUser    *User         `gorm:"foreignKey:ActingUserID" json:"acting_user,omitempty"`
	ChangedAt     time.Time     `gorm:"not null" json:"changed_at"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (h *StateHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
