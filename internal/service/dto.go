package service

import (
	"time"

	"cajachica/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Responses ---

type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

type AreaSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ExpenseLineResponse struct {
	ID              string `json:"id"`
	Description     string `json:"description"`
	EstimatedAmount string `json:"estimated_amount"`
}

type HistoryEntryResponse struct {
	Sequence      int          `json:"sequence"`
	PreviousState *string      `json:"previous_state"`
	NewState      string       `json:"new_state"`
	Notes         string       `json:"notes"`
	ActingUser    *UserSummary `json:"acting_user"`
	ChangedAt     string       `json:"changed_at"`
}

type CashFundResponse struct {
	ID               string       `json:"id"`
	Code             string       `json:"code"`
	ApprovedAmount   string       `json:"approved_amount"`
	OpeningDate      string       `json:"opening_date"`
	State            string       `json:"state"`
	ClosureDate      *string      `json:"closure_date"`
	ClosureReason    *string      `json:"closure_reason"`
	OpeningRequestID string       `json:"opening_request_id"`
	Responsible      *UserSummary `json:"responsible,omitempty"`
	ResponsibleID    string       `json:"responsible_user_id"`
	AreaID           string       `json:"area_id"`
	Area             *AreaSummary `json:"area,omitempty"`
}

// OriginalRequestSummary describes the Opening request a modification targets
type OriginalRequestSummary struct {
	ID              string            `json:"id"`
	Code            string            `json:"code"`
	RequestedAmount string            `json:"requested_amount"`
	State           string            `json:"state"`
	Fund            *CashFundResponse `json:"fund,omitempty"`
}

type FundRequestResponse struct {
	ID                   string                  `json:"id"`
	Code                 string                  `json:"code"`
	RequestType          string                  `json:"request_type"`
	DetailReason         string                  `json:"detail_reason"`
	RequestedAmount      string                  `json:"requested_amount"`
	Priority             string                  `json:"priority"`
	State                string                  `json:"state"`
	ObservationReason    *string                 `json:"observation_reason"`
	RebuttalReason       *string                 `json:"rebuttal_reason"`
	FinalRejectionReason *string                 `json:"final_rejection_reason"`
	RequesterID          string                  `json:"requester_id"`
	Requester            *UserSummary            `json:"requester,omitempty"`
	AreaID               string                  `json:"area_id"`
	Area                 *AreaSummary            `json:"area,omitempty"`
	AdminReviewer        *UserSummary            `json:"admin_reviewer,omitempty"`
	ManagerApprover      *UserSummary            `json:"manager_approver,omitempty"`
	OriginalRequestID    *string                 `json:"original_request_id"`
	OriginalRequest      *OriginalRequestSummary `json:"original_request,omitempty"`
	Fund                 *CashFundResponse       `json:"fund,omitempty"`
	ExpenseLines         []ExpenseLineResponse   `json:"expense_lines"`
	History              []HistoryEntryResponse  `json:"history,omitempty"`
	CreatedAt            string                  `json:"created_at"`
	UpdatedAt            string                  `json:"updated_at"`
}

// TransitionResult reports both the milestone written to history and the
// state the request now rests in; they differ e.g. for ApprovedByAdmin.
type TransitionResult struct {
	Message   string               `json:"message"`
	Milestone model.RequestState   `json:"milestone"`
	LiveState model.RequestState   `json:"live_state"`
	Fund      *CashFundResponse    `json:"fund,omitempty"`
	Request   *FundRequestResponse `json:"request"`
}

// --- Mappers ---

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toUserSummary(u *model.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:       u.ID.String(),
		Name:     u.Name,
		LastName: u.LastName,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}

func toAreaSummary(a *model.Area) *AreaSummary {
	if a == nil {
		return nil
	}
	return &AreaSummary{ID: a.ID.String(), Name: a.Name}
}

func toCashFundResponse(f *model.CashFund) *CashFundResponse {
	if f == nil {
		return nil
	}
	return &CashFundResponse{
		ID:               f.ID.String(),
		Code:             f.Code,
		ApprovedAmount:   formatAmount(f.ApprovedAmount),
		OpeningDate:      formatTime(f.OpeningDate),
		State:            string(f.State),
		ClosureDate:      formatTimePtr(f.ClosureDate),
		ClosureReason:    f.ClosureReason,
		OpeningRequestID: f.OpeningRequestID.String(),
		Responsible:      toUserSummary(f.ResponsibleUser),
		ResponsibleID:    f.ResponsibleUserID.String(),
		AreaID:           f.AreaID.String(),
		Area:             toAreaSummary(f.Area),
	}
}

func toFundRequestResponse(r *model.FundRequest) *FundRequestResponse {
	resp := &FundRequestResponse{
		ID:                   r.ID.String(),
		Code:                 r.Code,
		RequestType:          string(r.RequestType),
		DetailReason:         r.DetailReason,
		RequestedAmount:      formatAmount(r.RequestedAmount),
		Priority:             string(r.Priority),
		State:                string(r.State),
		ObservationReason:    r.ObservationReason,
		RebuttalReason:       r.RebuttalReason,
		FinalRejectionReason: r.FinalRejectionReason,
		RequesterID:          r.RequesterID.String(),
		Requester:            toUserSummary(r.Requester),
		AreaID:               r.AreaID.String(),
		Area:                 toAreaSummary(r.Area),
		AdminReviewer:        toUserSummary(r.AdminReviewer),
		ManagerApprover:      toUserSummary(r.ManagerApprover),
		OriginalRequestID:    uuidPtrString(r.OriginalRequestID),
		Fund:                 toCashFundResponse(r.Fund),
		ExpenseLines:         make([]ExpenseLineResponse, 0, len(r.ExpenseLines)),
		CreatedAt:            formatTime(r.CreatedAt),
		UpdatedAt:            formatTime(r.UpdatedAt),
	}

	if o := r.OriginalRequest; o != nil {
		resp.OriginalRequest = &OriginalRequestSummary{
			ID:              o.ID.String(),
			Code:            o.Code,
			RequestedAmount: formatAmount(o.RequestedAmount),
			State:           string(o.State),
			Fund:            toCashFundResponse(o.Fund),
		}
	}

	for _, l := range r.ExpenseLines {
		resp.ExpenseLines = append(resp.ExpenseLines, ExpenseLineResponse{
			ID:              l.ID.String(),
			Description:     l.Description,
			EstimatedAmount: formatAmount(l.EstimatedAmount),
		})
	}

	for _, h := range r.History {
		entry := HistoryEntryResponse{
			Sequence:   h.Sequence,
			NewState:   string(h.NewState),
			Notes:      h.Notes,
			ActingUser: toUserSummary(h.ActingUser),
			ChangedAt:  formatTime(h.ChangedAt),
		}
		if h.PreviousState != nil {
			prev := string(*h.PreviousState)
			entry.PreviousState = &prev
		}
		resp.History = append(resp.History, entry)
	}

	return resp
}
