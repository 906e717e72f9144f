package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cajachica/internal/model"
	"cajachica/internal/repository"
	"cajachica/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- DTOs ---

type ExpenseLineInput struct {
	Description     string          `json:"description" validate:"required,max=255"`
	EstimatedAmount decimal.Decimal `json:"estimated_amount"`
}

type SubmitFundRequestInput struct {
	RequestType       model.RequestType  `json:"request_type" validate:"required,oneof=Apertura Incremento Decremento Cierre"`
	AreaID            uuid.UUID          `json:"area_id" validate:"required"`
	DetailReason      string             `json:"detail_reason" validate:"required,max=1000"`
	RequestedAmount   *decimal.Decimal   `json:"requested_amount" validate:"required"`
	Priority          model.Priority     `json:"priority" validate:"required,oneof=Baja Media Alta Urgente"`
	OriginalRequestID *uuid.UUID         `json:"original_request_id"`
	ExpenseLines      []ExpenseLineInput `json:"expense_lines" validate:"dive"`
}

type TransitionInput struct {
	TargetState          model.RequestState `json:"target_state" validate:"required"`
	ObservationReason    string             `json:"observation_reason" validate:"max=1000"`
	RebuttalReason       string             `json:"rebuttal_reason" validate:"max=1000"`
	FinalRejectionReason string             `json:"final_rejection_reason" validate:"max=1000"`
}

var minLineAmount = decimal.RequireFromString("0.01")

// --- Interface ---

// WorkflowEngine drives fund requests through the approval state machine.
// Every call runs in a single transaction.
type WorkflowEngine interface {
	Submit(ctx context.Context, actor Actor, in SubmitFundRequestInput) (*FundRequestResponse, error)
	Transition(ctx context.Context, actor Actor, requestID uuid.UUID, in TransitionInput) (*TransitionResult, error)
}

type WorkflowDeps struct {
	Tx        repository.TransactionManager
	Requests  repository.FundRequestRepository
	History   repository.StateHistoryRepository
	Funds     repository.CashFundRepository
	Users     repository.UserRepository
	Areas     repository.AreaRepository
	Audits    repository.AuditRepository
	Codes     CodeGenerator
	Lifecycle FundLifecycleManager
	Clock     Clock
	Log       *zap.Logger
}

type workflowEngine struct {
	WorkflowDeps
}

func NewWorkflowEngine(deps WorkflowDeps) WorkflowEngine {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &workflowEngine{WorkflowDeps: deps}
}

// --- Submit ---

func (e *workflowEngine) Submit(ctx context.Context, actor Actor, in SubmitFundRequestInput) (*FundRequestResponse, error) {
	if !actor.Role.Valid() {
		return nil, apperror.Forbidden("Acceso denegado. Su rol no puede registrar solicitudes de fondo.")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validateSubmitShape(in); err != nil {
		return nil, err
	}

	var created *model.FundRequest
	err := e.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		requester, err := e.Users.GetByID(txCtx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Forbidden("Acceso denegado. Usuario desconocido.")
			}
			return internalErr("failed to load requester", err)
		}

		if _, err := e.Areas.FindByID(txCtx, in.AreaID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ValidationField("area_id", "area does not exist")
			}
			return internalErr("failed to load area", err)
		}

		if in.RequestType.IsModification() {
			if err := e.checkModification(txCtx, in); err != nil {
				return err
			}
		}

		code, err := e.Codes.Next(txCtx, PrefixFundRequest)
		if err != nil {
			return err
		}

		initial := model.StatePendingAdminApproval
		routing := "enviada a Administración"
		if in.RequestType.ReducesFund() && actor.Role.IsAdminOrSuper() {
			initial = model.StatePendingManagerApproval
			routing = "enviada directamente a Gerencia General"
		}

		req := &model.FundRequest{
			Code:              code,
			RequesterID:       actor.ID,
			AreaID:            in.AreaID,
			RequestType:       in.RequestType,
			DetailReason:      in.DetailReason,
			RequestedAmount:   *in.RequestedAmount,
			Priority:          in.Priority,
			State:             initial,
			OriginalRequestID: in.OriginalRequestID,
		}
		if in.RequestType.HasExpenseLines() {
			for _, l := range in.ExpenseLines {
				req.ExpenseLines = append(req.ExpenseLines, model.ProjectedExpenseLine{
					Description:     l.Description,
					EstimatedAmount: l.EstimatedAmount,
				})
			}
		}
		if err := e.Requests.Create(txCtx, req); err != nil {
			return translateCreateErr(err, req.RequestType)
		}

		now := e.Clock.Now()
		createdState := model.StateCreated
		if err := e.History.Append(txCtx, &model.StateHistoryEntry{
			FundRequestID: req.ID,
			NewState:      model.StateCreated,
			Notes:         fmt.Sprintf("La solicitud de %s fue creada por %s.", req.RequestType, requester.FullName()),
			ActingUserID:  &actor.ID,
			ChangedAt:     now,
		}); err != nil {
			return internalErr("failed to write history", err)
		}
		if err := e.History.Append(txCtx, &model.StateHistoryEntry{
			FundRequestID: req.ID,
			PreviousState: &createdState,
			NewState:      initial,
			Notes:         fmt.Sprintf("La solicitud fue %s para revisión.", routing),
			ActingUserID:  &actor.ID,
			ChangedAt:     now,
		}); err != nil {
			return internalErr("failed to write history", err)
		}

		created = req
		return recordAudit(txCtx, e.Audits, &actor.ID, model.ActionSubmitFundRequest, req.ID.String(), req.Code,
			map[string]interface{}{
				"request_type":     req.RequestType,
				"requested_amount": formatAmount(req.RequestedAmount),
				"initial_state":    initial,
			})
	})
	if err != nil {
		e.logFailure("submit", actor, uuid.Nil, err)
		return nil, err
	}

	e.Log.Info("fund request submitted",
		zap.String("code", created.Code),
		zap.String("type", string(created.RequestType)),
		zap.String("state", string(created.State)),
		zap.String("actor", actor.ID.String()))

	return e.loadResponse(ctx, created.ID)
}

// validateSubmitShape checks the type-dependent rules that need no storage access
func validateSubmitShape(in SubmitFundRequestInput) error {
	amount := *in.RequestedAmount
	fields := map[string]string{}

	if amount.IsNegative() {
		fields["requested_amount"] = "must not be negative"
	}
	switch in.RequestType {
	case model.RequestOpening:
		if !amount.IsPositive() {
			fields["requested_amount"] = "must be greater than 0 for an opening request"
		}
		if in.OriginalRequestID != nil {
			fields["original_request_id"] = "only increase, decrease or closure requests reference an original request"
		}
	case model.RequestClosure:
		if !amount.IsZero() {
			fields["requested_amount"] = "must be 0 for a closure request"
		}
	}
	if in.RequestType.IsModification() && in.OriginalRequestID == nil {
		fields["original_request_id"] = "is required for increase, decrease or closure requests"
	}

	if in.RequestType.HasExpenseLines() {
		if len(in.ExpenseLines) == 0 {
			fields["expense_lines"] = "at least one projected expense is required"
		}
		for i, l := range in.ExpenseLines {
			if l.EstimatedAmount.LessThan(minLineAmount) {
				fields[fmt.Sprintf("expense_lines[%d].estimated_amount", i)] = "must be at least 0.01"
			}
		}
	}

	if len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

// checkModification validates an Increase, Decrease or Closure against the
// current state of the fund it targets. The fund row stays locked until commit.
func (e *workflowEngine) checkModification(ctx context.Context, in SubmitFundRequestInput) error {
	original, err := e.Requests.FindByID(ctx, *in.OriginalRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ValidationField("original_request_id", "original request does not exist")
		}
		return internalErr("failed to load original request", err)
	}
	if original.RequestType != model.RequestOpening {
		return apperror.ValidationField("original_request_id", "original request must be an opening request")
	}

	fund, err := e.Funds.FindByOpeningRequest(ctx, original.ID, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ValidationField("original_request_id", "no active cash fund is associated with the original request")
		}
		return internalErr("failed to load fund", err)
	}
	if !fund.IsActive() {
		return apperror.ValidationField("original_request_id",
			fmt.Sprintf("cash fund %s is %s and cannot be modified", fund.Code, fund.State))
	}

	pending, err := e.Requests.ExistsOpenModification(ctx, original.ID)
	if err != nil {
		return internalErr("failed to check pending modifications", err)
	}
	if pending {
		return apperror.ModificationConflict(
			fmt.Sprintf("Ya existe una solicitud de modificación en curso para el fondo %s.", fund.Code))
	}

	amount := *in.RequestedAmount
	current := formatAmount(fund.ApprovedAmount)
	switch in.RequestType {
	case model.RequestIncrease:
		if !amount.GreaterThan(fund.ApprovedAmount) {
			return apperror.ValidationField("requested_amount",
				fmt.Sprintf("new amount must be greater than the fund's approved amount (%s)", current))
		}
	case model.RequestDecrease:
		if !amount.LessThan(fund.ApprovedAmount) {
			return apperror.ValidationField("requested_amount",
				fmt.Sprintf("new amount must be less than the fund's approved amount (%s)", current))
		}
	}
	return nil
}

// --- Transition ---

func (e *workflowEngine) Transition(ctx context.Context, actor Actor, requestID uuid.UUID, in TransitionInput) (*TransitionResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	rule, ok := transitionRules[in.TargetState]
	if !ok {
		return nil, apperror.ValidationField("target_state", fmt.Sprintf("%q is not a valid transition target", in.TargetState))
	}
	reason := strings.TrimSpace(rule.reason.value(in))
	if rule.reason != reasonNone && reason == "" {
		return nil, apperror.ValidationField(rule.reason.jsonName(), "is required for this transition")
	}

	result := &TransitionResult{Milestone: rule.milestone}
	err := e.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := e.Requests.FindByIDForUpdate(txCtx, requestID)
		if err != nil {
			return translateRepoErr(err, "fund request not found", "failed to load fund request")
		}

		if !rule.admits(actor, req) {
			return apperror.Forbidden(rule.deniedMsg)
		}
		if rule.selfBan && selfDealing(actor, req) {
			return apperror.Forbidden(rule.selfBanMsg)
		}
		if !rule.allowedFrom(req.State) {
			return apperror.InvalidTransition(fmt.Sprintf("%s (estado actual: %s)", rule.invalidMsg, req.State))
		}

		requester, err := e.Users.GetByID(txCtx, req.RequesterID)
		if err != nil {
			return internalErr("failed to load requester", err)
		}

		previous := req.State
		outcome := rule.apply(&transitionContext{
			actor:         actor,
			req:           req,
			requesterRole: requester.Role,
			reason:        reason,
		})
		req.State = outcome.liveState

		notes := outcome.notes
		result.Message = outcome.message
		if outcome.fundAction {
			fund, err := e.applyFundAction(txCtx, req)
			if err != nil {
				return err
			}
			notes += fmt.Sprintf(" (Fondo: %s)", fund.Code)
			if outcome.fundMessage != nil {
				result.Message = outcome.fundMessage(fund.Code)
			}
			result.Fund = toCashFundResponse(fund)
		}

		if err := e.Requests.Update(txCtx, req); err != nil {
			return internalErr("failed to update fund request", err)
		}

		if err := e.History.Append(txCtx, &model.StateHistoryEntry{
			FundRequestID: req.ID,
			PreviousState: &previous,
			NewState:      rule.milestone,
			Notes:         notes,
			ActingUserID:  &actor.ID,
			ChangedAt:     e.Clock.Now(),
		}); err != nil {
			return translateRepoErr(err, "fund request not found", "failed to write history")
		}

		result.LiveState = req.State
		return recordAudit(txCtx, e.Audits, &actor.ID, model.ActionTransitionFundRequest, req.ID.String(), req.Code,
			map[string]interface{}{
				"previous_state": previous,
				"milestone":      rule.milestone,
				"live_state":     req.State,
			})
	})
	if err != nil {
		e.logFailure("transition", actor, requestID, err)
		return nil, err
	}

	e.Log.Info("fund request transitioned",
		zap.String("request_id", requestID.String()),
		zap.String("milestone", string(result.Milestone)),
		zap.String("live_state", string(result.LiveState)),
		zap.String("actor", actor.ID.String()))

	resp, err := e.loadResponse(ctx, requestID)
	if err != nil {
		return nil, err
	}
	result.Request = resp
	return result, nil
}

func (e *workflowEngine) applyFundAction(ctx context.Context, req *model.FundRequest) (*model.CashFund, error) {
	if req.RequestType == model.RequestOpening {
		return e.Lifecycle.CreateFromOpeningRequest(ctx, req)
	}
	return e.Lifecycle.ApplyModification(ctx, req)
}

func (e *workflowEngine) loadResponse(ctx context.Context, id uuid.UUID) (*FundRequestResponse, error) {
	req, err := e.Requests.FindDetailed(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err, "fund request not found", "failed to reload fund request")
	}
	return toFundRequestResponse(req), nil
}

// logFailure logs internal failures at error level; expected rejections stay at debug
func (e *workflowEngine) logFailure(op string, actor Actor, requestID uuid.UUID, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("actor", actor.ID.String()),
		zap.String("role", string(actor.Role)),
		zap.Error(err),
	}
	if requestID != uuid.Nil {
		fields = append(fields, zap.String("request_id", requestID.String()))
	}
	switch apperror.KindOf(err) {
	case apperror.KindInternal, apperror.KindFundNotFound:
		e.Log.Error("fund request workflow failed", fields...)
	default:
		e.Log.Debug("fund request workflow rejected", fields...)
	}
}
